package ring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// hopResult is the outcome of one outbound call to a neighbor: either a
// concrete HTTP status and body, or a transport-level failure. Callers
// treat HTTP 500 and a transport error the same way — both mean the
// neighbor is unreachable — so unreachable() folds both into one check.
type hopResult struct {
	status int
	body   []byte
	err    error
}

func (r hopResult) unreachable() bool {
	return r.err != nil || r.status == http.StatusInternalServerError
}

// doRequest issues one bounded-timeout HTTP call to a neighbor. It never
// treats a non-2xx response as a Go error — only transport failures
// (connection refused, timeout, DNS) populate err — so callers can
// distinguish "got a 404" from "got nothing at all".
func (p *Peer) doRequest(ctx context.Context, method, address, path string, body []byte) hopResult {
	ctx, cancel := context.WithTimeout(ctx, p.hopTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	url := fmt.Sprintf("http://%s%s", address, path)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return hopResult{err: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return hopResult{err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return hopResult{err: err}
	}
	return hopResult{status: resp.StatusCode, body: respBody}
}

func (p *Peer) postUpdate(ctx context.Context, address string, successor, predecessor *NodeRef) hopResult {
	body, _ := json.Marshal(UpdateRequest{Successor: successor, Predecessor: predecessor})
	return p.doRequest(ctx, http.MethodPut, address, "/update", body)
}
