package ring

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"chordkv/internal/store"
)

func readAll(r *http.Request) []byte {
	b, _ := io.ReadAll(r.Body)
	return b
}

func writeJSON(w http.ResponseWriter, v any) {
	b, _ := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func decodeJSON(r *http.Request, v any) {
	json.NewDecoder(r.Body).Decode(v)
}

// testPeer bundles a Peer with an httptest server that routes to it the
// same way api.Handler.Register would, minus the gin dependency — enough
// surface for the protocol and router tests below: PUT/GET /storage/<key>,
// PUT /join, PUT /update, PUT /stabilize.
type testPeer struct {
	peer *Peer
	srv  *httptest.Server
}

func newTestPeer(t *testing.T) *testPeer {
	t.Helper()
	tp := &testPeer{}
	mux := http.NewServeMux()

	mux.HandleFunc("/storage/", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path[len("/storage/"):]
		switch r.Method {
		case http.MethodPut:
			body := readAll(r)
			status := tp.peer.Put(r.Context(), key, body)
			w.WriteHeader(status)
		case http.MethodGet:
			status, value := tp.peer.Get(r.Context(), key)
			w.WriteHeader(status)
			if status == http.StatusOK {
				w.Write(value)
			}
		}
	})
	mux.HandleFunc("/join", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		addr := string(readAll(r))
		reply, err := tp.peer.HandleJoin(r.Context(), addr)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, reply)
	})
	mux.HandleFunc("/update", func(w http.ResponseWriter, r *http.Request) {
		var req UpdateRequest
		decodeJSON(r, &req)
		tp.peer.UpdateNeighbors(req.Successor, req.Predecessor)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/stabilize", func(w http.ResponseWriter, r *http.Request) {
		var req StabilizeRequest
		decodeJSON(r, &req)
		reply := tp.peer.HandleStabilize(r.Context(), req.Node, req.Direction)
		writeJSON(w, reply)
	})
	mux.HandleFunc("/leave", func(w http.ResponseWriter, r *http.Request) {
		tp.peer.Leave(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/sim-crash", func(w http.ResponseWriter, r *http.Request) {
		tp.peer.SetCrashed(true)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/sim-recover", func(w http.ResponseWriter, r *http.Request) {
		tp.peer.Recover(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tp.srv = httptest.NewServer(withCrashGuard(tp, mux))
	t.Cleanup(tp.srv.Close)

	tp.peer = New(tp.srv.Listener.Addr().String(), store.New())
	return tp
}

// withCrashGuard mirrors api.CrashGuard's behavior closely enough for
// these protocol-level tests to exercise the same black-hole semantics.
func withCrashGuard(tp *testPeer, next http.Handler) http.Handler {
	exempt := map[string]bool{"/sim-crash": true, "/sim-recover": true}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tp.peer != nil && tp.peer.Crashed() && !exempt[r.URL.Path] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func TestJoinTwoPeers(t *testing.T) {
	a := newTestPeer(t)
	b := newTestPeer(t)

	if err := b.peer.JoinRing(context.Background(), a.peer.Address()); err != nil {
		t.Fatalf("join: %v", err)
	}

	if b.peer.Successor().Address != a.peer.Address() {
		t.Fatalf("expected b's successor to be a, got %s", b.peer.Successor().Address)
	}
	if a.peer.Successor().Address != b.peer.Address() {
		t.Fatalf("expected a's successor to be b, got %s", a.peer.Successor().Address)
	}
}

func TestRoutedPutAndGet(t *testing.T) {
	a := newTestPeer(t)
	b := newTestPeer(t)
	c := newTestPeer(t)

	ctx := context.Background()
	mustJoin(t, b, a)
	mustJoin(t, c, a)

	// Put through peer a directly regardless of who owns the key; the
	// router inside Put forwards over HTTP as needed.
	status := a.peer.Put(ctx, "some-key", []byte("some-value"))
	if status != http.StatusOK {
		t.Fatalf("put status = %d, want 200", status)
	}

	status, value := a.peer.Get(ctx, "some-key")
	if status != http.StatusOK {
		t.Fatalf("get status = %d, want 200", status)
	}
	if string(value) != "some-value" {
		t.Fatalf("got %q, want %q", value, "some-value")
	}
}

func TestGracefulLeave(t *testing.T) {
	a := newTestPeer(t)
	b := newTestPeer(t)
	mustJoin(t, b, a)

	b.peer.Leave(context.Background())

	if !a.peer.IsSingleton() {
		t.Fatalf("expected a to revert to singleton after b's leave, successor=%s", a.peer.Successor().Address)
	}
}

func TestPeerPutIgnoresCrashFlag(t *testing.T) {
	a := newTestPeer(t)
	a.peer.SetCrashed(true)

	status := a.peer.Put(context.Background(), "k", []byte("v"))
	// Put is called directly on the peer, bypassing the HTTP CrashGuard
	// middleware entirely — the guard lives in the transport layer, not
	// Peer itself, so this only proves the flag is independently settable
	// and does not gate Peer's own methods (by design: the guard is an
	// HTTP-layer concern per spec.md §4.6).
	if status != http.StatusOK {
		t.Fatalf("Peer.Put should not itself consult the crash flag, got status %d", status)
	}
}

func TestStabilizeRepairsAroundCrashedSuccessor(t *testing.T) {
	a := newTestPeer(t)
	b := newTestPeer(t)
	c := newTestPeer(t)

	mustJoin(t, b, a)
	mustJoin(t, c, a)

	// Find the 3-cycle order by walking successors from a.
	first := a.peer.Successor().Address
	var middle *testPeer
	for _, p := range []*testPeer{a, b, c} {
		if p.peer.Address() == first {
			middle = p
			break
		}
	}
	if middle == nil {
		t.Fatal("could not locate successor peer in test fixture")
	}
	middle.peer.SetCrashed(true)

	replacement := a.peer.RepairNeighbor(context.Background(), DirSuccessorFailed)
	if replacement.Address == middle.peer.Address() {
		t.Fatalf("expected repaired successor to skip the crashed peer, got %s", replacement.Address)
	}
	if a.peer.Successor().Address != replacement.Address {
		t.Fatalf("RepairNeighbor did not persist the new successor on the peer")
	}
}

func mustJoin(t *testing.T, joiner, bootstrap *testPeer) {
	t.Helper()
	if err := joiner.peer.JoinRing(context.Background(), bootstrap.peer.Address()); err != nil {
		t.Fatalf("join %s through %s: %v", joiner.peer.Address(), bootstrap.peer.Address(), err)
	}
}
