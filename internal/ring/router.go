package ring

import (
	"context"
	"net/http"
)

// classify decides whether this peer owns hashed key h, and if not, which
// neighbor to forward to. The wrap-handling here is written independently
// of the more general Owns() arc test, since the boundary conditions
// differ slightly (inclusive/exclusive at the predecessor boundary).
func (p *Peer) classify(h string) (local bool, target NodeRef, towardSuccessor bool) {
	succ := p.Successor()
	if succ.Address == p.address {
		return true, NodeRef{}, false
	}

	pred := p.Predecessor()
	key := p.key

	if h < key {
		if h >= pred.Key || pred.Key > key {
			return true, NodeRef{}, false
		}
		return false, pred, false
	}

	// h >= key
	if pred.Key > key && h > pred.Key {
		return true, NodeRef{}, false
	}
	return false, succ, true
}

// Put implements PUT /storage/<key>: store locally if we own it, otherwise
// forward, retrying once through stabilize if the neighbor is down.
func (p *Peer) Put(ctx context.Context, key string, value []byte) int {
	h := Hash([]byte(key))
	local, target, towardSuccessor := p.classify(h)
	if local {
		p.store.Put(h, value)
		return http.StatusOK
	}

	res := p.tryRequest(ctx, http.MethodPut, target, towardSuccessor, "/storage/"+key, value)
	return res.status
}

// Get implements GET /storage/<key>: serve locally if we own it (404 if
// absent), otherwise forward with the same retry-once policy as Put.
func (p *Peer) Get(ctx context.Context, key string) (status int, value []byte) {
	h := Hash([]byte(key))
	local, target, towardSuccessor := p.classify(h)
	if local {
		v, ok := p.store.Get(h)
		if !ok {
			return http.StatusNotFound, nil
		}
		return http.StatusOK, v
	}

	res := p.tryRequest(ctx, http.MethodGet, target, towardSuccessor, "/storage/"+key, nil)
	return res.status, res.body
}

// tryRequest is the forwarding wrapper shared by Put and Get: issue the
// request, and if the neighbor looks crashed (500 or transport failure),
// run stabilize in the matching direction and retry exactly once against
// whatever it hands back. A second failure is surfaced as-is.
func (p *Peer) tryRequest(ctx context.Context, method string, target NodeRef, towardSuccessor bool, path string, body []byte) hopResult {
	res := p.doRequest(ctx, method, target.Address, path, body)
	if !res.unreachable() {
		return res
	}

	direction := DirPredecessorFailed
	if towardSuccessor {
		direction = DirSuccessorFailed
	}
	replacement := p.RepairNeighbor(ctx, direction)

	return p.doRequest(ctx, method, replacement.Address, path, body)
}
