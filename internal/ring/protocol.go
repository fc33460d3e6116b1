package ring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// JoinRing is the client-facing entry point (POST /join?nprime=...): this
// peer contacts the named bootstrap peer with its own address and adopts
// whatever neighbor pair comes back.
func (p *Peer) JoinRing(ctx context.Context, bootstrap string) error {
	res := p.doRequest(ctx, http.MethodPut, bootstrap, "/join", []byte(p.address))
	if res.err != nil {
		return fmt.Errorf("contact bootstrap %s: %w", bootstrap, res.err)
	}
	if res.status != http.StatusOK {
		return fmt.Errorf("bootstrap %s rejected join: status %d", bootstrap, res.status)
	}

	var pair NeighborPair
	if err := json.Unmarshal(res.body, &pair); err != nil {
		return fmt.Errorf("decode neighbor pair from %s: %w", bootstrap, err)
	}

	p.mu.Lock()
	p.successor = pair.Successor
	p.predecessor = pair.Predecessor
	p.mu.Unlock()
	return nil
}

// HandleJoin is the inter-peer join handshake (PUT /join): it decides
// where the joiner fits relative to this peer's own arc, either inserting
// it directly or forwarding the search to the appropriate neighbor.
//
// The whole routine runs under p.mu (decision #4, SPEC_FULL.md §9): a
// second join landing on the same peer while this one is still forwarding
// would otherwise race the read-modify-write of successor/predecessor.
func (p *Peer) HandleJoin(ctx context.Context, joinerAddr string) (NeighborPair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	k := Hash([]byte(joinerAddr))
	joiner := NodeRef{Key: k, Address: joinerAddr}
	self := Self(p.key, p.address)

	// Singleton receiver: the joiner becomes our only neighbor in both
	// directions, and we tell it the same about ourselves.
	if p.successor.Address == p.address {
		p.successor = joiner
		p.predecessor = joiner
		return NeighborPair{Successor: self, Predecessor: self}, nil
	}

	if k < p.key {
		if k > p.predecessor.Key || p.predecessor.Key > p.key {
			// Insertion point is between our predecessor and us.
			reply := NeighborPair{Successor: self, Predecessor: p.predecessor}
			oldPred := p.predecessor
			p.predecessor = joiner
			go p.postUpdate(context.Background(), oldPred.Address, &joiner, nil)
			return reply, nil
		}
		return p.forwardJoin(ctx, p.predecessor.Address, joinerAddr)
	}

	// k >= p.key
	if k < p.successor.Key || p.successor.Key < p.key {
		// Insertion point is between us and our successor.
		reply := NeighborPair{Successor: p.successor, Predecessor: self}
		oldSucc := p.successor
		p.successor = joiner
		go p.postUpdate(context.Background(), oldSucc.Address, nil, &joiner)
		return reply, nil
	}
	return p.forwardJoin(ctx, p.successor.Address, joinerAddr)
}

// forwardJoin relays the join search to a neighbor and passes its answer
// back verbatim — no local state changes on this hop, since the insertion
// point lies strictly beyond it.
func (p *Peer) forwardJoin(ctx context.Context, nextHop, joinerAddr string) (NeighborPair, error) {
	res := p.doRequest(ctx, http.MethodPut, nextHop, "/join", []byte(joinerAddr))
	if res.err != nil {
		return NeighborPair{}, fmt.Errorf("forward join to %s: %w", nextHop, res.err)
	}
	if res.status != http.StatusOK {
		return NeighborPair{}, fmt.Errorf("forward join to %s: status %d", nextHop, res.status)
	}
	var pair NeighborPair
	if err := json.Unmarshal(res.body, &pair); err != nil {
		return NeighborPair{}, fmt.Errorf("decode forwarded join reply from %s: %w", nextHop, err)
	}
	return pair, nil
}

// Leave performs the graceful-departure protocol (POST /leave): it tells
// each neighbor to close the gap directly around this peer, then reverts
// to a singleton. The peer's own store is not migrated to either
// neighbor.
func (p *Peer) Leave(ctx context.Context) {
	p.mu.Lock()
	succ, pred := p.successor, p.predecessor
	p.mu.Unlock()

	self := p.address
	if pred.Address != self {
		p.postUpdate(ctx, pred.Address, &succ, nil)
	}
	if succ.Address != self {
		p.postUpdate(ctx, succ.Address, nil, &pred)
	}

	selfRef := Self(p.key, p.address)
	p.mu.Lock()
	p.successor = selfRef
	p.predecessor = selfRef
	p.mu.Unlock()
}

// Recover clears the crash flag and, if this peer had neighbors before the
// crash, rejoins the ring through its last known successor (POST
// /sim-recover). A peer that crashed while already a singleton simply
// stays a singleton.
func (p *Peer) Recover(ctx context.Context) error {
	p.SetCrashed(false)

	succ := p.Successor()
	if succ.Address == p.address {
		return nil
	}
	return p.JoinRing(ctx, succ.Address)
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
