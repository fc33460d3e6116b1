package ring

import (
	"context"
	"encoding/json"
)

// RepairNeighbor is the caller side of the stabilize handshake: invoked
// only after a direct neighbor call has come back unreachable. It asks the
// *other* neighbor to walk the ring until it finds a live replacement, and
// installs whatever comes back as the new successor (direction 1) or
// predecessor (direction 0).
//
// Two-peer edge case: when the only other neighbor we have is itself the
// failed one (a 2-peer ring with one side down), there is no third peer
// to ask, so we fall back to becoming our own replacement — we revert to
// a singleton along that one axis.
func (p *Peer) RepairNeighbor(ctx context.Context, direction Direction) NodeRef {
	self := p.Self()

	var otherAddr string
	if direction == DirSuccessorFailed {
		otherAddr = p.Predecessor().Address
	} else {
		otherAddr = p.Successor().Address
	}

	replacement := self
	if otherAddr != p.address {
		if reply, ok := p.requestStabilizeHop(ctx, otherAddr, self, direction); ok {
			replacement = reply
		}
	}

	p.mu.Lock()
	if direction == DirSuccessorFailed {
		p.successor = replacement
	} else {
		p.predecessor = replacement
	}
	p.mu.Unlock()

	return replacement
}

// HandleStabilize answers an inbound PUT /stabilize. It is the same
// handler for the first hop (the caller's other neighbor) and for every
// hop the walk subsequently visits: each one tries to continue the chain
// through its own neighbor in the walk's direction, and whichever hop
// can't reach the next one becomes the terminal — it patches its own
// pointer to skip the dead node and answers with itself.
func (p *Peer) HandleStabilize(ctx context.Context, caller NodeRef, direction Direction) NodeRef {
	var nextHop NodeRef
	if direction == DirSuccessorFailed {
		nextHop = p.Predecessor()
	} else {
		nextHop = p.Successor()
	}

	// Walked all the way around the ring with no third peer to hand off
	// to: this is the two-peer degenerate case, reached from the far
	// side instead of the caller's own RepairNeighbor check.
	if nextHop.Address == caller.Address {
		p.becomeTerminal(direction, caller)
		return p.Self()
	}

	if reply, ok := p.requestStabilizeHop(ctx, nextHop.Address, caller, direction); ok {
		return reply
	}

	p.becomeTerminal(direction, caller)
	return p.Self()
}

func (p *Peer) becomeTerminal(direction Direction, caller NodeRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if direction == DirSuccessorFailed {
		p.successor = caller
	} else {
		p.predecessor = caller
	}
}

// requestStabilizeHop sends one PUT /stabilize to address and decodes the
// NodeRef reply. ok is false on any transport failure or non-200 status,
// telling the caller that this hop must become the terminal itself.
func (p *Peer) requestStabilizeHop(ctx context.Context, address string, node NodeRef, direction Direction) (NodeRef, bool) {
	res := p.doRequest(ctx, "PUT", address, "/stabilize", mustJSON(StabilizeRequest{Node: node, Direction: direction}))
	if res.unreachable() {
		return NodeRef{}, false
	}
	var reply NodeRef
	if err := json.Unmarshal(res.body, &reply); err != nil {
		return NodeRef{}, false
	}
	return reply, true
}
