package ring

import "encoding/json"

// NodeRef identifies one ring member by its position and address.
//
// On the wire it is always a 2-element JSON array, [key, address], matching
// the protocol's compact tuple encoding rather than a keyed object — so a
// custom (Un)MarshalJSON pair is needed instead of the default struct tags.
type NodeRef struct {
	Key     string
	Address string
}

// Self builds the NodeRef a peer uses to refer to itself in protocol bodies.
func Self(key, address string) NodeRef {
	return NodeRef{Key: key, Address: address}
}

func (n NodeRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{n.Key, n.Address})
}

func (n *NodeRef) UnmarshalJSON(data []byte) error {
	var arr [2]string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	n.Key, n.Address = arr[0], arr[1]
	return nil
}

// NeighborPair is the body exchanged by join handshakes: the successor and
// predecessor a joining (or newly-repaired) peer should adopt.
type NeighborPair struct {
	Successor   NodeRef `json:"successor"`
	Predecessor NodeRef `json:"predecessor"`
}

// UpdateRequest is the body of PUT /update. Either field may be omitted;
// the recipient overwrites only what's present, unconditionally.
type UpdateRequest struct {
	Successor   *NodeRef `json:"successor,omitempty"`
	Predecessor *NodeRef `json:"predecessor,omitempty"`
}

// Direction distinguishes which neighbor a stabilize walk is repairing.
type Direction int

const (
	// DirPredecessorFailed means the caller's predecessor is unreachable;
	// the walk proceeds through the caller's successor chain.
	DirPredecessorFailed Direction = 0
	// DirSuccessorFailed means the caller's successor is unreachable; the
	// walk proceeds through the caller's predecessor chain.
	DirSuccessorFailed Direction = 1
)

// StabilizeRequest is the body of PUT /stabilize.
type StabilizeRequest struct {
	Node      NodeRef   `json:"node"`
	Direction Direction `json:"direction"`
}

// NodeInfo is the body of GET /node-info.
type NodeInfo struct {
	NodeKey   string    `json:"node_key"`
	Successor NodeRef   `json:"successor"`
	Others    []NodeRef `json:"others"`
	SimCrash  bool      `json:"sim_crash"`
}
