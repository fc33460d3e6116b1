package ring

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"chordkv/internal/store"
)

// defaultHopTimeout bounds every outbound neighbor call, so a partitioned
// neighbor can't block a request indefinitely.
const defaultHopTimeout = 5 * time.Second

// Peer holds one ring member's identity, its two neighbors, and its
// simulated-crash flag.
//
// successor and predecessor are guarded by mu rather than stored as
// atomically-swappable references: the join and stabilize handshakes need
// to read-then-write both fields as a single atomic step, so a single
// mutex around the whole struct is simpler and safer than juggling two
// independent atomic pointers.
type Peer struct {
	address string
	key     string

	mu          sync.Mutex
	successor   NodeRef
	predecessor NodeRef

	crashed atomic.Bool

	store      *store.Store
	client     *http.Client
	hopTimeout time.Duration
}

// New creates a peer as a singleton ring: its own successor and
// predecessor.
func New(address string, st *store.Store) *Peer {
	key := Hash([]byte(address))
	self := Self(key, address)
	return &Peer{
		address:     address,
		key:         key,
		successor:   self,
		predecessor: self,
		store:       st,
		client:      &http.Client{Timeout: defaultHopTimeout},
		hopTimeout:  defaultHopTimeout,
	}
}

func (p *Peer) Address() string { return p.address }
func (p *Peer) Key() string     { return p.key }
func (p *Peer) Self() NodeRef   { return Self(p.key, p.address) }

func (p *Peer) Successor() NodeRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.successor
}

func (p *Peer) Predecessor() NodeRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.predecessor
}

// IsSingleton reports whether this peer currently believes it is alone on
// the ring (successor references itself).
func (p *Peer) IsSingleton() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.successor.Address == p.address
}

// UpdateNeighbors atomically overwrites whichever fields are non-nil. This
// is the single mutation point behind PUT /update: the sender decides
// correctness, the recipient just applies it.
func (p *Peer) UpdateNeighbors(successor, predecessor *NodeRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if successor != nil {
		p.successor = *successor
	}
	if predecessor != nil {
		p.predecessor = *predecessor
	}
}

func (p *Peer) Crashed() bool     { return p.crashed.Load() }
func (p *Peer) SetCrashed(v bool) { p.crashed.Store(v) }

// Store exposes the local object store for the router and API layers.
func (p *Peer) Store() *store.Store { return p.store }
