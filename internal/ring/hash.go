// Package ring implements the Chord-style consistent-hashing ring: the key
// space, per-peer neighbor state, the join/leave/stabilize handshakes, and
// the storage router that ties them together.
//
// Big idea:
//
// Unlike a vnode hash ring spread across many virtual positions, this ring
// has exactly one position per physical peer, and each peer tracks only its
// two immediate neighbors. Routing never consults a global view of the
// ring — every hop is a local decision against one peer's own key and its
// successor/predecessor, which is what keeps the protocol to a handful of
// HTTP verbs instead of a full membership directory.
package ring

import (
	"crypto/sha1"
	"encoding/hex"
)

// Hash maps an arbitrary byte string to its fixed-length lowercase hex key.
//
// We deliberately keep the full 160-bit SHA-1 digest instead of truncating
// to a fixed-width integer: the ring order here is lexicographic string
// comparison, not arithmetic mod 2^n, so there's no truncation to do and no
// modulus to pick.
func Hash(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

// Owns reports whether hashed key h falls in the half-open arc (pred, self]
// owned by the peer whose key is self and whose predecessor's key is
// pred.
//
// Three cases, per the ring's wrap-around arithmetic:
//   - pred == self: a lone peer; its arc is the entire space.
//   - pred < self: the ordinary, non-wrapping arc.
//   - pred > self: the arc wraps past the largest key back to the smallest.
func Owns(pred, self, h string) bool {
	switch {
	case pred == self:
		return true
	case pred < self:
		return pred < h && h <= self
	default:
		return h > pred || h <= self
	}
}
