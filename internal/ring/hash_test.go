package ring

import "testing"

func TestHashIsStableAndHex(t *testing.T) {
	a := Hash([]byte("localhost:8080"))
	b := Hash([]byte("localhost:8080"))
	if a != b {
		t.Fatalf("hash not stable: %s != %s", a, b)
	}
	if len(a) != 40 {
		t.Fatalf("expected a 40-char hex sha1 digest, got %d chars: %s", len(a), a)
	}
	for _, r := range a {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			t.Fatalf("digest %s has non-hex character %q", a, r)
		}
	}
}

func TestHashDiffersByInput(t *testing.T) {
	a := Hash([]byte("localhost:8080"))
	b := Hash([]byte("localhost:8081"))
	if a == b {
		t.Fatalf("expected different hashes for different addresses, got %s for both", a)
	}
}

func TestOwnsHalfOpenArc(t *testing.T) {
	// Plain arc: predecessor "10" < self "30", key "20" falls inside (10, 30].
	if !Owns("10", "30", "20") {
		t.Fatal("expected key 20 to be owned by arc (10, 30]")
	}
	if Owns("10", "30", "10") {
		t.Fatal("predecessor's own key must not be owned (exclusive lower bound)")
	}
	if !Owns("10", "30", "30") {
		t.Fatal("self's own key must be owned (inclusive upper bound)")
	}
	if Owns("10", "30", "40") {
		t.Fatal("key outside the arc must not be owned")
	}
}

func TestOwnsWrappingArc(t *testing.T) {
	// Wrapping arc: predecessor "90" > self "10" — the arc wraps past 0.
	if !Owns("90", "10", "95") {
		t.Fatal("expected key 95 to be owned by wrapping arc (90, 10]")
	}
	if !Owns("90", "10", "05") {
		t.Fatal("expected key 05 to be owned by wrapping arc (90, 10]")
	}
	if Owns("90", "10", "50") {
		t.Fatal("key 50 sits outside the wrapping arc and must not be owned")
	}
}
