package ring

import (
	"encoding/json"
	"testing"
)

func TestNodeRefJSONRoundTrip(t *testing.T) {
	want := Self("deadbeef", "localhost:8080")

	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["deadbeef","localhost:8080"]` {
		t.Fatalf("unexpected wire form: %s", data)
	}

	var got NodeRef
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != want {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", got, want)
	}
}

func TestUpdateRequestOmitsAbsentFields(t *testing.T) {
	succ := Self("a", "1")
	data, err := json.Marshal(UpdateRequest{Successor: &succ})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, present := decoded["predecessor"]; present {
		t.Fatalf("expected predecessor to be omitted, got %s", data)
	}
	if _, present := decoded["successor"]; !present {
		t.Fatalf("expected successor to be present, got %s", data)
	}
}
