package typeid

import (
	"strings"
	"testing"
)

func TestNewIDs(t *testing.T) {
	tests := []struct {
		gen    func() string
		prefix string
	}{
		{NewShapeID, PrefixShape},
		{NewProjectID, PrefixProject},
		{NewSnapshotID, PrefixSnapshot},
		{NewExportID, PrefixExport},
	}
	for _, tt := range tests {
		id := tt.gen()
		if !strings.HasPrefix(id, tt.prefix+"_") {
			t.Errorf("id %q lacks prefix %q", id, tt.prefix)
		}
		if err := Validate(id, tt.prefix); err != nil {
			t.Errorf("Validate(%q): %v", id, err)
		}
	}
}

func TestNewIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewShapeID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestValidateRejects(t *testing.T) {
	if err := Validate("not an id", PrefixShape); err == nil {
		t.Error("expected parse error")
	}
	if err := Validate(NewShapeID(), PrefixSnapshot); err == nil {
		t.Error("expected prefix mismatch")
	}
}
