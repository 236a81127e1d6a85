package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/costwatch/id"
)

func TestNewCycleID(t *testing.T) {
	cid := id.NewCycleID()

	if cid.IsNil() {
		t.Fatal("NewCycleID returned Nil")
	}
	if !strings.HasPrefix(cid.String(), "cyc_") {
		t.Errorf("expected cyc_ prefix, got %s", cid.String())
	}
	if cid.Prefix() != id.PrefixCycle {
		t.Errorf("expected prefix %q, got %q", id.PrefixCycle, cid.Prefix())
	}
}

func TestIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s := id.NewCycleID().String()
		if seen[s] {
			t.Fatalf("duplicate ID generated: %s", s)
		}
		seen[s] = true
	}
}

func TestParse(t *testing.T) {
	original := id.NewCycleID()

	parsed, err := id.Parse(original.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.String() != original.String() {
		t.Errorf("round-trip mismatch: %s != %s", parsed, original)
	}
	if parsed.Prefix() != id.PrefixCycle {
		t.Errorf("prefix lost in round-trip: %q", parsed.Prefix())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no separator", "cyc01h2xcejqtf2nbrexx3vqjhp41"},
		{"garbage", "not a typeid"},
		{"bad suffix", "cyc_!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := id.Parse(tt.input); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}

func TestNilID(t *testing.T) {
	if !id.Nil.IsNil() {
		t.Error("Nil should report IsNil")
	}
	if id.Nil.String() != "" {
		t.Errorf("Nil should stringify empty, got %q", id.Nil.String())
	}
	if id.Nil.Prefix() != "" {
		t.Errorf("Nil should have empty prefix, got %q", id.Nil.Prefix())
	}
}

func TestIDTextRoundTrip(t *testing.T) {
	original := id.NewCycleID()

	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var parsed id.ID
	if err := parsed.UnmarshalText(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if parsed.String() != original.String() {
		t.Errorf("round-trip mismatch: %s != %s", parsed, original)
	}

	var empty id.ID
	if err := empty.UnmarshalText(nil); err != nil {
		t.Fatalf("unmarshal of empty text failed: %v", err)
	}
	if !empty.IsNil() {
		t.Error("empty text should unmarshal to Nil")
	}
}

func TestIDScan(t *testing.T) {
	original := id.NewCycleID()

	var scanned id.ID
	if err := scanned.Scan(original.String()); err != nil {
		t.Fatalf("scan string failed: %v", err)
	}
	if scanned.String() != original.String() {
		t.Errorf("scan mismatch: %s != %s", scanned, original)
	}

	var fromNil id.ID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("scan nil failed: %v", err)
	}
	if !fromNil.IsNil() {
		t.Error("scanning nil should yield Nil")
	}

	var bad id.ID
	if err := bad.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}
