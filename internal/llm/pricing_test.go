package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	c := LookupCost("gemini-2.5-flash")
	if c == nil {
		t.Fatal("expected pricing for gemini-2.5-flash")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-2.8) > 1e-9 {
		t.Fatalf("expected 2.8, got %v", got)
	}

	if LookupCost("google/gemini-2.5-flash") == nil {
		t.Fatal("expected vendor-prefixed id to resolve")
	}
	if LookupCost("mock") != nil {
		t.Fatal("expected no pricing for mock")
	}
}
