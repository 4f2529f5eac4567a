package cmd

import (
	"testing"
)

func TestPickOption(t *testing.T) {
	opts := []string{"Supervised", "Unsupervised", "Reinforcement"}
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"1", "Supervised", true},
		{" 3 ", "Reinforcement", true},
		{"unsupervised", "Unsupervised", true},
		{"4", "", false},
		{"0", "", false},
		{"", "", false},
		{"maybe", "", false},
	}
	for _, tt := range tests {
		got, ok := pickOption(tt.input, opts)
		if got != tt.want || ok != tt.ok {
			t.Errorf("pickOption(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
