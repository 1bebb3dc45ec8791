package contacts

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestIsImportant(t *testing.T) {
	tests := []struct {
		name     string
		contacts []string
		sender   string
		want     bool
	}{
		{name: "substring match", contacts: []string{"Jane Doe"}, sender: "Jane Doe Smith", want: true},
		{name: "case insensitive", contacts: []string{"jane doe"}, sender: "JANE DOE", want: true},
		{name: "unicode folding", contacts: []string{"ÉLODIE"}, sender: "élodie martin", want: true},
		{name: "no match", contacts: []string{"Jane Doe"}, sender: "John Roe", want: false},
		{name: "blank contacts ignored", contacts: []string{"  ", ""}, sender: "Anyone", want: false},
		{name: "empty list", contacts: nil, sender: "Jane", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(tt.contacts, zaptest.NewLogger(t))
			if got := c.IsImportant(tt.sender); got != tt.want {
				t.Fatalf("IsImportant(%q) = %v, want %v", tt.sender, got, tt.want)
			}
		})
	}
}

func TestLenSkipsBlank(t *testing.T) {
	c := NewChecker([]string{"a", " ", "b"}, nil)
	if c.Len() != 2 {
		t.Fatalf("expected 2 contacts, got %d", c.Len())
	}
}
