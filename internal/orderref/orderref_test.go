package orderref_test

import (
	"testing"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/orderref"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain with hyphen", "OS-01115463", "OS-01115463", true},
		{"parenthesized", "(OS-01115463)", "OS-01115463", true},
		{"no separator", "OS01115463", "OS-01115463", true},
		{"space separator", "OS 01115463", "OS-01115463", true},
		{"space between O and S", "O S-01115463", "OS-01115463", true},
		{"lowercase", "os-01115463", "OS-01115463", true},
		{"full-width everything", "（ｏｓ－０１１１５４６３）", "OS-01115463", true},
		{"full-width digits only", "OS-０１１１５４６３", "OS-01115463", true},
		{"en dash", "OS–123", "OS-123", true},
		{"em dash", "OS—123", "OS-123", true},
		{"minus sign", "OS−123", "OS-123", true},
		{"katakana prolonged mark", "OSー123", "OS-123", true},
		{"embedded in sentence", "備考: OS-777 までに発送", "OS-777", true},
		{"digits kept verbatim", "OS-007", "OS-007", true},
		{"no token", "千葉県 白井市中 149-1MT2F バース16", "", false},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"os inside longer word", "BOSS-123", "", false},
		{"trailing letters break boundary", "OS123X", "", false},
		{"separator without digits", "OS--", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := orderref.Extract(tt.in)
			if ok != tt.ok {
				t.Fatalf("Extract(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtract_FirstOccurrenceWins(t *testing.T) {
	got, ok := orderref.Extract("OS-111 then OS-222")
	if !ok || got != "OS-111" {
		t.Fatalf("got %q (ok=%v), want OS-111", got, ok)
	}
}

func TestFromCandidates(t *testing.T) {
	got, ok := orderref.FromCandidates("", "住所", "OS 01115463")
	if !ok {
		t.Fatal("expected a match")
	}
	if got != "OS-01115463" {
		t.Errorf("got %q, want OS-01115463", got)
	}
}

func TestFromCandidates_OrderPreserved(t *testing.T) {
	got, ok := orderref.FromCandidates("OS-1", "OS-2")
	if !ok || got != "OS-1" {
		t.Fatalf("got %q (ok=%v), want OS-1", got, ok)
	}
}

func TestFromCandidates_NoMatch(t *testing.T) {
	if got, ok := orderref.FromCandidates("", "なし"); ok {
		t.Fatalf("expected no match, got %q", got)
	}
}
