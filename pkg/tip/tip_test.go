package tip

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	if _, err := New("a", "b", 1_000, "gm", "sig"); err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	invalid := map[string]func() error{
		"self tip":      func() error { _, err := New("a", "a", 1, "", ""); return err },
		"zero amount":   func() error { _, err := New("a", "b", 0, "", ""); return err },
		"missing from":  func() error { _, err := New("", "b", 1, "", ""); return err },
		"long message":  func() error { _, err := New("a", "b", 1, string(make([]byte, 300)), ""); return err },
		"negative tips": func() error { _, err := New("a", "b", -5, "", ""); return err },
	}
	for name, fn := range invalid {
		t.Run(name, func(t *testing.T) {
			if err := fn(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}
