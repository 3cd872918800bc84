package post

import (
	"errors"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	p, err := New(Draft{CreatorID: "c1", MediaURL: "https://cdn/x.jpg", Tags: []string{" Cosplay ", "cosplay", ""}})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if p.Visibility != VisibilityPublic {
		t.Fatalf("expected visibility %q, got %q", VisibilityPublic, p.Visibility)
	}
	if p.Status != StatusPublished {
		t.Fatalf("expected status %q, got %q", StatusPublished, p.Status)
	}
	if len(p.Tags) != 1 || p.Tags[0] != "cosplay" {
		t.Fatalf("expected normalized tags [cosplay], got %v", p.Tags)
	}
	if !p.HasTag("COSPLAY") {
		t.Fatal("expected HasTag to ignore case")
	}
}

func TestNew_Invalid(t *testing.T) {
	drafts := map[string]Draft{
		"missing creator":    {MediaURL: "m"},
		"missing media":      {CreatorID: "c1"},
		"negative price":     {CreatorID: "c1", MediaURL: "m", PriceLamports: -1},
		"unknown visibility": {CreatorID: "c1", MediaURL: "m", Visibility: "friends"},
		"unknown status":     {CreatorID: "c1", MediaURL: "m", Status: "deleted"},
	}
	for name, d := range drafts {
		t.Run(name, func(t *testing.T) {
			if _, err := New(d); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestRedacted(t *testing.T) {
	p, err := New(Draft{CreatorID: "c1", MediaURL: "https://cdn/x.jpg", PriceLamports: 500_000_000, Tags: []string{"a"}})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if !p.IsPriced() {
		t.Fatal("expected priced post")
	}

	r := p.Redacted()
	if r.MediaURL != "" {
		t.Fatalf("expected media url to be removed, got %q", r.MediaURL)
	}
	if p.MediaURL == "" {
		t.Fatal("Redacted must not modify the original")
	}
	r.Tags[0] = "changed"
	if p.Tags[0] != "a" {
		t.Fatal("Redacted must copy tags")
	}
}

func TestPatch_Apply(t *testing.T) {
	p, err := New(Draft{CreatorID: "c1", MediaURL: "m"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	archived := StatusArchived
	caption := "new caption"
	if err := (Patch{Status: &archived, Caption: &caption}).Apply(p); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}
	if p.Status != StatusArchived || p.Caption != caption {
		t.Fatalf("patch not applied: %+v", p)
	}

	bad := Status("gone")
	if err := (Patch{Status: &bad}).Apply(p); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestNewPurchase(t *testing.T) {
	if _, err := NewPurchase("", "p1", 1, ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	pur, err := NewPurchase("w1", "p1", 500_000_000, "sig")
	if err != nil {
		t.Fatalf("NewPurchase() failed: %v", err)
	}
	if pur.UserID != "w1" || pur.PostID != "p1" {
		t.Fatalf("unexpected purchase %+v", pur)
	}
}
