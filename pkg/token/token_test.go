package token

import (
	"errors"
	"testing"
)

func TestNew_NamingRules(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{
			name:   "valid",
			params: Params{CreatorID: "c1", MintAddress: "mint", Name: "MyCoinGOON", Symbol: "GOON", Supply: 1000},
		},
		{
			name:    "name without suffix",
			params:  Params{CreatorID: "c1", MintAddress: "mint", Name: "MyCoin", Symbol: "GOON", Supply: 1000},
			wantErr: true,
		},
		{
			name:    "lowercase suffix",
			params:  Params{CreatorID: "c1", MintAddress: "mint", Name: "MyCoingoon", Symbol: "GOON", Supply: 1000},
			wantErr: true,
		},
		{
			name:    "wrong symbol",
			params:  Params{CreatorID: "c1", MintAddress: "mint", Name: "MyCoinGOON", Symbol: "MCG", Supply: 1000},
			wantErr: true,
		},
		{
			name:    "zero supply",
			params:  Params{CreatorID: "c1", MintAddress: "mint", Name: "MyCoinGOON", Symbol: "GOON"},
			wantErr: true,
		},
		{
			name:    "missing mint",
			params:  Params{CreatorID: "c1", Name: "MyCoinGOON", Symbol: "GOON", Supply: 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := New(tt.params)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("expected ErrInvalid, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}
			if tok.ID == "" || tok.CreatedAt.IsZero() {
				t.Fatalf("expected id and created_at to be assigned, got %+v", tok)
			}
		})
	}
}

func TestValidate_CatchesMutation(t *testing.T) {
	tok, err := New(Params{CreatorID: "c1", MintAddress: "mint", Name: "XGOON", Symbol: "GOON", Supply: 1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	tok.Name = "X"
	if err := tok.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid after mutation, got %v", err)
	}
}
