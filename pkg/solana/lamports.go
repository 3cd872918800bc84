package solana

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL int64 = 1_000_000_000

const solDecimals = 9

// LamportsToSOL converts lamports to an exact SOL amount.
func LamportsToSOL(lamports int64) decimal.Decimal {
	return decimal.New(lamports, -solDecimals)
}

// FormatSOL renders lamports as a SOL string without trailing zeros.
func FormatSOL(lamports int64) string {
	return LamportsToSOL(lamports).String()
}

// ParseSOL converts a SOL amount such as "0.25" to lamports. Amounts with
// more than nine decimal places are rejected.
func ParseSOL(sol string) (int64, error) {
	d, err := decimal.NewFromString(sol)
	if err != nil {
		return 0, fmt.Errorf("invalid SOL amount %q: %w", sol, err)
	}
	lamports := d.Shift(solDecimals)
	if !lamports.IsInteger() {
		return 0, fmt.Errorf("invalid SOL amount %q: more than %d decimal places", sol, solDecimals)
	}
	if lamports.IsNegative() || lamports.GreaterThan(decimal.NewFromInt(1<<62)) {
		return 0, fmt.Errorf("invalid SOL amount %q: out of range", sol)
	}
	return lamports.IntPart(), nil
}
