package solana

import "math/rand/v2"

// VanitySuffix is the suffix every pooled mint address ends with.
const VanitySuffix = "goon"

// vanityPool holds pre-mined mint addresses. Assignment is random and not
// uniqueness-checked, so two launches may share an address.
var vanityPool = []string{
	"CASi45ub7Qe4ZE36UT5G6cU4ud8Fhhe4deS4F3cwgoon",
	"6KTAb8dLcukC7edhDQ7cn5d4gEYkbUrMWeWQLGsCgoon",
	"96dLaYyNoVKf58ZTBqNAYT3j5qcdsyuMNmPfYetWgoon",
	"4v6JXmj54omLidkuVKnRyjP2WPBg8Y4ErK9pGSSxgoon",
	"H6BVScJy9uUxcJnTPkyRFA6CAFjF1YveCHK1ATbQgoon",
	"C9mwZgikp4WzxrxktcSSSS7XhS4D5EVB8Nf471dAgoon",
	"5Qg25xEgRAhHPfQX88wYWXXL6A7pNpHXvmBa2EaQgoon",
	"6mb2qaLix6mwHaQBPrFbbrZNhFgtsqwDtGuSptFDgoon",
}

// MintSource hands out mint addresses for token launches.
type MintSource interface {
	NextMint() string
}

// VanityPool draws uniformly from the built-in vanity addresses.
type VanityPool struct{}

func (VanityPool) NextMint() string {
	return vanityPool[rand.IntN(len(vanityPool))]
}

// VanityAddresses returns a copy of the pool.
func VanityAddresses() []string {
	out := make([]string, len(vanityPool))
	copy(out, vanityPool)
	return out
}
