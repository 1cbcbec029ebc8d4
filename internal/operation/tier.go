// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package operation

import "fmt"

// Tier is the permission level an operation needs. Tiers are totally
// ordered: Basic < Elevated < Administrative.
type Tier int

const (
	Basic          Tier = iota // user-level operations only
	Elevated                   // needs sudo/admin privileges
	Administrative             // system-level changes
)

func (t Tier) String() string {
	switch t {
	case Basic:
		return "basic"
	case Elevated:
		return "elevated"
	case Administrative:
		return "administrative"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier converts a string to a Tier.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "basic":
		return Basic, nil
	case "elevated":
		return Elevated, nil
	case "administrative":
		return Administrative, nil
	default:
		return 0, fmt.Errorf("unknown permission tier: %q", s)
	}
}

// Valid reports whether t is one of the declared tiers.
func (t Tier) Valid() bool {
	return t >= Basic && t <= Administrative
}

// Exceeds reports whether t is strictly higher than other.
func (t Tier) Exceeds(other Tier) bool {
	return t > other
}

// Max returns the higher of two tiers.
func Max(a, b Tier) Tier {
	if a > b {
		return a
	}
	return b
}

func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid permission tier %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseRequest parses a tier as a caller asks for it: "auto" or the empty
// string mean the tier should be classified from argv.
func ParseRequest(s string) (tier Tier, auto bool, err error) {
	if s == "" || s == "auto" {
		return Basic, true, nil
	}
	tier, err = ParseTier(s)
	return tier, false, err
}
