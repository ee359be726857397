package trackmetal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit identifies the unit a metal weight is expressed in.
type Unit int

const (
	Gram Unit = iota
	TroyOz
	// CryptoCoin is the unit-less coin count of a crypto holding. It never
	// converts to or from a physical weight unit.
	CryptoCoin
)

// gramsPerTroyOz is the fixed conversion constant between the two physical
// weight units.
var gramsPerTroyOz = decimal.RequireFromString("31.1034768")

func (u Unit) String() string {
	switch u {
	case Gram:
		return "gram"
	case TroyOz:
		return "troyoz"
	case CryptoCoin:
		return "cryptocoin"
	default:
		return "unknown"
	}
}

// ParseUnit parses a string into a Unit. It accepts the short forms found in
// service export files ("g", "oz").
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(s) {
	case "g", "gram":
		return Gram, nil
	case "oz", "troyoz":
		return TroyOz, nil
	case "cryptocoin":
		return CryptoCoin, nil
	default:
		return 0, fmt.Errorf("unknown weight unit %q", s)
	}
}

// ConvertWeight converts a weight between units, round-tripping through
// grams. Crypto coin counts are not weights: any conversion that mixes
// CryptoCoin with a physical unit fails rather than silently equating them.
func ConvertWeight(w decimal.Decimal, from, to Unit) (decimal.Decimal, error) {
	if from == to {
		return w, nil
	}
	if from == CryptoCoin || to == CryptoCoin {
		return decimal.Decimal{}, fmt.Errorf("cannot convert weight from %s to %s", from, to)
	}
	grams := w
	if from == TroyOz {
		grams = w.Mul(gramsPerTroyOz)
	}
	if to == TroyOz {
		return grams.Div(gramsPerTroyOz), nil
	}
	return grams, nil
}

// Metal identifies what is being held: a precious metal or a crypto asset.
type Metal int

const (
	Gold Metal = iota
	Silver
	Platinum
	Palladium
	Crypto
)

func (m Metal) String() string {
	switch m {
	case Gold:
		return "gold"
	case Silver:
		return "silver"
	case Platinum:
		return "platinum"
	case Palladium:
		return "palladium"
	case Crypto:
		return "crypto"
	default:
		return "unknown"
	}
}

// ParseMetal parses a string into a Metal.
func ParseMetal(s string) (Metal, error) {
	switch strings.ToLower(s) {
	case "gold":
		return Gold, nil
	case "silver":
		return Silver, nil
	case "platinum":
		return Platinum, nil
	case "palladium", "paladium":
		return Palladium, nil
	case "crypto":
		return Crypto, nil
	default:
		return 0, fmt.Errorf("unknown metal type %q", s)
	}
}
