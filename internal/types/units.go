package types

import "golang.org/x/text/unicode/norm"

// Units are the accepted ingredient unit tokens, in display order.
var Units = []string{
	"g",
	"dag",
	"kg",
	"ml",
	"l",
	"łyżeczka",
	"łyżka",
	"szklanka",
	"pęczek",
	"garść",
	"sztuka",
	"plaster",
	"szczypta",
	"ząbek",
}

var unitSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Units))
	for _, u := range Units {
		set[norm.NFC.String(u)] = struct{}{}
	}
	return set
}()

// NormalizeUnit returns the NFC form of unit, so decomposed input such as
// "z" + combining ogonek matches the stored token.
func NormalizeUnit(unit string) string {
	return norm.NFC.String(unit)
}

// IsUnit reports whether unit, after normalization, is an accepted token.
func IsUnit(unit string) bool {
	_, ok := unitSet[NormalizeUnit(unit)]
	return ok
}

type UnitsResponse struct {
	Units []string `json:"units"`
}
