package declarations

import "strings"

// Jurisdiction is a short regional code from the registry's fixed set.
type Jurisdiction string

// String returns the string representation of a Jurisdiction.
func (j Jurisdiction) String() string {
	return string(j)
}

// The registry's jurisdictions.
const (
	JurisdictionNSW Jurisdiction = "NSW"
	JurisdictionVIC Jurisdiction = "VIC"
	JurisdictionQLD Jurisdiction = "QLD"
	JurisdictionWA  Jurisdiction = "WA"
	JurisdictionSA  Jurisdiction = "SA"
	JurisdictionTAS Jurisdiction = "TAS"
	JurisdictionACT Jurisdiction = "ACT"
	JurisdictionNT  Jurisdiction = "NT"
)

// jurisdictionAliases covers the long-form names some collection runs emit
// alongside the short codes.
var jurisdictionAliases = map[string]Jurisdiction{
	"NSW":                          JurisdictionNSW,
	"NEW SOUTH WALES":              JurisdictionNSW,
	"VIC":                          JurisdictionVIC,
	"VICTORIA":                     JurisdictionVIC,
	"QLD":                          JurisdictionQLD,
	"QUEENSLAND":                   JurisdictionQLD,
	"WA":                           JurisdictionWA,
	"WESTERN AUSTRALIA":            JurisdictionWA,
	"SA":                           JurisdictionSA,
	"SOUTH AUSTRALIA":              JurisdictionSA,
	"TAS":                          JurisdictionTAS,
	"TASMANIA":                     JurisdictionTAS,
	"ACT":                          JurisdictionACT,
	"AUSTRALIAN CAPITAL TERRITORY": JurisdictionACT,
	"NT":                           JurisdictionNT,
	"NORTHERN TERRITORY":           JurisdictionNT,
}

// ParseJurisdiction maps raw jurisdiction text to a canonical code. Unknown
// text is preserved verbatim (upper-cased) rather than dropped so that a new
// code appearing in the registry surfaces as a field mismatch, not silence.
func ParseJurisdiction(raw string) Jurisdiction {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if j, ok := jurisdictionAliases[key]; ok {
		return j
	}
	return Jurisdiction(key)
}

// Known reports whether j is one of the registry's fixed codes.
func (j Jurisdiction) Known() bool {
	_, ok := jurisdictionAliases[string(j)]
	return ok
}

// Jurisdictions returns the registry's fixed codes in their conventional
// display order.
func Jurisdictions() []Jurisdiction {
	return []Jurisdiction{
		JurisdictionNSW,
		JurisdictionVIC,
		JurisdictionQLD,
		JurisdictionWA,
		JurisdictionSA,
		JurisdictionTAS,
		JurisdictionACT,
		JurisdictionNT,
	}
}
