package normalize

import "strings"

// Postcode extracts the first UK postcode found in a fragment and returns
// it in canonical form: uppercase with a single internal space (e.g.
// "M11AA" and "m1 1aa" both yield "M1 1AA"). ok is false when no postcode
// is present.
func Postcode(raw string) (pc string, ok bool) {
	m := patterns.postcode.FindStringSubmatch(strings.ToUpper(raw))
	if m == nil {
		return "", false
	}
	return m[1] + " " + m[2], true
}

// CutPostcode extracts the first UK postcode from a line and also returns
// the line with the match removed, for address assembly.
func CutPostcode(line string) (pc, rest string, ok bool) {
	upper := strings.ToUpper(line)
	loc := patterns.postcode.FindStringSubmatchIndex(upper)
	if loc == nil {
		return "", line, false
	}
	pc = upper[loc[2]:loc[3]] + " " + upper[loc[4]:loc[5]]
	return pc, trimCut(line, loc[0], loc[1]), true
}
