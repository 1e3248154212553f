package normalize

import "strings"

// Address combines candidate address lines into a single comma-joined
// string. Lines classified as contact-only, instruction or bare reference
// codes are dropped; embedded store codes are stripped; duplicate adjacent
// fragments collapse to one.
func Address(lines []string) string {
	var parts []string

	for _, line := range lines {
		if Classify(line) != ClassAddress {
			continue
		}

		s := strings.ToUpper(strings.TrimSpace(line))
		s = patterns.storeRef.ReplaceAllString(s, "")
		s = patterns.noInvoice.ReplaceAllString(s, "")
		s = patterns.multiSpace.ReplaceAllString(s, " ")
		s = strings.TrimSpace(strings.Trim(s, ","))
		if s == "" {
			continue
		}

		if n := len(parts); n > 0 && parts[n-1] == s {
			continue
		}
		parts = append(parts, s)
	}

	return strings.Join(parts, ", ")
}
