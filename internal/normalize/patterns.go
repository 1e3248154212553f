// Package normalize cleans raw run-sheet fragments into canonical job
// fields: customer names, activities, UK postcodes and addresses.
package normalize

import (
	"regexp"
	"strings"
)

// patterns is the read-only table of compiled expressions shared by all
// normalizer calls. Built once at init; never mutated.
var patterns = struct {
	jobNumber     *regexp.Regexp
	jobNumberLead *regexp.Regexp
	postcode      *regexp.Regexp
	storeRef      *regexp.Regexp
	leadingIndex  *regexp.Regexp
	trailingJunk  *regexp.Regexp
	multiSpace    *regexp.Regexp
	phone         *regexp.Regexp
	contactLead   *regexp.Regexp
	honorific     *regexp.Regexp
	instruction   *regexp.Regexp
	signature     *regexp.Regexp
	noInvoice     *regexp.Regexp
}{
	// Job numbers are 6-8 digit tokens at a line/row boundary.
	jobNumber:     regexp.MustCompile(`^\d{6,8}$`),
	jobNumberLead: regexp.MustCompile(`^(\d{6,8})\b\s*`),

	// UK postcode grammar: outward code (A9, A99, AA9, AA99, A9A, AA9A)
	// followed by inward code (9AA), with or without the internal space.
	postcode: regexp.MustCompile(`\b([A-Z]{1,2}[0-9][0-9A-Z]?) ?([0-9][A-Z]{2})\b`),

	// Store/reference codes like "16661UK" embedded in customer or address text.
	storeRef: regexp.MustCompile(`\b\d{3,6}UK\b`),

	// Leading numeric index tokens (row numbers), distinct from job numbers.
	leadingIndex: regexp.MustCompile(`^\d{1,3}[.)]?\s+`),

	trailingJunk: regexp.MustCompile(`[^\w)]+$`),
	multiSpace:   regexp.MustCompile(`\s{2,}`),

	phone:       regexp.MustCompile(`^[\d\s()+-]{7,}$`),
	contactLead: regexp.MustCompile(`^(CONTACT|ATTN|FAO|TEL|PHONE|MOB|MOBILE)\b`),
	honorific:   regexp.MustCompile(`^(MR|MRS|MS|MISS|DR)\.?\s+[A-Z]`),

	instruction: regexp.MustCompile(`^(INSTRUCTIONS?|NOTES?|SPECIAL INSTRUCTIONS?|ENGINEER NOTES?|PLEASE\b|DO NOT\b)`),
	signature:   regexp.MustCompile(`CUSTOMER\s+(SIGNATURE|PRINT)`),
	noInvoice:   regexp.MustCompile(`\bDO NOT INVOICE\b`),
}

// IsJobNumber reports whether tok is a bare job-number token.
func IsJobNumber(tok string) bool {
	return patterns.jobNumber.MatchString(tok)
}

// SplitJobNumber splits a leading job-number token off a line. The second
// return is the remainder; ok is false when the line does not start with a
// job number.
func SplitJobNumber(line string) (number, rest string, ok bool) {
	m := patterns.jobNumberLead.FindStringSubmatchIndex(line)
	if m == nil {
		return "", line, false
	}
	return line[m[2]:m[3]], line[m[1]:], true
}

// CutStoreRef splits a line at the first store/reference code (e.g.
// "16661UK"). The code itself is dropped; found is false when the line
// carries no code, in which case before holds the whole line.
func CutStoreRef(line string) (before, after string, found bool) {
	loc := patterns.storeRef.FindStringIndex(strings.ToUpper(line))
	if loc == nil {
		return strings.TrimSpace(line), "", false
	}
	return strings.TrimSpace(line[:loc[0]]), strings.TrimSpace(line[loc[1]:]), true
}
