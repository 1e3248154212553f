package normalize

import "strings"

// Customer strips known artifacts from a raw customer-name fragment:
// signature/print markers, "DO NOT INVOICE" banners, leading numeric index
// tokens, embedded store/reference codes and trailing non-word characters.
func Customer(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	s = patterns.signature.ReplaceAllString(s, "")
	s = patterns.noInvoice.ReplaceAllString(s, "")
	s = patterns.storeRef.ReplaceAllString(s, "")
	s = patterns.leadingIndex.ReplaceAllString(s, "")
	s = patterns.multiSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = patterns.trailingJunk.ReplaceAllString(s, "")

	return strings.TrimSpace(s)
}
