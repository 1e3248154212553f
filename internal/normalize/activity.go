package normalize

import (
	"strings"

	"github.com/fieldserve/runsheet-cli/internal/model"
)

// partialTerms maps partial activity mentions to their canonical label.
// Evaluated in order so more specific terms win. The table is closed: a
// fragment outside it never produces an activity.
var partialTerms = []struct {
	term      string
	canonical string
}{
	{"TECH", "TECH EXCHANGE"},
	{"EXCHANGE", "TECH EXCHANGE"},
	{"REPAIR", "REPAIR WITH PARTS"},
	{"MAINT", "MAINTENANCE"},
	{"INSPECT", "INSPECTION"},
	{"CONFIG", "CONFIGURATION"},
	{"CONSULT", "CONSULTATION"},
	{"TRAIN", "TRAINING"},
	{"SURVEY", "SURVEY"},
	{"UPGRADE", "UPGRADE"},
}

// Activity recognizes a canonical activity in a fragment. Exact vocabulary
// matches win; otherwise the partial-term table applies. No match yields "":
// an activity is never guessed beyond the defined mapping.
func Activity(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	for _, a := range model.CanonicalActivities {
		if s == a {
			return a
		}
	}
	for _, p := range partialTerms {
		if containsWord(s, p.term) {
			return p.canonical
		}
	}
	return ""
}

// FindActivity locates a canonical activity mention inside a line and
// returns the canonical label plus the line with the mention removed.
// Full canonical phrases are preferred over partial terms.
func FindActivity(line string) (activity, rest string) {
	upper := strings.ToUpper(line)

	for _, a := range model.CanonicalActivities {
		if idx := indexWord(upper, a); idx >= 0 {
			return a, trimCut(line, idx, idx+len(a))
		}
	}
	for _, p := range partialTerms {
		if idx := indexWord(upper, p.term); idx >= 0 {
			return p.canonical, trimCut(line, idx, idx+len(p.term))
		}
	}
	return "", line
}

// trimCut removes s[from:to] and tidies the seam.
func trimCut(s string, from, to int) string {
	out := strings.TrimSpace(s[:from]) + " " + strings.TrimSpace(s[to:])
	return strings.TrimSpace(patterns.multiSpace.ReplaceAllString(out, " "))
}

// containsWord reports whether text contains needle bounded by non-word
// characters or string edges.
func containsWord(text, needle string) bool {
	return indexWord(text, needle) >= 0
}

// indexWord returns the index of needle in text when bounded by non-word
// characters or string edges, else -1.
func indexWord(text, needle string) int {
	if needle == "" || text == "" {
		return -1
	}
	start := 0
	for {
		idx := strings.Index(text[start:], needle)
		if idx < 0 {
			return -1
		}
		abs := start + idx
		end := abs + len(needle)

		leftOK := abs == 0 || !isWordByte(text[abs-1])
		rightOK := end == len(text) || !isWordByte(text[end])
		if leftOK && rightOK {
			return abs
		}
		start = abs + 1
	}
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}
