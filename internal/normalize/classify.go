package normalize

import "strings"

// LineClass categorizes a run-sheet line for address assembly.
type LineClass int

const (
	ClassAddress LineClass = iota // usable address content
	ClassContact                  // contact-name or phone line, never address
	ClassInstruction              // instruction/notes marker or content
	ClassSignature                // signature/print block marker
	ClassStoreRef                 // bare store/reference code
	ClassEmpty
)

// Classify assigns a line class used by the address combiner and the
// segmenter's section handling. Matching is case-insensitive.
func Classify(line string) LineClass {
	s := strings.ToUpper(strings.TrimSpace(line))
	switch {
	case s == "":
		return ClassEmpty
	case patterns.signature.MatchString(s):
		return ClassSignature
	case patterns.instruction.MatchString(s):
		return ClassInstruction
	case patterns.contactLead.MatchString(s), patterns.honorific.MatchString(s), patterns.phone.MatchString(s):
		return ClassContact
	case patterns.storeRef.MatchString(s) && len(patterns.storeRef.FindString(s)) == len(s):
		return ClassStoreRef
	}
	return ClassAddress
}

// IsSectionEnd reports whether a line terminates the per-job section
// (signature/print block).
func IsSectionEnd(line string) bool {
	return patterns.signature.MatchString(strings.ToUpper(line))
}

// IsInstructionMarker reports whether a line opens an instruction/notes
// block; address buffering stops at such a line.
func IsInstructionMarker(line string) bool {
	return patterns.instruction.MatchString(strings.ToUpper(strings.TrimSpace(line)))
}
