// Package segment groups extracted content units into per-job buffers using
// start and stop markers.
package segment

import (
	"strings"

	"github.com/fieldserve/runsheet-cli/internal/model"
	"github.com/fieldserve/runsheet-cli/internal/normalize"
)

// Segment is the buffered content for one job: everything between its
// start marker and the next start or section-end marker.
type Segment struct {
	JobNumber string
	Lines     []string // address-eligible content, in document order
	Notes     []string // content after an instruction marker, never address
	Start     int      // index of the start unit in the arena
}

// Split scans the ordered unit arena and cuts it into per-job segments.
// A start marker is a unit that is a bare job-number token or begins with
// one. "Customer Signature"/"Customer Print" units end the current section.
// An instruction marker diverts subsequent units into Notes so free text
// never pollutes the address field.
//
// Two start markers on adjacent units (malformed header): the first keeps
// the following content; the second becomes an empty segment for the
// validator to discard.
func Split(units []model.ContentUnit) []Segment {
	var (
		out     []Segment
		cur     *Segment
		inNotes bool
	)

	flush := func() {
		if cur != nil {
			out = append(out, *cur)
			cur = nil
		}
		inNotes = false
	}

	for i := 0; i < len(units); i++ {
		text := strings.TrimSpace(units[i].Text)
		if text == "" {
			continue
		}

		number, rest, started := startMarker(text)
		if started {
			if cur != nil && len(cur.Lines) == 0 && len(cur.Notes) == 0 && i == cur.Start+1 {
				// Malformed header: keep the first job, emit this one empty.
				out = append(out, Segment{JobNumber: number, Start: i})
				continue
			}
			flush()
			cur = &Segment{JobNumber: number, Start: i}
			if rest != "" {
				cur.Lines = append(cur.Lines, rest)
			}
			continue
		}

		if cur == nil {
			continue // preamble before the first job
		}

		if normalize.IsSectionEnd(text) {
			flush()
			continue
		}
		if normalize.IsInstructionMarker(text) {
			inNotes = true
			cur.Notes = append(cur.Notes, text)
			continue
		}

		if inNotes {
			cur.Notes = append(cur.Notes, text)
		} else {
			cur.Lines = append(cur.Lines, text)
		}
	}

	flush()
	return out
}

// startMarker reports whether a unit opens a new job. A bare job-number
// cell starts a job with no inline content; a line led by a job number
// starts one with the remainder as its first content line.
func startMarker(text string) (number, rest string, ok bool) {
	if normalize.IsJobNumber(text) {
		return text, "", true
	}
	return normalize.SplitJobNumber(text)
}
