package registry

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fieldserve/runsheet-cli/internal/model"
	"github.com/fieldserve/runsheet-cli/internal/normalize"
	"github.com/fieldserve/runsheet-cli/internal/segment"
)

// BuildRecord normalizes one job segment into a candidate record. When a
// source rule is supplied its overrides apply; any override failure (error
// or panic) degrades this single job to the generic normalizers with a
// warning, leaving the rest of the document untouched.
func BuildRecord(seg segment.Segment, file model.RunSheetFile, rule *SourceRule) model.JobRecord {
	if rule != nil {
		rec, err := build(seg, file, &rule.Overrides)
		if err == nil {
			return rec
		}
		zap.L().Warn("registry: override failed, degrading job to generic normalizers",
			zap.String("rule", rule.Name),
			zap.String("job_number", seg.JobNumber),
			zap.Error(err),
		)
		rec, _ = build(seg, file, nil)
		rec.Warnings = append(rec.Warnings,
			fmt.Sprintf("source rule %q failed (%v); generic normalizers used", rule.Name, err))
		return rec
	}

	rec, _ := build(seg, file, nil)
	return rec
}

// build assembles the record. With ov == nil only the generic normalizers
// run and err is always nil.
func build(seg segment.Segment, file model.RunSheetFile, ov *Overrides) (rec model.JobRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("registry: override panic: %v", r)
		}
	}()

	rec = model.JobRecord{
		JobNumber: seg.JobNumber,
		Date:      file.Date,
	}

	var (
		customerRaw string
		addrLines   []string
	)

	for i, line := range seg.Lines {
		if rec.Activity == "" {
			line, rec.Activity, err = recognizeActivity(line, ov)
			if err != nil {
				return rec, err
			}
		}
		if rec.Postcode == "" {
			if pc, rest, ok := normalize.CutPostcode(line); ok {
				rec.Postcode, line = pc, rest
			}
		}

		if i == 0 {
			// A store/reference code on the header line separates the
			// customer name from trailing address text.
			before, after, found := normalize.CutStoreRef(line)
			customerRaw = before
			if found && after != "" {
				addrLines = append(addrLines, after)
			}
			continue
		}
		if line != "" {
			addrLines = append(addrLines, line)
		}
	}

	if ov != nil && ov.Customer != nil {
		rec.Customer, err = ov.Customer(customerRaw)
		if err != nil {
			return rec, eris.Wrap(err, "registry: customer override")
		}
	} else {
		rec.Customer = normalize.Customer(customerRaw)
	}

	if ov != nil && ov.Postcode != nil && rec.Postcode == "" {
		pc, perr := ov.Postcode(strings.Join(seg.Lines, " "))
		if perr != nil {
			return rec, eris.Wrap(perr, "registry: postcode override")
		}
		if canon, ok := normalize.Postcode(pc); ok {
			rec.Postcode = canon
		}
	}

	if ov != nil && ov.Address != nil {
		rec.Address, err = ov.Address(addrLines)
		if err != nil {
			return rec, eris.Wrap(err, "registry: address override")
		}
	} else {
		rec.Address = normalize.Address(addrLines)
	}

	return rec, nil
}

// recognizeActivity finds an activity mention in the line and returns the
// line with the mention removed. An override, when present, sees the raw
// line first; if it maps the line and the generic recognizer sees nothing,
// the whole line is treated as an activity cell and dropped.
func recognizeActivity(line string, ov *Overrides) (rest, activity string, err error) {
	if ov != nil && ov.Activity != nil {
		a, aerr := ov.Activity(line)
		if aerr != nil {
			return line, "", eris.Wrap(aerr, "registry: activity override")
		}
		if a != "" {
			if _, generic := normalize.FindActivity(line); generic != line {
				return generic, a, nil
			}
			return "", a, nil
		}
		return line, "", nil
	}

	a, rest := normalize.FindActivity(line)
	return rest, a, nil
}
