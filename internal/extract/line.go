package extract

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/fieldserve/runsheet-cli/internal/model"
)

// LineExtractor emits one content unit per non-blank text line. The
// fallback strategy when table structure is unreliable.
type LineExtractor struct {
	pdf *PdfToText
}

func (e *LineExtractor) Strategy() model.Strategy { return model.StrategyLine }

func (e *LineExtractor) Extract(ctx context.Context, file model.RunSheetFile) ([]model.ContentUnit, error) {
	if isSpreadsheet(file.FilePath) {
		return readSheetLines(file.FilePath)
	}

	text, err := e.pdf.Run(ctx, file.FilePath)
	if err != nil {
		return nil, err
	}
	return SplitLines(text), nil
}

// SplitLines converts extracted text into line units tagged with page/row.
func SplitLines(text string) []model.ContentUnit {
	var units []model.ContentUnit

	for page, pageText := range strings.Split(text, "\f") {
		for row, line := range strings.Split(pageText, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			units = append(units, model.ContentUnit{Text: line, Page: page, Row: row})
		}
	}
	return units
}

// readSheetLines joins each spreadsheet row into a single space-separated
// line unit.
func readSheetLines(path string) ([]model.ContentUnit, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("extract: xlsx %s has no sheets", path)
	}

	var units []model.ContentUnit
	for row, r := range f.Sheets[0].Rows {
		var cells []string
		for _, c := range r.Cells {
			if text := strings.TrimSpace(c.String()); text != "" {
				cells = append(cells, text)
			}
		}
		if len(cells) == 0 {
			continue
		}
		units = append(units, model.ContentUnit{Text: strings.Join(cells, " "), Row: row})
	}
	return units, nil
}
