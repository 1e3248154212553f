package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/fieldserve/runsheet-cli/internal/model"
)

// columnGap splits a layout-preserved PDF line into cells: runs of two or
// more spaces mark column boundaries.
var columnGap = regexp.MustCompile(`\s{2,}`)

// TableExtractor emits one content unit per table cell. Spreadsheets are
// read cell by cell; PDFs go through pdftotext -layout with column
// splitting on space runs.
type TableExtractor struct {
	pdf *PdfToText
}

func (e *TableExtractor) Strategy() model.Strategy { return model.StrategyTable }

func (e *TableExtractor) Extract(ctx context.Context, file model.RunSheetFile) ([]model.ContentUnit, error) {
	if isSpreadsheet(file.FilePath) {
		return readSheetCells(file.FilePath)
	}

	text, err := e.pdf.Run(ctx, file.FilePath)
	if err != nil {
		return nil, err
	}
	return SplitColumns(text), nil
}

// SplitColumns converts layout-preserved text into cell units, one per
// column fragment, tagged with page/row/column.
func SplitColumns(text string) []model.ContentUnit {
	var units []model.ContentUnit

	for page, pageText := range strings.Split(text, "\f") {
		for row, line := range strings.Split(pageText, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			for col, cell := range columnGap.Split(strings.TrimSpace(line), -1) {
				cell = strings.TrimSpace(cell)
				if cell == "" {
					continue
				}
				units = append(units, model.ContentUnit{
					Text:      cell,
					Page:      page,
					Row:       row,
					Col:       col,
					FromTable: true,
				})
			}
		}
	}
	return units
}

// readSheetCells reads every non-empty cell of the first sheet in order.
func readSheetCells(path string) ([]model.ContentUnit, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("extract: xlsx %s has no sheets", path)
	}

	var units []model.ContentUnit
	for row, r := range f.Sheets[0].Rows {
		for col, c := range r.Cells {
			text := strings.TrimSpace(c.String())
			if text == "" {
				continue
			}
			units = append(units, model.ContentUnit{
				Text:      text,
				Row:       row,
				Col:       col,
				FromTable: true,
			})
		}
	}
	return units, nil
}
