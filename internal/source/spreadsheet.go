package source

import (
	"encoding/csv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/kpauljoseph/ankiforge/pkg/models"
)

// ParseSpreadsheet reads the first sheet of an xlsx workbook. The first row
// is the header; the rest go through the same typing rules as CSV rows. The
// returned Content is the sheet rendered as CSV.
func ParseSpreadsheet(data []byte) (models.ParsedSource, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return models.ParsedSource{}, eris.Wrap(err, "xlsx: open workbook")
	}
	if len(file.Sheets) == 0 {
		return models.ParsedSource{}, eris.New("xlsx: workbook has no sheets")
	}

	sheet := file.Sheets[0]
	if len(sheet.Rows) == 0 {
		return models.ParsedSource{}, ErrNoHeader
	}

	headers := trimAll(rowToStrings(sheet.Rows[0]))
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}
	if len(headers) == 0 {
		return models.ParsedSource{}, ErrNoHeader
	}

	records := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		if row == nil {
			continue
		}
		records = append(records, fitToWidth(rowToStrings(row), len(headers)))
	}

	content, err := renderCSV(headers, records)
	if err != nil {
		return models.ParsedSource{}, err
	}

	return models.ParsedSource{
		Format:  models.FormatCSV,
		Content: content,
		Headers: headers,
		Rows:    buildRows(headers, records),
	}, nil
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell == nil {
			continue
		}
		cells[j] = cell.String()
	}
	return cells
}

// fitToWidth pads short rows, since sheets omit trailing empty cells, and
// trims trailing empty cells past the header. Rows with data beyond the
// header keep their length so buildRows drops them.
func fitToWidth(cells []string, width int) []string {
	for len(cells) > width && strings.TrimSpace(cells[len(cells)-1]) == "" {
		cells = cells[:len(cells)-1]
	}
	for len(cells) < width {
		cells = append(cells, "")
	}
	return cells
}

func renderCSV(headers []string, records [][]string) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(headers); err != nil {
		return "", eris.Wrap(err, "xlsx: render header")
	}
	if err := w.WriteAll(records); err != nil {
		return "", eris.Wrap(err, "xlsx: render rows")
	}
	return b.String(), nil
}
