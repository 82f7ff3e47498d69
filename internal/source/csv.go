package source

import (
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/pkg/models"
)

var (
	ErrNoHeader = eris.New("source: missing header row")

	integerPattern = regexp.MustCompile(`^[-+]?\d+$`)
	decimalPattern = regexp.MustCompile(`^[-+]?(\d+\.\d*|\.\d+|\d+)([eE][-+]?\d+)?$`)
)

// ParseCSV reads comma separated content with a header row. Rows whose field
// count differs from the header are dropped, as are blank lines.
func ParseCSV(content string) ([]string, []models.Row, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, ErrNoHeader
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "source: read csv header")
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "source: read csv row")
		}
		records = append(records, record)
	}

	headers := trimAll(header)
	return headers, buildRows(headers, records), nil
}

func buildRows(headers []string, records [][]string) []models.Row {
	rows := make([]models.Row, 0, len(records))
	for _, record := range records {
		if len(record) != len(headers) || isBlank(record) {
			continue
		}
		row := make(models.Row, len(headers))
		for i, header := range headers {
			row[i] = models.Field{Key: header, Value: InferValue(record[i])}
		}
		rows = append(rows, row)
	}
	return rows
}

// InferValue turns a cell into an int64, float64 or bool where the text is
// unambiguous, ignoring surrounding spaces. Anything else, including numbers
// with a leading zero such as "007", is returned exactly as written.
func InferValue(cell string) any {
	value := strings.TrimSpace(cell)
	if value == "" {
		return cell
	}

	if strings.EqualFold(value, "true") {
		return true
	}
	if strings.EqualFold(value, "false") {
		return false
	}

	if hasLeadingZero(value) {
		return cell
	}
	if integerPattern.MatchString(value) {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	if decimalPattern.MatchString(value) {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return cell
}

func hasLeadingZero(value string) bool {
	digits := strings.TrimLeft(value, "+-")
	return len(digits) > 1 && digits[0] == '0' && digits[1] >= '0' && digits[1] <= '9'
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
