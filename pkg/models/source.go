package models

import (
	"bytes"
	"encoding/json"
)

type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// ParsedSource is the normalized form of an uploaded document. Which of the
// structured fields is populated depends on Format.
type ParsedSource struct {
	Format   Format            `json:"format"`
	Content  string            `json:"content"`
	Headers  []string          `json:"headers,omitempty"`
	Rows     []Row             `json:"rows,omitempty"`
	Items    []json.RawMessage `json:"items,omitempty"`
	Sections []Section         `json:"sections,omitempty"`
}

type Field struct {
	Key   string
	Value any
}

// Row is an ordered mapping from column name to a typed cell value.
type Row []Field

func (r Row) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON writes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type Section struct {
	Heading    string `json:"heading"`
	Subheading string `json:"subheading"`
	Content    string `json:"content"`
}
