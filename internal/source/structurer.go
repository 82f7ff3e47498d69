package source

import (
	"context"

	"github.com/kpauljoseph/ankiforge/pkg/logger"
	"github.com/kpauljoseph/ankiforge/pkg/models"
)

// Structurer turns an uploaded document into a ParsedSource. It never fails:
// content that does not parse as its extension claims degrades to plain text.
type Structurer struct {
	pdf    PDFExtractor
	logger *logger.Logger
}

type Option func(*Structurer)

func WithPDFExtractor(extractor PDFExtractor) Option {
	return func(s *Structurer) {
		s.pdf = extractor
	}
}

func NewStructurer(log *logger.Logger, opts ...Option) *Structurer {
	if log == nil {
		log = logger.Nop()
	}
	s := &Structurer{logger: log}
	for _, opt := range opts {
		opt(s)
	}
	if s.pdf == nil {
		s.pdf = NewChainExtractor(log)
	}
	return s
}

func (s *Structurer) Parse(ctx context.Context, fileName string, data []byte) models.ParsedSource {
	format := DetectFormat(fileName)
	s.logger.Debug("Structuring %s as %s (%d bytes)", fileName, format, len(data))

	switch {
	case isSpreadsheet(fileName):
		parsed, err := ParseSpreadsheet(data)
		if err != nil {
			s.logger.Info("Could not read spreadsheet %s, using raw content: %v", fileName, err)
			return plainText(string(data))
		}
		return parsed

	case format == models.FormatPDF:
		return s.parsePDF(ctx, fileName, data)
	}

	return s.ParseText(format, string(data))
}

// ParseText structures already-decoded text content of the given format.
func (s *Structurer) ParseText(format models.Format, content string) models.ParsedSource {
	switch format {
	case models.FormatCSV:
		headers, rows, err := ParseCSV(content)
		if err != nil {
			s.logger.Info("Could not parse CSV, using raw content: %v", err)
			return plainText(content)
		}
		return models.ParsedSource{Format: models.FormatCSV, Content: content, Headers: headers, Rows: rows}

	case models.FormatJSON:
		items, err := ParseJSON(content)
		if err != nil {
			s.logger.Info("Could not parse JSON, using raw content: %v", err)
			return plainText(content)
		}
		return models.ParsedSource{Format: models.FormatJSON, Content: content, Items: items}

	case models.FormatMarkdown:
		return models.ParsedSource{Format: models.FormatMarkdown, Content: content, Sections: ParseMarkdown(content)}

	case models.FormatPDF:
		return models.ParsedSource{Format: models.FormatPDF, Content: content}
	}

	return plainText(content)
}

func (s *Structurer) parsePDF(ctx context.Context, fileName string, data []byte) models.ParsedSource {
	if info, err := InspectPDF(data); err != nil {
		s.logger.Debug("PDF inspection failed for %s: %v", fileName, err)
	} else {
		s.logger.Debug("PDF %s has %d pages (first page %.2f x %.2f)", fileName, info.Pages, info.Width, info.Height)
	}

	text, err := s.pdf.Extract(ctx, data)
	if err != nil {
		s.logger.Info("Could not extract text from %s: %v", fileName, err)
		return plainText(PDFFailureMessage)
	}
	return models.ParsedSource{Format: models.FormatPDF, Content: text}
}

func plainText(content string) models.ParsedSource {
	return models.ParsedSource{Format: models.FormatText, Content: content}
}
