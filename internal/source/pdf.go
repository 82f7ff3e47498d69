package source

import (
	"bytes"
	"context"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/pkg/logger"
)

const PDFFailureMessage = "Failed to extract text from PDF. The file may be scanned, encrypted or damaged."

const pageSeparator = "\n\n"

type PDFExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// PDFInfo is what pdfcpu reports about a document before extraction.
type PDFInfo struct {
	Pages  int
	Width  float64
	Height float64
}

// InspectPDF validates the document and reads its page dimensions. Width and
// Height are those of the first page.
func InspectPDF(data []byte) (PDFInfo, error) {
	dims, err := api.PageDims(bytes.NewReader(data), nil)
	if err != nil {
		return PDFInfo{}, eris.Wrap(err, "pdf: read page dimensions")
	}

	info := PDFInfo{Pages: len(dims)}
	if len(dims) > 0 {
		info.Width = dims[0].Width
		info.Height = dims[0].Height
	}
	return info, nil
}

// FitzExtractor extracts page text with MuPDF.
type FitzExtractor struct{}

func (FitzExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", eris.Wrap(err, "pdf: open document")
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	// Page numbers are zero indexed in the fitz package.
	for pageNum := 0; pageNum < doc.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := doc.Text(pageNum)
		if err != nil {
			return "", eris.Wrapf(err, "pdf: extract text from page %d", pageNum)
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return strings.TrimSpace(strings.Join(pages, pageSeparator)), nil
}

// PlainExtractor is a pure Go extractor. Pages it cannot decode are skipped.
type PlainExtractor struct{}

func (PlainExtractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	// The reader panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = eris.Errorf("pdf: plain extraction panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", eris.Wrap(err, "pdf: open document")
	}

	var pages []string
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, strings.TrimSpace(content))
	}

	return strings.TrimSpace(strings.Join(pages, pageSeparator)), nil
}

// ChainExtractor tries each extractor in turn until one returns text. If an
// extractor succeeds with no text and nothing later does better, the empty
// result is returned without error.
type ChainExtractor struct {
	extractors []PDFExtractor
	logger     *logger.Logger
}

func NewChainExtractor(log *logger.Logger, extractors ...PDFExtractor) *ChainExtractor {
	if log == nil {
		log = logger.Nop()
	}
	if len(extractors) == 0 {
		extractors = []PDFExtractor{FitzExtractor{}, PlainExtractor{}}
	}
	return &ChainExtractor{extractors: extractors, logger: log}
}

func (c *ChainExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	var (
		lastErr   error
		succeeded bool
	)
	for i, extractor := range c.extractors {
		text, err := extractor.Extract(ctx, data)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			c.logger.Debug("PDF extractor %d failed: %v", i, err)
			lastErr = err
			continue
		}
		if text != "" {
			return text, nil
		}
		c.logger.Debug("PDF extractor %d found no text", i)
		succeeded = true
	}

	if succeeded {
		return "", nil
	}
	if lastErr == nil {
		lastErr = eris.New("pdf: no extractors configured")
	}
	return "", lastErr
}
