package source

import (
	"path/filepath"
	"strings"

	"github.com/kpauljoseph/ankiforge/pkg/models"
)

const ExtensionXLSX = ".xlsx"

var extensionFormats = map[string]models.Format{
	".txt":        models.FormatText,
	".md":         models.FormatMarkdown,
	".markdown":   models.FormatMarkdown,
	".csv":        models.FormatCSV,
	".json":       models.FormatJSON,
	".pdf":        models.FormatPDF,
	ExtensionXLSX: models.FormatCSV,
}

// DetectFormat maps a file name to a source format by extension. Anything
// unrecognised is treated as plain text.
func DetectFormat(fileName string) models.Format {
	if format, ok := extensionFormats[strings.ToLower(filepath.Ext(fileName))]; ok {
		return format
	}
	return models.FormatText
}

// IsSupported reports whether the file has one of the extensions above.
func IsSupported(fileName string) bool {
	_, ok := extensionFormats[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

func isSpreadsheet(fileName string) bool {
	return strings.EqualFold(filepath.Ext(fileName), ExtensionXLSX)
}
