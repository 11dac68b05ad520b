// internal/extract/extractor.go

// Package extract converts uploaded resume documents into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

var (
	// ErrInsufficientText marks extractions that produced less than the
	// configured minimum. Downstream scoring cannot work with near-empty
	// input, so a short extraction is a failure, not a short success.
	ErrInsufficientText = errors.New("extracted text below minimum length")

	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// DefaultMinChars is the minimum extracted length considered usable.
const DefaultMinChars = 50

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// Extractor converts an uploaded document into plain text.
type Extractor struct {
	minChars int
}

func New(minChars int) *Extractor {
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	return &Extractor{minChars: minChars}
}

// Extract returns the plain text of the document, or an error when the format
// is unsupported, the document is unreadable, or the result is below the
// minimum-content threshold.
func (e *Extractor) Extract(filename string, data []byte) (string, error) {
	var text string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		text = string(data)
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if len(text) < e.minChars {
		return "", fmt.Errorf("%w: got %d chars, need %d", ErrInsufficientText, len(text), e.minChars)
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("pdf page count: %w", err)
	}
	if numPages == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}

	var sb strings.Builder
	extractedAny := false
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			continue // skip unreadable pages
		}
		ex, err := extractor.New(page)
		if err != nil {
			continue
		}
		pageText, err := ex.ExtractText()
		if err != nil || pageText == "" {
			continue
		}
		extractedAny = true
		sb.WriteString(pageText)
		sb.WriteString("\n\n")
	}

	if !extractedAny {
		return "", fmt.Errorf("no text could be extracted from any page")
	}
	return sb.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	d, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer d.Close()

	content := d.Editable().GetContent()
	// The docx body is WordprocessingML; strip markup and decode entities.
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = xmlTagPattern.ReplaceAllString(content, "")
	return html.UnescapeString(content), nil
}
