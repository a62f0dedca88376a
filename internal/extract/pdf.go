package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// MinTextLength is the trimmed character count below which extracted text
// is treated as empty.
const MinTextLength = 50

var ErrInsufficientText = errors.New("PDF text extraction failed or PDF is empty")

// PDFText returns the plain text of every page, each followed by a newline.
// Malformed or encrypted documents return an error; parser panics are
// recovered into errors.
func PDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			b.WriteString("\n")
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Extractor resolves a PDF reference to its text.
type Extractor struct {
	fetcher *Fetcher
	parse   func([]byte) (string, error)
}

func NewExtractor(fetcher *Fetcher) *Extractor {
	return &Extractor{fetcher: fetcher, parse: PDFText}
}

// Extract fetches ref and returns its text. Every failure, including text
// shorter than MinTextLength once trimmed, is an *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, ref string) (string, error) {
	data, err := e.fetcher.Fetch(ctx, ref)
	if err != nil {
		return "", &ExtractionError{Ref: ref, Err: err}
	}

	text, err := e.parse(data)
	if err != nil {
		return "", &ExtractionError{Ref: ref, Err: err}
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return "", &ExtractionError{Ref: ref, Err: ErrInsufficientText}
	}
	return text, nil
}
