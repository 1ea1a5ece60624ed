package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"smartrecruit/resume-analyzer/internal/models"
)

// ExtractedText is the plain-text view of a stored document. Text is
// never nil-equivalent: a fully unreadable but well-formed file yields
// an empty string plus a warning, and the pipeline keeps going.
type ExtractedText struct {
	Text      string
	PageCount int
	Partial   bool
	Warnings  []string
}

type ExtractorService interface {
	Extract(filePath string, declared models.DocumentFormat) (*ExtractedText, error)
}

type extractorService struct{}

func NewExtractorService() ExtractorService {
	return &extractorService{}
}

func (e *extractorService) Extract(filePath string, declared models.DocumentFormat) (*ExtractedText, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	if err := checkSignature(raw, declared); err != nil {
		return nil, err
	}

	switch declared {
	case models.FormatPDF:
		return extractPDF(filePath)
	case models.FormatDOCX:
		return extractDOCX(raw)
	case models.FormatDOC:
		return extractDOC(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, declared)
	}
}

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// checkSignature verifies the declared format against the file's magic
// bytes. A mismatch is permanent: retrying will not fix it.
func checkSignature(raw []byte, declared models.DocumentFormat) error {
	var want []byte
	switch declared {
	case models.FormatPDF:
		want = pdfMagic
	case models.FormatDOCX:
		want = zipMagic
	case models.FormatDOC:
		want = oleMagic
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, declared)
	}

	if !bytes.HasPrefix(raw, want) {
		return fmt.Errorf("%w: content signature does not match declared format %q", ErrCorruptDocument, declared)
	}
	return nil
}

func extractPDF(filePath string) (*ExtractedText, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open PDF: %w", ErrCorruptDocument, err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()
	skipped := 0

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			skipped++
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// single-page errors never fail the whole document
			skipped++
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	result := &ExtractedText{
		Text:      textBuilder.String(),
		PageCount: totalPage,
	}

	if skipped > 0 {
		result.Partial = true
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d of %d pages could not be decoded", skipped, totalPage))
	}
	if strings.TrimSpace(result.Text) == "" {
		result.Text = ""
		result.Warnings = append(result.Warnings, "no extractable text found in document")
	}

	return result, nil
}

// documentXML mirrors the paragraph/run/text structure of
// word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

func extractDOCX(raw []byte) (*ExtractedText, error) {
	reader, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open DOCX archive: %w", ErrCorruptDocument, err)
	}

	var content []byte
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open word/document.xml: %w", ErrCorruptDocument, err)
		}
		content, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read word/document.xml: %w", ErrCorruptDocument, err)
		}
		break
	}

	result := &ExtractedText{PageCount: 1}

	if content == nil {
		result.Warnings = append(result.Warnings, "archive contains no word/document.xml")
		return result, nil
	}

	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		// Embedded images and malformed runs are skipped, not fatal
		result.Partial = true
		result.Warnings = append(result.Warnings, "document.xml could not be fully parsed")
		return result, nil
	}

	var textBuilder strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			textBuilder.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, t := range r.Text {
				textBuilder.WriteString(t.Content)
			}
		}
	}

	result.Text = strings.TrimSpace(textBuilder.String())
	if result.Text == "" {
		result.Warnings = append(result.Warnings, "no extractable text found in document")
	}

	return result, nil
}

// extractDOC scavenges readable runs out of a legacy Word binary. The
// OLE container is not fully parsed, so the output is always flagged
// partial.
func extractDOC(raw []byte) (*ExtractedText, error) {
	// Word stores most text as UTF-16LE; dropping NUL bytes folds the
	// common ASCII subset back into readable runs.
	stripped := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b != 0x00 {
			stripped = append(stripped, b)
		}
	}

	var textBuilder strings.Builder
	var current []rune

	flush := func() {
		// Short runs are almost always field codes or binary noise
		if len(current) >= 4 {
			textBuilder.WriteString(strings.TrimSpace(string(current)))
			textBuilder.WriteString("\n")
		}
		current = current[:0]
	}

	for _, r := range string(stripped) {
		if r == unicode.ReplacementChar {
			flush()
			continue
		}
		if unicode.IsPrint(r) || r == ' ' {
			current = append(current, r)
			continue
		}
		flush()
	}
	flush()

	result := &ExtractedText{
		Text:      strings.TrimSpace(textBuilder.String()),
		PageCount: 1,
		Partial:   true,
		Warnings:  []string{"legacy DOC decoded best-effort"},
	}
	if result.Text == "" {
		result.Warnings = append(result.Warnings, "no extractable text found in document")
	}

	return result, nil
}
