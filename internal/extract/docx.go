package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DocxStrategy extracts text from Word documents.
type DocxStrategy struct{}

var (
	docxTagPattern       = regexp.MustCompile(`<[^>]+>`)
	docxParagraphPattern = regexp.MustCompile(`</w:p>`)
)

func (*DocxStrategy) Name() string { return "docx" }

func (*DocxStrategy) Claims(mimeType string) bool {
	m := strings.ToLower(mimeType)
	return strings.Contains(m, "word") || strings.Contains(m, "docx") ||
		strings.Contains(m, "officedocument")
}

func (*DocxStrategy) Extract(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX: %w", err)
	}
	defer doc.Close()

	// The library exposes the raw document XML; strip markup, keeping
	// paragraph boundaries as newlines.
	content := doc.Editable().GetContent()
	content = docxParagraphPattern.ReplaceAllString(content, "\n")
	content = docxTagPattern.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "&amp;", "&")
	content = strings.ReplaceAll(content, "&lt;", "<")
	content = strings.ReplaceAll(content, "&gt;", ">")

	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("no text found in DOCX document")
	}
	return content, nil
}
