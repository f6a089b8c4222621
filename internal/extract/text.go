package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// PlainTextStrategy handles text files as-is.
type PlainTextStrategy struct{}

func (*PlainTextStrategy) Name() string { return "plain-text" }

func (*PlainTextStrategy) Claims(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "text/")
}

func (*PlainTextStrategy) Extract(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file is not valid UTF-8 text")
	}
	return string(data), nil
}
