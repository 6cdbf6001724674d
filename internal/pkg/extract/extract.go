// Package extract turns uploaded file bytes into plain text, dispatching on
// the (normalized) file extension.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

var ErrUnsupportedType = errors.New("unsupported file type")

type extractor func(data []byte) (string, error)

var extractors = map[string]extractor{
	".txt":  plainText,
	".md":   plainText,
	".csv":  plainText,
	".json": plainText,
	".pdf":  pdfText,
	".docx": docxText,
}

// Allowed reports whether the filename's extension is supported.
func Allowed(filename string) bool {
	_, ok := extractors[normalizeExt(filename)]
	return ok
}

// Extensions returns the supported extensions, sorted, for error messages.
func Extensions() []string {
	exts := make([]string, 0, len(extractors))
	for ext := range extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Text extracts plain text from the file content. The result is not
// guaranteed non-empty; callers decide how to treat empty documents.
func Text(filename string, data []byte) (string, error) {
	ext := normalizeExt(filename)
	fn, ok := extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w %q, allowed: %s", ErrUnsupportedType, ext, strings.Join(Extensions(), ", "))
	}
	text, err := fn(data)
	if err != nil {
		return "", fmt.Errorf("extract %s text failed: %w", strings.TrimPrefix(ext, "."), err)
	}
	return text, nil
}

func normalizeExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func plainText(data []byte) (string, error) {
	return string(data), nil
}
