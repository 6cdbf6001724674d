package extract

import (
	"bytes"
	"io"

	"github.com/ledongthuc/pdf"
)

// pdfText extracts the text layers of a PDF. Scanned/image-only PDFs come
// back empty rather than erroring.
func pdfText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plainReader, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
