package pdftext

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// textLayer extracts the whole document's text layer in one pass. Fast, and
// sufficient for most machine-generated PDFs.
func textLayer(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// pageByPage walks every page in order, joining text items within a page
// with spaces and pages with a blank line. Slower, but recovers documents
// whose aggregate text layer is broken.
func pageByPage(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content := p.Content()
		items := make([]string, 0, len(content.Text))
		for _, t := range content.Text {
			if t.S != "" {
				items = append(items, t.S)
			}
		}
		if len(items) > 0 {
			pages = append(pages, strings.Join(items, " "))
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
