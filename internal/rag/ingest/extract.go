package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
	"github.com/skandula/ragserve/internal/domain/docmodel"
)

func extractText(path string, contentType docmodel.DocType) ([]rawPage, error) {
	switch contentType {
	case docmodel.PDF:
		return extractPDF(path)
	case docmodel.TXT:
		return extractTxt(path)
	case docmodel.CSV:
		return extractCSV(path)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

func extractPDF(path string) ([]rawPage, error) {
	logger.Debug("extractPDF", "attempting extraction", path)
	f, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed opening of pdf file")
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// continue with the other pages
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, rawPage{
			Number:  i,
			Content: content,
		})
	}
	return pages, nil
}

// extractTxt reads plaintext (cat also tolerates rtf/odt payloads with a .txt name).
func extractTxt(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from text file")
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	return []rawPage{
		{
			Number:  1,
			Content: text,
		},
	}, nil
}

// extractCSV renders every row as "header: value" lines, one page per row,
// so each row becomes its own retrieval unit.
func extractCSV(path string) ([]rawPage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		logger.Error("Error parsing csv content")
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	var pages []rawPage
	for rowNum, record := range records[1:] {
		var b strings.Builder
		for i, field := range record {
			name := fmt.Sprintf("column_%d", i+1)
			if i < len(header) {
				name = header[i]
			}
			b.WriteString(name)
			b.WriteString(": ")
			b.WriteString(field)
			b.WriteString("\n")
		}
		pages = append(pages, rawPage{
			Number:  rowNum + 1,
			Content: strings.TrimRight(b.String(), "\n"),
		})
	}
	return pages, nil
}

func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		logger.Error("pageExtract", "timeout", true)
		return "", errors.New("timeout")
	}
}
