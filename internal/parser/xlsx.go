package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KaramelBytes/hospimap-cli/internal/dataset"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// xlsxParser reads the first worksheet, or Sheet when set.
type xlsxParser struct {
	Sheet string
}

func (xlsxParser) CanParse(name, contentType string) bool {
	if strings.HasPrefix(strings.ToLower(contentType), xlsxContentType) {
		return true
	}
	return hasFormat(name, "xlsx")
}

func (p xlsxParser) Parse(name string, content []byte) (*dataset.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := p.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoHeader
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	// leading blank rows are common in exported workbooks
	for len(rows) > 0 && isBlankRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}
	header := rows[0]
	body := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if isBlankRow(r) {
			continue
		}
		if len(r) > len(header) {
			r = r[:len(header)]
		}
		body = append(body, r)
	}
	return dataset.New(name, header, body), nil
}

func isBlankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
