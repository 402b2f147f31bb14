package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/hospimap-cli/internal/dataset"
)

type delimitedParser struct{}

func (delimitedParser) CanParse(name, contentType string) bool {
	ct := strings.ToLower(contentType)
	if strings.HasPrefix(ct, "text/csv") || strings.HasPrefix(ct, "text/tab-separated-values") {
		return true
	}
	return hasFormat(name, "csv", "tsv", "txt")
}

// Parse reads delimited text with a header row. Short rows are padded; rows with more
// fields than the header are rejected.
func (delimitedParser) Parse(name string, content []byte) (*dataset.Table, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrNoHeader
	}
	if looksBinary(content) {
		return nil, ErrUnsupported
	}
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.Comma = sniffDelimiter(name, content)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("expected %d fields in line %d, saw %d", len(header), line, len(rec))
		}
		rows = append(rows, rec)
	}
	return dataset.New(name, header, rows), nil
}

// sniffDelimiter honours a .tsv suffix, otherwise picks the most frequent of
// ',', ';' and tab on the header line.
func sniffDelimiter(name string, content []byte) rune {
	if hasFormat(name, "tsv") {
		return '\t'
	}
	line := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}
	best, bestN := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

func looksBinary(content []byte) bool {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.IndexByte(head, 0) >= 0
}
