package parser

import (
	"errors"
	"strings"

	"github.com/KaramelBytes/hospimap-cli/internal/dataset"
)

// Parser decodes a fetched payload into a normalized table.
type Parser interface {
	// CanParse reports whether the parser handles a resource with the given
	// name (URL or path) and content type. Either may be empty.
	CanParse(name, contentType string) bool
	Parse(name string, content []byte) (*dataset.Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// Parse selects a parser based on name and content type and decodes content.
// Payloads no parser claims are decoded as delimited text.
func Parse(name, contentType string, content []byte) (*dataset.Table, error) {
	for _, p := range registry {
		if p.CanParse(name, contentType) {
			return p.Parse(name, content)
		}
	}
	return delimitedParser{}.Parse(name, content)
}

func init() {
	Register(xlsxParser{})
	Register(delimitedParser{})
}

var (
	// ErrNoHeader indicates the payload has no header row.
	ErrNoHeader = errors.New("missing header row")
	// ErrUnsupported indicates a payload that is not tabular.
	ErrUnsupported = errors.New("unsupported tabular format")
)

// hasFormat reports whether name ends with one of the extensions or carries an
// export query such as ?format=csv.
func hasFormat(name string, formats ...string) bool {
	lower := strings.ToLower(name)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		query := lower[i:]
		for _, f := range formats {
			if strings.Contains(query, "format="+f) {
				return true
			}
		}
		lower = lower[:i]
	}
	for _, f := range formats {
		if strings.HasSuffix(lower, "."+f) {
			return true
		}
	}
	return false
}
