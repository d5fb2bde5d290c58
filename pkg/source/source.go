// Package source parses the photo ID list that drives a crawl.
//
// The list is a plain text file with one entry per line. Each line is
// split on whitespace and the second token is the photo ID; everything
// else on the line is ignored. Lines with fewer than two tokens are
// skipped. The position of a record is its zero-based index among the
// lines that were consumed, so skipped lines still advance positions.
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"photocrawl/pkg/errors"
)

// Record is a single entry from the ID list.
type Record struct {
	// Position is the zero-based line index, used to name the output file.
	Position int
	// ID is the photo identifier from the second column.
	ID string
}

// Parse reads records from r. If limit is positive, at most limit lines
// are consumed, counting skipped lines toward the limit.
func Parse(r io.Reader, limit int) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		if limit > 0 && line >= limit {
			break
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 {
			records = append(records, Record{
				Position: line,
				ID:       fields[1],
			})
		}
		line++
	}

	if err := scanner.Err(); err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to read ID list: %v", err),
		}
	}

	return records, nil
}

// ParseFile opens path and parses it with Parse.
func ParseFile(path string, limit int) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to open ID list %s: %v", path, err),
		}
	}
	defer f.Close()

	return Parse(f, limit)
}
