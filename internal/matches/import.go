package matches

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// sheet is a decoded table: header plus rows tagged with their source line.
type sheet struct {
	header []string
	rows   []RawRow
	lines  []int
}

var errEmptyTable = errors.New("empty table")

// decodeTable picks the decoder from the (decompressed) file name.
func decodeTable(name string, b []byte, comma rune) (*sheet, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return parseXLSX(b)
	default:
		return parseCSV(bytes.NewReader(b), comma)
	}
}

// parseCSV reads a delimited table with a header row. A zero comma sniffs ';'
// versus ',' from the first line.
func parseCSV(r io.Reader, comma rune) (*sheet, error) {
	br := bufio.NewReader(r)
	// Peek first line to guess delimiter
	line, _ := br.ReadString('\n')
	// Put it back into the stream
	rest := io.MultiReader(strings.NewReader(line), br)
	reader := csv.NewReader(rest)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	switch {
	case comma != 0:
		reader.Comma = comma
	case strings.Count(line, ";") > strings.Count(line, ","):
		reader.Comma = ';'
	}

	hdr, err := reader.Read()
	if err == io.EOF {
		return nil, errEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	s := &sheet{header: normHeaders(hdr)}
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(strings.TrimSpace(strings.Join(rec, ""))) == 0 {
			continue
		}
		ln, _ := reader.FieldPos(0)
		s.add(rec, ln)
	}
	return s, nil
}

func parseXLSX(b []byte) (*sheet, error) {
	// Use bytes.Reader to provide Reader, ReaderAt, and Seeker which excelize can leverage
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	name := f.GetSheetName(0)
	if name == "" {
		return nil, fmt.Errorf("no sheet")
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, errEmptyTable
	}
	s := &sheet{header: normHeaders(rows[0])}
	for i := 1; i < len(rows); i++ {
		if len(strings.TrimSpace(strings.Join(rows[i], ""))) == 0 {
			continue
		}
		s.add(rows[i], i+1)
	}
	return s, nil
}

// normHeaders trims header cells and drops a UTF-8 byte order mark.
func normHeaders(hdr []string) []string {
	out := make([]string, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// add keys a record by header. The first of duplicate headers wins; cells
// beyond the header are ignored and missing cells stay absent.
func (s *sheet) add(rec []string, line int) {
	row := make(RawRow, len(s.header))
	for i, k := range s.header {
		if i >= len(rec) {
			break
		}
		if _, dup := row[k]; dup {
			continue
		}
		row[k] = rec[i]
	}
	s.rows = append(s.rows, row)
	s.lines = append(s.lines, line)
}
