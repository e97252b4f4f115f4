package source

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVOptions controls how a source CSV is read.
type CSVOptions struct {
	Delimiter rune
	// SkipLines drops metadata lines before the header row.
	SkipLines int
}

// DefaultCSVOptions matches the French open-data exports.
var DefaultCSVOptions = CSVOptions{Delimiter: ';'}

// OptionsFor returns the CSV layout of a dataset.
func OptionsFor(k Kind) CSVOptions {
	opts := DefaultCSVOptions
	if k == Fire {
		opts.SkipLines = 3
	}
	return opts
}

// ReadCSV decodes and reads a whole CSV source into memory.
func ReadCSV(r io.Reader, opts CSVOptions) (Table, error) {
	var t Table
	err := StreamCSV(r, opts, func(header []string, rec Record) error {
		if t.Header == nil {
			t.Header = header
		}
		t.Records = append(t.Records, rec)
		return nil
	})
	return t, err
}

// StreamCSV calls fn for every data row. Ragged rows are tolerated: missing
// trailing fields read as empty and extra fields are ignored. Blank lines
// are skipped. An error returned by fn stops the scan and is returned as is.
func StreamCSV(r io.Reader, opts CSVOptions, fn func(header []string, rec Record) error) error {
	text, err := DecodeText(r)
	if err != nil {
		return err
	}
	br := bufio.NewReader(text)
	for range opts.SkipLines {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("skip metadata line: %w", err)
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = opts.Delimiter
	if cr.Comma == 0 {
		cr.Comma = DefaultCSVOptions.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		if blank(row) {
			continue
		}
		rec := make(Record, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[name] = row[i]
			} else {
				rec[name] = ""
			}
		}
		if err := fn(header, rec); err != nil {
			return err
		}
	}
}

func blank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
