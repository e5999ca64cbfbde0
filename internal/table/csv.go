package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/nbaclean-cli/internal/utils"
)

// LoadOptions controls how raw exports are read into a Table.
type LoadOptions struct {
	// Delimiter for CSV. If 0, it is chosen from the file extension.
	Delimiter rune
	// MissingTokens are cell contents (after trimming, case-insensitive)
	// read as the missing marker.
	MissingTokens []string
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
}

// DefaultMissingTokens mirrors the tokens common stats exports use for "no value".
var DefaultMissingTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "None", "#N/A"}

// DefaultLoadOptions returns options suitable for the usual stats exports.
func DefaultLoadOptions() LoadOptions {
	tokens := make([]string, len(DefaultMissingTokens))
	copy(tokens, DefaultMissingTokens)
	return LoadOptions{MissingTokens: tokens}
}

// Load reads a CSV, TSV or XLSX file, choosing the reader by extension.
func Load(path string, opt LoadOptions) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSX(path, opt)
	}
	return LoadCSV(path, opt)
}

// LoadCSV reads a delimited file with one header row.
func LoadCSV(path string, opt LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return ReadCSV(f, opt)
}

// ReadCSV reads delimited text with one header row from r.
func ReadCSV(r io.Reader, opt LoadOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := NormalizeHeaders(header)
	missing := missingSet(opt.MissingTokens)

	b := NewBuilder(cols, 0)
	line := 1
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		line++
		b.Append(parseRecord(rec, len(cols), missing))
	}
	return b.Table(), nil
}

// parseRecord pads or truncates a record to width and parses each cell.
func parseRecord(rec []string, width int, missing map[string]struct{}) Row {
	row := make(Row, width)
	for j := 0; j < width; j++ {
		if j < len(rec) {
			row[j] = ParseCell(rec[j], missing)
		}
	}
	return row
}

// ParseCell converts raw cell text into a Value: missing tokens become the
// missing marker, plain decimal numbers become numbers, everything else
// stays text exactly as read.
func ParseCell(raw string, missing map[string]struct{}) Value {
	s := strings.TrimSpace(raw)
	if _, ok := missing[strings.ToLower(s)]; ok {
		return Null()
	}
	if f, ok := parseDecimal(s); ok {
		return Num(f)
	}
	return Str(raw)
}

// parseDecimal accepts finite decimal numbers only; "Inf", "NaN" and hex
// floats stay text.
func parseDecimal(s string) (float64, bool) {
	if strings.ContainsAny(s, "xX") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func missingSet(tokens []string) map[string]struct{} {
	if tokens == nil {
		tokens = DefaultMissingTokens
	}
	m := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		m[strings.ToLower(strings.TrimSpace(tok))] = struct{}{}
	}
	return m
}

// NormalizeHeaders names blank headers "Unnamed: <i>" and suffixes repeated
// names with _1, _2, ... so that every column name is unique. A suffix never
// takes a name that appears literally in the header.
func NormalizeHeaders(header []string) []string {
	base := make([]string, len(header))
	literal := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base[i] = name
		literal[name] = true
	}
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	next := make(map[string]int, len(header))
	for i, name := range base {
		if used[name] {
			n := next[name]
			for {
				n++
				cand := fmt.Sprintf("%s_%d", name, n)
				if !used[cand] && !literal[cand] {
					name = cand
					break
				}
			}
			next[base[i]] = n
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// EncodeCSV renders the table as CSV with a header row.
func EncodeCSV(t *Table, delim rune) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if delim != 0 {
		w.Comma = delim
	}
	if err := w.Write(t.columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.columns))
	for i, r := range t.rows {
		for j, v := range r {
			rec[j] = v.String()
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCSV writes the table to path atomically, creating parent directories.
func WriteCSV(path string, t *Table, delim rune) error {
	data, err := EncodeCSV(t, delim)
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return utils.SafeWriteFile(path, data)
}
