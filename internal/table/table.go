package table

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the type tag stored in a Value.
type Kind uint8

const (
	Missing Kind = iota
	Number
	Text
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Text:
		return "text"
	default:
		return "missing"
	}
}

// Value is a single cell: a number, a text, or the missing marker.
// The zero Value is missing.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Num returns a numeric value. NaN is stored as missing.
func Num(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: Number, num: f}
}

// Str returns a text value.
func Str(s string) Value { return Value{kind: Text, str: s} }

// Null returns the missing marker.
func Null() Value { return Value{} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == Missing }
func (v Value) IsNumber() bool  { return v.kind == Number }
func (v Value) IsText() bool    { return v.kind == Text }

// Float returns the numeric payload when the value is a number.
func (v Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	return v.num, true
}

// Text returns the text payload when the value is text.
func (v Value) Text() (string, bool) {
	if v.kind != Text {
		return "", false
	}
	return v.str, true
}

// String renders the value the way it is written to CSV: numbers in their
// shortest exact form, missing as the empty string.
func (v Value) String() string {
	switch v.kind {
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case Text:
		return v.str
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Number:
		return v.num == o.num
	case Text:
		return v.str == o.str
	default:
		return true
	}
}

// Row is a positional list of values aligned with a table's columns.
type Row []Value

// Clone returns a copy of the row that shares no storage with r.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Table is an ordered sequence of rows sharing one column set.
// A Table is never modified after construction; transformations build a
// new Table through a Builder.
type Table struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// New returns an empty table with the given columns.
func New(columns []string) *Table {
	return NewBuilder(columns, 0).Table()
}

// FromRows builds a table from rows, copying everything it is given.
func FromRows(columns []string, rows []Row) (*Table, error) {
	b := NewBuilder(columns, len(rows))
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(r), len(columns))
		}
		b.Append(r)
	}
	return b.Table(), nil
}

// MustFromRows is FromRows for fixtures; it panics on a width mismatch.
func MustFromRows(columns []string, rows ...Row) *Table {
	t, err := FromRows(columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *Table) Len() int   { return len(t.rows) }
func (t *Table) Width() int { return len(t.columns) }

// Index returns the position of a column.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// At returns the value at row i, column j.
func (t *Table) At(i, j int) Value { return t.rows[i][j] }

// Get returns the value of the named column at row i, or missing if the
// column does not exist.
func (t *Table) Get(i int, name string) Value {
	j, ok := t.index[name]
	if !ok {
		return Value{}
	}
	return t.rows[i][j]
}

// Row returns a copy of row i.
func (t *Table) Row(i int) Row { return t.rows[i].Clone() }

// Column returns a copy of the named column's values, or nil when absent.
func (t *Table) Column(name string) []Value {
	j, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out
}

// Floats returns the numeric values of a column in row order, skipping
// missing and text cells.
func (t *Table) Floats(name string) []float64 {
	j, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(t.rows))
	for _, r := range t.rows {
		if f, ok := r[j].Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// NumericColumn reports whether every non-missing cell of the column is a
// number. A column holding only missing cells counts as numeric; an absent
// column does not.
func (t *Table) NumericColumn(name string) bool {
	j, ok := t.index[name]
	if !ok {
		return false
	}
	for _, r := range t.rows {
		if r[j].IsText() {
			return false
		}
	}
	return true
}

// Equal reports whether both tables have the same columns and rows in the
// same order.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.columns) != len(o.columns) || len(t.rows) != len(o.rows) {
		return false
	}
	for i := range t.columns {
		if t.columns[i] != o.columns[i] {
			return false
		}
	}
	for i := range t.rows {
		for j := range t.rows[i] {
			if !t.rows[i][j].Equal(o.rows[i][j]) {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	b := NewBuilder(t.columns, len(t.rows))
	for _, r := range t.rows {
		b.Append(r)
	}
	return b.Table()
}

// Builder accumulates rows for a new Table.
type Builder struct {
	columns []string
	rows    []Row
}

// NewBuilder starts a table with the given columns; capacity is a hint.
func NewBuilder(columns []string, capacity int) *Builder {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Builder{columns: cols, rows: make([]Row, 0, capacity)}
}

// Append copies r into the table under construction. It panics when r does
// not match the column count, which is always a programming error.
func (b *Builder) Append(r Row) {
	if len(r) != len(b.columns) {
		panic(fmt.Sprintf("table: row has %d values, want %d", len(r), len(b.columns)))
	}
	b.rows = append(b.rows, r.Clone())
}

// Len returns the number of rows appended so far.
func (b *Builder) Len() int { return len(b.rows) }

// Table finalizes the builder. The builder must not be used afterwards.
func (b *Builder) Table() *Table {
	idx := make(map[string]int, len(b.columns))
	for i, c := range b.columns {
		idx[c] = i
	}
	t := &Table{columns: b.columns, index: idx, rows: b.rows}
	b.columns, b.rows = nil, nil
	return t
}
