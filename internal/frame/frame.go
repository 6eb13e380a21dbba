package frame

import (
	"math"
	"sort"
	"strconv"
)

// Kind describes how a column's values are stored.
type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is a single named column. Exactly one of Num or Cat is populated,
// depending on Kind. Valid[i] is false when row i is missing.
type Column struct {
	Name  string
	Kind  Kind
	Unit  string
	Num   []float64
	Cat   []string
	Valid []bool
}

// Len returns the number of rows in the column.
func (c *Column) Len() int { return len(c.Valid) }

// Missing reports whether row i has no value.
func (c *Column) Missing(i int) bool { return !c.Valid[i] }

// Key returns the string form of row i used for grouping and cross-tabulation.
// Numeric values use the shortest representation that round-trips.
func (c *Column) Key(i int) string {
	if !c.Valid[i] {
		return ""
	}
	if c.Kind == Numeric {
		return strconv.FormatFloat(c.Num[i], 'g', -1, 64)
	}
	return c.Cat[i]
}

// Table is the canonical in-memory dataset every operation works on.
type Table struct {
	Name  string
	cols  []*Column
	index map[string]int
	rows  int
}

// NumRows returns the number of rows shared by all columns.
func (t *Table) NumRows() int { return t.rows }

// Columns returns the columns in table order.
func (t *Table) Columns() []*Column { return t.cols }

// Names returns the column names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, error) {
	idx, ok := t.index[name]
	if !ok {
		return nil, &ColumnNotFoundError{Column: name, Available: t.Names()}
	}
	return t.cols[idx], nil
}

// Numeric looks up a column and requires it to be numeric.
func (t *Table) Numeric(name string) (*Column, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != Numeric {
		return nil, &NotNumericError{Column: name}
	}
	return c, nil
}

// Complete returns the row indices where every given column has a value.
func Complete(cols ...*Column) []int {
	if len(cols) == 0 {
		return nil
	}
	n := cols[0].Len()
	out := make([]int, 0, n)
rows:
	for i := 0; i < n; i++ {
		for _, c := range cols {
			if i >= c.Len() || c.Missing(i) {
				continue rows
			}
		}
		out = append(out, i)
	}
	return out
}

// Distinct returns the distinct non-missing keys of c over rows, in first-seen order.
// A nil rows slice means every row.
func Distinct(c *Column, rows []int) []string {
	seen := map[string]struct{}{}
	var out []string
	visit := func(i int) {
		if c.Missing(i) {
			return
		}
		k := c.Key(i)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	if rows == nil {
		for i := 0; i < c.Len(); i++ {
			visit(i)
		}
		return out
	}
	for _, i := range rows {
		visit(i)
	}
	return out
}

// Encode maps keys to a dense 0-based range. The first distinct key seen gets 0,
// the second 1, and so on. Identical input always yields identical codes.
func Encode(keys []string) (codes []int, classes []string) {
	lookup := map[string]int{}
	codes = make([]int, len(keys))
	for i, k := range keys {
		code, ok := lookup[k]
		if !ok {
			code = len(classes)
			lookup[k] = code
			classes = append(classes, k)
		}
		codes[i] = code
	}
	return codes, classes
}

// Values returns the numeric values of c at rows. A nil rows slice selects every
// non-missing row.
func Values(c *Column, rows []int) []float64 {
	if rows == nil {
		rows = Complete(c)
	}
	out := make([]float64, len(rows))
	for j, i := range rows {
		out[j] = c.Num[i]
	}
	return out
}

// Keys returns the keys of c at rows.
func Keys(c *Column, rows []int) []string {
	out := make([]string, len(rows))
	for j, i := range rows {
		out[j] = c.Key(i)
	}
	return out
}

// Builder accumulates columns for a new Table.
type Builder struct {
	name string
	cols []*Column
	err  error
}

// NewBuilder starts a table with the given display name.
func NewBuilder(name string) *Builder { return &Builder{name: name} }

// AddNumeric appends a numeric column. NaN values are treated as missing.
func (b *Builder) AddNumeric(name string, vals []float64) *Builder {
	c := &Column{Name: name, Kind: Numeric, Num: make([]float64, len(vals)), Valid: make([]bool, len(vals))}
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		c.Num[i] = v
		c.Valid[i] = true
	}
	return b.add(c)
}

// AddCategorical appends a categorical column. Empty strings are treated as missing.
func (b *Builder) AddCategorical(name string, vals []string) *Builder {
	c := &Column{Name: name, Kind: Categorical, Cat: make([]string, len(vals)), Valid: make([]bool, len(vals))}
	for i, v := range vals {
		if v == "" {
			continue
		}
		c.Cat[i] = v
		c.Valid[i] = true
	}
	return b.add(c)
}

// AddColumn appends a fully formed column.
func (b *Builder) AddColumn(c *Column) *Builder { return b.add(c) }

func (b *Builder) add(c *Column) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.cols) > 0 && c.Len() != b.cols[0].Len() {
		b.err = &LengthMismatchError{Column: c.Name, Got: c.Len(), Want: b.cols[0].Len()}
		return b
	}
	for _, existing := range b.cols {
		if existing.Name == c.Name {
			b.err = &DuplicateColumnError{Column: c.Name}
			return b
		}
	}
	b.cols = append(b.cols, c)
	return b
}

// Build returns the finished table or the first error encountered.
func (b *Builder) Build() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	t := &Table{Name: b.name, cols: b.cols, index: make(map[string]int, len(b.cols))}
	for i, c := range b.cols {
		t.index[c.Name] = i
	}
	if len(b.cols) > 0 {
		t.rows = b.cols[0].Len()
	}
	return t, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
