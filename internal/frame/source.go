package frame

import (
	"fmt"
	"math"
	"strconv"
)

// Source is anything an operation accepts as a dataset: a *Table or a Columns
// mapping. The interface is sealed; Normalize is the only way to consume it.
type Source interface {
	table() (*Table, error)
}

func (t *Table) table() (*Table, error) {
	if t == nil {
		return nil, fmt.Errorf("dataset is nil")
	}
	return t, nil
}

// Columns maps column names to equal-length slices. Supported element types are
// float64 (NaN missing), int, string ("" missing), bool and any (nil missing).
// Columns are laid out in name order.
type Columns map[string]any

func (m Columns) table() (*Table, error) {
	b := NewBuilder("")
	for _, name := range sortedKeys(m) {
		switch vals := m[name].(type) {
		case []float64:
			b.AddNumeric(name, vals)
		case []int:
			f := make([]float64, len(vals))
			for i, v := range vals {
				f[i] = float64(v)
			}
			b.AddNumeric(name, f)
		case []string:
			b.AddCategorical(name, vals)
		case []bool:
			s := make([]string, len(vals))
			for i, v := range vals {
				s[i] = strconv.FormatBool(v)
			}
			b.AddCategorical(name, s)
		case []any:
			b.AddColumn(fromAny(name, vals))
		default:
			return nil, fmt.Errorf("%w: column %q has type %T", ErrUnsupportedColumn, name, vals)
		}
	}
	return b.Build()
}

// fromAny builds a numeric column when every non-nil value is a number and a
// categorical column otherwise.
func fromAny(name string, vals []any) *Column {
	nums := make([]float64, len(vals))
	numeric := true
	for i, v := range vals {
		switch x := v.(type) {
		case nil:
			nums[i] = math.NaN()
		case float64:
			nums[i] = x
		case float32:
			nums[i] = float64(x)
		case int:
			nums[i] = float64(x)
		case int64:
			nums[i] = float64(x)
		default:
			numeric = false
		}
		if !numeric {
			break
		}
	}
	if numeric {
		c := &Column{Name: name, Kind: Numeric, Num: make([]float64, len(vals)), Valid: make([]bool, len(vals))}
		for i, v := range nums {
			if math.IsNaN(v) {
				continue
			}
			c.Num[i] = v
			c.Valid[i] = true
		}
		return c
	}
	c := &Column{Name: name, Kind: Categorical, Cat: make([]string, len(vals)), Valid: make([]bool, len(vals))}
	for i, v := range vals {
		if v == nil {
			continue
		}
		s := fmt.Sprint(v)
		if s == "" {
			continue
		}
		c.Cat[i] = s
		c.Valid[i] = true
	}
	return c
}

// Normalize converts any Source into the canonical Table.
func Normalize(src Source) (*Table, error) {
	if src == nil {
		return nil, fmt.Errorf("dataset is nil")
	}
	return src.table()
}
