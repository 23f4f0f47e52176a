package memory

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"orcs/internal/backend"
)

// row is a stored record in its wire form: JSON scalars, arrays and objects.
type row map[string]any

func toRow(v any) (row, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding row: %w", err)
	}
	var r row
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("row must be a JSON object: %w", err)
	}
	return r, nil
}

func (r row) clone() row {
	out := make(row, len(r))
	maps.Copy(out, r)
	return out
}

// project keeps the selected columns. "*" and "" keep everything;
// embedded resources ("profiles(full_name)") are ignored.
func (r row) project(columns string) row {
	if columns == "" || columns == "*" {
		return r.clone()
	}
	out := make(row)
	for _, c := range strings.Split(columns, ",") {
		c = strings.TrimSpace(c)
		if c == "*" {
			maps.Copy(out, r)
			continue
		}
		if strings.Contains(c, "(") {
			continue
		}
		if v, ok := r[c]; ok {
			out[c] = v
		}
	}
	return out
}

func cell(v any) string {
	return backend.FormatValue(v)
}

func (r row) matches(filters []backend.Filter) bool {
	for _, f := range filters {
		v, present := r[f.Column]
		switch f.Op {
		case backend.OpEq:
			if backend.IsNull(f.Value) {
				if present && v != nil {
					return false
				}
				continue
			}
			if v == nil || cell(v) != cell(f.Value) {
				return false
			}
		case backend.OpIn:
			if v == nil || !slices.ContainsFunc(f.Values, func(c any) bool { return cell(c) == cell(v) }) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func sameValues(a, b row, columns []string) bool {
	for _, c := range columns {
		if a[c] == nil || b[c] == nil || cell(a[c]) != cell(b[c]) {
			return false
		}
	}
	return true
}

// sortRows orders like Postgres: nulls last ascending, first descending.
func sortRows(rows []row, orders []backend.Order, schema tableSchema) {
	if len(orders) == 0 {
		return
	}
	slices.SortStableFunc(rows, func(a, b row) int {
		for _, o := range orders {
			c := compareCells(a[o.Column], b[o.Column], schema.enums[o.Column])
			if o.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

func compareCells(a, b any, rank func(string) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			return cmp.Compare(boolRank(x), boolRank(y))
		}
	case string:
		y, ok := b.(string)
		if !ok {
			break
		}
		if rank != nil {
			return cmp.Compare(rank(x), rank(y))
		}
		if tx, okx := parseTime(x); okx {
			if ty, oky := parseTime(y); oky {
				return tx.Compare(ty)
			}
		}
		return strings.Compare(x, y)
	}
	return strings.Compare(cell(a), cell(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
