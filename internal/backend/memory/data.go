package memory

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"orcs/internal/backend"
)

func uniqueViolation(table string, columns []string) error {
	return &backend.Error{
		Status:  http.StatusConflict,
		Code:    backend.CodeUniqueViolation,
		Message: fmt.Sprintf("duplicate key value violates unique constraint %q", table+"_"+strings.Join(columns, "_")+"_key"),
	}
}

func badRequest(msg string) error {
	return &backend.Error{Status: http.StatusBadRequest, Code: "PGRST100", Message: msg}
}

// selectRows returns matching rows in query order. Caller holds b.mu.
func (b *Backend) selectRows(q backend.Query) []row {
	var out []row
	for _, r := range b.tables[q.Table] {
		if r.matches(q.Filters) {
			out = append(out, r)
		}
	}
	sortRows(out, q.Orders, schemaFor(q.Table))
	if q.RowLimit > 0 && len(out) > q.RowLimit {
		out = out[:q.RowLimit]
	}
	projected := make([]row, len(out))
	for i, r := range out {
		projected[i] = r.project(q.Columns)
	}
	return projected
}

// checkUnique reports a violation of any unique constraint by candidate,
// ignoring the stored row at skip (-1 for none). Caller holds b.mu.
func (b *Backend) checkUnique(table string, candidate row, skip int) error {
	for _, cols := range schemaFor(table).unique {
		for i, r := range b.tables[table] {
			if i != skip && sameValues(r, candidate, cols) {
				return uniqueViolation(table, cols)
			}
		}
	}
	return nil
}

// insertRow fills defaults, enforces constraints and stores r. Caller holds b.mu.
func (b *Backend) insertRow(table string, r row) (row, error) {
	stored := row(schemaFor(table).defaults(b.clock()))
	for k, v := range r {
		stored[k] = v
	}
	if stored["id"] == nil {
		return nil, badRequest(`null value in column "id" violates not-null constraint`)
	}
	if err := b.checkUnique(table, stored, -1); err != nil {
		return nil, err
	}
	b.tables[table] = append(b.tables[table], stored)
	return stored.clone(), nil
}

func (b *Backend) updateRows(q backend.Query, patch row) (int, error) {
	rows := b.tables[q.Table]
	var hits []int
	for i, r := range rows {
		if r.matches(q.Filters) {
			hits = append(hits, i)
		}
	}
	// Validate every candidate first so a violation leaves no partial update.
	for _, i := range hits {
		candidate := rows[i].clone()
		for k, v := range patch {
			candidate[k] = v
		}
		if err := b.checkUnique(q.Table, candidate, i); err != nil {
			return 0, err
		}
	}
	for _, i := range hits {
		for k, v := range patch {
			rows[i][k] = v
		}
	}
	return len(hits), nil
}

func (b *Backend) deleteRows(q backend.Query) int {
	rows := b.tables[q.Table]
	kept := rows[:0:0]
	removed := 0
	for _, r := range rows {
		if r.matches(q.Filters) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	b.tables[q.Table] = kept
	return removed
}

func (b *Backend) upsertRow(table string, r row, onConflict string) error {
	cols := splitColumns(onConflict)
	if len(cols) == 0 {
		cols = []string{"id"}
	}
	for i, existing := range b.tables[table] {
		if !sameValues(existing, r, cols) {
			continue
		}
		merged := existing.clone()
		for k, v := range r {
			merged[k] = v
		}
		if err := b.checkUnique(table, merged, i); err != nil {
			return err
		}
		b.tables[table][i] = merged
		return nil
	}
	_, err := b.insertRow(table, r)
	return err
}

func splitColumns(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Data operations as seen through a connection.

func (b *Backend) Select(ctx context.Context, q backend.Query, dest any) error {
	if err := b.before(ctx, "select", q.Table); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return backend.Decode(b.selectRows(q), dest)
}

func (b *Backend) SelectOne(ctx context.Context, q backend.Query, dest any) error {
	if err := b.before(ctx, "select", q.Table); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return backend.DecodeSingle(b.selectRows(q), dest)
}

func (b *Backend) Insert(ctx context.Context, table string, v any, dest any) error {
	if err := b.before(ctx, "insert", table); err != nil {
		return err
	}
	r, err := toRow(v)
	if err != nil {
		return badRequest(err.Error())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	stored, err := b.insertRow(table, r)
	if err != nil {
		return err
	}
	return backend.Decode(stored, dest)
}

func (b *Backend) Upsert(ctx context.Context, table string, v any, onConflict string) error {
	if err := b.before(ctx, "upsert", table); err != nil {
		return err
	}
	r, err := toRow(v)
	if err != nil {
		return badRequest(err.Error())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.upsertRow(table, r, onConflict)
}

func (b *Backend) Update(ctx context.Context, q backend.Query, patch any) (int, error) {
	if err := b.before(ctx, "update", q.Table); err != nil {
		return 0, err
	}
	p, err := toRow(patch)
	if err != nil {
		return 0, badRequest(err.Error())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updateRows(q, p)
}

func (b *Backend) Delete(ctx context.Context, q backend.Query) (int, error) {
	if err := b.before(ctx, "delete", q.Table); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deleteRows(q), nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.before(ctx, "ping", "")
}
