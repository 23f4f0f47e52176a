package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"orcs/internal/backend"
	"orcs/internal/platform/tracer"
	"orcs/pkg/platform/pubsub"
)

const eventBuffer = 8

// Conn is one visitor's connection. Data calls carry its access token so
// the service's row-level security sees the visitor.
type Conn struct {
	c *Client

	mu      sync.Mutex
	session *backend.Session
	events  *pubsub.Hub[backend.AuthEvent]
	closed  bool
}

var _ backend.Conn = (*Conn)(nil)

func newConn(c *Client) *Conn {
	return &Conn{c: c, events: pubsub.New[backend.AuthEvent](eventBuffer)}
}

func (cn *Conn) Close() error {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if cn.closed {
		return nil
	}
	cn.closed = true
	cn.session = nil
	cn.events.Close()
	return nil
}

// token returns the access token for the next call, or ErrClosed.
func (cn *Conn) token() (string, error) {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if cn.closed {
		return "", backend.ErrClosed
	}
	if cn.session == nil {
		return "", nil
	}
	return cn.session.AccessToken, nil
}

func restPath(table string) string {
	return "/rest/v1/" + url.PathEscape(table)
}

func (cn *Conn) fetch(ctx context.Context, q backend.Query) (rows []json.RawMessage, err error) {
	ctx, span := cn.c.tracer.Start(ctx, tracer.SpanDataSelect, tracer.String(tracer.AttrTable, q.Table))
	defer func() { span.End(err) }()

	tok, err := cn.token()
	if err != nil {
		return nil, err
	}
	resp, err := cn.c.do(ctx, call{
		op:     "select",
		method: http.MethodGet,
		path:   restPath(q.Table),
		query:  encodeQuery(q),
		token:  tok,
	})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.body, &rows); err != nil {
		return nil, fmt.Errorf("backend select %s: decoding rows: %w", q.Table, err)
	}
	span.SetAttributes(tracer.Int64(tracer.AttrRows, int64(len(rows))))
	return rows, nil
}

func (cn *Conn) Select(ctx context.Context, q backend.Query, dest any) error {
	rows, err := cn.fetch(ctx, q)
	if err != nil {
		return err
	}
	return backend.Decode(rows, dest)
}

// SelectOne fetches at most two rows: enough to tell one from many.
func (cn *Conn) SelectOne(ctx context.Context, q backend.Query, dest any) error {
	if q.RowLimit == 0 || q.RowLimit > 2 {
		q = q.Limit(2)
	}
	rows, err := cn.fetch(ctx, q)
	if err != nil {
		return err
	}
	return backend.DecodeSingle(rows, dest)
}

func (cn *Conn) Insert(ctx context.Context, table string, row any, dest any) (err error) {
	ctx, span := cn.c.tracer.Start(ctx, tracer.SpanDataInsert, tracer.String(tracer.AttrTable, table))
	defer func() { span.End(err) }()

	tok, err := cn.token()
	if err != nil {
		return err
	}
	resp, err := cn.c.do(ctx, call{
		op:     "insert",
		method: http.MethodPost,
		path:   restPath(table),
		body:   row,
		token:  tok,
		prefer: "return=representation",
	})
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(resp.body, &rows); err != nil {
		return fmt.Errorf("backend insert %s: decoding rows: %w", table, err)
	}
	if len(rows) == 0 {
		return backend.ErrNoRows
	}
	return json.Unmarshal(rows[0], dest)
}

func (cn *Conn) Upsert(ctx context.Context, table string, row any, onConflict string) (err error) {
	ctx, span := cn.c.tracer.Start(ctx, tracer.SpanDataUpsert, tracer.String(tracer.AttrTable, table))
	defer func() { span.End(err) }()

	tok, err := cn.token()
	if err != nil {
		return err
	}
	q := url.Values{}
	if onConflict != "" {
		q.Set("on_conflict", onConflict)
	}
	_, err = cn.c.do(ctx, call{
		op:     "upsert",
		method: http.MethodPost,
		path:   restPath(table),
		query:  q,
		body:   row,
		token:  tok,
		prefer: "resolution=merge-duplicates,return=minimal",
	})
	return err
}

// mutate runs a PATCH or DELETE and counts the returned representation.
func (cn *Conn) mutate(ctx context.Context, op, span, method string, q backend.Query, body any) (n int, err error) {
	ctx, sp := cn.c.tracer.Start(ctx, span, tracer.String(tracer.AttrTable, q.Table))
	defer func() { sp.End(err) }()

	tok, err := cn.token()
	if err != nil {
		return 0, err
	}
	resp, err := cn.c.do(ctx, call{
		op:     op,
		method: method,
		path:   restPath(q.Table),
		query:  encodeQuery(q.Select("id")),
		body:   body,
		token:  tok,
		prefer: "return=representation",
	})
	if err != nil {
		return 0, err
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(resp.body, &rows); err != nil {
		return 0, fmt.Errorf("backend %s %s: decoding rows: %w", op, q.Table, err)
	}
	sp.SetAttributes(tracer.Int64(tracer.AttrRows, int64(len(rows))))
	return len(rows), nil
}

func (cn *Conn) Update(ctx context.Context, q backend.Query, patch any) (int, error) {
	return cn.mutate(ctx, "update", tracer.SpanDataUpdate, http.MethodPatch, q, patch)
}

func (cn *Conn) Delete(ctx context.Context, q backend.Query) (int, error) {
	return cn.mutate(ctx, "delete", tracer.SpanDataDelete, http.MethodDelete, q, nil)
}

func (cn *Conn) RPC(ctx context.Context, fn string, args any, dest any) (err error) {
	ctx, span := cn.c.tracer.Start(ctx, tracer.SpanDataRPC, tracer.String(tracer.AttrFunction, fn))
	defer func() { span.End(err) }()

	tok, err := cn.token()
	if err != nil {
		return err
	}
	resp, err := cn.c.do(ctx, call{
		op:     "rpc",
		method: http.MethodPost,
		path:   "/rest/v1/rpc/" + url.PathEscape(fn),
		body:   args,
		token:  tok,
	})
	if err != nil {
		return err
	}
	if dest == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, dest); err != nil {
		return fmt.Errorf("backend rpc %s: decoding result: %w", fn, err)
	}
	return nil
}

func (cn *Conn) Ping(ctx context.Context) error {
	if _, err := cn.token(); err != nil {
		return err
	}
	return cn.c.Ping(ctx)
}
