package backend

// Op is a filter operator understood by every DataAPI implementation.
type Op string

const (
	OpEq Op = "eq"
	OpIn Op = "in"
)

// Filter restricts rows. For OpIn, Values holds the candidate set.
type Filter struct {
	Column string
	Op     Op
	Value  any
	Values []any
}

type Order struct {
	Column string
	Desc   bool
}

// Query describes a read, or the target rows of an update or delete.
// Builder methods return copies, so a base query can be reused:
//
//	pending := backend.From(backend.TableKeyTransfers).Eq("confirmed", false)
//	q := pending.OrderDesc("transfer_date")
type Query struct {
	Table    string
	Columns  string
	Filters  []Filter
	Orders   []Order
	RowLimit int
}

// From starts a query selecting every column of table.
func From(table string) Query {
	return Query{Table: table, Columns: "*"}
}

func (q Query) Select(columns string) Query {
	q.Columns = columns
	return q
}

func (q Query) Eq(column string, value any) Query {
	q.Filters = appendFilter(q.Filters, Filter{Column: column, Op: OpEq, Value: value})
	return q
}

// In keeps rows whose column is one of values. An empty set matches nothing.
func (q Query) In(column string, values ...any) Query {
	vs := make([]any, len(values))
	copy(vs, values)
	q.Filters = appendFilter(q.Filters, Filter{Column: column, Op: OpIn, Values: vs})
	return q
}

func (q Query) OrderAsc(column string) Query {
	q.Orders = appendOrder(q.Orders, Order{Column: column})
	return q
}

func (q Query) OrderDesc(column string) Query {
	q.Orders = appendOrder(q.Orders, Order{Column: column, Desc: true})
	return q
}

// Limit caps the number of rows; n <= 0 removes the cap.
func (q Query) Limit(n int) Query {
	if n < 0 {
		n = 0
	}
	q.RowLimit = n
	return q
}

// Values converts a typed slice for use with In.
func Values[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func appendFilter(fs []Filter, f Filter) []Filter {
	out := make([]Filter, len(fs), len(fs)+1)
	copy(out, fs)
	return append(out, f)
}

func appendOrder(os []Order, o Order) []Order {
	out := make([]Order, len(os), len(os)+1)
	copy(out, os)
	return append(out, o)
}
