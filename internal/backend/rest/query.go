package rest

import (
	"net/url"
	"strconv"
	"strings"

	"orcs/internal/backend"
)

// encodeQuery renders q in PostgREST's horizontal filtering syntax:
// select=cols&col=eq.v&col=in.(a,b)&order=c.desc&limit=n
func encodeQuery(q backend.Query) url.Values {
	v := url.Values{}
	if q.Columns != "" {
		v.Set("select", q.Columns)
	}
	for _, f := range q.Filters {
		switch f.Op {
		case backend.OpEq:
			if backend.IsNull(f.Value) {
				v.Add(f.Column, "is.null")
			} else {
				v.Add(f.Column, "eq."+backend.FormatValue(f.Value))
			}
		case backend.OpIn:
			items := make([]string, len(f.Values))
			for i, x := range f.Values {
				items[i] = quoteListItem(backend.FormatValue(x))
			}
			v.Add(f.Column, "in.("+strings.Join(items, ",")+")")
		}
	}
	if len(q.Orders) > 0 {
		parts := make([]string, len(q.Orders))
		for i, o := range q.Orders {
			dir := "asc"
			if o.Desc {
				dir = "desc"
			}
			parts[i] = o.Column + "." + dir
		}
		v.Set("order", strings.Join(parts, ","))
	}
	if q.RowLimit > 0 {
		v.Set("limit", strconv.Itoa(q.RowLimit))
	}
	return v
}

// quoteListItem double-quotes values that contain PostgREST list syntax.
func quoteListItem(s string) string {
	if !strings.ContainsAny(s, `,.:()" \`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
