package backend

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// Decode converts src (maps, slices of maps, structs) into dest through JSON,
// the same path rows take over the wire.
func Decode(src any, dest any) error {
	if dest == nil {
		return nil
	}
	raw, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("encoding rows: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decoding rows: %w", err)
	}
	return nil
}

// DecodeSingle decodes the only element of rows into dest, applying the
// maybe-single rules of SelectOne.
func DecodeSingle[T any](rows []T, dest any) error {
	switch len(rows) {
	case 0:
		return ErrNoRows
	case 1:
		return Decode(rows[0], dest)
	default:
		return ErrMultipleRows
	}
}

// FormatValue renders a filter value the way PostgREST expects it in a URL.
func FormatValue(v any) string {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "null"
		}
		return FormatValue(rv.Elem().Interface())
	}
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// IsNull reports whether v is nil or a nil pointer. Eq filters on a null
// value select rows where the column IS NULL.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
