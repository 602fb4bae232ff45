package database

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Row es una fila cruda de un procedimiento. Los nombres de columna pueden
// venir en PascalCase, camelCase o en minúsculas, así que todo acceso es
// insensible a mayúsculas y recibe varios nombres candidatos.
type Row map[string]any

// Lookup retorna el primer valor no vacío entre los candidatos.
// nil, "", 0 y false cuentan como vacíos.
func (r Row) Lookup(keys ...string) (any, bool) {
	for _, key := range keys {
		for col, v := range r {
			if strings.EqualFold(col, key) && !isEmpty(v) {
				return v, true
			}
		}
	}
	return nil, false
}

// Raw retorna el primer valor no nulo entre los candidatos, aunque esté vacío
func (r Row) Raw(keys ...string) (any, bool) {
	for _, key := range keys {
		for col, v := range r {
			if strings.EqualFold(col, key) && v != nil {
				return v, true
			}
		}
	}
	return nil, false
}

// Int retorna el primer candidato convertible a entero, o 0
func (r Row) Int(keys ...string) int {
	v, ok := r.Lookup(keys...)
	if !ok {
		return 0
	}
	n, ok := ToInt(v)
	if !ok {
		return 0
	}
	return n
}

// String retorna el primer candidato como texto, o ""
func (r Row) String(keys ...string) string {
	v, ok := r.Lookup(keys...)
	if !ok {
		return ""
	}
	return ToString(v)
}

// StringPtr es como String pero distingue la ausencia con nil
func (r Row) StringPtr(keys ...string) *string {
	v, ok := r.Lookup(keys...)
	if !ok {
		return nil
	}
	s := ToString(v)
	return &s
}

// Time retorna el primer candidato que sea una marca de tiempo
func (r Row) Time(keys ...string) *time.Time {
	v, ok := r.Lookup(keys...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return &t
	case pgtype.Timestamp:
		if t.Valid {
			return &t.Time
		}
	case pgtype.Timestamptz:
		if t.Valid {
			return &t.Time
		}
	case pgtype.Date:
		if t.Valid {
			return &t.Time
		}
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return &parsed
			}
		}
	}
	return nil
}

// ToInt convierte los tipos numéricos que entrega pgx a int
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	case pgtype.Numeric:
		f, ok := NumericFloat(n)
		return int(f), ok
	}
	return 0, false
}

// ToFloat convierte los tipos numéricos que entrega pgx a float64
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case pgtype.Numeric:
		return NumericFloat(n)
	}
	return 0, false
}

// NumericFloat convierte un NUMERIC de PostgreSQL a float64
func NumericFloat(n pgtype.Numeric) (float64, bool) {
	if !n.Valid || n.NaN {
		return 0, false
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid || math.IsInf(f.Float64, 0) {
		return 0, false
	}
	return f.Float64, true
}

// ToString representa un valor de columna como texto
func ToString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case time.Time:
		return s.Format(time.RFC3339)
	case pgtype.Numeric:
		if f, ok := NumericFloat(s); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return ""
	case fmt.Stringer:
		return s.String()
	}
	if f, ok := ToFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case pgtype.Numeric:
		f, ok := NumericFloat(x)
		return !ok || f == 0
	}
	if f, ok := ToFloat(v); ok {
		return f == 0
	}
	return false
}
