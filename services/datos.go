package services

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/dicri/evidence-api/database"
)

// EncodeDatosGenerales prepara datosGenerales para el procedimiento.
// El frontend a veces lo manda como objeto, a veces como texto JSON y a veces
// como texto JSON escapado dos veces; el procedimiento siempre recibe el JSON
// de un solo nivel. Un texto que no es JSON se envía tal cual.
func EncodeDatosGenerales(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if IsBlankJSON(raw) {
		return "", newError(ErrValidation, "El campo datosGenerales es requerido.", nil)
	}

	if raw[0] != '"' {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", newError(ErrValidation, "El campo datosGenerales no es JSON válido.", err)
		}
		return buf.String(), nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", newError(ErrValidation, "El campo datosGenerales no es JSON válido.", err)
	}
	if !json.Valid([]byte(text)) {
		return text, nil
	}

	var inner any
	if err := json.Unmarshal([]byte(text), &inner); err == nil {
		if unwrapped, ok := inner.(string); ok {
			return unwrapped, nil
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return text, nil
	}
	return buf.String(), nil
}

// IsBlankJSON indica si el valor está ausente, es null o es un texto vacío
func IsBlankJSON(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`""`))
}

// DecodeDatosGenerales recupera la estructura de datosGenerales tal como la
// devuelve la base de datos. Si el texto viene entre comillas se decodifica
// una vez, y otra más si el resultado sigue siendo texto; si empieza con { o [
// se decodifica una vez. Cuando falla retorna el texto original junto al error.
func DecodeDatosGenerales(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return decodeDatosText(string(t))
	case string:
		return decodeDatosText(t)
	default:
		return t, nil
	}
}

func decodeDatosText(original string) (any, error) {
	text := strings.TrimSpace(original)

	switch {
	case len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`):
		var out any
		if err := json.Unmarshal([]byte(text), &out); err != nil {
			return original, err
		}
		if inner, ok := out.(string); ok {
			var again any
			if err := json.Unmarshal([]byte(inner), &again); err != nil {
				return original, err
			}
			return again, nil
		}
		return out, nil
	case strings.HasPrefix(text, "{"), strings.HasPrefix(text, "["):
		var out any
		if err := json.Unmarshal([]byte(text), &out); err != nil {
			return original, err
		}
		return out, nil
	}
	return original, nil
}

// codigoDe extrae el campo codigo de unos datosGenerales ya decodificados
func codigoDe(datos any) *string {
	m, ok := datos.(map[string]any)
	if !ok {
		return nil
	}
	v, ok := database.Row(m).Lookup("codigo")
	if !ok {
		return nil
	}
	s := database.ToString(v)
	return &s
}
