package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexInt acepta un entero como número JSON o como texto numérico.
// Set indica que el campo venía en el cuerpo con un valor no nulo.
type FlexInt struct {
	Value int
	Set   bool
}

// UnmarshalJSON implementa json.Unmarshaler
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = FlexInt{}
		return nil
	}

	var n json.Number
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = FlexInt{}
			return nil
		}
		n = json.Number(s)
	} else if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	v, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return err
	}
	*f = FlexInt{Value: int(v), Set: true}
	return nil
}

// Present indica que el valor existe y no es cero
func (f FlexInt) Present() bool {
	return f.Set && f.Value != 0
}

// FlexString acepta texto o número y conserva su representación textual
type FlexString struct {
	Value string
	Set   bool
}

// UnmarshalJSON implementa json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = FlexString{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString{Value: s, Set: true}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString{Value: n.String(), Set: true}
	return nil
}
