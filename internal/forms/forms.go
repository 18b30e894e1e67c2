// Package forms turns request bodies into model changes and models into
// response representations. Catalog-backed fields are resolved here.
package forms

import (
	"bytes"
	"encoding/json"
	"strings"

	"patient-studies-server/internal/utils"
)

// Mode selects which fields a write must carry.
type Mode int

const (
	// Create requires every writable field.
	Create Mode = iota
	// Replace is a full update and requires every writable field.
	Replace
	// Partial accepts any subset of fields.
	Partial
)

func (m Mode) requiresAll() bool {
	return m != Partial
}

// nullKeys holds the body keys that were sent as JSON null. A *string
// field alone cannot tell them apart from omitted keys.
type nullKeys map[string]bool

func readNullKeys(data []byte) (nullKeys, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	nulls := nullKeys{}
	for key, value := range raw {
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			nulls[key] = true
		}
	}
	return nulls, nil
}

// textField checks a supplied string field. It reports whether the value
// should be applied.
func textField(errs utils.FieldErrors, mode Mode, nulls nullKeys, field string, value *string) bool {
	if nulls[field] {
		errs.Add(field, utils.MsgNull)
		return false
	}
	if value == nil {
		if mode.requiresAll() {
			errs.Add(field, utils.MsgRequired)
		}
		return false
	}
	if strings.TrimSpace(*value) == "" {
		errs.Add(field, utils.MsgBlank)
		return false
	}
	return true
}
