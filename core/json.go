package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

var knownJSONKeys = map[string]bool{
	"source_id":      true,
	"amount":         true,
	"description":    true,
	"date":           true,
	"category":       true,
	"vendor":         true,
	"payment_method": true,
	"notes":          true,
}

// UnmarshalJSON decodes a flat JSON object. Keys outside the known field
// set are kept in Extra; non-string values are stored as their JSON text.
// Dates may be RFC 3339 timestamps or YYYY-MM-DD; amounts may be numbers or
// numeric strings.
func (r *IncomingRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out IncomingRecord
	for key, value := range raw {
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		var err error
		switch key {
		case "source_id":
			out.SourceID, err = decodeText(value)
		case "amount":
			out.Amount, err = decodeAmount(value)
		case "description":
			err = json.Unmarshal(value, &out.Description)
		case "date":
			out.Date, err = decodeDate(value)
		case "category":
			err = json.Unmarshal(value, &out.Category)
		case "vendor":
			err = json.Unmarshal(value, &out.Vendor)
		case "payment_method":
			err = json.Unmarshal(value, &out.PaymentMethod)
		case "notes":
			err = json.Unmarshal(value, &out.Notes)
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]string)
			}
			out.Extra[key], err = decodeText(value)
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	*r = out
	return nil
}

// MarshalJSON encodes the record as a flat object, the inverse of
// UnmarshalJSON. Extra keys never shadow known fields.
func (r IncomingRecord) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(knownJSONKeys)+len(r.Extra))
	for k, v := range r.Extra {
		if !knownJSONKeys[k] {
			obj[k] = v
		}
	}
	obj["source_id"] = r.SourceID
	obj["amount"] = r.Amount
	obj["description"] = r.Description
	if !r.Date.IsZero() {
		obj["date"] = r.Date.Format(time.RFC3339)
	}
	for key, value := range map[string]string{
		"category":       r.Category,
		"vendor":         r.Vendor,
		"payment_method": r.PaymentMethod,
		"notes":          r.Notes,
	} {
		if value != "" {
			obj[key] = value
		}
	}
	return json.Marshal(obj)
}

// decodeText accepts a JSON string, or any other value as its compact JSON text.
func decodeText(value json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, value); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func decodeAmount(value json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(value, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return 0, fmt.Errorf("amount must be a number")
	}
	return strconv.ParseFloat(s, 64)
}

func decodeDate(value json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
