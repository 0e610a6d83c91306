package core

import (
	"fmt"
	"maps"
	"strings"
)

// Field names a comparable attribute of RecordFields.
// Passthrough entries are addressed as "extra.<key>".
type Field string

const (
	FieldAmount        Field = "amount"
	FieldDescription   Field = "description"
	FieldDate          Field = "date"
	FieldCategory      Field = "category"
	FieldVendor        Field = "vendor"
	FieldPaymentMethod Field = "payment_method"
	FieldNotes         Field = "notes"

	extraFieldPrefix = "extra."
)

// DefaultCompareFields is the field set whose change triggers an update.
// Payment method, notes and extra fields are excluded unless configured.
var DefaultCompareFields = []Field{
	FieldAmount,
	FieldDescription,
	FieldDate,
	FieldCategory,
	FieldVendor,
}

// ExtraField addresses a key inside RecordFields.Extra.
func ExtraField(key string) Field {
	return Field(extraFieldPrefix + key)
}

// ParseField converts a configured name into a Field.
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch f := Field(name); f {
	case FieldAmount, FieldDescription, FieldDate, FieldCategory, FieldVendor, FieldPaymentMethod, FieldNotes:
		return f, nil
	}
	if key, ok := strings.CutPrefix(name, extraFieldPrefix); ok && key != "" {
		return ExtraField(key), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// ParseFields converts a list of configured names.
func ParseFields(names []string) ([]Field, error) {
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		f, err := ParseField(name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// FieldEqual compares one field of two field sets.
// Amounts use simple inequality and dates compare instants.
func FieldEqual(f Field, a, b *RecordFields) bool {
	switch f {
	case FieldAmount:
		return a.Amount == b.Amount
	case FieldDescription:
		return a.Description == b.Description
	case FieldDate:
		return a.Date.Equal(b.Date)
	case FieldCategory:
		return a.Category == b.Category
	case FieldVendor:
		return a.Vendor == b.Vendor
	case FieldPaymentMethod:
		return a.PaymentMethod == b.PaymentMethod
	case FieldNotes:
		return a.Notes == b.Notes
	}
	if key, ok := strings.CutPrefix(string(f), extraFieldPrefix); ok {
		return a.Extra[key] == b.Extra[key]
	}
	return true
}

// ChangedFields returns the fields in set whose values differ.
func ChangedFields(set []Field, existing, incoming *RecordFields) []Field {
	var changed []Field
	for _, f := range set {
		if !FieldEqual(f, existing, incoming) {
			changed = append(changed, f)
		}
	}
	return changed
}

// Clone returns a copy that does not share the Extra map.
func (f RecordFields) Clone() RecordFields {
	out := f
	if f.Extra != nil {
		out.Extra = maps.Clone(f.Extra)
	}
	return out
}

// DefaultPreservedFields are filled by enrichment, so an empty incoming
// value keeps whatever is already stored.
var DefaultPreservedFields = []Field{
	FieldCategory,
	FieldVendor,
}

// FillEmpty copies each field in set from stored into dst where dst holds
// an empty string. Amount and date have no empty value and are skipped.
func FillEmpty(set []Field, dst, stored *RecordFields) {
	for _, f := range set {
		switch f {
		case FieldDescription:
			fillString(&dst.Description, stored.Description)
		case FieldCategory:
			fillString(&dst.Category, stored.Category)
		case FieldVendor:
			fillString(&dst.Vendor, stored.Vendor)
		case FieldPaymentMethod:
			fillString(&dst.PaymentMethod, stored.PaymentMethod)
		case FieldNotes:
			fillString(&dst.Notes, stored.Notes)
		default:
			key, ok := strings.CutPrefix(string(f), extraFieldPrefix)
			if !ok || dst.Extra[key] != "" || stored.Extra[key] == "" {
				continue
			}
			if dst.Extra == nil {
				dst.Extra = make(map[string]string)
			}
			dst.Extra[key] = stored.Extra[key]
		}
	}
}

func fillString(dst *string, stored string) {
	if *dst == "" {
		*dst = stored
	}
}
