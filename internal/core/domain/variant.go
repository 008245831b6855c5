package domain

import (
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// VariantSeparator joins the field values of a variant key.
const VariantSeparator = "-"

// reservedFieldNames are accessor names a schema field may not shadow.
var reservedFieldNames = []string{"str", "string"}

// Field is one named dimension of a variant schema and its allowed values.
type Field struct {
	Name    string
	Options []string
}

// Schema is an ordered list of fields that a variant key is parsed against.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema validates the fields and returns a schema.
func NewSchema(fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, zerr.Wrap(ErrInvalidSchema, "schema has no fields")
	}

	s := &Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	for i, f := range fields {
		if f.Name == "" {
			return nil, zerr.With(zerr.Wrap(ErrInvalidSchema, "field name is empty"), "position", i)
		}
		if slices.Contains(reservedFieldNames, strings.ToLower(f.Name)) {
			return nil, zerr.With(zerr.Wrap(ErrInvalidSchema, "field name is reserved"), "field", f.Name)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, zerr.With(zerr.Wrap(ErrInvalidSchema, "duplicate field"), "field", f.Name)
		}
		if len(f.Options) == 0 {
			return nil, zerr.With(zerr.Wrap(ErrInvalidSchema, "field has no options"), "field", f.Name)
		}
		for _, opt := range f.Options {
			if opt == "" || strings.Contains(opt, VariantSeparator) {
				err := zerr.Wrap(ErrInvalidSchema, "option must be non-empty and must not contain "+VariantSeparator)
				return nil, zerr.With(zerr.With(err, "field", f.Name), "option", opt)
			}
		}

		s.fields[i] = Field{Name: f.Name, Options: slices.Clone(f.Options)}
		s.index[f.Name] = i
	}

	return s, nil
}

// Fields returns a copy of the schema fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = Field{Name: f.Name, Options: slices.Clone(f.Options)}
	}
	return out
}

// Parse validates key against the schema.
func (s *Schema) Parse(key string) (Variant, error) {
	parts := strings.Split(key, VariantSeparator)
	if len(parts) != len(s.fields) {
		err := zerr.Wrap(ErrSchemaViolation, fmt.Sprintf("%q has %d fields", key, len(parts)))
		err = zerr.With(err, "variant", key)
		return Variant{}, zerr.With(err, "expected_fields", len(s.fields))
	}

	for i, value := range parts {
		f := s.fields[i]
		if slices.Contains(f.Options, value) {
			continue
		}
		msg := fmt.Sprintf("%s is not valid for field %s; valid options are: %s",
			value, f.Name, strings.Join(f.Options, ", "))
		err := zerr.Wrap(ErrSchemaViolation, msg)
		err = zerr.With(err, "field", f.Name)
		err = zerr.With(err, "value", value)
		return Variant{}, zerr.With(err, "valid_options", slices.Clone(f.Options))
	}

	return Variant{schema: s, key: key}, nil
}

// ParseVariant parses key against schema.
func ParseVariant(key string, schema *Schema) (Variant, error) {
	return schema.Parse(key)
}

// Variant is a validated build configuration key. It is comparable and can
// be used as a map key.
type Variant struct {
	schema *Schema
	key    string
}

// String returns the dash-separated key the variant was parsed from.
func (v Variant) String() string {
	return v.key
}

// IsZero reports whether v is the zero Variant.
func (v Variant) IsZero() bool {
	return v.schema == nil
}

// Schema returns the schema v was parsed against.
func (v Variant) Schema() *Schema {
	return v.schema
}

// Get returns the value of the named field, or "" if the schema has no such field.
func (v Variant) Get(field string) string {
	if v.schema == nil {
		return ""
	}
	i, ok := v.schema.index[field]
	if !ok {
		return ""
	}
	return strings.Split(v.key, VariantSeparator)[i]
}

// Has reports whether the named field holds value.
func (v Variant) Has(field, value string) bool {
	return v.Get(field) == value
}

// Matches reports whether every field in want holds the given value.
func (v Variant) Matches(want map[string]string) bool {
	for field, value := range want {
		if !v.Has(field, value) {
			return false
		}
	}
	return true
}

// Compare orders variants by their string form.
func (v Variant) Compare(other Variant) int {
	return strings.Compare(v.key, other.key)
}

// SortVariants sorts variants in place by their string form.
func SortVariants(vs []Variant) {
	slices.SortFunc(vs, Variant.Compare)
}
