// Package codec also provides the tagged-union engine used by every closed
// family of payloads in the schema.
//
// A union value travels as a record with exactly one key, the variant name,
// whose value is the variant's payload:
//
//	{"createUser": {"id": "3", "name": "emi", "email": "emi@example.com"}}
//
// Decoding reads the record's key set once, then tries the variants in
// declaration order. A variant is skipped when its key is absent or null, or
// when its payload fails a strict trial parse. The first success wins, so when
// two variants overlap the earlier-declared one is always chosen.
package codec

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

var (
	ErrNoMatchingVariant = errors.New("no matching variant")
	ErrNotRecord         = errors.New("not a record")
	ErrMissingField      = errors.New("missing required field")
)

// NoMatchError is returned when no variant of a union accepts the input.
type NoMatchError struct {
	Union string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("codec: %s for %s", ErrNoMatchingVariant, e.Union)
}

func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatchingVariant
}

// Variant is one case of a Union. Decode is the trial parse: it receives the
// raw value stored under Key and must fail if the shape does not fit.
type Variant[T any] struct {
	Key    string
	Decode func(c Codec, raw []byte) (T, error)
}

// Union is a closed, ordered set of variants.
type Union[T any] struct {
	Name     string
	Variants []Variant[T]
}

func NewUnion[T any](name string, variants ...Variant[T]) *Union[T] {
	return &Union[T]{Name: name, Variants: variants}
}

// Decode returns the first variant, in declaration order, whose trial parse
// accepts data.
func (u *Union[T]) Decode(c Codec, data []byte) (T, error) {
	var zero T
	fields, err := c.Fields(data)
	if err != nil {
		return zero, fmt.Errorf("codec: decode %s: %w", u.Name, err)
	}
	for _, v := range u.Variants {
		raw, ok := fields[v.Key]
		if !ok || c.IsNull(raw) {
			continue
		}
		val, err := v.Decode(c, raw)
		if err != nil {
			continue
		}
		return val, nil
	}
	return zero, &NoMatchError{Union: u.Name}
}

// Keys lists the variant keys in trial order.
func (u *Union[T]) Keys() []string {
	keys := make([]string, len(u.Variants))
	for i, v := range u.Variants {
		keys[i] = v.Key
	}
	return keys
}

// EncodeVariant writes payload nested under key, producing a single-key record.
func EncodeVariant(c Codec, key string, payload any) ([]byte, error) {
	raw, err := c.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("codec: encode %s: %w", key, err)
	}
	return c.Object(map[string][]byte{key: raw})
}

// Payload is the strict trial parse for a record type P. Every exported field
// that is neither a pointer nor tagged omitempty must be present and non-null,
// and the typed decode must succeed.
func Payload[P any](c Codec, raw []byte) (P, error) {
	var p P
	fields, err := c.Fields(raw)
	if err != nil {
		return p, err
	}
	if err := Require(c, fields, requiredFields(reflect.TypeOf(p))...); err != nil {
		return p, err
	}
	if err := c.Decode(raw, &p); err != nil {
		return p, err
	}
	return p, nil
}

// Require checks that every name is present and non-null in fields.
func Require(c Codec, fields map[string][]byte, names ...string) error {
	for _, name := range names {
		v, ok := fields[name]
		if !ok || c.IsNull(v) {
			return fmt.Errorf("%w %q", ErrMissingField, name)
		}
	}
	return nil
}

var requiredCache sync.Map // reflect.Type -> []string

func requiredFields(t reflect.Type) []string {
	if t == nil {
		return nil
	}
	if cached, ok := requiredCache.Load(t); ok {
		return cached.([]string)
	}
	var names []string
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() || f.Anonymous {
				continue
			}
			name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" && opts == "" {
				continue
			}
			if name == "" {
				name = f.Name
			}
			if f.Type.Kind() == reflect.Pointer || hasOption(opts, "omitempty") {
				continue
			}
			names = append(names, name)
		}
	}
	requiredCache.Store(t, names)
	return names
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if o == want {
			return true
		}
	}
	return false
}
