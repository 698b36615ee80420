package repogen

import (
	"reflect"
	"slices"
	"sort"
)

// HiddenPrefix is prepended to the payload key of a hidden field before it
// is handed to the generated assign function.
const HiddenPrefix = "$"

// HiddenKey returns the renamed payload key of a hidden field.
func HiddenKey(name string) string { return HiddenPrefix + name }

// Model is embedded by every generated repository struct. It remembers which
// payload keys carried a value so that relation accessors can tell an absent
// join column from a present one.
type Model struct {
	present map[string]struct{}
}

// Bootstrap assigns every entry of data through assign, in key order.
// Keys listed in hidden are renamed with HiddenPrefix first.
func (m *Model) Bootstrap(data map[string]any, hidden []string, assign func(key string, value any) error) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	m.present = make(map[string]struct{}, len(keys))
	for _, k := range keys {
		key := k
		if slices.Contains(hidden, k) {
			key = HiddenKey(k)
		}
		v := data[k]
		if err := assign(key, v); err != nil {
			return err
		}
		if !isZero(v) {
			m.present[k] = struct{}{}
		}
	}
	return nil
}

// Present reports whether the payload carried a non-zero value for the
// given schema field.
func (m *Model) Present(field string) bool {
	_, ok := m.present[field]
	return ok
}

// Assign stores value into dst. Values of a convertible kind are converted
// (e.g. float64 decoded from JSON into an int field) unless the conversion
// loses information, and a non-pointer value is stored behind a fresh pointer
// when dst is a pointer field.
func Assign[T any](dst *T, key string, value any) error {
	if value == nil {
		var zero T
		*dst = zero
		return nil
	}
	if v, ok := value.(T); ok {
		*dst = v
		return nil
	}
	dt := reflect.TypeOf(dst).Elem()
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			var zero T
			*dst = zero
			return nil
		}
		rv = rv.Elem()
	}
	out := reflect.ValueOf(dst).Elem()
	if dt.Kind() == reflect.Pointer {
		cv, err := convert(key, rv, dt.Elem(), value)
		if err != nil {
			return err
		}
		p := reflect.New(dt.Elem())
		p.Elem().Set(cv)
		out.Set(p)
		return nil
	}
	cv, err := convert(key, rv, dt, value)
	if err != nil {
		return err
	}
	out.Set(cv)
	return nil
}

// convert converts rv to the given type. Conversions involving integers
// must round-trip: 1.5 never lands in an int, nor 300 in an int8.
func convert(key string, rv reflect.Value, to reflect.Type, value any) (reflect.Value, error) {
	if !convertible(rv.Type(), to) {
		return reflect.Value{}, NewInvalidInputError("field %q: cannot assign %T to %s", key, value, to)
	}
	cv := rv.Convert(to)
	if !fits(rv, cv) {
		return reflect.Value{}, NewInvalidInputError("field %q: %v does not fit in %s", key, rv.Interface(), to)
	}
	return cv, nil
}

func fits(from, to reflect.Value) bool {
	if !numeric(from.Kind()) || !numeric(to.Kind()) {
		return true
	}
	if !integer(from.Kind()) && !integer(to.Kind()) {
		return true
	}
	switch {
	case from.CanInt() && to.CanUint() && from.Int() < 0,
		from.CanFloat() && to.CanUint() && from.Float() < 0:
		return false
	case from.CanUint() && to.CanInt() && to.Int() < 0:
		return false
	}
	return to.Convert(from.Type()).Equal(from)
}

// convertible rejects the conversions reflect allows but that never make
// sense for payload values, such as int to string.
func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	if to.Kind() == reflect.String && from.Kind() != reflect.String {
		return false
	}
	return true
}

func integer(k reflect.Kind) bool {
	return reflect.Int <= k && k <= reflect.Uintptr
}

func numeric(k reflect.Kind) bool {
	return integer(k) || k == reflect.Float32 || k == reflect.Float64
}

func isZero(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}

