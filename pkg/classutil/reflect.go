package classutil

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// ErrNotStruct is returned when an operation needs a struct or a pointer to one.
var ErrNotStruct = errors.New("value is not a struct")

// PropertyError reports a failed reflective access.
type PropertyError struct {
	Type string
	Name string
	Err  error
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Type, e.Name, e.Err)
}

func (e *PropertyError) Unwrap() error {
	return e.Err
}

var errNoSuchProperty = errors.New("no such property")

func structValue(obj any) (reflect.Value, error) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, ErrNotStruct
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, ErrNotStruct
	}
	return v, nil
}

func findField(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if strings.EqualFold(f.Name, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// GetProperty returns the exported field of obj whose name matches name
// case-insensitively.
func GetProperty(obj any, name string) (any, error) {
	v, err := structValue(obj)
	if err != nil {
		return nil, err
	}
	f, ok := findField(v, name)
	if !ok {
		return nil, &PropertyError{Type: v.Type().Name(), Name: name, Err: errNoSuchProperty}
	}
	return f.Interface(), nil
}

// SetProperty assigns value to the exported field matching name. obj must be
// a pointer to a struct. Values of a different kind are converted with cast.
func SetProperty(obj any, name string, value any) error {
	if reflect.ValueOf(obj).Kind() != reflect.Pointer {
		return fmt.Errorf("set %s: %w (pointer required)", name, ErrNotStruct)
	}
	v, err := structValue(obj)
	if err != nil {
		return err
	}
	f, ok := findField(v, name)
	if !ok {
		return &PropertyError{Type: v.Type().Name(), Name: name, Err: errNoSuchProperty}
	}

	converted, err := convertTo(value, f.Type())
	if err != nil {
		return &PropertyError{Type: v.Type().Name(), Name: name, Err: err}
	}
	f.Set(converted)
	return nil
}

// Properties returns the exported fields of obj keyed by field name.
func Properties(obj any) (map[string]any, error) {
	v, err := structValue(obj)
	if err != nil {
		return nil, err
	}
	t := v.Type()
	props := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			props[t.Field(i).Name] = v.Field(i).Interface()
		}
	}
	return props, nil
}

// CallMethod invokes the exported method name on obj. Arguments are
// converted to the parameter types where possible. A trailing error result
// is returned as the error; remaining results are returned as a slice.
func CallMethod(obj any, name string, args ...any) ([]any, error) {
	v := reflect.ValueOf(obj)
	if !v.IsValid() {
		return nil, fmt.Errorf("call %s: nil receiver", name)
	}
	m := v.MethodByName(name)
	if !m.IsValid() {
		return nil, &PropertyError{Type: v.Type().String(), Name: name, Err: errors.New("no such method")}
	}

	mt := m.Type()
	if mt.IsVariadic() {
		if len(args) < mt.NumIn()-1 {
			return nil, fmt.Errorf("call %s: want at least %d arguments, got %d", name, mt.NumIn()-1, len(args))
		}
	} else if len(args) != mt.NumIn() {
		return nil, fmt.Errorf("call %s: want %d arguments, got %d", name, mt.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if mt.IsVariadic() && i >= mt.NumIn()-1 {
			pt = mt.In(mt.NumIn() - 1).Elem()
		} else {
			pt = mt.In(i)
		}
		cv, err := convertTo(a, pt)
		if err != nil {
			return nil, fmt.Errorf("call %s: argument %d: %w", name, i, err)
		}
		in[i] = cv
	}

	out := m.Call(in)
	var callErr error
	errType := reflect.TypeOf((*error)(nil)).Elem()
	if n := len(out); n > 0 && mt.Out(n-1) == errType {
		if e := out[n-1]; !e.IsNil() {
			callErr = e.Interface().(error)
		}
		out = out[:n-1]
	}
	results := make([]any, len(out))
	for i, o := range out {
		results[i] = o.Interface()
	}
	return results, callErr
}

func convertTo(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	var (
		out any
		err error
	)
	switch t.Kind() {
	case reflect.String:
		out, err = cast.ToStringE(value)
	case reflect.Bool:
		out, err = cast.ToBoolE(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		n, err = cast.ToInt64E(value)
		out = n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64
		n, err = cast.ToUint64E(value)
		out = n
	case reflect.Float32, reflect.Float64:
		var f float64
		f, err = cast.ToFloat64E(value)
		out = f
	default:
		if rv.Type().ConvertibleTo(t) {
			return rv.Convert(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot convert %T to %s", value, t)
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(out).Convert(t), nil
}
