// Package tag fills zero struct fields from their `default` tags.
package tag

import (
	"encoding"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	durationType        = reflect.TypeFor[time.Duration]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

type options struct {
	name      string
	separator string
}

// Option configures ApplyDefaults.
type Option func(*options)

// WithTagName reads defaults from another tag key, "default" otherwise.
func WithTagName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithSeparator splits slice defaults on sep, "," otherwise.
func WithSeparator(sep string) Option {
	return func(o *options) {
		o.separator = sep
	}
}

// ApplyDefaults walks target, a pointer to a struct, and sets every zero
// field that carries a default tag. Nested structs are always visited, non-nil
// struct pointers are followed, and a nil pointer is only allocated when its
// own field is tagged. A field tagged "-" is skipped entirely. Fields that
// already hold a value are left untouched, so calling it again after decoding
// is safe.
//
//	type Server struct {
//	    Addr    string        `default:":8080"`
//	    Timeout time.Duration `default:"5s"`
//	}
func ApplyDefaults(target any, opts ...Option) error {
	o := options{name: "default", separator: ","}
	for _, opt := range opts {
		opt(&o)
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}
	return o.walk(v.Elem(), "")
}

func (o *options) walk(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}
		def := field.Tag.Get(o.name)
		if def == "-" {
			continue
		}
		if err := o.field(v.Field(i), def, path); err != nil {
			return err
		}
	}
	return nil
}

func (o *options) field(v reflect.Value, def, path string) error {
	switch v.Kind() {
	case reflect.Struct:
		if def == "" || !v.Addr().Type().Implements(textUnmarshalerType) {
			return o.walk(v, path)
		}
	case reflect.Pointer:
		if !v.IsNil() {
			// a set pointer is a choice already made, only structs are followed
			if v.Elem().Kind() == reflect.Struct {
				return o.field(v.Elem(), "", path)
			}
			return nil
		}
		if def == "" {
			return nil
		}
		v.Set(reflect.New(v.Type().Elem()))
		return o.field(v.Elem(), def, path)
	case reflect.Slice:
		if v.Len() > 0 {
			for i := range v.Len() {
				if err := o.element(v.Index(i), path+"["+strconv.Itoa(i)+"]"); err != nil {
					return err
				}
			}
			return nil
		}
	}

	if def == "" || !v.IsZero() {
		return nil
	}
	if err := o.set(v, def); err != nil {
		return &FieldError{Path: path, Value: def, Err: err}
	}
	return nil
}

// element descends into configured slice entries so each gets its own defaults.
func (o *options) element(v reflect.Value, path string) error {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return o.walk(v, path)
}

func (o *options) set(v reflect.Value, s string) error {
	if v.CanAddr() && v.Addr().Type().Implements(textUnmarshalerType) {
		return v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type() == durationType {
			d, err := time.ParseDuration(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			v.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			v.SetBytes([]byte(s))
			return nil
		}
		parts := strings.Split(s, o.separator)
		slice := reflect.MakeSlice(v.Type(), len(parts), len(parts))
		for i, part := range parts {
			if err := o.set(slice.Index(i), strings.TrimSpace(part)); err != nil {
				return err
			}
		}
		v.Set(slice)
	case reflect.Map:
		m := reflect.MakeMap(v.Type())
		for _, pair := range strings.Split(s, o.separator) {
			key, val, ok := strings.Cut(pair, ":")
			if !ok {
				return ErrUnsupportedType
			}
			k := reflect.New(v.Type().Key()).Elem()
			e := reflect.New(v.Type().Elem()).Elem()
			if err := o.set(k, strings.TrimSpace(key)); err != nil {
				return err
			}
			if err := o.set(e, strings.TrimSpace(val)); err != nil {
				return err
			}
			m.SetMapIndex(k, e)
		}
		v.Set(m)
	default:
		return ErrUnsupportedType
	}
	return nil
}
