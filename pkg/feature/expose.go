package feature

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// exposeTag marks configurable feature fields, e.g. `expose:"heal"`.
const exposeTag = "expose"

// Decode applies cfg to the exposed fields of target. Unknown keys are rejected.
func Decode(cfg map[string]any, target any) error {
	if len(cfg) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          exposeTag,
		Result:           target,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Squash:           true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

var textMarshaler = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

// Expose returns the exposed fields of f keyed by tag name. Durations and
// text marshalers are rendered as strings.
func Expose(f any) map[string]any {
	out := make(map[string]any)
	v := reflect.ValueOf(f)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return out
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return out
	}
	exposeStruct(v, out)
	return out
}

func exposeStruct(v reflect.Value, out map[string]any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup(exposeTag)
		if !ok {
			if field.Anonymous && field.Type.Kind() == reflect.Struct && field.IsExported() {
				exposeStruct(v.Field(i), out)
			}
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" || !field.IsExported() {
			continue
		}
		out[name] = exposedValue(v.Field(i))
	}
}

func exposedValue(v reflect.Value) any {
	if d, ok := v.Interface().(time.Duration); ok {
		return d.String()
	}
	if v.Type().Implements(textMarshaler) {
		if text, err := v.Interface().(encoding.TextMarshaler).MarshalText(); err == nil {
			return string(text)
		}
	}
	if v.Kind() == reflect.String {
		return v.String()
	}
	return v.Interface()
}
