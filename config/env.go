package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// lookupFunc matches os.LookupEnv.
type lookupFunc func(key string) (string, bool)

// applyEnv overrides every field tagged `env:"NAME"` whose variable is set.
// All bad values are reported together.
func applyEnv(cfg any, lookup lookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("env overrides need a pointer to a struct, got %T", cfg)
	}
	var errs []error
	walkEnv(v.Elem(), lookup, &errs)
	return errors.Join(errs...)
}

func walkEnv(v reflect.Value, lookup lookupFunc, errs *[]error) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf, field := t.Field(i), v.Field(i)
		if !sf.IsExported() {
			continue
		}
		if field.Kind() == reflect.Struct {
			walkEnv(field, lookup, errs)
			continue
		}
		name, ok := sf.Tag.Lookup("env")
		if !ok || name == "" {
			continue
		}
		raw, set := lookup(name)
		if !set {
			continue
		}
		if err := assign(field, raw); err != nil {
			*errs = append(*errs, fmt.Errorf("%s: %w", name, err))
		}
	}
}

// assign parses raw into field. String slices are comma separated and
// empty items are dropped.
func assign(field reflect.Value, raw string) error {
	trimmed := strings.TrimSpace(raw)
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(trimmed, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("%q is not an integer", raw)
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(trimmed, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("%q is not an unsigned integer", raw)
		}
		field.SetUint(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(trimmed)
		if err != nil {
			return fmt.Errorf("%q is not a boolean", raw)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("cannot set %s from the environment", field.Type())
		}
		items := []string{}
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("cannot set %s from the environment", field.Type())
	}
	return nil
}
