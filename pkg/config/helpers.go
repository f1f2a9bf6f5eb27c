package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/quiltinst/pkg/errors"
)

// SetValue sets a configuration value by its dotted yaml key, e.g.
// "download_attempts" or "platform.os". The result is not validated; call
// Validate before saving.
func (c *Config) SetValue(key, value string) error {
	field, ok := lookupField(reflect.ValueOf(&c.Settings).Elem(), key)
	if !ok {
		return errors.ErrUnknownConfigKeyWithName(key)
	}

	switch {
	case field.Type() == reflect.TypeOf(time.Duration(0)):
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.ErrInvalidConfigValueWithDetails(key, value)
		}
		field.SetInt(int64(d))
	case field.Kind() == reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.ErrInvalidConfigValueWithDetails(key, value)
		}
		field.SetInt(int64(n))
	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.ErrInvalidConfigValueWithDetails(key, value)
		}
		field.SetBool(b)
	case field.Kind() == reflect.String:
		field.SetString(value)
	default:
		return errors.ErrUnknownConfigKeyWithName(key)
	}
	return nil
}

// GetValue returns the value for a dotted yaml key as a string.
func (c *Config) GetValue(key string) (string, error) {
	field, ok := lookupField(reflect.ValueOf(c.Settings), key)
	if !ok || field.Kind() == reflect.Struct {
		return "", errors.ErrUnknownConfigKeyWithName(key)
	}
	return formatValue(field), nil
}

// ToMap flattens the settings into dotted yaml keys.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)
	flatten(reflect.ValueOf(c.Settings), "", result)
	return result
}

// Keys returns every settable key in sorted order.
func (c *Config) Keys() []string {
	m := c.ToMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func yamlKey(field reflect.StructField) string {
	tag := field.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return ""
	}
	// Handle yaml tags with options (e.g., "client_dir,omitempty")
	return strings.Split(tag, ",")[0]
}

func lookupField(v reflect.Value, key string) (reflect.Value, bool) {
	head, rest, nested := strings.Cut(key, ".")
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if yamlKey(t.Field(i)) != head {
			continue
		}
		f := v.Field(i)
		if nested {
			if f.Kind() != reflect.Struct {
				return reflect.Value{}, false
			}
			return lookupField(f, rest)
		}
		return f, true
	}
	return reflect.Value{}, false
}

func flatten(v reflect.Value, prefix string, out map[string]string) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		key := yamlKey(t.Field(i))
		if key == "" {
			continue
		}
		f := v.Field(i)
		if f.Kind() == reflect.Struct {
			flatten(f, prefix+key+".", out)
			continue
		}
		out[prefix+key] = formatValue(f)
	}
}

func formatValue(f reflect.Value) string {
	if d, ok := f.Interface().(time.Duration); ok {
		return d.String()
	}
	switch f.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(f.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(f.Int(), 10)
	case reflect.String:
		return f.String()
	default:
		return fmt.Sprintf("%v", f.Interface())
	}
}

// NewDefaultConfig creates a new configuration with default values.
func NewDefaultConfig() *Config {
	return DefaultConfig()
}
