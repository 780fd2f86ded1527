package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// KeyValue is one flattened config entry, keyed by its dotted TOML path
type KeyValue struct {
	Key    string
	Value  string
	Origin string // "config" or "default"
}

// tomlKey returns the TOML name of a struct field, or "" when untagged.
func tomlKey(field reflect.StructField) string {
	tag := field.Tag.Get("toml")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

// IsValidKey reports whether key names a Config field.
func IsValidKey(key string) bool {
	_, err := lookupField(reflect.ValueOf(Config{}), key)
	return err == nil
}

// GetConfigValue returns the value at a dotted key such as "tui.hide_scores".
func GetConfigValue(cfg *Config, key string) (string, error) {
	field, err := lookupField(reflect.ValueOf(cfg).Elem(), key)
	if err != nil {
		return "", err
	}
	return formatValue(field), nil
}

// TypedValue returns the value at key with its Go type, for writing back to
// a TOML file without losing int and bool types.
func TypedValue(cfg *Config, key string) (any, error) {
	field, err := lookupField(reflect.ValueOf(cfg).Elem(), key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// SetConfigValue parses value into the field at key and revalidates cfg.
func SetConfigValue(cfg *Config, key, value string) error {
	field, err := lookupField(reflect.ValueOf(cfg).Elem(), key)
	if err != nil {
		return err
	}
	if err := parseInto(field, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return cfg.Validate()
}

// ListConfigKeys flattens cfg into key/value pairs in declaration order,
// marking each as coming from the config file or the defaults. raw is the
// decoded file (see LoadRawTOML) and may be nil.
func ListConfigKeys(cfg *Config, raw map[string]any) []KeyValue {
	defaults := make(map[string]string)
	for _, kv := range flatten(reflect.ValueOf(DefaultConfig()).Elem(), "") {
		defaults[kv.Key] = kv.Value
	}
	kvs := flatten(reflect.ValueOf(cfg).Elem(), "")
	for i := range kvs {
		kvs[i].Origin = "default"
		if IsKeyInTOMLFile(raw, kvs[i].Key) || kvs[i].Value != defaults[kvs[i].Key] {
			kvs[i].Origin = "config"
		}
	}
	return kvs
}

// LoadRawTOML decodes path into a generic map. A missing file yields nil.
func LoadRawTOML(path string) (map[string]any, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	raw := make(map[string]any)
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// IsKeyInTOMLFile reports whether a dotted key is explicitly present in raw,
// including explicit false and 0 values.
func IsKeyInTOMLFile(raw map[string]any, key string) bool {
	head, rest, nested := strings.Cut(key, ".")
	val, ok := raw[head]
	if !ok {
		return false
	}
	if !nested {
		return true
	}
	sub, ok := val.(map[string]any)
	return ok && IsKeyInTOMLFile(sub, rest)
}

func lookupField(v reflect.Value, key string) (reflect.Value, error) {
	head, rest, nested := strings.Cut(key, ".")
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if tomlKey(t.Field(i)) != head {
			continue
		}
		fv := v.Field(i)
		if !nested {
			if fv.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("config key %q is a section", key)
			}
			return fv, nil
		}
		if fv.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("config key %q: %q is not a section", key, head)
		}
		return lookupField(fv, rest)
	}
	return reflect.Value{}, fmt.Errorf("unknown config key: %q", key)
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice:
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(v.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v.Interface())
}

func parseInto(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %q", value)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid boolean value: %q", value)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported list type")
		}
		var items []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

func flatten(v reflect.Value, prefix string) []KeyValue {
	var out []KeyValue
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := tomlKey(t.Field(i))
		if name == "" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		fv := v.Field(i)
		if fv.Kind() == reflect.Struct {
			out = append(out, flatten(fv, name)...)
			continue
		}
		out = append(out, KeyValue{Key: name, Value: formatValue(fv)})
	}
	return out
}
