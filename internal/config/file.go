package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile loads configuration from the environment with a YAML file as the
// fallback layer. Keys in the file use the environment variable names:
//
//	DATABASE_URL: postgres://localhost/internhub
//	LOG_LEVEL: debug
//
// Values set in the environment take precedence over the file.
func LoadFile(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Load()
	}
	overlay, err := readOverlay(path)
	if err != nil {
		return Config{}, err
	}
	return load(envSource{lookup: func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value, true
		}
		value, ok := overlay[key]
		return value, ok
	}})
}

func readOverlay(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	overlay := make(map[string]string, len(raw))
	for key, value := range raw {
		name := strings.ToUpper(strings.TrimSpace(key))
		switch v := value.(type) {
		case nil:
			continue
		case string:
			overlay[name] = v
		case int:
			overlay[name] = strconv.Itoa(v)
		case float64:
			overlay[name] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			overlay[name] = strconv.FormatBool(v)
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				items = append(items, fmt.Sprint(item))
			}
			overlay[name] = strings.Join(items, ",")
		default:
			return nil, fmt.Errorf("config file %s: key %s has unsupported value type %T", path, key, value)
		}
	}
	return overlay, nil
}
