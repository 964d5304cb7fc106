package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var keyMap = map[string]string{
	"pattern":        "pattern",
	"tag_pattern":    "pattern",
	"ext":            "extensions",
	"exts":           "extensions",
	"extension":      "extensions",
	"extensions":     "extensions",
	"recursive":      "recursive",
	"output":         "output",
	"json_output":    "json_output",
	"workers":        "workers",
	"jobs":           "workers",
	"strict_headers": "strict_headers",
	"keep_empty":     "keep_empty",
	"summary":        "summary",
	"color":          "color",
}

// Load 按扩展名解析 YAML、TOML 或 JSON 配置文件。path 为空时返回空配置。
func Load(path string) (Config, error) {
	var cfg Config
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var raw map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if decodeErr := yaml.Unmarshal(data, &raw); decodeErr != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, decodeErr)
		}
	case ".toml":
		if decodeErr := toml.Unmarshal(data, &raw); decodeErr != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, decodeErr)
		}
	case ".json":
		if decodeErr := json.Unmarshal(data, &raw); decodeErr != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, decodeErr)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if raw == nil {
		return cfg, nil
	}

	decoded, err := decodeConfigMap(raw)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return decoded, nil
}

func decodeConfigMap(raw map[string]any) (Config, error) {
	var cfg Config
	for key, value := range raw {
		canonical, ok := keyMap[normalizeKey(key)]
		if !ok {
			return cfg, fmt.Errorf("unknown config key: %s", key)
		}
		if err := assign(&cfg, canonical, value); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func assign(cfg *Config, key string, value any) error {
	switch key {
	case "pattern", "output", "json_output", "color":
		str, err := expectString(value, key)
		if err != nil {
			return err
		}
		switch key {
		case "pattern":
			cfg.Pattern = &str
		case "output":
			str = strings.ToLower(strings.TrimSpace(str))
			cfg.Output = &str
		case "json_output":
			cfg.JSONOutput = &str
		case "color":
			str = strings.ToLower(strings.TrimSpace(str))
			cfg.Color = &str
		}
	case "recursive", "strict_headers", "keep_empty", "summary":
		b, err := expectBool(value, key)
		if err != nil {
			return err
		}
		switch key {
		case "recursive":
			cfg.Recursive = &b
		case "strict_headers":
			cfg.StrictHeaders = &b
		case "keep_empty":
			cfg.KeepEmpty = &b
		case "summary":
			cfg.Summary = &b
		}
	case "workers":
		n, err := expectInt(value, key)
		if err != nil {
			return err
		}
		cfg.Workers = &n
	case "extensions":
		list, err := expectStringList(value, key)
		if err != nil {
			return err
		}
		cfg.Extensions = &list
	}
	return nil
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.ReplaceAll(key, "-", "_")
}

func expectString(value any, key string) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%s: expected string, got %T", key, value)
	}
}

func expectBool(value any, key string) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	default:
		return false, fmt.Errorf("%s: expected bool, got %T", key, value)
	}
}

// expectInt 兼容三种解码器给出的数字类型（yaml 为 int，toml 为 int64，json 为 float64）。
func expectInt(value any, key string) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0, fmt.Errorf("%s: value out of range", key)
		}
		return int(v), nil
	case uint64:
		if v > math.MaxInt32 {
			return 0, fmt.Errorf("%s: value out of range", key)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s: expected integer, got %v", key, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s: expected integer, got %T", key, value)
	}
}

// expectStringList 接受字符串列表，或以逗号分隔的单个字符串。
func expectStringList(value any, key string) ([]string, error) {
	switch v := value.(type) {
	case string:
		return splitList(v), nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: expected list of strings, got %T element", key, item)
			}
			if trimmed := strings.TrimSpace(str); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: expected list of strings, got %T", key, value)
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
