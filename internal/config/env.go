package config

import (
	"fmt"
	"strconv"
	"strings"
)

// 环境变量名。
const (
	EnvConfig  = "L5KSCAN_CONFIG"
	EnvPattern = "L5KSCAN_PATTERN"
	EnvWorkers = "L5KSCAN_WORKERS"
	EnvOutput  = "L5KSCAN_OUTPUT"
	EnvColor   = "L5KSCAN_COLOR"
)

// FromEnv 从环境变量读取配置；getenv 为 nil 时视为没有任何变量。
func FromEnv(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	var cfg Config

	setString := func(target **string, key string, lower bool) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		if lower {
			raw = strings.ToLower(raw)
		}
		*target = &raw
	}
	setString(&cfg.Pattern, EnvPattern, false)
	setString(&cfg.Output, EnvOutput, true)
	setString(&cfg.Color, EnvColor, true)

	if raw := strings.TrimSpace(getenv(EnvWorkers)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, fmt.Errorf("%s: expected integer, got %q", EnvWorkers, raw)
		}
		cfg.Workers = &n
	}
	return cfg, nil
}
