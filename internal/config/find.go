package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var configFilenames = []string{
	".l5kscan.yaml",
	".l5kscan.yml",
	".l5kscan.toml",
	".l5kscan.json",
}

// Find 定位配置文件。
// explicitPath 非空时直接使用（相对路径基于当前目录）；
// 否则从 startDir 开始逐级向上查找 .l5kscan.* 文件。找不到时返回空字符串。
func Find(startDir string, explicitPath string) (string, error) {
	if explicit := strings.TrimSpace(explicitPath); explicit != "" {
		candidate, err := filepath.Abs(explicit)
		if err != nil {
			return "", err
		}
		info, err := os.Stat(candidate)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			return "", fmt.Errorf("config path %q points to a directory", candidate)
		}
		return candidate, nil
	}

	start := strings.TrimSpace(startDir)
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		for _, name := range configFilenames {
			candidate := filepath.Join(dir, name)
			if fileExists(candidate) {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
