// Package termcolor 决定控制台输出是否启用颜色。
package termcolor

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ColorMode 是 --color 的取值。
type ColorMode int

const (
	// ModeAuto 根据环境变量与输出目标自动判断。
	ModeAuto ColorMode = iota
	// ModeAlways 总是输出颜色。
	ModeAlways
	// ModeNever 从不输出颜色。
	ModeNever
)

// String 返回模式在命令行与配置文件中的写法。
func (m ColorMode) String() string {
	switch m {
	case ModeAlways:
		return "always"
	case ModeNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseMode 解析 auto/always/never（忽略大小写），空字符串视为 auto。
func ParseMode(v string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto":
		return ModeAuto, nil
	case "always":
		return ModeAlways, nil
	case "never":
		return ModeNever, nil
	default:
		return ModeAuto, fmt.Errorf("unknown color mode: %s", v)
	}
}

// Enabled 根据模式、环境变量和输出目标决定是否输出颜色。
//
// 自动模式下的优先级（先命中者生效）：
//  1. TERM=dumb 或设置了 NO_COLOR 时关闭颜色
//  2. CLICOLOR_FORCE / FORCE_COLOR 为非 0 值时强制开启
//  3. 否则仅当输出目标是终端时开启
func Enabled(mode ColorMode, out io.Writer, getenv func(string) string) bool {
	switch mode {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if strings.EqualFold(strings.TrimSpace(getenv("TERM")), "dumb") {
		return false
	}
	if getenv("NO_COLOR") != "" {
		return false
	}
	for _, key := range []string{"CLICOLOR_FORCE", "FORCE_COLOR"} {
		if v := strings.TrimSpace(getenv(key)); v != "" && v != "0" {
			return true
		}
	}

	file, ok := out.(*os.File)
	if !ok || file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
