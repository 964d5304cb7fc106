// Package config 负责加载 l5kscan 的配置文件与环境变量。
// 所有字段都是指针，nil 表示“未设置”，便于按优先级逐层合并。
package config

// 输出模式。
const (
	OutputConsole = "console"
	OutputFile    = "file"
	OutputJSON    = "json"
)

// Config 是配置文件、环境变量与命令行共同描述的扫描参数。
type Config struct {
	Pattern       *string
	Extensions    *[]string
	Recursive     *bool
	Output        *string
	JSONOutput    *string
	Workers       *int
	StrictHeaders *bool
	KeepEmpty     *bool
	Summary       *bool
	Color         *string
}

// Merge 返回 base 被 override 中已设置字段覆盖后的结果。
func Merge(base Config, override Config) Config {
	out := base
	if override.Pattern != nil {
		out.Pattern = override.Pattern
	}
	if override.Extensions != nil {
		out.Extensions = override.Extensions
	}
	if override.Recursive != nil {
		out.Recursive = override.Recursive
	}
	if override.Output != nil {
		out.Output = override.Output
	}
	if override.JSONOutput != nil {
		out.JSONOutput = override.JSONOutput
	}
	if override.Workers != nil {
		out.Workers = override.Workers
	}
	if override.StrictHeaders != nil {
		out.StrictHeaders = override.StrictHeaders
	}
	if override.KeepEmpty != nil {
		out.KeepEmpty = override.KeepEmpty
	}
	if override.Summary != nil {
		out.Summary = override.Summary
	}
	if override.Color != nil {
		out.Color = override.Color
	}
	return out
}
