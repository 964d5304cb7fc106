package cmd

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"l5kscan/internal/config"
	"l5kscan/internal/model"
	"l5kscan/internal/project"
	"l5kscan/internal/report"
	"l5kscan/internal/scanner"
	"l5kscan/internal/segment"
	"l5kscan/internal/termcolor"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// scanOptions 存放 scan 命令的可配置参数。
type scanOptions struct {
	configPath    string
	pattern       string
	output        string
	jsonOutput    string
	workers       int
	extensions    []string
	recursive     bool
	strictHeaders bool
	keepEmpty     bool
	summary       bool
	color         string
}

// settings 是合并配置文件、环境变量与命令行之后的最终参数。
type settings struct {
	pattern       string
	output        string
	jsonOutput    string
	workers       int
	extensions    []string
	recursive     bool
	strictHeaders bool
	keepEmpty     bool
	summary       bool
	color         termcolor.ColorMode
}

// newScanCmd 创建 scan 子命令。
// 示例：
//
//	l5kscan scan ./Test_Projects --pattern shunt
//	l5kscan scan Line5.L5K -p "bypass|shunt" --output console
//	l5kscan scan ./plant --recursive --output json --json-output report.json
func newScanCmd(application *app) *cobra.Command {
	options := scanOptions{
		output:     config.OutputFile,
		jsonOutput: "l5kscan.json",
		workers:    runtime.NumCPU(),
		extensions: append([]string(nil), scanner.DefaultExtensions...),
		color:      "auto",
	}

	scanCmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "扫描目录或工程文件并报告匹配的标签",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveSettings(cmd.Flags(), options, args[0], application.getenv)
			if err != nil {
				return err
			}
			return runScan(cmd, application, args[0], resolved)
		},
	}

	flags := scanCmd.Flags()
	flags.StringVar(&options.configPath, "config", "", "配置文件路径（默认向上查找 .l5kscan.yaml/.toml/.json）")
	flags.StringVarP(&options.pattern, "pattern", "p", "", "标签模式，忽略大小写的正则或子串，例如 shunt")
	flags.StringVar(&options.output, "output", options.output, "输出方式: console、file 或 json")
	flags.StringVar(&options.jsonOutput, "json-output", options.jsonOutput, "json 导出文件路径")
	flags.IntVar(&options.workers, "workers", options.workers, "并发 worker 数量")
	flags.StringSliceVar(&options.extensions, "ext", options.extensions, "工程文件后缀，可重复指定")
	flags.BoolVar(&options.recursive, "recursive", false, "递归扫描子目录")
	flags.BoolVar(&options.strictHeaders, "strict-headers", false, "段头必须是完整记号，避免 PROGRAM_X 之类的误判")
	flags.BoolVar(&options.keepEmpty, "keep-empty", false, "没有命中的 routine/program 也写入结果")
	flags.BoolVar(&options.summary, "summary", false, "额外输出每个文件的汇总表格")
	flags.StringVar(&options.color, "color", options.color, "控制台颜色: auto、always 或 never")

	return scanCmd
}

// resolveSettings 按 命令行 > 环境变量 > 配置文件 > 默认值 的优先级合并参数。
func resolveSettings(flags *pflag.FlagSet, options scanOptions, target string, getenv func(string) string) (settings, error) {
	explicit := options.configPath
	if explicit == "" && getenv != nil {
		explicit = getenv(config.EnvConfig)
	}
	configPath, err := config.Find(target, explicit)
	if err != nil {
		return settings{}, fmt.Errorf("locate config: %w", err)
	}
	fileCfg, err := config.Load(configPath)
	if err != nil {
		return settings{}, fmt.Errorf("load config: %w", err)
	}
	envCfg, err := config.FromEnv(getenv)
	if err != nil {
		return settings{}, err
	}

	merged := config.Merge(config.Merge(defaultConfig(), fileCfg), envCfg)
	merged = config.Merge(merged, options.changed(flags))
	if err := merged.Validate(); err != nil {
		return settings{}, err
	}

	pattern := ""
	if merged.Pattern != nil {
		pattern = *merged.Pattern
	}
	if strings.TrimSpace(pattern) == "" {
		return settings{}, errors.New("pattern is required, use --pattern or set it in the config file")
	}

	colorMode, err := termcolor.ParseMode(*merged.Color)
	if err != nil {
		return settings{}, err
	}

	return settings{
		pattern:       pattern,
		output:        *merged.Output,
		jsonOutput:    strings.TrimSpace(*merged.JSONOutput),
		workers:       *merged.Workers,
		extensions:    *merged.Extensions,
		recursive:     *merged.Recursive,
		strictHeaders: *merged.StrictHeaders,
		keepEmpty:     *merged.KeepEmpty,
		summary:       *merged.Summary,
		color:         colorMode,
	}, nil
}

// defaultConfig 是最低优先级的配置层，保证合并后除 Pattern 外每个字段都非 nil。
func defaultConfig() config.Config {
	output, jsonOutput, color := config.OutputFile, "l5kscan.json", "auto"
	workers := runtime.NumCPU()
	extensions := append([]string(nil), scanner.DefaultExtensions...)
	recursive, strict, keepEmpty, summary := false, false, false, false
	return config.Config{
		Output:        &output,
		JSONOutput:    &jsonOutput,
		Workers:       &workers,
		Extensions:    &extensions,
		Recursive:     &recursive,
		StrictHeaders: &strict,
		KeepEmpty:     &keepEmpty,
		Summary:       &summary,
		Color:         &color,
	}
}

// changed 只收集用户显式传入的命令行参数。
func (o scanOptions) changed(flags *pflag.FlagSet) config.Config {
	var cfg config.Config
	if flags.Changed("pattern") {
		cfg.Pattern = &o.pattern
	}
	if flags.Changed("output") {
		output := strings.ToLower(strings.TrimSpace(o.output))
		cfg.Output = &output
	}
	if flags.Changed("json-output") {
		cfg.JSONOutput = &o.jsonOutput
	}
	if flags.Changed("workers") {
		cfg.Workers = &o.workers
	}
	if flags.Changed("ext") {
		cfg.Extensions = &o.extensions
	}
	if flags.Changed("recursive") {
		cfg.Recursive = &o.recursive
	}
	if flags.Changed("strict-headers") {
		cfg.StrictHeaders = &o.strictHeaders
	}
	if flags.Changed("keep-empty") {
		cfg.KeepEmpty = &o.keepEmpty
	}
	if flags.Changed("summary") {
		cfg.Summary = &o.summary
	}
	if flags.Changed("color") {
		color := strings.ToLower(strings.TrimSpace(o.color))
		cfg.Color = &color
	}
	return cfg
}

// runScan 执行扫描并按输出方式落地结果。
func runScan(cmd *cobra.Command, application *app, target string, resolved settings) error {
	started := time.Now()
	logger := application.logger

	scanOpts := []project.Option{project.WithKeepEmpty(resolved.keepEmpty)}
	if resolved.strictHeaders {
		scanOpts = append(scanOpts, project.WithMatcher(segment.MatchHeaderToken))
	}
	projectScanner, err := project.New(resolved.pattern, scanOpts...)
	if err != nil {
		return err
	}

	service := scanner.NewService(projectScanner, resolved.workers, logger)
	result, err := service.Scan(cmd.Context(), scanner.DirSource{
		Root:       target,
		Extensions: resolved.extensions,
		Recursive:  resolved.recursive,
	})
	if err != nil {
		if scanner.IsCanceled(err) {
			logger.Warn("scan canceled", zap.Error(err))
		}
		return err
	}

	out := cmd.OutOrStdout()
	switch resolved.output {
	case config.OutputConsole:
		palette := report.NewPalette(termcolor.Enabled(resolved.color, out, application.getenv))
		if err := printConsole(out, result, palette); err != nil {
			return err
		}
	case config.OutputFile:
		written, err := report.WriteResultFiles(result)
		if err != nil {
			return err
		}
		for _, path := range written {
			_, _ = fmt.Fprintf(out, "results written to %s\n", path)
		}
	case config.OutputJSON:
		if err := report.PrintJSON(out, result); err != nil {
			return err
		}
		if resolved.jsonOutput != "" {
			if err := report.WriteJSONFile(resolved.jsonOutput, result); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "\nJSON exported to %s\n", resolved.jsonOutput)
		}
	default:
		return fmt.Errorf("unsupported output: %s", resolved.output)
	}

	if resolved.summary {
		_, _ = fmt.Fprintln(out)
		if err := report.PrintSummary(out, result); err != nil {
			return err
		}
	} else {
		for _, item := range result.Errors {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "scan %s: %s\n", item.Path, item.Error)
		}
	}

	elapsed := time.Since(started)
	logger.Info("scan finished",
		zap.Int("files", len(result.Files)),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("elapsed", elapsed))
	if resolved.output == config.OutputFile {
		_, _ = fmt.Fprintf(out, "scan took %.2f ms\n", float64(elapsed.Microseconds())/1000)
	}
	return nil
}

// printConsole 依次输出每个文件的结果，多文件时在每个文件前加上文件名标题。
func printConsole(out io.Writer, result model.BatchResult, palette report.Palette) error {
	multiple := len(result.Files) > 1
	for i, item := range result.Files {
		if multiple {
			if i > 0 {
				if _, err := fmt.Fprintln(out); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(out, "== %s ==\n", item.Path); err != nil {
				return err
			}
		}
		if err := report.PrintText(out, item.Project, palette); err != nil {
			return err
		}
	}
	return nil
}
