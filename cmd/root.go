// Package cmd 提供 l5kscan 的命令行入口与子命令编排。
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app 保存各子命令共享的运行期依赖。
type app struct {
	verbose bool
	logger  *zap.Logger
	getenv  func(string) string
}

// Execute 组装根命令并执行，收到中断信号时取消正在进行的扫描。
// version 参数由 main 包注入，便于在 CI/CD 中打包不同版本。
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd(version, &app{logger: zap.NewNop(), getenv: os.Getenv})
	return rootCmd.ExecuteContext(ctx)
}

// newRootCmd 创建根命令并注册全部子命令。
func newRootCmd(version string, application *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "l5kscan",
		Short: "扫描 L5K 工程导出文件中的标签使用情况",
		Long: "l5kscan 逐行扫描 PLC 工程导出文件（*.L5K），\n" +
			"按 program / routine / 梯级序号报告所有匹配给定模式的标签引用。",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return application.initLogger()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = application.logger.Sync()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&application.verbose, "verbose", "v", false, "输出调试日志")

	rootCmd.AddCommand(newVersionCmd(version))
	rootCmd.AddCommand(newMarkersCmd())
	rootCmd.AddCommand(newScanCmd(application))

	return rootCmd
}

// initLogger 构建 zap 日志器：默认只输出 warn 及以上，--verbose 时输出 debug。
func (a *app) initLogger() error {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if a.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}
