// Package scanner 提供批量扫描调度能力。
// 该层负责从 Source 获取输入、并发执行单文件扫描和结果聚合，不负责段解析细节。
package scanner

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"l5kscan/internal/model"
	"l5kscan/internal/project"
)

// Service 是批量扫描服务对象。
type Service struct {
	scanner *project.Scanner
	workers int
	logger  *zap.Logger
}

// workerResult 表示 worker 的执行产物。
type workerResult struct {
	fileResult *model.FileResult
	scanError  *model.ScanError
}

// NewService 创建批量扫描服务。workers <= 0 时使用 CPU 核数。
func NewService(scanner *project.Scanner, workers int, logger *zap.Logger) *Service {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scanner: scanner,
		workers: workers,
		logger:  logger,
	}
}

// ScanPath 扫描目录或单文件，目录只列出一层且只识别默认后缀。
func (s *Service) ScanPath(ctx context.Context, targetPath string) (model.BatchResult, error) {
	return s.Scan(ctx, DirSource{Root: targetPath, Extensions: DefaultExtensions})
}

// Scan 扫描 Source 给出的全部输入。
// 每个文件各自独立扫描，单文件失败记录到 Errors 中，不影响其他文件。
func (s *Service) Scan(ctx context.Context, source Source) (model.BatchResult, error) {
	started := time.Now()
	result := model.BatchResult{
		Pattern: s.scanner.Pattern(),
		Files:   make([]model.FileResult, 0),
		Errors:  make([]model.ScanError, 0),
	}
	if dir, ok := source.(DirSource); ok {
		result.ScannedPath = dir.Root
		if absolute, absErr := filepath.Abs(dir.Root); absErr == nil {
			result.ScannedPath = absolute
		}
	}

	inputs, err := source.Inputs(ctx)
	if err != nil {
		return result, err
	}
	s.logger.Debug("inputs collected", zap.Int("files", len(inputs)))

	// 每个 goroutine 只写自己的下标，不需要加锁。
	outputs := make([]workerResult, len(inputs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(1, min(s.workers, len(inputs))))

	for i, input := range inputs {
		i, input := i, input
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			outputs[i] = s.scanInput(input)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return result, err
	}

	for _, item := range outputs {
		if item.fileResult != nil {
			result.Files = append(result.Files, *item.fileResult)
		}
		if item.scanError != nil {
			result.Errors = append(result.Errors, *item.scanError)
		}
	}

	buildSummaries(&result)
	result.ElapsedMillis = millisSince(started)
	return result, nil
}

// scanInput 执行真实的文件读取和项目扫描。
func (s *Service) scanInput(input Input) workerResult {
	started := time.Now()

	file, openErr := input.Open()
	if openErr != nil {
		return s.failed(input, openErr)
	}

	scanned, scanErr := s.scanner.Scan(file)
	closeErr := file.Close()
	if scanErr != nil {
		return s.failed(input, scanErr)
	}
	if closeErr != nil {
		return s.failed(input, closeErr)
	}

	counts := scanned.Counts()
	elapsed := time.Since(started)
	s.logger.Debug("file scanned",
		zap.String("path", input.DisplayPath),
		zap.Int64("programs", counts.Programs),
		zap.Int64("rungs", counts.Rungs),
		zap.Duration("elapsed", elapsed))

	return workerResult{
		fileResult: &model.FileResult{
			Path:          input.DisplayPath,
			ResultPath:    input.ResultPath,
			Project:       scanned,
			ElapsedMillis: float64(elapsed.Microseconds()) / 1000,
		},
	}
}

func (s *Service) failed(input Input, err error) workerResult {
	s.logger.Warn("scan file failed", zap.String("path", input.DisplayPath), zap.Error(err))
	return workerResult{
		scanError: &model.ScanError{
			Path:  input.DisplayPath,
			Error: err.Error(),
		},
	}
}

// buildSummaries 排序明细并计算总计信息。
func buildSummaries(result *model.BatchResult) {
	sort.Slice(result.Files, func(i int, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	sort.Slice(result.Errors, func(i int, j int) bool {
		return result.Errors[i].Path < result.Errors[j].Path
	})

	result.Total = model.FileTotals{}
	for _, item := range result.Files {
		result.Total.AddFile(item.Project.Counts())
	}
}

func millisSince(started time.Time) float64 {
	return float64(time.Since(started).Microseconds()) / 1000
}

// IsCanceled 判断错误是否由 context 取消或超时导致。
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
