package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"l5kscan/internal/report"
)

// Input 表示一个待扫描的工程文件。
type Input struct {
	// Path 是文件的绝对路径。
	Path string
	// DisplayPath 是相对扫描根目录的展示路径。
	DisplayPath string
	// ResultPath 是该文件 _results.txt 报告的落地路径。
	ResultPath string
	// Open 打开文件内容，调用方负责关闭。
	Open func() (io.ReadCloser, error)
}

// Source 产出一批待扫描的输入，文件系统遍历只是其中一种实现。
type Source interface {
	Inputs(ctx context.Context) ([]Input, error)
}

// DefaultExtensions 是默认识别的工程文件后缀。
var DefaultExtensions = []string{".L5K"}

// DirSource 从目录（或单个文件）中收集工程文件。
type DirSource struct {
	// Root 是目录或单文件路径。
	Root string
	// Extensions 是允许的后缀（含点号，大小写不敏感）；为空时接受所有普通文件。
	Extensions []string
	// Recursive 为 true 时递归子目录，否则只列出 Root 下一层。
	Recursive bool
}

// Inputs 列出待扫描文件，按展示路径排序。
func (d DirSource) Inputs(ctx context.Context) ([]Input, error) {
	trimmedPath := strings.TrimSpace(d.Root)
	if trimmedPath == "" {
		return nil, errors.New("scan path is empty")
	}

	root, err := filepath.Abs(trimmedPath)
	if err != nil {
		return nil, fmt.Errorf("resolve absolute path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	if !info.IsDir() {
		if !d.accepts(root) {
			return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(root))
		}
		return []Input{newFileInput(root, filepath.Base(root))}, nil
	}

	var inputs []Input
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if entry.IsDir() {
			if path != root && !d.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || !d.accepts(path) {
			return nil
		}

		relativePath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relativePath = path
		}
		inputs = append(inputs, newFileInput(path, filepath.ToSlash(relativePath)))
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(inputs, func(i int, j int) bool {
		return inputs[i].DisplayPath < inputs[j].DisplayPath
	})
	return inputs, nil
}

// accepts 判断文件是否属于待扫描范围。
// 已经生成的 _results.txt 报告永远跳过，避免重复运行时把报告当成输入。
func (d DirSource) accepts(path string) bool {
	if report.IsResultPath(path) {
		return false
	}
	if len(d.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, allowed := range d.Extensions {
		if strings.EqualFold(ext, normalizeExtension(allowed)) {
			return true
		}
	}
	return false
}

func newFileInput(path string, displayPath string) Input {
	return Input{
		Path:        path,
		DisplayPath: displayPath,
		ResultPath:  report.ResultPath(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// normalizeExtension 把 "L5K" 与 ".L5K" 统一为带点号形式。
func normalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
