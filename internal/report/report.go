// Package report 提供 l5kscan 的输出能力。
// 当前实现支持控制台文本、_results.txt 报告文件、汇总表格和 JSON（含文件导出）。
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"l5kscan/internal/model"
)

// resultSuffix 是报告文件名后缀。
const resultSuffix = "_results.txt"

// ResultPath 根据工程文件路径推导报告文件路径。
// 报告与工程文件同目录，文件名取第一个 '.' 之前的部分再加 _results.txt，
// 例如 Line5.L5K → Line5_results.txt。
func ResultPath(inputPath string) string {
	directory := filepath.Dir(inputPath)
	base := filepath.Base(inputPath)
	if dot := strings.Index(base, "."); dot >= 0 {
		base = base[:dot]
	}
	return filepath.Join(directory, base+resultSuffix)
}

// IsResultPath 判断路径是否是本工具生成的报告文件。
func IsResultPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(path)), resultSuffix)
}

// PrintText 以缩进文本形式把单文件结果输出到控制台。
func PrintText(writer io.Writer, project model.Project, palette Palette) error {
	for _, program := range project.Programs {
		if _, err := fmt.Fprintf(writer, "%s %s\n", palette.Program.Sprint("Program:"), program.Name); err != nil {
			return err
		}
		for _, routine := range program.Routines {
			if _, err := fmt.Fprintf(writer, "\t%s %s\n", palette.Routine.Sprint("Routine:"), routine.Name); err != nil {
				return err
			}
			for _, rung := range routine.Rungs {
				if _, err := fmt.Fprintf(writer, "\t\t%s ", palette.Rung.Sprintf("Rung #%d:", rung.Number)); err != nil {
					return err
				}
				for _, tag := range rung.Tags {
					if _, err := fmt.Fprintf(writer, "%s, ", palette.Tag.Sprint(tag)); err != nil {
						return err
					}
				}
				if _, err := fmt.Fprintln(writer); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// WriteText 按报告文件格式输出单文件结果。
// 格式与控制台一致，但 program/routine 行末尾带一个空格，且不带颜色。
func WriteText(writer io.Writer, project model.Project) error {
	for _, program := range project.Programs {
		if _, err := fmt.Fprintf(writer, "Program: %s \n", program.Name); err != nil {
			return err
		}
		for _, routine := range program.Routines {
			if _, err := fmt.Fprintf(writer, "\tRoutine: %s \n", routine.Name); err != nil {
				return err
			}
			for _, rung := range routine.Rungs {
				if _, err := fmt.Fprintf(writer, "\t\tRung #%d: ", rung.Number); err != nil {
					return err
				}
				for _, tag := range rung.Tags {
					if _, err := fmt.Fprintf(writer, "%s, ", tag); err != nil {
						return err
					}
				}
				if _, err := io.WriteString(writer, "\n"); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// WriteTextFile 将单文件结果写入 path，已存在的报告会被覆盖。
func WriteTextFile(path string, project model.Project) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}

	buffered := bufio.NewWriter(file)
	writeErr := WriteText(buffered, project)
	if writeErr == nil {
		writeErr = buffered.Flush()
	}
	closeErr := file.Close()

	if writeErr != nil {
		return fmt.Errorf("write result file: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close result file: %w", closeErr)
	}
	return nil
}

// WriteResultFiles 为每个成功扫描的文件写出报告，返回写出的路径列表。
func WriteResultFiles(result model.BatchResult) ([]string, error) {
	written := make([]string, 0, len(result.Files))
	for _, item := range result.Files {
		if item.ResultPath == "" {
			continue
		}
		if err := WriteTextFile(item.ResultPath, item.Project); err != nil {
			return written, fmt.Errorf("%s: %w", item.Path, err)
		}
		written = append(written, item.ResultPath)
	}
	return written, nil
}

// PrintSummary 使用表格展示每个文件的命中计数与失败文件。
func PrintSummary(writer io.Writer, result model.BatchResult) error {
	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)

	if _, err := fmt.Fprintf(tw, "SCANNED PATH\t%s\nPATTERN\t%s\n\n", result.ScannedPath, result.Pattern); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(tw, "FILE\tPROGRAMS\tROUTINES\tRUNGS\tTAGS"); err != nil {
		return err
	}
	for _, item := range result.Files {
		counts := item.Project.Counts()
		if _, err := fmt.Fprintf(
			tw,
			"%s\t%d\t%d\t%d\t%d\n",
			item.Path,
			counts.Programs,
			counts.Routines,
			counts.Rungs,
			counts.Tags,
		); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(
		tw,
		"\nTOTAL (%d files)\t%d\t%d\t%d\t%d\n",
		result.Total.Files,
		result.Total.Programs,
		result.Total.Routines,
		result.Total.Rungs,
		result.Total.Tags,
	); err != nil {
		return err
	}

	if len(result.Errors) > 0 {
		if _, err := fmt.Fprintln(tw, "\nERROR FILE\tMESSAGE"); err != nil {
			return err
		}
		for _, item := range result.Errors {
			if _, err := fmt.Fprintf(tw, "%s\t%s\n", item.Path, item.Error); err != nil {
				return err
			}
		}
	}

	return tw.Flush()
}

// PrintJSON 把扫描结果按易读 JSON 输出到任意 writer。
func PrintJSON(writer io.Writer, result model.BatchResult) error {
	content, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if _, err := writer.Write(content); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteJSONFile 将 JSON 结果导出到指定路径。
// 如果目录不存在会自动创建。
func WriteJSONFile(path string, result model.BatchResult) error {
	content, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	directory := filepath.Dir(path)
	if directory != "." && directory != "" {
		if mkErr := os.MkdirAll(directory, 0o755); mkErr != nil {
			return fmt.Errorf("create output directory: %w", mkErr)
		}
	}

	if writeErr := os.WriteFile(path, content, 0o644); writeErr != nil {
		return fmt.Errorf("write output file: %w", writeErr)
	}
	return nil
}
