// Package project 实现 L5K 工程文件的单遍扫描。
// 该层组合两层 segment.Tracker（PROGRAM 与 ROUTINE），
// 在打开的 routine 内提取并过滤指令行上的标签，组装嵌套结果。
package project

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"l5kscan/internal/model"
	"l5kscan/internal/segment"
	"l5kscan/internal/tags"
)

// ErrInvalidPattern 是 tags.ErrInvalidPattern 的别名，方便调用方只依赖本包。
var ErrInvalidPattern = tags.ErrInvalidPattern

// Layout 描述工程文件的段标记约定。
type Layout struct {
	ProgramStart string
	ProgramEnd   string
	RoutineStart string
	RoutineEnd   string
	RungMarker   string
}

// DefaultLayout 是 L5K 导出文件使用的标记。
var DefaultLayout = Layout{
	ProgramStart: "PROGRAM",
	ProgramEnd:   "END_PROGRAM",
	RoutineStart: "ROUTINE",
	RoutineEnd:   "END_ROUTINE",
	RungMarker:   "N:",
}

// Scanner 是可复用的项目扫描器。
// 每次 Scan 的状态都只存在于该次调用内部，因此可以在多个 goroutine 间共享。
type Scanner struct {
	filter    *tags.Filter
	layout    Layout
	matcher   segment.HeaderMatcher
	keepEmpty bool
}

// Option 用于定制 Scanner。
type Option func(*Scanner)

// WithMatcher 替换段头与指令行的判定函数。
func WithMatcher(match segment.HeaderMatcher) Option {
	return func(s *Scanner) {
		if match != nil {
			s.matcher = match
		}
	}
}

// WithKeepEmpty 控制没有任何命中的 routine/program 是否也写入结果。
func WithKeepEmpty(keep bool) Option {
	return func(s *Scanner) {
		s.keepEmpty = keep
	}
}

// WithLayout 替换段标记约定，空字段沿用默认值。
func WithLayout(layout Layout) Option {
	return func(s *Scanner) {
		s.layout = mergeLayout(DefaultLayout, layout)
	}
}

// New 编译模式并创建扫描器；模式非法时立即返回 ErrInvalidPattern。
func New(pattern string, opts ...Option) (*Scanner, error) {
	filter, err := tags.NewFilter(pattern)
	if err != nil {
		return nil, err
	}

	scanner := &Scanner{
		filter:  filter,
		layout:  DefaultLayout,
		matcher: segment.MatchHeader,
	}
	for _, opt := range opts {
		opt(scanner)
	}
	return scanner, nil
}

// Pattern 返回扫描使用的标签模式。
func (s *Scanner) Pattern() string {
	return s.filter.Pattern()
}

// Layout 返回扫描使用的段标记约定。
func (s *Scanner) Layout() Layout {
	return s.layout
}

// Scan 对输入流做单遍扫描。
// 只有读取错误会被返回；结构异常（段未闭合、顺序错乱）只会导致结果缺失。
func (s *Scanner) Scan(reader io.Reader) (model.Project, error) {
	run := s.newRun()

	// 使用 ReadString('\n') 流式读取，不把整个工程文件载入内存。
	bufferedReader := bufio.NewReader(reader)
	for {
		line, err := bufferedReader.ReadString('\n')
		if errors.Is(err, io.EOF) && len(line) == 0 {
			break
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return run.result, err
		}

		run.processLine(normalizeLine(line))

		// 最后一行没有换行符时，处理完这一行再退出。
		if errors.Is(err, io.EOF) {
			break
		}
	}

	return run.result, nil
}

// ScanLines 扫描已经按行切分好的内容。
func (s *Scanner) ScanLines(lines []string) model.Project {
	run := s.newRun()
	for _, line := range lines {
		run.processLine(normalizeLine(line))
	}
	return run.result
}

func (s *Scanner) newRun() *scanRun {
	opt := segment.WithMatcher(s.matcher)
	return &scanRun{
		scanner: s,
		program: segment.New(s.layout.ProgramStart, s.layout.ProgramEnd, opt),
		routine: segment.New(s.layout.RoutineStart, s.layout.RoutineEnd, opt),
	}
}

// scanRun 保存一次扫描的全部可变状态。
type scanRun struct {
	scanner *Scanner
	program *segment.Tracker
	routine *segment.Tracker

	rungs    model.Routine
	routines model.Program
	result   model.Project
}

// processLine 按固定顺序驱动两层状态机：
//  1. 外层 PROGRAM 先尝试打开再尝试关闭
//  2. 外层打开时才咨询内层 ROUTINE，并处理指令行与 routine 归档
//  3. 外层刚关闭时归档 program
func (r *scanRun) processLine(line string) {
	r.program.TryOpen(line)
	r.program.TryClose(line)

	if r.program.IsOpen() {
		r.routine.TryOpen(line)
		r.routine.TryClose(line)

		if r.routine.IsOpen() && r.routine.Matches(r.scanner.layout.RungMarker, line) {
			matched := r.scanner.filter.Apply(tags.Extract(line))
			if len(matched) > 0 {
				r.rungs.AddRung(r.routine.Line(), matched)
			}
			// 序号是梯级序号而不是命中序号，每条指令行都要递增。
			r.routine.Advance()
		}

		if r.routine.JustClosed() {
			if len(r.rungs.Rungs) > 0 || r.scanner.keepEmpty {
				r.rungs.Name = r.routine.Name()
				r.routines.PutRoutine(r.rungs)
			}
			r.rungs = model.Routine{}
		}
	}

	if r.program.JustClosed() {
		if len(r.routines.Routines) > 0 || r.scanner.keepEmpty {
			r.routines.Name = r.program.Name()
			r.result.PutProgram(r.routines)
		}
		r.routines = model.Program{}
	}
}

// normalizeLine 去除每行末尾的换行符，兼容 \r\n 与 \n。
func normalizeLine(line string) string {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line
}

func mergeLayout(base Layout, override Layout) Layout {
	pick := func(value string, fallback string) string {
		if strings.TrimSpace(value) == "" {
			return fallback
		}
		return value
	}
	return Layout{
		ProgramStart: pick(override.ProgramStart, base.ProgramStart),
		ProgramEnd:   pick(override.ProgramEnd, base.ProgramEnd),
		RoutineStart: pick(override.RoutineStart, base.RoutineStart),
		RoutineEnd:   pick(override.RoutineEnd, base.RoutineEnd),
		RungMarker:   pick(override.RungMarker, base.RungMarker),
	}
}
