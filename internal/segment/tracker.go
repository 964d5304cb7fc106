// Package segment 提供 L5K 分段（PROGRAM、ROUTINE 等）的开闭状态机。
// 每个 Tracker 只关心一对起止标记，嵌套关系由上层扫描器负责编排。
package segment

import (
	"strings"
	"unicode/utf8"
)

// HeaderMatcher 判断 marker 是否作为某一行的“段头”出现。
// 状态机只通过该函数识别段头，便于替换为更严格的实现。
type HeaderMatcher func(marker string, line string) bool

// MatchHeader 是默认的段头判定：marker 第一次出现的位置之前只能是空白字符。
//
// 注意：
// - 只做一次正向子串查找，不做分词
// - marker 出现在注释里或作为其他标识符前缀时，只要前面是空白同样会命中
func MatchHeader(marker string, line string) bool {
	pos := strings.Index(line, marker)
	if pos < 0 {
		return false
	}
	return strings.TrimSpace(line[:pos]) == ""
}

// MatchHeaderToken 在 MatchHeader 基础上要求 marker 后面紧跟行尾、空白或 '('。
// 用于避免 PROGRAM_X 之类的标识符被误判为 PROGRAM 段头。
func MatchHeaderToken(marker string, line string) bool {
	if !MatchHeader(marker, line) {
		return false
	}
	rest := line[strings.Index(line, marker)+len(marker):]
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ' ', '\t', '\r', '\n', '(':
		return true
	}
	// 以冒号结尾的标记（例如 N:）本身已经是完整记号。
	return strings.HasSuffix(marker, ":")
}

// Event 表示一次状态转换对外发出的事件。
type Event int

const (
	// EventNone 表示本行没有引起状态变化。
	EventNone Event = iota
	// EventOpened 表示段从关闭进入打开。
	EventOpened
	// EventClosed 表示检测到结束标记。
	EventClosed
)

// String 返回事件名称，主要用于日志与测试输出。
func (e Event) String() string {
	switch e {
	case EventOpened:
		return "opened"
	case EventClosed:
		return "closed"
	default:
		return "none"
	}
}

// State 是单层分段的全部状态。
//
// Name 仅在 Open 为 true，或同一行刚检测到关闭时有意义；
// Line 在每次 关闭→打开 时归零。
type State struct {
	Open       bool
	Name       string
	Line       int
	JustClosed bool
}

// Markers 描述一对段起止标记以及段头识别方式。
// 其方法都是 (State, line) → (State, Event) 的纯函数。
type Markers struct {
	Start string
	End   string
	Match HeaderMatcher
}

func (m Markers) matcher() HeaderMatcher {
	if m.Match == nil {
		return MatchHeader
	}
	return m.Match
}

// Open 处理起始标记。段已打开时为空操作，
// 避免起始标记作为其他关键字的子串在段内再次出现时重复打开。
func (m Markers) Open(state State, line string) (State, Event) {
	if state.Open || !m.matcher()(m.Start, line) {
		return state, EventNone
	}
	state.Open = true
	state.Name = extractName(m.Start, line)
	state.Line = 0
	return state, EventOpened
}

// Close 处理结束标记。无论段当前是否打开都需要逐行调用，
// 先清除 JustClosed，再根据结束标记决定是否关闭。
func (m Markers) Close(state State, line string) (State, Event) {
	state.JustClosed = false
	if !m.matcher()(m.End, line) {
		return state, EventNone
	}
	state.Open = false
	state.JustClosed = true
	return state, EventClosed
}

// extractName 从段头行中截取段名。
//
// 截取规则：
//   - 名字起点是 marker 之后再跳过一个字符（通常是空格）
//   - 行内存在 '(' 时，名字截止到 '(' 的前一个字符（该字符本身不包含，按完整 UTF-8 字符回退）
//   - 否则截止到下一个空格；没有空格则一直到行尾
//   - 越界时一律返回空字符串
func extractName(marker string, line string) string {
	start := strings.Index(line, marker) + len(marker) + 1
	if start > len(line) {
		return ""
	}

	if paren := strings.Index(line, "("); paren >= 0 {
		_, size := utf8.DecodeLastRuneInString(line[:paren])
		end := paren - size
		if end <= start {
			return ""
		}
		return line[start:end]
	}

	rest := line[start:]
	if space := strings.Index(rest, " "); space >= 0 {
		return rest[:space]
	}
	return rest
}

// Tracker 持有一层分段的可变状态，是 Markers 纯函数的有状态封装。
type Tracker struct {
	markers Markers
	state   State
}

// Option 用于定制 Tracker。
type Option func(*Markers)

// WithMatcher 替换段头判定函数。
func WithMatcher(match HeaderMatcher) Option {
	return func(m *Markers) {
		if match != nil {
			m.Match = match
		}
	}
}

// New 创建一个以 start/end 为起止标记的 Tracker。
func New(start string, end string, opts ...Option) *Tracker {
	markers := Markers{Start: start, End: end, Match: MatchHeader}
	for _, opt := range opts {
		opt(&markers)
	}
	return &Tracker{markers: markers}
}

// TryOpen 尝试打开分段，返回本行是否发生了打开。
func (t *Tracker) TryOpen(line string) bool {
	var event Event
	t.state, event = t.markers.Open(t.state, line)
	return event == EventOpened
}

// TryClose 尝试关闭分段，返回本行是否检测到结束标记。
func (t *Tracker) TryClose(line string) bool {
	var event Event
	t.state, event = t.markers.Close(t.state, line)
	return event == EventClosed
}

// Matches 使用当前 Tracker 的段头判定规则检查任意标记。
// 扫描器用它识别 N: 这类指令行，保证与段头使用同一套规则。
func (t *Tracker) Matches(marker string, line string) bool {
	return t.markers.matcher()(marker, line)
}

// Advance 将行号计数加一。
func (t *Tracker) Advance() {
	t.state.Line++
}

// IsOpen 返回分段是否处于打开状态。
func (t *Tracker) IsOpen() bool {
	return t.state.Open
}

// JustClosed 返回最近一次 TryClose 是否检测到了结束标记。
func (t *Tracker) JustClosed() bool {
	return t.state.JustClosed
}

// Name 返回当前（或刚关闭的）分段名。
func (t *Tracker) Name() string {
	return t.state.Name
}

// Line 返回当前分段内的行号计数。
func (t *Tracker) Line() int {
	return t.state.Line
}
