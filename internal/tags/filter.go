package tags

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPattern 表示标签模式无法编译为正则表达式。
// 模式在整批文件间复用，因此在扫描开始前就应当失败。
var ErrInvalidPattern = errors.New("invalid pattern")

// Filter 是编译后的标签模式，按忽略大小写的“搜索”语义匹配。
type Filter struct {
	pattern string
	re      *regexp.Regexp
}

// NewFilter 编译标签模式。模式既可以是普通子串，也可以是简单正则。
// 空模式是合法正则，会匹配所有标签；是否必须提供模式由调用方决定。
func NewFilter(pattern string) (*Filter, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
	}

	return &Filter{pattern: pattern, re: re}, nil
}

// Pattern 返回原始模式字符串。
func (f *Filter) Pattern() string {
	return f.pattern
}

// Match 判断单个标签引用中是否任意位置命中模式。
func (f *Filter) Match(ref string) bool {
	return f.re.MatchString(ref)
}

// Apply 返回命中模式的标签引用，保持输入顺序。
func (f *Filter) Apply(refs []string) []string {
	var matched []string
	for _, ref := range refs {
		if f.Match(ref) {
			matched = append(matched, ref)
		}
	}
	return matched
}
