// Package tags 负责从指令行中提取标签引用并按模式过滤。
package tags

import "strings"

// Extract 按从左到右的顺序提取一行中所有被圆括号包裹的标签引用。
//
// 约束说明：
// - 第一个 '(' 之后的第一个 ')' 负责闭合，不支持嵌套括号
// - '(' 之后没有 ')' 时，该行剩余部分不再产生任何引用
// - 引用内容原样返回，不做任何解释（可能包含 . 或 [ ] 等）
func Extract(line string) []string {
	var refs []string

	rest := line
	for {
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			break
		}
		closing := strings.IndexByte(rest[open+1:], ')')
		if closing < 0 {
			break
		}
		closing += open + 1

		refs = append(refs, rest[open+1:closing])
		rest = rest[closing+1:]
	}

	return refs
}
