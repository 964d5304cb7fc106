package report

import "github.com/fatih/color"

// Palette 是控制台输出使用的配色。
type Palette struct {
	Program *color.Color
	Routine *color.Color
	Rung    *color.Color
	Tag     *color.Color
}

// NewPalette 创建配色；enabled 为 false 时所有颜色都输出纯文本。
// 每个颜色单独开关，不依赖 color.NoColor 全局状态。
func NewPalette(enabled bool) Palette {
	palette := Palette{
		Program: color.New(color.FgCyan, color.Bold),
		Routine: color.New(color.FgGreen),
		Rung:    color.New(color.FgYellow),
		Tag:     color.New(color.FgMagenta),
	}
	for _, c := range []*color.Color{palette.Program, palette.Routine, palette.Rung, palette.Tag} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return palette
}
