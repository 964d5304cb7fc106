// Package model 定义 l5kscan 的核心数据模型。
// 这些结构会被项目扫描器、批量调度层、输出层和命令层共同使用。
package model

import "encoding/json"

// Rung 表示某个 routine 内一条指令行（梯级）上的命中结果。
// Number 是该行在 routine 内的序号（从 0 开始，逐行递增，与是否命中无关）。
type Rung struct {
	Number int      `json:"rung"`
	Tags   []string `json:"tags"`
}

// Routine 表示一个 routine 的命中结果，Rungs 按序号递增排列。
type Routine struct {
	Name  string `json:"name"`
	Rungs []Rung `json:"rungs"`
}

// Program 表示一个 program 的命中结果。
type Program struct {
	Name     string    `json:"name"`
	Routines []Routine `json:"routines"`
}

// Project 是单个工程文件的完整扫描结果：program → routine → rung → tags。
//
// 注意：
// - 迭代顺序为名字第一次写入的顺序
// - 同一父级下重名时，后写入的内容原位覆盖先前的内容（last-write-wins）
type Project struct {
	Programs []Program `json:"programs"`
}

// MarshalJSON 把没有梯级的 routine（--keep-empty 时出现）编码为空数组而不是 null。
func (r Routine) MarshalJSON() ([]byte, error) {
	type plain Routine
	out := plain(r)
	if out.Rungs == nil {
		out.Rungs = []Rung{}
	}
	return json.Marshal(out)
}

// MarshalJSON 把没有 routine 的 program 编码为空数组而不是 null。
func (p Program) MarshalJSON() ([]byte, error) {
	type plain Program
	out := plain(p)
	if out.Routines == nil {
		out.Routines = []Routine{}
	}
	return json.Marshal(out)
}

// MarshalJSON 把没有任何 program 的结果编码为空数组而不是 null。
func (p Project) MarshalJSON() ([]byte, error) {
	type plain Project
	out := plain(p)
	if out.Programs == nil {
		out.Programs = []Program{}
	}
	return json.Marshal(out)
}

// AddRung 追加一条梯级命中。调用方保证序号递增且 tags 非空。
func (r *Routine) AddRung(number int, tags []string) {
	r.Rungs = append(r.Rungs, Rung{Number: number, Tags: tags})
}

// Rung 按序号查找梯级。
func (r Routine) Rung(number int) (Rung, bool) {
	for _, item := range r.Rungs {
		if item.Number == number {
			return item, true
		}
	}
	return Rung{}, false
}

// PutRoutine 以 routine 名为键写入；重名时原位覆盖。
func (p *Program) PutRoutine(routine Routine) {
	for i := range p.Routines {
		if p.Routines[i].Name == routine.Name {
			p.Routines[i] = routine
			return
		}
	}
	p.Routines = append(p.Routines, routine)
}

// Routine 按名字查找 routine。
func (p Program) Routine(name string) (Routine, bool) {
	for _, item := range p.Routines {
		if item.Name == name {
			return item, true
		}
	}
	return Routine{}, false
}

// PutProgram 以 program 名为键写入；重名时原位覆盖。
func (p *Project) PutProgram(program Program) {
	for i := range p.Programs {
		if p.Programs[i].Name == program.Name {
			p.Programs[i] = program
			return
		}
	}
	p.Programs = append(p.Programs, program)
}

// Program 按名字查找 program。
func (p Project) Program(name string) (Program, bool) {
	for _, item := range p.Programs {
		if item.Name == name {
			return item, true
		}
	}
	return Program{}, false
}

// Counts 统计结果中的 program、routine、梯级和标签数量。
func (p Project) Counts() Totals {
	var totals Totals
	for _, program := range p.Programs {
		totals.Programs++
		for _, routine := range program.Routines {
			totals.Routines++
			for _, rung := range routine.Rungs {
				totals.Rungs++
				totals.Tags += int64(len(rung.Tags))
			}
		}
	}
	return totals
}

// Empty 返回结果是否没有任何 program。
func (p Project) Empty() bool {
	return len(p.Programs) == 0
}
