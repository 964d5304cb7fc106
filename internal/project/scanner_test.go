package project

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"l5kscan/internal/model"
	"l5kscan/internal/segment"
)

// scanText 是测试辅助函数，用给定模式扫描文本并返回结果。
func scanText(t *testing.T, pattern string, content string, opts ...Option) model.Project {
	t.Helper()

	scanner, err := New(pattern, opts...)
	if err != nil {
		t.Fatalf("create scanner failed: %v", err)
	}
	project, err := scanner.Scan(strings.NewReader(content))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	return project
}

// TestScanEndToEnd 验证基础示例：没有命中的梯级不会出现在结果中。
func TestScanEndToEnd(t *testing.T) {
	content := strings.Join([]string{
		"PROGRAM MainProg",
		"ROUTINE R1",
		"N: (gp_shunt.1)(other_tag)",
		"N: (nothing_matches)",
		"END_ROUTINE",
		"END_PROGRAM",
	}, "\n")

	got := scanText(t, "shunt", content)
	want := model.Project{Programs: []model.Program{{
		Name: "MainProg",
		Routines: []model.Routine{{
			Name:  "R1",
			Rungs: []model.Rung{{Number: 0, Tags: []string{"gp_shunt.1"}}},
		}},
	}}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}

	routine, _ := got.Programs[0].Routine("R1")
	if _, ok := routine.Rung(1); ok {
		t.Fatalf("rung 1 has no matches and must be absent")
	}
}

// TestScanRungCounterRestartsPerRoutine 验证同一 program 内多个 routine 的梯级序号各自从 0 开始。
func TestScanRungCounterRestartsPerRoutine(t *testing.T) {
	content := strings.Join([]string{
		"PROGRAM P",
		"\tROUTINE First ",
		"\t\tN: XIC(a)OTE(shunt_1);",
		"\t\tN: XIC(b);",
		"\t\tN: OTE(Shunt_2);",
		"\tEND_ROUTINE",
		"\tROUTINE Second ",
		"\t\tN: XIC(c);",
		"\t\tN: XIO(SHUNT_3)OTE(d);",
		"\tEND_ROUTINE",
		"END_PROGRAM",
	}, "\r\n")

	got := scanText(t, "shunt", content)
	want := model.Project{Programs: []model.Program{{
		Name: "P",
		Routines: []model.Routine{
			{Name: "First", Rungs: []model.Rung{
				{Number: 0, Tags: []string{"shunt_1"}},
				{Number: 2, Tags: []string{"Shunt_2"}},
			}},
			{Name: "Second", Rungs: []model.Rung{
				{Number: 1, Tags: []string{"SHUNT_3"}},
			}},
		},
	}}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

// TestScanEmptyBucketsAbsent 验证没有命中的 routine 与 program 不会出现在结果中。
func TestScanEmptyBucketsAbsent(t *testing.T) {
	content := strings.Join([]string{
		"PROGRAM NoRoutines",
		"END_PROGRAM",
		"PROGRAM NoMatches",
		"ROUTINE R",
		"N: XIC(a);",
		"END_ROUTINE",
		"END_PROGRAM",
		"PROGRAM Mixed",
		"ROUTINE Quiet",
		"N: XIC(a);",
		"END_ROUTINE",
		"ROUTINE Loud",
		"N: XIC(bypass_shunt);",
		"END_ROUTINE",
		"END_PROGRAM",
	}, "\n")

	got := scanText(t, "shunt", content)
	want := model.Project{Programs: []model.Program{{
		Name: "Mixed",
		Routines: []model.Routine{{
			Name:  "Loud",
			Rungs: []model.Rung{{Number: 0, Tags: []string{"bypass_shunt"}}},
		}},
	}}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

// TestScanKeepEmpty 验证 KeepEmpty 时空 routine/program 同样写入结果。
func TestScanKeepEmpty(t *testing.T) {
	content := strings.Join([]string{
		"PROGRAM P",
		"ROUTINE R",
		"N: XIC(a);",
		"END_ROUTINE",
		"END_PROGRAM",
		"PROGRAM Bare",
		"END_PROGRAM",
	}, "\n")

	got := scanText(t, "shunt", content, WithKeepEmpty(true))
	want := model.Project{Programs: []model.Program{
		{Name: "P", Routines: []model.Routine{{Name: "R"}}},
		{Name: "Bare"},
	}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

// TestScanUnterminatedRoutineDiscarded 验证文件结束时未闭合的 routine 不会被归档。
func TestScanUnterminatedRoutineDiscarded(t *testing.T) {
	content := strings.Join([]string{
		"PROGRAM P",
		"ROUTINE Done",
		"N: XIC(shunt_a);",
		"END_ROUTINE",
		"ROUTINE Open",
		"N: XIC(shunt_b);",
	}, "\n")

	if got := scanText(t, "shunt", content); !got.Empty() {
		t.Fatalf("expected no filed program, got %+v", got)
	}

	closedProgram := content + "\nEND_PROGRAM"
	got := scanText(t, "shunt", closedProgram)
	program, ok := got.Program("P")
	if !ok {
		t.Fatalf("program P missing: %+v", got)
	}
	if _, ok := program.Routine("Open"); ok {
		t.Fatalf("unterminated routine must be discarded")
	}
	if _, ok := program.Routine("Done"); !ok {
		t.Fatalf("closed routine must be filed")
	}
}

// TestScanRungOutsideRoutineIgnored 验证 routine 之外以及 program 之外的指令行不参与统计。
func TestScanRungOutsideRoutineIgnored(t *testing.T) {
	content := strings.Join([]string{
		"N: XIC(shunt_outside_program);",
		"ROUTINE Orphan",
		"N: XIC(shunt_orphan);",
		"END_ROUTINE",
		"PROGRAM P",
		"N: XIC(shunt_outside_routine);",
		"ROUTINE R",
		"N: XIC(shunt_inside);",
		"END_ROUTINE",
		"END_PROGRAM",
	}, "\n")

	got := scanText(t, "shunt", content)
	want := model.Project{Programs: []model.Program{{
		Name: "P",
		Routines: []model.Routine{{
			Name:  "R",
			Rungs: []model.Rung{{Number: 0, Tags: []string{"shunt_inside"}}},
		}},
	}}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

// TestScanDuplicateRoutineLastWriteWins 验证同名 routine 后者覆盖前者。
func TestScanDuplicateRoutineLastWriteWins(t *testing.T) {
	content := strings.Join([]string{
		"PROGRAM P",
		"ROUTINE R",
		"N: XIC(shunt_first);",
		"END_ROUTINE",
		"ROUTINE R",
		"N: XIC(x);",
		"N: XIC(shunt_second);",
		"END_ROUTINE",
		"END_PROGRAM",
	}, "\n")

	got := scanText(t, "shunt", content)
	want := model.Project{Programs: []model.Program{{
		Name: "P",
		Routines: []model.Routine{{
			Name:  "R",
			Rungs: []model.Rung{{Number: 1, Tags: []string{"shunt_second"}}},
		}},
	}}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

// TestScanHeaderFalsePositive 验证默认子串判定下的误判被保留，严格判定可以消除。
func TestScanHeaderFalsePositive(t *testing.T) {
	content := strings.Join([]string{
		"PROGRAM P",
		"ROUTINE R",
		"N: XIC(shunt_0);",
		"END_ROUTINE",
		"ROUTINE_COUNT := 1;",
		"N: XIC(shunt_1);",
		"END_ROUTINE",
		"END_PROGRAM",
	}, "\n")

	loose := scanText(t, "shunt", content)
	program, _ := loose.Program("P")
	if _, ok := program.Routine("COUNT"); !ok {
		// ROUTINE_COUNT 被当成段头，段名从 marker 后第二个字符截取到下一个空格。
		t.Fatalf("expected substring header false positive, got %+v", program.Routines)
	}

	strict := scanText(t, "shunt", content, WithMatcher(segment.MatchHeaderToken))
	program, _ = strict.Program("P")
	if len(program.Routines) != 1 || program.Routines[0].Name != "R" {
		t.Fatalf("unexpected strict routines: %+v", program.Routines)
	}
}

// TestScanMultiplePrograms 验证多个 program 按首次出现顺序排列。
func TestScanMultiplePrograms(t *testing.T) {
	content := strings.Join([]string{
		"PROGRAM Beta (Class := Standard)",
		"ROUTINE Main ",
		"N: OTE(shunt);",
		"END_ROUTINE",
		"END_PROGRAM",
		"PROGRAM Alpha ",
		"ROUTINE Main (Description := \"x\")",
		"N: OTE(SHUNT);",
		"END_ROUTINE",
		"END_PROGRAM",
	}, "\n")

	got := scanText(t, "shunt", content)
	if len(got.Programs) != 2 || got.Programs[0].Name != "Beta" || got.Programs[1].Name != "Alpha" {
		t.Fatalf("unexpected program order: %+v", got.Programs)
	}
}

// TestScanCustomLayout 验证可以替换段标记。
func TestScanCustomLayout(t *testing.T) {
	content := strings.Join([]string{
		"TASK T1",
		"BLOCK B1",
		"S: CALL(shunt_x);",
		"END_BLOCK",
		"END_TASK",
	}, "\n")

	layout := Layout{ProgramStart: "TASK", ProgramEnd: "END_TASK", RoutineStart: "BLOCK", RoutineEnd: "END_BLOCK", RungMarker: "S:"}
	scanner, err := New("shunt", WithLayout(layout))
	if err != nil {
		t.Fatalf("create scanner failed: %v", err)
	}
	got := scanner.ScanLines(strings.Split(content, "\n"))
	if _, ok := got.Program("T1"); !ok {
		t.Fatalf("expected custom layout program, got %+v", got)
	}
	if scanner.Layout().RungMarker != "S:" {
		t.Fatalf("unexpected layout: %+v", scanner.Layout())
	}

	partial, err := New("shunt", WithLayout(Layout{RungMarker: "S:"}))
	if err != nil {
		t.Fatalf("create scanner failed: %v", err)
	}
	if partial.Layout().ProgramStart != "PROGRAM" {
		t.Fatalf("empty layout fields must fall back to defaults: %+v", partial.Layout())
	}
}

// TestNewInvalidPattern 验证非法模式在扫描前失败。
func TestNewInvalidPattern(t *testing.T) {
	_, err := New("shunt(")
	if !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("expected ErrInvalidPattern, got %v", err)
	}
}

// failingReader 在返回部分内容后报告读取错误。
type failingReader struct {
	served bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.served {
		return 0, io.ErrUnexpectedEOF
	}
	r.served = true
	return copy(p, "PROGRAM P\n"), nil
}

// TestScanReadError 验证读取错误会返回给调用方。
func TestScanReadError(t *testing.T) {
	scanner, err := New("shunt")
	if err != nil {
		t.Fatalf("create scanner failed: %v", err)
	}
	if _, err := scanner.Scan(&failingReader{}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected read error, got %v", err)
	}
}

// TestScanProgramClosesWithRoutineOpen 验证外层关闭不会重置内层状态机：
// 未闭合的 routine 会延续到下一个 program，梯级序号继续累加，并以原名归档。
func TestScanProgramClosesWithRoutineOpen(t *testing.T) {
	content := strings.Join([]string{
		"PROGRAM A",
		"ROUTINE R1",
		"N:(shunt_a)",
		"END_PROGRAM",
		"PROGRAM B",
		"ROUTINE R2",
		"N:(x)",
		"N:(shunt_b)",
		"END_ROUTINE",
		"END_PROGRAM",
	}, "\n")

	got := scanText(t, "shunt", content)
	want := model.Project{Programs: []model.Program{{
		Name: "B",
		Routines: []model.Routine{{
			Name: "R1",
			Rungs: []model.Rung{
				{Number: 0, Tags: []string{"shunt_a"}},
				{Number: 2, Tags: []string{"shunt_b"}},
			},
		}},
	}}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}
