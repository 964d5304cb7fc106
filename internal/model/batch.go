package model

// Totals 表示一组命中计数。
type Totals struct {
	Programs int64 `json:"programs"`
	Routines int64 `json:"routines"`
	Rungs    int64 `json:"rungs"`
	Tags     int64 `json:"tags"`
}

// Add 将另一个计数叠加到当前对象。
func (t *Totals) Add(other Totals) {
	t.Programs += other.Programs
	t.Routines += other.Routines
	t.Rungs += other.Rungs
	t.Tags += other.Tags
}

// FileResult 表示单个工程文件的扫描结果。
type FileResult struct {
	Path          string  `json:"path"`
	ResultPath    string  `json:"result_path"`
	Project       Project `json:"project"`
	ElapsedMillis float64 `json:"elapsed_ms"`
}

// ScanError 记录单文件扫描失败信息。
// 设计为“错误不阻断整批扫描”，一个文件读不出来不影响其他文件。
type ScanError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// FileTotals 在 Totals 基础上增加 Files 字段，表示本次成功扫描的文件数。
type FileTotals struct {
	Files int64 `json:"files"`
	Totals
}

// AddFile 累加一个文件的计数。
func (t *FileTotals) AddFile(other Totals) {
	t.Files++
	t.Totals.Add(other)
}

// BatchResult 是 scan 命令的完整输出模型。
type BatchResult struct {
	ScannedPath   string       `json:"scanned_path"`
	Pattern       string       `json:"pattern"`
	Files         []FileResult `json:"files"`
	Total         FileTotals   `json:"total"`
	Errors        []ScanError  `json:"errors"`
	ElapsedMillis float64      `json:"elapsed_ms"`
}
