package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	FileStatusWritten = "written"
	FileStatusFailed  = "failed"
)

const (
	ErrCodeInvalidKey     = "invalid_key"
	ErrCodeDuplicateKey   = "duplicate_key"
	ErrCodeEncodeFailed   = "encode_failed"
	ErrCodeTargetConflict = "target_conflict"
	ErrCodeIOFailed       = "io_failed"
)

// ExportReport 描述一次“导出选中行”的结果（逐文件成功/失败）。
// session 用它生成提示文案，CLI/API 直接输出 JSON。
type ExportReport struct {
	Dir string `json:"dir"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ExportSummary `json:"summary"`
	Files   []FileResult  `json:"files"`
}

type ExportSummary struct {
	Written int `json:"written"`
	Failed  int `json:"failed"`
}

type FileResult struct {
	Row       int    `json:"row"`
	Key       string `json:"key"`
	Path      string `json:"path"`
	Status    string `json:"status"`
	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC
// 2) files 按行号稳定排序
// 3) summary 由 files 计算得出
func (r *ExportReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Files, func(i, j int) bool { return r.Files[i].Row < r.Files[j].Row })

	var s ExportSummary
	for _, f := range r.Files {
		switch f.Status {
		case FileStatusWritten:
			s.Written++
		case FileStatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// WrittenRows 返回成功写出的行号（已按行号排序）。
func (r ExportReport) WrittenRows() []int {
	out := make([]int, 0, len(r.Files))
	for _, f := range r.Files {
		if f.Status == FileStatusWritten {
			out = append(out, f.Row)
		}
	}
	return out
}

// MarshalJSON 集中约束输出的稳定性：files 为空时输出 [] 而不是 null。
func (r ExportReport) MarshalJSON() ([]byte, error) {
	type Alias ExportReport
	a := Alias(r)
	if a.Files == nil {
		a.Files = []FileResult{}
	}
	return json.Marshal(a)
}
