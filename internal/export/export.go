package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/vmeta/internal/domain"
	"github.com/John-Robertt/vmeta/internal/infra/fsx"
	"github.com/John-Robertt/vmeta/internal/infra/yamlx"
	"github.com/John-Robertt/vmeta/internal/scan"
)

// Item 是一行待导出的数据（已编码，可直接落盘）。
type Item struct {
	Row  int
	Key  string // key 列的原始值，例如 "clip.v2.mp4"
	Name string // 目标文件名，例如 "clip.v2.metadata.yaml"
	Data []byte
}

// PlanError 表示导出规划阶段发现的问题；出现任何 PlanError 时一个文件都不写。
type PlanError struct {
	Row  int
	Code string // domain.ErrCode*
	Err  error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("%s：第 %d 行：%v", e.Code, e.Row, e.Err)
}

func (e *PlanError) Unwrap() error { return e.Err }

// StemFromKey 去掉 key 的最后一个扩展名："clip.v2.mp4" -> "clip.v2"；没有 '.' 时原样返回。
func StemFromKey(key string) string {
	i := strings.LastIndex(key, ".")
	if i < 0 {
		return key
	}
	return key[:i]
}

// Plan 为选中的每一行生成导出条目（按行号升序）。
//
// 先整体校验再返回：key 为空/含路径分隔符/不是合法文件名、key 列不存在、
// 两行映射到同一个目标文件，都会返回 *PlanError，此时调用方不应写任何文件。
func Plan(t domain.Table, sel domain.Selection, keyField string) ([]Item, error) {
	if !t.HasColumn(keyField) {
		return nil, &PlanError{Row: -1, Code: domain.ErrCodeInvalidKey, Err: fmt.Errorf("key 列 %q 不存在", keyField)}
	}

	byName := make(map[string]int, len(sel))
	items := make([]Item, 0, len(sel))
	for _, i := range sel {
		if i < 0 || i >= len(t.Rows) {
			return nil, &PlanError{Row: i, Code: domain.ErrCodeInvalidKey, Err: fmt.Errorf("行号越界（共 %d 行）", len(t.Rows))}
		}
		row := t.Rows[i]
		key := strings.TrimSpace(row[keyField])
		stem := StemFromKey(key)
		if err := validStem(stem); err != nil {
			return nil, &PlanError{Row: i, Code: domain.ErrCodeInvalidKey, Err: fmt.Errorf("key=%q：%w", key, err)}
		}

		name := scan.MetadataName(stem)
		if j, ok := byName[name]; ok {
			return nil, &PlanError{Row: i, Code: domain.ErrCodeDuplicateKey, Err: fmt.Errorf("与第 %d 行导出到同一文件 %q", j, name)}
		}
		byName[name] = i

		b, err := Encode(t.Columns, row)
		if err != nil {
			return nil, &PlanError{Row: i, Code: domain.ErrCodeEncodeFailed, Err: err}
		}
		items = append(items, Item{Row: i, Key: key, Name: name, Data: b})
	}
	return items, nil
}

// Encode 把一行编码为 YAML 文档，字段顺序与 cols 一致（不排序）。
func Encode(cols []string, row domain.Row) ([]byte, error) {
	fields := make([]yamlx.Field, 0, len(cols))
	for _, c := range cols {
		fields = append(fields, yamlx.Field{Key: c, Value: row[c]})
	}
	return yamlx.EncodeMapping(fields)
}

// Write 逐个原子写入 items（覆盖已有文件），返回逐文件结果。
//
// 每个文件要么完整写入、要么保持原样；单个文件失败不影响其余文件，失败会记录在报告中。
func Write(dir string, items []Item) domain.ExportReport {
	rr := domain.ExportReport{
		Dir:       dir,
		StartedAt: time.Now().UTC(),
		Files:     make([]domain.FileResult, 0, len(items)),
	}
	for _, it := range items {
		fr := domain.FileResult{
			Row:    it.Row,
			Key:    it.Key,
			Path:   filepath.Join(dir, it.Name),
			Status: domain.FileStatusWritten,
		}
		if err := fsx.WriteFileAtomic(dir, it.Name, it.Data); err != nil {
			fr.Status = domain.FileStatusFailed
			fr.ErrorCode = domain.ErrCodeIOFailed
			if fsx.IsPathTypeConflict(err) {
				fr.ErrorCode = domain.ErrCodeTargetConflict
			}
			fr.ErrorMsg = err.Error()
		}
		rr.Files = append(rr.Files, fr)
	}
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

func validStem(stem string) error {
	switch {
	case stem == "":
		return fmt.Errorf("key 为空")
	case stem == "." || stem == "..":
		return fmt.Errorf("key 不是合法文件名")
	case strings.ContainsAny(stem, `/\`):
		return fmt.Errorf("key 不能包含路径分隔符")
	case strings.ContainsRune(stem, 0):
		return fmt.Errorf("key 含非法字符")
	}
	return nil
}
