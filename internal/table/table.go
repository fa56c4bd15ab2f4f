package table

import (
	"fmt"
	"io/fs"

	"github.com/John-Robertt/vmeta/internal/domain"
	"github.com/John-Robertt/vmeta/internal/infra/yamlx"
	"github.com/John-Robertt/vmeta/internal/scan"
)

// FileError 表示某个元数据文件无法读取或解析。
// 上层据此提示是哪个文件出了问题（而不是整体失败却不知道原因）。
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("元数据文件 %q 无效：%v", e.Name, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Aggregate 把 fsys 根目录下所有 *metadata.yaml 聚合为一张表。
//
// 规则：
// - 每个文件一行；文件必须是顶层 mapping
// - 列 = schema 字段 ∪ 文件中出现的字段，按首次出现顺序（schema 在前）
// - 行内缺失的列补空串
// - 没有任何元数据文件时：返回恰好一行占位行（所有 schema 字段为空串，Placeholder=true）
//
// 注意：Aggregate 不做日期规范化，由调用方显式调用 NormalizeDates。
func Aggregate(fsys fs.FS, schema []string) (domain.Table, error) {
	names, err := scan.ListMetadata(fsys)
	if err != nil {
		return domain.Table{}, err
	}

	t := domain.Table{Columns: make([]string, 0, len(schema))}
	seen := make(map[string]struct{}, len(schema))
	addCol := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		t.Columns = append(t.Columns, c)
	}
	for _, c := range schema {
		addCol(c)
	}

	if len(names) == 0 {
		t.Rows = []domain.Row{t.EmptyRow()}
		t.Placeholder = true
		return t, nil
	}

	t.Rows = make([]domain.Row, 0, len(names))
	for _, name := range names {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return domain.Table{}, &FileError{Name: name, Err: err}
		}
		fields, err := yamlx.DecodeMapping(b)
		if err != nil {
			return domain.Table{}, &FileError{Name: name, Err: err}
		}
		r := make(domain.Row, len(fields))
		for _, f := range fields {
			addCol(f.Key)
			r[f.Key] = f.Value
		}
		t.Rows = append(t.Rows, r)
	}

	// 列集合确定后再统一补齐，保证所有行 key 集合一致。
	for _, r := range t.Rows {
		for _, c := range t.Columns {
			if _, ok := r[c]; !ok {
				r[c] = ""
			}
		}
	}
	return t, nil
}
