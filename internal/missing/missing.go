package missing

import (
	"io/fs"

	"github.com/John-Robertt/vmeta/internal/domain"
	"github.com/John-Robertt/vmeta/internal/scan"
)

// Detect 返回“缺少元数据”的视频文件名（按文件名排序，每个恰好一次）。
//
// 一个视频被认为缺少元数据，当且仅当：
// 1) 磁盘上没有 <stem>.metadata.yaml
// 2) 当前表格中没有任何一行的 keyField 等于该视频文件名
func Detect(fsys fs.FS, t domain.Table, keyField string, exts []string) ([]string, error) {
	metaNames, err := scan.ListMetadata(fsys)
	if err != nil {
		return nil, err
	}
	hasMeta := make(map[string]struct{}, len(metaNames))
	for _, n := range metaNames {
		hasMeta[scan.MetadataStem(n)] = struct{}{}
	}

	inTable := make(map[string]struct{}, len(t.Rows))
	for _, r := range t.Rows {
		inTable[r[keyField]] = struct{}{}
	}

	videos, err := scan.ListVideos(fsys, exts)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(videos))
	for _, v := range videos {
		if _, ok := hasMeta[v.Stem]; ok {
			continue
		}
		if _, ok := inTable[v.Name]; ok {
			continue
		}
		out = append(out, v.Name)
	}
	return out, nil
}

// Append 为每个缺失视频追加一行（keyField = 文件名，其余列为空串），返回新表与新选择集。
//
//   - keyField 不是已有列时，先追加为新列（所有已有行补空串）
//   - 占位行规则：占位行仍原样存在（t.PlaceholderIntact）且本次至少追加了一行时，
//     删除占位行（Rows[0]），并同步平移 selection；占位行不会与真实数据共存
//   - names 为空时原样返回（不改变占位状态）
//
// 不修改入参 t。
func Append(t domain.Table, sel domain.Selection, names []string, keyField string) (domain.Table, domain.Selection) {
	if len(names) == 0 {
		return t, sel
	}

	out := t.Clone()
	out.AddColumn(keyField)
	for _, name := range names {
		r := out.EmptyRow()
		r[keyField] = name
		out.Rows = append(out.Rows, r)
	}

	nextSel := append(domain.Selection(nil), sel...)
	if t.PlaceholderIntact() {
		out.Rows = out.Rows[1:]
		nextSel = nextSel.ShiftAfterRemove(0)
	}
	out.Placeholder = false
	return out, nextSel
}
