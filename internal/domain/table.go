package domain

import "fmt"

// Row 是表格中的一行：字段名 -> 值。
// 一行对应磁盘上的一个 <stem>.metadata.yaml（占位行除外）。
type Row map[string]string

// Clone 返回 r 的浅拷贝（值都是 string，浅拷贝即深拷贝）。
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table 是聚合后的元数据表。
//
// 不变量（所有修改表的函数必须维护）：
// - 每一行的 key 集合与 Columns 完全一致（缺失值为空串）
// - Columns 的顺序在编辑过程中保持稳定
// - Placeholder=true 表示 Rows[0] 是“目录里没有任何 metadata 文件”时合成的空行
type Table struct {
	Columns     []string
	Rows        []Row
	Placeholder bool
}

// HasColumn 判断 name 是否为已有列。
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EmptyRow 构造一行所有列都为空串的记录。
func (t Table) EmptyRow() Row {
	r := make(Row, len(t.Columns))
	for _, c := range t.Columns {
		r[c] = ""
	}
	return r
}

// PlaceholderIntact 判断占位行是否仍然原样存在：标记为真、只有一行、且该行所有值为空串。
// 占位行一旦被删除、移动或与其他行共存，就不再视为占位行。
func (t Table) PlaceholderIntact() bool {
	if !t.Placeholder || len(t.Rows) != 1 {
		return false
	}
	for _, v := range t.Rows[0] {
		if v != "" {
			return false
		}
	}
	return true
}

// Clone 深拷贝整张表；session 层每次操作都基于副本，保证旧状态不被修改。
func (t Table) Clone() Table {
	out := Table{
		Columns:     append([]string(nil), t.Columns...),
		Rows:        make([]Row, len(t.Rows)),
		Placeholder: t.Placeholder,
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// AddColumn 追加一列（已存在则忽略），并把所有行补齐为空串。
func (t *Table) AddColumn(name string) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
	for _, r := range t.Rows {
		r[name] = ""
	}
}

// Conform 校验 rows 的形状与当前列一致（key 集合完全相同）。
// 宿主提交的整表快照必须先通过该检查，再进入行级 diff。
func (t Table) Conform(rows []Row) error {
	for i, r := range rows {
		if len(r) != len(t.Columns) {
			return fmt.Errorf("第 %d 行字段数为 %d，期望 %d", i, len(r), len(t.Columns))
		}
		for _, c := range t.Columns {
			if _, ok := r[c]; !ok {
				return fmt.Errorf("第 %d 行缺少字段 %q", i, c)
			}
		}
	}
	return nil
}
