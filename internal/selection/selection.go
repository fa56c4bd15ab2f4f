package selection

import (
	"strconv"
	"strings"

	"github.com/John-Robertt/vmeta/internal/domain"
)

// Edited 返回 cur 中“被编辑过”的行下标。
//
// 判定规则是整行集合差：cur 中某行若在 prev 的任何位置都找不到完全相同的行，即视为被编辑。
// 因此：
// - 只移动位置、内容不变的行不会被标记
// - 内容改变的行无论移动到哪里都会被标记
// - 已知局限：两行内容恰好相同时，无法区分“重排”与“改成和另一行一样”
func Edited(prev, cur []domain.Row, cols []string) []int {
	seen := make(map[string]struct{}, len(prev))
	for _, r := range prev {
		seen[rowKey(r, cols)] = struct{}{}
	}

	out := make([]int, 0, 4)
	for i, r := range cur {
		if _, ok := seen[rowKey(r, cols)]; ok {
			continue
		}
		out = append(out, i)
	}
	return out
}

// Union 把 idx 并入 sel（只增不减），越界下标被丢弃。
func Union(sel domain.Selection, idx []int, n int) domain.Selection {
	all := make([]int, 0, len(sel)+len(idx))
	all = append(all, sel...)
	all = append(all, idx...)
	return domain.NewSelection(all, n)
}

// Toggle 实现“全选/全不选”按钮：
// - allSelected=false：选中当前页可见的所有行（visible 是这些行在整表中的下标）
// - allSelected=true：清空整个选择集
//
// 返回新的选择集与新的 allSelected 标志。
func Toggle(allSelected bool, visible []int, n int) (domain.Selection, bool) {
	if allSelected {
		return domain.Selection{}, false
	}
	return domain.NewSelection(visible, n), true
}

// Remap 在整表快照替换后重新定位已选中的行：按整行内容匹配，
// prev 中同一内容的第 k 次出现对应 cur 中的第 k 次出现。
// 被删除或内容已改变的行从选择集中移除（改变的行由 Edited 重新并入）。
func Remap(prev, cur []domain.Row, cols []string, sel domain.Selection) domain.Selection {
	at := make(map[string][]int, len(cur))
	for i, r := range cur {
		k := rowKey(r, cols)
		at[k] = append(at[k], i)
	}

	rank := make(map[string]int, len(prev))
	out := make([]int, 0, len(sel))
	for i, r := range prev {
		k := rowKey(r, cols)
		n := rank[k]
		rank[k] = n + 1
		if !sel.Contains(i) {
			continue
		}
		if n < len(at[k]) {
			out = append(out, at[k][n])
		}
	}
	return domain.NewSelection(out, len(cur))
}

// rowKey 按列顺序把一行编码为可比较的字符串。
// 每个值前缀其字节长度，任何内容都不会产生拼接歧义。
func rowKey(r domain.Row, cols []string) string {
	var b strings.Builder
	for _, c := range cols {
		v := r[c]
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}
