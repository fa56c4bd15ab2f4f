package domain

import "sort"

// Selection 是被勾选（待导出）的行下标集合。
//
// 不变量：下标有序、去重，且始终满足 0 <= i < len(table.Rows)。
// 删除行时必须调用 Shift/Normalize 重新规范化。
type Selection []int

// NewSelection 从任意下标列表构造规范化的 Selection（排序 + 去重 + 过滤越界）。
func NewSelection(idx []int, n int) Selection {
	seen := make(map[int]struct{}, len(idx))
	out := make(Selection, 0, len(idx))
	for _, i := range idx {
		if i < 0 || i >= n {
			continue
		}
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Contains 判断 i 是否被选中。
func (s Selection) Contains(i int) bool {
	j := sort.SearchInts(s, i)
	return j < len(s) && s[j] == i
}

// Without 返回去掉 drop 中所有下标后的新集合。
func (s Selection) Without(drop []int) Selection {
	if len(drop) == 0 {
		return append(Selection(nil), s...)
	}
	m := make(map[int]struct{}, len(drop))
	for _, i := range drop {
		m[i] = struct{}{}
	}
	out := make(Selection, 0, len(s))
	for _, i := range s {
		if _, ok := m[i]; ok {
			continue
		}
		out = append(out, i)
	}
	return out
}

// ShiftAfterRemove 在删除第 removed 行之后重算下标：
// removed 本身被丢弃，其后的下标整体减一。
func (s Selection) ShiftAfterRemove(removed int) Selection {
	out := make(Selection, 0, len(s))
	for _, i := range s {
		switch {
		case i == removed:
			continue
		case i > removed:
			out = append(out, i-1)
		default:
			out = append(out, i)
		}
	}
	return out
}
