package selection

import (
	"testing"

	"github.com/John-Robertt/vmeta/internal/domain"
)

var cols = []string{"File", "Notes"}

func TestEdited_SingleCellChange(t *testing.T) {
	prev := []domain.Row{{"File": "a.mp4", "Notes": ""}}
	cur := []domain.Row{{"File": "a.mp4", "Notes": "done"}}

	idx := Edited(prev, cur, cols)
	if len(idx) != 1 || idx[0] != 0 {
		t.Fatalf("期望 [0]，实际 %v", idx)
	}

	sel := Union(nil, idx, len(cur))
	if len(sel) != 1 || sel[0] != 0 {
		t.Fatalf("期望选择集 [0]，实际 %v", sel)
	}
}

func TestEdited_ReorderIsNotEdit(t *testing.T) {
	prev := []domain.Row{
		{"File": "a.mp4", "Notes": "x"},
		{"File": "b.mp4", "Notes": "y"},
	}
	cur := []domain.Row{
		{"File": "b.mp4", "Notes": "y"},
		{"File": "a.mp4", "Notes": "x"},
	}
	if idx := Edited(prev, cur, cols); len(idx) != 0 {
		t.Fatalf("仅重排不应被标记，实际 %v", idx)
	}
}

func TestEdited_ChangedRowFlaggedAtNewPosition(t *testing.T) {
	prev := []domain.Row{
		{"File": "a.mp4", "Notes": "x"},
		{"File": "b.mp4", "Notes": "y"},
	}
	cur := []domain.Row{
		{"File": "b.mp4", "Notes": "changed"},
		{"File": "a.mp4", "Notes": "x"},
	}
	idx := Edited(prev, cur, cols)
	if len(idx) != 1 || idx[0] != 0 {
		t.Fatalf("期望 [0]，实际 %v", idx)
	}
}

func TestEdited_NoSeparatorAmbiguity(t *testing.T) {
	prev := []domain.Row{{"File": "a", "Notes": "b|c"}}
	cur := []domain.Row{{"File": "a|b", "Notes": "c"}}
	if idx := Edited(prev, cur, cols); len(idx) != 1 {
		t.Fatalf("拼接歧义导致漏判：%v", idx)
	}
}

func TestEdited_ControlBytesInValues(t *testing.T) {
	prev := []domain.Row{{"File": "p\x01Notes\x00q", "Notes": "r"}}
	cur := []domain.Row{{"File": "p", "Notes": "q\x01Notes\x00r"}}
	if idx := Edited(prev, cur, cols); len(idx) != 1 || idx[0] != 0 {
		t.Fatalf("值中含控制字符时不应误判为未编辑：%v", idx)
	}
}

func TestRemap_FollowsRowsAcrossSnapshot(t *testing.T) {
	a := domain.Row{"File": "a.mp4", "Notes": ""}
	b := domain.Row{"File": "b.mp4", "Notes": ""}
	c := domain.Row{"File": "c.mp4", "Notes": ""}

	cases := []struct {
		name string
		prev []domain.Row
		cur  []domain.Row
		sel  domain.Selection
		want []int
	}{
		{name: "删除首行后下标前移", prev: []domain.Row{a, b, c}, cur: []domain.Row{b, c}, sel: domain.Selection{2}, want: []int{1}},
		{name: "删除首行后不指向别的行", prev: []domain.Row{a, b, c}, cur: []domain.Row{b, c}, sel: domain.Selection{1}, want: []int{0}},
		{name: "选中的行被删除", prev: []domain.Row{a, b, c}, cur: []domain.Row{a, c}, sel: domain.Selection{1}, want: []int{}},
		{name: "重排", prev: []domain.Row{a, b}, cur: []domain.Row{b, a}, sel: domain.Selection{0}, want: []int{1}},
		{name: "重复行按出现次序对应", prev: []domain.Row{a, a, b}, cur: []domain.Row{b, a, a}, sel: domain.Selection{1}, want: []int{2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Remap(tc.prev, tc.cur, cols, tc.sel)
			if len(got) != len(tc.want) {
				t.Fatalf("期望 %v，实际 %v", tc.want, got)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("期望 %v，实际 %v", tc.want, got)
				}
			}
		})
	}
}

func TestUnion_NeverRemoves(t *testing.T) {
	sel := Union(domain.Selection{2, 4}, []int{1, 2}, 5)
	want := []int{1, 2, 4}
	if len(sel) != len(want) {
		t.Fatalf("期望 %v，实际 %v", want, sel)
	}
	for i := range want {
		if sel[i] != want[i] {
			t.Fatalf("期望 %v，实际 %v", want, sel)
		}
	}
}

func TestToggle_SelectClearSelect(t *testing.T) {
	visible := []int{0, 1, 2} // 第一页 3 行；整表 5 行
	all := false

	sel, all := Toggle(all, visible, 5)
	if !all || len(sel) != 3 {
		t.Fatalf("第 1 次点击应选中当前页：sel=%v all=%v", sel, all)
	}

	sel, all = Toggle(all, visible, 5)
	if all || len(sel) != 0 {
		t.Fatalf("第 2 次点击应清空：sel=%v all=%v", sel, all)
	}

	sel, all = Toggle(all, visible, 5)
	if !all || len(sel) != 3 || sel[2] != 2 {
		t.Fatalf("第 3 次点击应重新选中：sel=%v all=%v", sel, all)
	}
}

func TestToggle_OnlyCurrentPage(t *testing.T) {
	sel, _ := Toggle(false, []int{3, 4}, 5)
	if len(sel) != 2 || sel[0] != 3 || sel[1] != 4 {
		t.Fatalf("应只选中当前页的行：%v", sel)
	}
}
