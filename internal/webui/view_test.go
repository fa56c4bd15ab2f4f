package webui

import (
	"net/url"
	"testing"

	"github.com/John-Robertt/vmeta/internal/domain"
)

func TestVisibleRows(t *testing.T) {
	tbl := domain.Table{
		Columns: []string{"File"},
		Rows: []domain.Row{
			{"File": "b"}, {"File": "a"}, {"File": "c"}, {"File": "a"},
		},
	}

	cases := []struct {
		name string
		p    viewParams
		size int
		want []int
		page int
	}{
		{name: "默认顺序", p: viewParams{Page: 1}, size: 10, want: []int{0, 1, 2, 3}, page: 1},
		{name: "升序稳定", p: viewParams{Page: 1, Sort: "File"}, size: 10, want: []int{1, 3, 0, 2}, page: 1},
		{name: "降序", p: viewParams{Page: 1, Sort: "File", Desc: true}, size: 10, want: []int{2, 0, 1, 3}, page: 1},
		{name: "第二页", p: viewParams{Page: 2}, size: 3, want: []int{3}, page: 2},
		{name: "页码越界夹紧", p: viewParams{Page: 9}, size: 3, want: []int{3}, page: 2},
		{name: "未知列忽略排序", p: viewParams{Page: 1, Sort: "Nope"}, size: 2, want: []int{0, 1}, page: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.p
			got := visibleRows(tbl, &p, tc.size)
			if len(got) != len(tc.want) {
				t.Fatalf("got=%v want=%v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got=%v want=%v", got, tc.want)
				}
			}
			if p.Page != tc.page {
				t.Fatalf("page=%d want=%d", p.Page, tc.page)
			}
		})
	}
}

func TestViewParams_QueryRoundTrip(t *testing.T) {
	p := viewParams{Page: 3, Sort: "File", Desc: true}
	u, err := url.Parse(p.query())
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	got := parseViewParams(u.Query())
	if got != p {
		t.Fatalf("got=%+v want=%+v", got, p)
	}
	if (viewParams{Page: 1}).query() != "/" {
		t.Fatalf("默认参数应回到根路径")
	}
}
