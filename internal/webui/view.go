package webui

import (
	"net/url"
	"sort"
	"strconv"

	"github.com/John-Robertt/vmeta/internal/app/session"
	"github.com/John-Robertt/vmeta/internal/domain"
)

// viewParams 是只影响展示的参数：排序与分页不改变表格本身的行顺序。
type viewParams struct {
	Page int // 从 1 开始
	Sort string
	Desc bool
}

func parseViewParams(q url.Values) viewParams {
	p := viewParams{Page: 1, Sort: q.Get("sort")}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		p.Page = n
	}
	p.Desc = q.Get("desc") == "1" || q.Get("desc") == "true"
	return p
}

func (p viewParams) query() string {
	v := url.Values{}
	if p.Page > 1 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
		if p.Desc {
			v.Set("desc", "1")
		}
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}

type cellView struct {
	Col   string
	Value string
}

type rowView struct {
	Index    int
	Selected bool
	Cells    []cellView
}

type headerView struct {
	Name   string
	Href   string
	Sorted bool
	Desc   bool
}

type pageLink struct {
	N       int
	Href    string
	Current bool
}

// pageView 是模板的全部输入。
type pageView struct {
	Loaded      bool
	Err         string
	UploadName  string
	Alert       session.Alert
	Headers     []headerView
	Rows        []rowView
	AllSelected bool
	Selected    int
	Total       int
	Page        int
	Pages       []pageLink
	Params      viewParams
}

// visibleRows 返回当前页（排序后）可见行在整表中的下标。
// 同时把 p.Page 夹到合法范围内。
func visibleRows(t domain.Table, p *viewParams, pageSize int) []int {
	order := make([]int, len(t.Rows))
	for i := range order {
		order[i] = i
	}
	if p.Sort != "" && t.HasColumn(p.Sort) {
		col, desc := p.Sort, p.Desc
		sort.SliceStable(order, func(a, b int) bool {
			va, vb := t.Rows[order[a]][col], t.Rows[order[b]][col]
			if desc {
				return va > vb
			}
			return va < vb
		})
	} else {
		p.Sort, p.Desc = "", false
	}

	if pageSize <= 0 {
		pageSize = len(order)
	}
	pages := pageCount(len(order), pageSize)
	if p.Page > pages {
		p.Page = pages
	}
	if p.Page < 1 {
		p.Page = 1
	}
	lo := (p.Page - 1) * pageSize
	hi := lo + pageSize
	if lo > len(order) {
		lo = len(order)
	}
	if hi > len(order) {
		hi = len(order)
	}
	return order[lo:hi]
}

func pageCount(n, size int) int {
	if n == 0 || size <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

func buildView(st session.State, p viewParams, pageSize int) pageView {
	v := pageView{
		Loaded:     st.HasTable(),
		Err:        st.Err,
		UploadName: st.UploadName,
		Alert:      st.Alert,
	}
	if !v.Loaded {
		v.Params = p
		return v
	}

	visible := visibleRows(st.Table, &p, pageSize)
	v.Params = p
	v.AllSelected = st.AllSelected
	v.Selected = len(st.Selection)
	v.Total = len(st.Table.Rows)
	v.Page = p.Page

	for _, c := range st.Table.Columns {
		h := headerView{Name: c, Sorted: c == p.Sort, Desc: p.Desc}
		next := viewParams{Page: 1, Sort: c, Desc: c == p.Sort && !p.Desc}
		h.Href = next.query()
		v.Headers = append(v.Headers, h)
	}

	for _, i := range visible {
		rv := rowView{Index: i, Selected: st.Selection.Contains(i)}
		for _, c := range st.Table.Columns {
			rv.Cells = append(rv.Cells, cellView{Col: c, Value: st.Table.Rows[i][c]})
		}
		v.Rows = append(v.Rows, rv)
	}

	n := pageCount(len(st.Table.Rows), pageSize)
	if n > 1 {
		for i := 1; i <= n; i++ {
			lp := p
			lp.Page = i
			v.Pages = append(v.Pages, pageLink{N: i, Href: lp.query(), Current: i == p.Page})
		}
	}
	return v
}
