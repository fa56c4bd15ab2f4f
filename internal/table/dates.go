package table

import (
	"strings"
	"time"

	"github.com/John-Robertt/vmeta/internal/domain"
)

// DateLayout 是日期列规范化后的格式（字典序即时间序，便于表格排序）。
const DateLayout = "2006-01-02"

// 可识别的输入格式，按优先级尝试。
// 斜杠格式按“月/日/年”解释。
var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006.01.02",
	"20060102",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
}

// IsDateColumn 判断列名是否包含 "date"（大小写不敏感）。
func IsDateColumn(name string) bool {
	return strings.Contains(strings.ToLower(name), "date")
}

// NormalizeDate 把 s 规范化为 YYYY-MM-DD。
// 空串与无法识别的值原样返回（ok=false），不丢数据。
func NormalizeDate(s string) (string, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return s, false
	}
	for _, layout := range dateLayouts {
		tm, err := time.Parse(layout, v)
		if err != nil {
			continue
		}
		return tm.Format(DateLayout), true
	}
	return s, false
}

// NormalizeDates 就地规范化所有日期列的值。
func NormalizeDates(t *domain.Table) {
	for _, c := range t.Columns {
		if !IsDateColumn(c) {
			continue
		}
		for _, r := range t.Rows {
			if v, ok := NormalizeDate(r[c]); ok {
				r[c] = v
			}
		}
	}
}
