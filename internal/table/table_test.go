package table

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestAggregate_NoMetadataFiles_PlaceholderRow(t *testing.T) {
	fsys := fstest.MapFS{
		"cat.mp4": {Data: []byte("x")},
	}

	got, err := Aggregate(fsys, []string{"File", "Notes", "Date"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !got.Placeholder {
		t.Fatalf("期望 Placeholder=true")
	}
	if len(got.Rows) != 1 {
		t.Fatalf("期望恰好 1 行占位行，实际 %d", len(got.Rows))
	}
	for _, c := range []string{"File", "Notes", "Date"} {
		v, ok := got.Rows[0][c]
		if !ok || v != "" {
			t.Fatalf("占位行字段 %q 应为空串，实际 %q (ok=%v)", c, v, ok)
		}
	}
}

func TestAggregate_NRows_ColumnUnionInFirstSeenOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"a.metadata.yaml": {Data: []byte("File: a.mp4\nNotes: first\nCamera: left\n")},
		"b.metadata.yaml": {Data: []byte("Extra: 1\nFile: b.mp4\n")},
		"c.mp4":           {Data: []byte("x")},
	}

	got, err := Aggregate(fsys, []string{"File", "Notes", "Date"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got.Placeholder {
		t.Fatalf("有元数据文件时不应是占位表")
	}
	if len(got.Rows) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(got.Rows))
	}

	wantCols := []string{"File", "Notes", "Date", "Camera", "Extra"}
	if len(got.Columns) != len(wantCols) {
		t.Fatalf("列不正确：%v", got.Columns)
	}
	for i := range wantCols {
		if got.Columns[i] != wantCols[i] {
			t.Fatalf("列顺序不正确：期望 %v，实际 %v", wantCols, got.Columns)
		}
	}
	if err := got.Conform(got.Rows); err != nil {
		t.Fatalf("行形状不一致：%v", err)
	}
	if got.Rows[0]["File"] != "a.mp4" || got.Rows[0]["Extra"] != "" {
		t.Fatalf("第 0 行不正确：%v", got.Rows[0])
	}
	if got.Rows[1]["Extra"] != "1" || got.Rows[1]["Notes"] != "" {
		t.Fatalf("第 1 行不正确：%v", got.Rows[1])
	}
}

func TestAggregate_InvalidFile(t *testing.T) {
	fsys := fstest.MapFS{
		"a.metadata.yaml": {Data: []byte("- not\n- a mapping\n")},
	}

	_, err := Aggregate(fsys, []string{"File"})
	var fe *FileError
	if !errors.As(err, &fe) {
		t.Fatalf("期望 FileError，实际：%T %v", err, err)
	}
	if fe.Name != "a.metadata.yaml" {
		t.Fatalf("期望文件名 a.metadata.yaml，实际 %q", fe.Name)
	}
}

func TestNormalizeDates(t *testing.T) {
	fsys := fstest.MapFS{
		"a.metadata.yaml": {Data: []byte("File: a.mp4\nDate_recorded: 2023-01-05T10:20:30Z\nUpdate: 01/02/2023\n")},
		"b.metadata.yaml": {Data: []byte("File: b.mp4\nDate_recorded: 03/15/2022\n")},
		"c.metadata.yaml": {Data: []byte("File: c.mp4\nDate_recorded: not a date\n")},
	}
	got, err := Aggregate(fsys, []string{"File", "Date_recorded"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	NormalizeDates(&got)

	cases := []struct {
		row  int
		col  string
		want string
	}{
		{0, "Date_recorded", "2023-01-05"},
		{0, "Update", "2023-01-02"}, // "Update" 含 date（大小写不敏感）
		{1, "Date_recorded", "2022-03-15"},
		{2, "Date_recorded", "not a date"},
		{0, "File", "a.mp4"},
		{2, "Update", ""},
	}
	for _, tc := range cases {
		if v := got.Rows[tc.row][tc.col]; v != tc.want {
			t.Fatalf("行 %d 列 %q：期望 %q，实际 %q", tc.row, tc.col, tc.want, v)
		}
	}
}

func TestIsDateColumn(t *testing.T) {
	for name, want := range map[string]bool{
		"Date":          true,
		"date_recorded": true,
		"Uploaded":      false,
		"UPDATED":       true,
		"Updated_DATE":  true,
		"File":          false,
	} {
		if got := IsDateColumn(name); got != want {
			t.Fatalf("IsDateColumn(%q)：期望 %v，实际 %v", name, want, got)
		}
	}
}
