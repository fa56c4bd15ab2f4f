package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUpload_OK_RelativePathsAndSchemaOrder(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "fields.yaml"), []byte("File: \"\"\nNotes: \"\"\nDate_recorded: \"\"\n"))

	cfg := []byte("videos_dir_path: videos\nmetadata_fields_file_path: fields.yaml\nmetadata_key_field_str: File\n")
	u, err := LoadUpload(cfg, "project.yaml", base)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	if want := filepath.Join(base, "videos"); u.VideosDir != want {
		t.Fatalf("期望 videos_dir=%q，实际=%q", want, u.VideosDir)
	}
	if u.KeyField != "File" {
		t.Fatalf("期望 key=File，实际=%q", u.KeyField)
	}
	cols := u.Columns()
	if len(cols) != 3 || cols[0] != "File" || cols[1] != "Notes" || cols[2] != "Date_recorded" {
		t.Fatalf("schema 顺序不正确：%v", cols)
	}
	if len(u.VideoExts) != 2 || u.VideoExts[0] != ".avi" || u.VideoExts[1] != ".mp4" {
		t.Fatalf("默认扩展名不正确：%v", u.VideoExts)
	}
}

func TestLoadUpload_VideoExtensionsNormalized(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "fields.yaml"), []byte("File: \"\"\n"))

	cfg := []byte(`videos_dir_path: /v
metadata_fields_file_path: fields.yaml
metadata_key_field_str: File
video_extensions: [MP4, ".mkv", mp4]
`)
	u, err := LoadUpload(cfg, "cfg.YML", base)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(u.VideoExts) != 2 || u.VideoExts[0] != ".mp4" || u.VideoExts[1] != ".mkv" {
		t.Fatalf("扩展名规范化不正确：%v", u.VideoExts)
	}
}

func TestLoadUpload_Errors(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "fields.yaml"), []byte("File: \"\"\n"))
	writeFile(t, filepath.Join(base, "list.yaml"), []byte("- File\n- Notes\n"))

	cases := []struct {
		name     string
		content  string
		filename string
		wantCode string
	}{
		{"不是 yaml 文件名", "videos_dir_path: v", "cfg.json", ErrCodeNotYAML},
		{"yaml 语法错误", "videos_dir_path: [", "cfg.yaml", ErrCodeInvalid},
		{"顶层不是 mapping", "- a\n- b\n", "cfg.yaml", ErrCodeInvalid},
		{"缺少 key 字段", "videos_dir_path: v\nmetadata_fields_file_path: fields.yaml\n", "cfg.yaml", ErrCodeMissingKey},
		{"空文档", "", "cfg.yaml", ErrCodeMissingKey},
		{"schema 不存在", "videos_dir_path: v\nmetadata_fields_file_path: nope.yaml\nmetadata_key_field_str: File\n", "cfg.yaml", ErrCodeSchema},
		{"schema 不是 mapping", "videos_dir_path: v\nmetadata_fields_file_path: list.yaml\nmetadata_key_field_str: File\n", "cfg.yaml", ErrCodeSchema},
		{"扩展名非法", "videos_dir_path: v\nmetadata_fields_file_path: fields.yaml\nmetadata_key_field_str: File\nvideo_extensions: [\"a/b\"]\n", "cfg.yaml", ErrCodeInvalid},
	}
	for _, tc := range cases {
		_, err := LoadUpload([]byte(tc.content), tc.filename, base)
		if Code(err) != tc.wantCode {
			t.Fatalf("%s：期望 %q，实际 err=%v (code=%q)", tc.name, tc.wantCode, err, Code(err))
		}
	}
}

func TestDecodeDataURL(t *testing.T) {
	raw := []byte("videos_dir_path: v\n")
	enc := base64.StdEncoding.EncodeToString(raw)

	for _, in := range []string{
		"data:application/x-yaml;base64," + enc,
		enc,
	} {
		got, err := DecodeDataURL(in)
		if err != nil {
			t.Fatalf("输入 %q：不期望错误：%v", in, err)
		}
		if string(got) != string(raw) {
			t.Fatalf("解码不一致：%q", string(got))
		}
	}

	if _, err := DecodeDataURL("data:text/plain;base64"); err == nil {
		t.Fatalf("缺少分隔符时期望错误")
	}
	if _, err := DecodeDataURL("!!!"); err == nil {
		t.Fatalf("非法 base64 时期望错误")
	}
}

func TestLoadServer_MergeOrder(t *testing.T) {
	cwd := t.TempDir()
	env := map[string]string{
		EnvAddr:     ":9000",
		EnvPageSize: "10",
		EnvLogLevel: "DEBUG",
	}
	getenv := func(k string) string { return env[k] }

	sc, err := LoadServer(cwd, ServerArgs{}, getenv)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if sc.Addr != ":9000" || sc.PageSize != 10 || sc.LogLevel != "debug" {
		t.Fatalf("环境变量未生效：%+v", sc)
	}
	if sc.BaseDir != filepath.Clean(cwd) {
		t.Fatalf("期望 base_dir=%q，实际=%q", cwd, sc.BaseDir)
	}

	// CLI 显式指定，则覆盖环境变量。
	sc2, err := LoadServer(cwd, ServerArgs{
		Addr: ":7000", AddrSet: true,
		PageSize: 1000, PageSizeSet: true,
		BaseDir: "data", BaseDirSet: true,
	}, getenv)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if sc2.Addr != ":7000" {
		t.Fatalf("期望 addr=:7000，实际=%q", sc2.Addr)
	}
	if sc2.PageSize != maxPageSize {
		t.Fatalf("期望 page_size 截断为 %d，实际=%d", maxPageSize, sc2.PageSize)
	}
	if want := filepath.Join(cwd, "data"); sc2.BaseDir != want {
		t.Fatalf("期望 base_dir=%q，实际=%q", want, sc2.BaseDir)
	}
}

func TestLoadServer_Invalid(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadServer(cwd, ServerArgs{LogLevel: "loud", LogLevelSet: true}, func(string) string { return "" })
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v", ErrCodeInvalid, err)
	}

	_, err = LoadServer(cwd, ServerArgs{}, func(k string) string {
		if k == EnvPageSize {
			return "many"
		}
		return ""
	})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v", ErrCodeInvalid, err)
	}
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("写入文件失败 %q：%v", path, err)
	}
}
