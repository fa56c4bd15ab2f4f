package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/vmeta/internal/infra/yamlx"
)

const (
	// ErrCodeNotYAML 表示上传的文件名不是 YAML 文档。
	ErrCodeNotYAML = "config_not_yaml"
	// ErrCodeInvalid 表示配置无法解码/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingKey 表示配置缺少必填字段。
	ErrCodeMissingKey = "config_missing_key"
	// ErrCodeSchema 表示字段定义文件（schema）无法读取或不是 mapping。
	ErrCodeSchema = "schema_invalid"
)

// 上传配置的必填字段名（对外契约，不可改名）。
const (
	KeyVideosDir  = "videos_dir_path"
	KeySchemaPath = "metadata_fields_file_path"
	KeyKeyField   = "metadata_key_field_str"
)

// UserMessage 是配置错误时展示给用户的固定文案；具体原因只写日志。
const UserMessage = "There was an error processing this file."

// DefaultVideoExts 是默认识别的视频扩展名（可由配置 video_extensions 覆盖）。
var DefaultVideoExts = []string{".avi", ".mp4"}

// FileConfig 对应上传的 YAML 配置文档。
type FileConfig struct {
	VideosDir  string   `yaml:"videos_dir_path"`
	SchemaPath string   `yaml:"metadata_fields_file_path"`
	KeyField   string   `yaml:"metadata_key_field_str"`
	VideoExts  []string `yaml:"video_extensions"`
}

// SchemaField 是 schema 文件中的一个字段：字段名 + 默认值/类型提示。
type SchemaField struct {
	Name    string
	Default string
}

// Upload 是解析后的上传配置（一次上传内不可变）。
type Upload struct {
	VideosDir  string // clean + absolute
	SchemaPath string // clean + absolute
	KeyField   string
	VideoExts  []string // 小写，带前导 '.'
	Schema     []SchemaField
}

// Columns 按 schema 文档顺序返回字段名。
func (u Upload) Columns() []string {
	out := make([]string, 0, len(u.Schema))
	for _, f := range u.Schema {
		out = append(out, f.Name)
	}
	return out
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotYAML:
		return fmt.Sprintf("%s：上传文件 %q 不是 YAML 文档", e.Code, e.Path)
	case ErrCodeMissingKey:
		return fmt.Sprintf("%s：配置 %q 缺少必填字段：%v", e.Code, e.Path, e.Err)
	case ErrCodeInvalid, ErrCodeSchema:
		if e.Err != nil {
			return fmt.Sprintf("%s：%q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：%q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsYAMLName 判断上传文件名是否表示 YAML 文档（.yaml/.yml，大小写不敏感）。
func IsYAMLName(filename string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// LoadUpload 解析上传的配置文档，并读取其指向的 schema 文件。
//
// 规则（固定）：
// 1) filename 必须是 .yaml/.yml
// 2) 三个必填字段必须存在且非空
// 3) 相对路径以 baseDir 为基准解析
// 4) schema 文件必须是顶层 mapping；其 key 按文档顺序成为表格列
//
// 任何失败都返回 *Error，不会 panic。
func LoadUpload(content []byte, filename, baseDir string) (Upload, error) {
	if !IsYAMLName(filename) {
		return Upload{}, &Error{Code: ErrCodeNotYAML, Path: filename}
	}

	var fc FileConfig
	if err := yaml.Unmarshal(content, &fc); err != nil {
		return Upload{}, &Error{Code: ErrCodeInvalid, Path: filename, Err: err}
	}

	var missing []string
	if strings.TrimSpace(fc.VideosDir) == "" {
		missing = append(missing, KeyVideosDir)
	}
	if strings.TrimSpace(fc.SchemaPath) == "" {
		missing = append(missing, KeySchemaPath)
	}
	if strings.TrimSpace(fc.KeyField) == "" {
		missing = append(missing, KeyKeyField)
	}
	if len(missing) > 0 {
		return Upload{}, &Error{Code: ErrCodeMissingKey, Path: filename, Err: errors.New(strings.Join(missing, ", "))}
	}

	base, err := filepath.Abs(baseDir)
	if err != nil {
		return Upload{}, &Error{Code: ErrCodeInvalid, Path: filename, Err: err}
	}

	exts, err := normExts(fc.VideoExts)
	if err != nil {
		return Upload{}, &Error{Code: ErrCodeInvalid, Path: filename, Err: err}
	}

	u := Upload{
		VideosDir:  absCleanFrom(base, fc.VideosDir),
		SchemaPath: absCleanFrom(base, fc.SchemaPath),
		KeyField:   strings.TrimSpace(fc.KeyField),
		VideoExts:  exts,
	}

	schema, err := readSchema(u.SchemaPath)
	if err != nil {
		return Upload{}, &Error{Code: ErrCodeSchema, Path: u.SchemaPath, Err: err}
	}
	u.Schema = schema
	return u, nil
}

func readSchema(path string) ([]SchemaField, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fields, err := yamlx.DecodeMapping(b)
	if err != nil {
		return nil, err
	}
	out := make([]SchemaField, 0, len(fields))
	for _, f := range fields {
		out = append(out, SchemaField{Name: f.Key, Default: f.Value})
	}
	return out, nil
}

// normExts 规范化扩展名列表：小写、补前导 '.'、去重；为空时使用默认值。
func normExts(in []string) ([]string, error) {
	if len(in) == 0 {
		return append([]string(nil), DefaultVideoExts...), nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.ContainsAny(e[1:], `./\`) || len(e) == 1 {
			return nil, fmt.Errorf("video_extensions 含非法扩展名：%q", e)
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("video_extensions 不能为空列表")
	}
	return out, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}
