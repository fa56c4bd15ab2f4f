package scan

import (
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/John-Robertt/vmeta/internal/domain"
)

// MetadataSuffix 是逐视频元数据文件的后缀：<stem>.metadata.yaml。
const MetadataSuffix = ".metadata.yaml"

// 目录扫描统一走 fs.FS：生产环境用 os.DirFS(videosDir)，测试用 fstest.MapFS。
// 只扫描根目录一层，不递归。

// ListMetadata 列出根目录下所有以 "metadata.yaml" 结尾的文件名（已排序）。
//
// 注意：匹配规则是“名字以 metadata.yaml 结尾”，因此 "xmetadata.yaml" 也算；
// 这与导出时生成的文件名规则（<stem>.metadata.yaml）兼容。
func ListMetadata(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !isFile(e) {
			continue
		}
		if isMetadataName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ListVideos 列出根目录下扩展名属于 exts 的视频文件（扩展名大小写不敏感，按文件名排序）。
// exts 必须是小写且带前导 '.'（config 层已规范化）。
func ListVideos(fsys fs.FS, exts []string) ([]domain.VideoFile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	files := make([]domain.VideoFile, 0, len(entries))
	for _, e := range entries {
		if !isFile(e) {
			continue
		}
		name := e.Name()
		if isMetadataName(name) {
			continue
		}
		ext := strings.ToLower(path.Ext(name))
		if !isVideoExt(ext, exts) {
			continue
		}
		files = append(files, domain.VideoFile{
			Name: name,
			Stem: strings.TrimSuffix(name, path.Ext(name)),
			Ext:  ext,
		})
	}

	// 强制稳定输出，避免不同平台/文件系统行为差异带来的不确定性。
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// MetadataStem 从元数据文件名还原视频 stem："cat.metadata.yaml" -> "cat"。
func MetadataStem(name string) string {
	s := strings.TrimSuffix(name, ".yaml")
	return strings.TrimSuffix(s, ".metadata")
}

// MetadataName 由 stem 生成元数据文件名："cat" -> "cat.metadata.yaml"。
func MetadataName(stem string) string {
	return stem + MetadataSuffix
}

func isMetadataName(name string) bool {
	return strings.HasSuffix(name, "metadata.yaml")
}

func isVideoExt(ext string, exts []string) bool {
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// isFile 过滤目录；符号链接等非常规条目按文件处理（与 ReadDir 的语义一致，不额外 stat）。
func isFile(e fs.DirEntry) bool {
	return !e.IsDir()
}
