// Package session 把一次浏览器会话的全部可变状态（表格、选择集、提示框）显式化：
// 每个操作都接收当前 State 与事件参数，返回下一个 State，从不修改入参。
// UI 宿主只负责把事件转发进来、把返回的 State 渲染出去。
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/John-Robertt/vmeta/internal/config"
	"github.com/John-Robertt/vmeta/internal/domain"
	"github.com/John-Robertt/vmeta/internal/export"
	"github.com/John-Robertt/vmeta/internal/infra/logx"
	"github.com/John-Robertt/vmeta/internal/missing"
	"github.com/John-Robertt/vmeta/internal/selection"
	"github.com/John-Robertt/vmeta/internal/table"
)

// Env 是操作依赖的外部环境（由宿主注入）。
type Env struct {
	// BaseDir 是上传配置中相对路径的基准目录。
	BaseDir string
	// OpenDir 把目录路径映射为 fs.FS；nil 时使用 os.DirFS。测试可替换为内存目录。
	OpenDir func(dir string) fs.FS
}

func (e Env) dirFS(dir string) fs.FS {
	if e.OpenDir != nil {
		return e.OpenDir(dir)
	}
	return os.DirFS(dir)
}

// Alert 是可关闭的提示框。
type Alert struct {
	Open    bool
	Message string
	Error   bool
}

// State 是一次会话的全部状态。
//
// 生命周期：上传时创建/重置；增行/编辑/勾选只修改 Table 与 Selection；
// 导出不销毁表格，只清除已导出行的勾选。
type State struct {
	UploadName    string
	UploadContent []byte

	Loaded bool
	Config config.Upload

	Table       domain.Table
	Selection   domain.Selection
	AllSelected bool

	Alert Alert
	// Err 非空表示上传处理失败：宿主在表格位置显示该文本。
	Err string
}

// HasTable 表示当前是否有可编辑的表格。
func (s State) HasTable() bool {
	return s.Loaded && s.Err == ""
}

func (s State) clone() State {
	out := s
	out.Table = s.Table.Clone()
	out.Selection = append(domain.Selection(nil), s.Selection...)
	return out
}

// Upload 处理一次配置上传：解析配置、读取 schema、聚合目录中的元数据文件、规范化日期列。
// 任何失败都只返回带 Err 的状态（详细原因写日志），不会向上抛出。
func Upload(ctx context.Context, env Env, content []byte, filename string) State {
	logger := logx.GetLogger(ctx)

	st := State{
		UploadName:    filename,
		UploadContent: append([]byte(nil), content...),
	}

	u, err := config.LoadUpload(content, filename, env.BaseDir)
	if err != nil {
		logger.Warn("load upload failed", zap.String("filename", filename), zap.String("code", config.Code(err)), zap.Error(err))
		st.Err = config.UserMessage
		return st
	}

	t, err := table.Aggregate(env.dirFS(u.VideosDir), u.Columns())
	if err != nil {
		logger.Warn("aggregate metadata failed", zap.String("videos_dir", u.VideosDir), zap.Error(err))
		st.Err = config.UserMessage
		return st
	}
	table.NormalizeDates(&t)

	logger.Info("upload loaded",
		zap.String("filename", filename),
		zap.String("videos_dir", u.VideosDir),
		zap.Int("rows", len(t.Rows)),
		zap.Int("columns", len(t.Columns)),
		zap.Bool("placeholder", t.Placeholder))

	st.Loaded = true
	st.Config = u
	st.Table = t
	st.Selection = domain.Selection{}
	return st
}

// AddRowManually 追加一行空行；没有任何列时为 no-op。
func AddRowManually(st State) State {
	if !st.HasTable() || len(st.Table.Columns) == 0 {
		return st
	}
	next := st.clone()
	next.Table.Rows = append(next.Table.Rows, next.Table.EmptyRow())
	next.Table.Placeholder = false
	return next
}

// AddRowsForMissing 为“目录中存在但既没有元数据文件、也不在表格里”的视频各追加一行。
// 没有任何列时为 no-op；目录扫描失败时打开错误提示，表格不变。
func AddRowsForMissing(ctx context.Context, env Env, st State) State {
	if !st.HasTable() || len(st.Table.Columns) == 0 {
		return st
	}
	logger := logx.GetLogger(ctx)

	names, err := missing.Detect(env.dirFS(st.Config.VideosDir), st.Table, st.Config.KeyField, st.Config.VideoExts)
	if err != nil {
		logger.Warn("detect missing metadata failed", zap.String("videos_dir", st.Config.VideosDir), zap.Error(err))
		next := st.clone()
		next.Alert = Alert{Open: true, Error: true, Message: "Could not scan the video directory for missing metadata files."}
		return next
	}

	next := st.clone()
	next.Table, next.Selection = missing.Append(next.Table, next.Selection, names, st.Config.KeyField)
	logger.Info("rows added for missing metadata", zap.Int("added", len(names)))
	return next
}

// Edit 接收宿主提交的整表快照，把内容发生变化的行并入选择集。
// 已选中的行按整行内容跟随到新位置；被删除的行从选择集中移除。
// 快照的列集合必须与当前表一致，否则返回错误且状态不变。
func Edit(st State, cur []domain.Row) (State, error) {
	if !st.HasTable() {
		return st, fmt.Errorf("没有可编辑的表格")
	}
	if err := st.Table.Conform(cur); err != nil {
		return st, err
	}

	edited := selection.Edited(st.Table.Rows, cur, st.Table.Columns)
	kept := selection.Remap(st.Table.Rows, cur, st.Table.Columns, st.Selection)

	next := st.clone()
	next.Table.Rows = make([]domain.Row, len(cur))
	for i, r := range cur {
		next.Table.Rows[i] = r.Clone()
	}
	// 占位行只要被改动、删除或与其他行共存，就不再是占位行。
	next.Table.Placeholder = next.Table.PlaceholderIntact()
	next.Selection = selection.Union(kept, edited, len(cur))
	if len(next.Selection) == 0 {
		next.AllSelected = false
	}
	return next, nil
}

// EditCell 修改单个单元格，等价于提交“只改了这一格”的整表快照。
func EditCell(st State, row int, col, value string) (State, error) {
	if !st.HasTable() {
		return st, fmt.Errorf("没有可编辑的表格")
	}
	if row < 0 || row >= len(st.Table.Rows) {
		return st, fmt.Errorf("行号越界：%d", row)
	}
	if !st.Table.HasColumn(col) {
		return st, fmt.Errorf("未知列：%q", col)
	}
	cur := st.Table.Clone().Rows
	cur[row][col] = value
	return Edit(st, cur)
}

// SetRowSelected 勾选/取消勾选单行（复选框）。越界下标被忽略。
func SetRowSelected(st State, row int, on bool) State {
	if !st.HasTable() || row < 0 || row >= len(st.Table.Rows) {
		return st
	}
	next := st.clone()
	if on {
		next.Selection = selection.Union(next.Selection, []int{row}, len(next.Table.Rows))
	} else {
		next.Selection = next.Selection.Without([]int{row})
	}
	return next
}

// ToggleSelectAll 实现“全选/全不选”：visible 是当前页可见行在整表中的下标。
func ToggleSelectAll(st State, visible []int) State {
	if !st.HasTable() {
		return st
	}
	next := st.clone()
	next.Selection, next.AllSelected = selection.Toggle(st.AllSelected, visible, len(st.Table.Rows))
	return next
}

// ExportSelected 把选中行写回 <videos_dir>/<key>.metadata.yaml。
//
// - 选择集为空：no-op（不弹提示）
// - 重新解析上传的配置；失败则中止，不写任何文件
// - 规划阶段发现问题（key 非法/重复）：中止，不写任何文件
// - 写入阶段逐文件原子写；已写出的行取消勾选，失败的行保持勾选，并在提示中列出
//
// 第二个返回值在真正执行了写入时非 nil。
func ExportSelected(ctx context.Context, env Env, st State) (State, *domain.ExportReport) {
	if !st.HasTable() || len(st.Selection) == 0 {
		return st, nil
	}
	logger := logx.GetLogger(ctx)

	u, err := config.LoadUpload(st.UploadContent, st.UploadName, env.BaseDir)
	if err != nil {
		logger.Warn("export: reload upload failed", zap.String("code", config.Code(err)), zap.Error(err))
		next := st.clone()
		next.Alert = Alert{Open: true, Error: true, Message: "Export failed: the configuration file could not be processed. No file was written."}
		return next, nil
	}

	items, err := export.Plan(st.Table, st.Selection, u.KeyField)
	if err != nil {
		logger.Warn("export: plan failed", zap.Error(err))
		next := st.clone()
		next.Alert = Alert{Open: true, Error: true, Message: planErrorMessage(err, u.KeyField)}
		return next, nil
	}

	rr := export.Write(u.VideosDir, items)
	for _, f := range rr.Files {
		if f.Status == domain.FileStatusFailed {
			logger.Error("export: write failed", zap.String("path", f.Path), zap.String("code", f.ErrorCode), zap.String("error", f.ErrorMsg))
		}
	}
	logger.Info("export done", zap.String("dir", rr.Dir), zap.Int("written", rr.Summary.Written), zap.Int("failed", rr.Summary.Failed))

	next := st.clone()
	next.Selection = next.Selection.Without(rr.WrittenRows())
	if len(next.Selection) == 0 {
		next.AllSelected = false
	}
	next.Alert = Alert{Open: true, Error: rr.Summary.Failed > 0, Message: exportMessage(rr)}
	return next, &rr
}

// DismissAlert 关闭提示框。
func DismissAlert(st State) State {
	next := st
	next.Alert = Alert{}
	return next
}

func exportMessage(rr domain.ExportReport) string {
	var written, failed []string
	for _, f := range rr.Files {
		name := filepath.Base(f.Path)
		if f.Status == domain.FileStatusWritten {
			written = append(written, name)
		} else {
			failed = append(failed, name)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Successfully exported %d yaml files: [%s]", len(written), strings.Join(written, ", "))
	if len(failed) > 0 {
		fmt.Fprintf(&b, "; failed to export %d files: [%s]", len(failed), strings.Join(failed, ", "))
	}
	return b.String()
}

func planErrorMessage(err error, keyField string) string {
	var pe *export.PlanError
	if !errors.As(err, &pe) {
		return "Export aborted, no file was written."
	}
	switch pe.Code {
	case domain.ErrCodeDuplicateKey:
		return fmt.Sprintf("Export aborted, no file was written: row %d exports to the same file as another selected row.", pe.Row+1)
	case domain.ErrCodeInvalidKey:
		if pe.Row < 0 {
			return fmt.Sprintf("Export aborted, no file was written: key field %q is not a table column.", keyField)
		}
		return fmt.Sprintf("Export aborted, no file was written: row %d has no usable %q value.", pe.Row+1, keyField)
	default:
		return fmt.Sprintf("Export aborted, no file was written: row %d could not be encoded as YAML.", pe.Row+1)
	}
}
