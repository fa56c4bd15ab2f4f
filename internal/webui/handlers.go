package webui

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/John-Robertt/vmeta/internal/app/session"
	"github.com/John-Robertt/vmeta/internal/config"
	"github.com/John-Robertt/vmeta/internal/infra/logx"
)

// actionFunc 是一次表单操作：输入当前状态，返回下一个状态。
// 返回错误表示请求参数非法（400），此时状态不变。
type actionFunc func(ctx context.Context, st session.State, r *http.Request, p viewParams) (session.State, error)

// action 把 actionFunc 包装为 POST handler：串行化同一会话的操作，完成后 303 回到页面。
func (s *Server) action(fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		p := parseViewParams(r.Form)

		id, e := s.store.acquire(w, r)
		ctx := logx.WithLogger(r.Context(), logx.GetLogger(r.Context()).With(zap.String("session", id)))

		e.mu.Lock()
		next, err := fn(ctx, e.st, r, p)
		if err == nil {
			e.st = next
		}
		e.mu.Unlock()

		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, p.query(), http.StatusSeeOther)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	_, e := s.store.acquire(w, r)
	e.mu.Lock()
	v := buildView(e.st, parseViewParams(r.URL.Query()), s.cfg.PageSize)
	e.mu.Unlock()

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index", v); err != nil {
		logx.GetLogger(r.Context()).Error("render page failed", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

// handleUpload 接收配置文件。支持两种形式：
// - multipart 文件字段 "config"
// - 表单字段 "contents"（data URL 或纯 base64）+ "filename"
//
// 没有提交任何内容时不改变状态。
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+4096)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "parse form failed", http.StatusBadRequest)
			return
		}
	} else if err := r.ParseForm(); err != nil {
		http.Error(w, "parse form failed", http.StatusBadRequest)
		return
	}
	p := parseViewParams(r.Form)

	content, filename, ok, err := readUpload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, e := s.store.acquire(w, r)
	if ok {
		ctx := logx.WithLogger(r.Context(), logx.GetLogger(r.Context()).With(zap.String("session", id)))
		e.mu.Lock()
		e.st = session.Upload(ctx, s.env, content, filename)
		e.mu.Unlock()
	}
	// 新上传的表格从第一页开始展示。
	p.Page = 1
	http.Redirect(w, r, p.query(), http.StatusSeeOther)
}

func readUpload(r *http.Request) ([]byte, string, bool, error) {
	if r.MultipartForm != nil {
		if fhs := r.MultipartForm.File["config"]; len(fhs) > 0 {
			f, err := fhs[0].Open()
			if err != nil {
				return nil, "", false, err
			}
			defer f.Close()
			b, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
			if err != nil {
				return nil, "", false, err
			}
			if len(b) > maxUploadBytes {
				return nil, "", false, errUploadTooLarge
			}
			return b, fhs[0].Filename, true, nil
		}
	}

	raw := r.FormValue("contents")
	if strings.TrimSpace(raw) == "" {
		return nil, "", false, nil
	}
	b, err := config.DecodeDataURL(raw)
	if err != nil {
		return nil, "", false, errBadContents
	}
	return b, r.FormValue("filename"), true, nil
}

func (s *Server) selectRow(ctx context.Context, st session.State, r *http.Request, p viewParams) (session.State, error) {
	row, err := strconv.Atoi(r.FormValue("row"))
	if err != nil {
		return st, errBadRow
	}
	on := r.FormValue("on") != "0"
	return session.SetRowSelected(st, row, on), nil
}

func (s *Server) editCell(ctx context.Context, st session.State, r *http.Request, p viewParams) (session.State, error) {
	row, err := strconv.Atoi(r.FormValue("row"))
	if err != nil {
		return st, errBadRow
	}
	next, err := session.EditCell(st, row, r.FormValue("col"), r.FormValue("value"))
	if err != nil {
		logx.GetLogger(ctx).Debug("edit cell rejected", zap.Error(err))
		return st, errBadEdit
	}
	return next, nil
}
