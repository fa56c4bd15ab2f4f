package webui

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/John-Robertt/vmeta/internal/app/session"
	"github.com/John-Robertt/vmeta/internal/domain"
	"github.com/John-Robertt/vmeta/internal/infra/logx"
)

type alertResponse struct {
	Open    bool   `json:"open"`
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

type stateResponse struct {
	Loaded      bool          `json:"loaded"`
	Error       string        `json:"error,omitempty"`
	UploadName  string        `json:"upload_name,omitempty"`
	Columns     []string      `json:"columns"`
	Rows        []domain.Row  `json:"rows"`
	Placeholder bool          `json:"placeholder"`
	Selection   []int         `json:"selection"`
	AllSelected bool          `json:"all_selected"`
	Alert       alertResponse `json:"alert"`
}

type tableRequest struct {
	Rows []domain.Row `json:"rows"`
}

type exportResponse struct {
	State  stateResponse        `json:"state"`
	Report *domain.ExportReport `json:"report"`
}

func toStateResponse(st session.State) stateResponse {
	out := stateResponse{
		Loaded:      st.HasTable(),
		Error:       st.Err,
		UploadName:  st.UploadName,
		Columns:     []string{},
		Rows:        []domain.Row{},
		Placeholder: st.Table.Placeholder,
		Selection:   []int{},
		AllSelected: st.AllSelected,
		Alert:       alertResponse{Open: st.Alert.Open, Message: st.Alert.Message, Error: st.Alert.Error},
	}
	if out.Loaded {
		out.Columns = append(out.Columns, st.Table.Columns...)
		out.Rows = append(out.Rows, st.Table.Rows...)
		out.Selection = append(out.Selection, st.Selection...)
	}
	return out
}

func (s *Server) respondJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.GetLogger(ctx).Error("encode json response failed", zap.Error(err))
	}
}

func (s *Server) handleAPIState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, e := s.store.acquire(w, r)
	e.mu.Lock()
	resp := toStateResponse(e.st)
	e.mu.Unlock()
	s.respondJSON(r.Context(), w, http.StatusOK, resp)
}

// handleAPITable 接收整表快照（与前端表格组件一次性回传全部行的方式一致），
// 把内容变化的行并入选择集。
func (s *Server) handleAPITable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req tableRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes*8)).Decode(&req); err != nil {
		http.Error(w, errBadPayload.Error(), http.StatusBadRequest)
		return
	}

	id, e := s.store.acquire(w, r)
	e.mu.Lock()
	next, err := session.Edit(e.st, req.Rows)
	if err == nil {
		e.st = next
	}
	resp := toStateResponse(e.st)
	e.mu.Unlock()

	if err != nil {
		logx.GetLogger(r.Context()).Debug("table snapshot rejected", zap.String("session", id), zap.Error(err))
		http.Error(w, errBadEdit.Error(), http.StatusBadRequest)
		return
	}
	s.respondJSON(r.Context(), w, http.StatusOK, resp)
}

// handleAPIExport 与页面上的导出按钮等价，额外返回逐文件报告（未执行写入时为 null）。
func (s *Server) handleAPIExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, e := s.store.acquire(w, r)
	ctx := logx.WithLogger(r.Context(), logx.GetLogger(r.Context()).With(zap.String("session", id)))

	e.mu.Lock()
	next, rr := session.ExportSelected(ctx, s.env, e.st)
	e.st = next
	resp := exportResponse{State: toStateResponse(next), Report: rr}
	e.mu.Unlock()

	s.respondJSON(ctx, w, http.StatusOK, resp)
}
