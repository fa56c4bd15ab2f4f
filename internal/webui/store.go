package webui

import (
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/John-Robertt/vmeta/internal/app/session"
)

// CookieName 是保存会话 ID 的 cookie 名。
const CookieName = "vmeta_session"

// entry 是单个会话：同一会话的操作由 mu 串行化。
type entry struct {
	mu sync.Mutex
	st session.State
}

// store 是进程内会话表（不落盘，进程退出即丢失）。
type store struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

func newStore() *store {
	return &store{sessions: make(map[string]*entry)}
}

// acquire 取出（或新建）请求对应的会话；新建时写入 cookie。
// 返回的 entry 未加锁，由调用方负责 Lock/Unlock。
func (s *store) acquire(w http.ResponseWriter, r *http.Request) (string, *entry) {
	if c, err := r.Cookie(CookieName); err == nil {
		if _, perr := uuid.Parse(c.Value); perr == nil {
			s.mu.Lock()
			e, ok := s.sessions[c.Value]
			s.mu.Unlock()
			if ok {
				return c.Value, e
			}
		}
	}

	id := uuid.NewString()
	e := &entry{}
	s.mu.Lock()
	s.sessions[id] = e
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, e
}

func (s *store) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
