package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	vitalsPrefix       = "/api/v1/vitals"
	chatSessionsPrefix = "/api/v1/chat/sessions"
)

// Router 使用标准库 http.ServeMux
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterHealthRoutes GET /healthz
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if !allow(w, req, http.MethodGet) {
			return
		}
		writeJSON(w, http.StatusOK, Ok("ok"))
	})
}

// RegisterVitalsRoutes 仪表盘数据
func (r *Router) RegisterVitalsRoutes(v *VitalsHandler) {
	get := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			if !allow(w, req, http.MethodGet) {
				return
			}
			h(w, req)
		}
	}

	r.Handle(vitalsPrefix+"/current", get(v.GetCurrent))
	r.Handle(vitalsPrefix+"/chart", get(v.GetChart))
	r.Handle(vitalsPrefix+"/logs", get(v.GetLogs))
	r.Handle(vitalsPrefix+"/logs/export.csv", get(v.ExportCSV))
	r.Handle(vitalsPrefix+"/logs/export.xlsx", get(v.ExportXLSX))
	r.Handle(vitalsPrefix+"/logs/refresh", func(w http.ResponseWriter, req *http.Request) {
		if !allow(w, req, http.MethodPost) {
			return
		}
		v.RefreshLogs(w, req)
	})
}

// RegisterChatRoutes 急救助手会话
func (r *Router) RegisterChatRoutes(c *ChatHandler) {
	r.Handle(chatSessionsPrefix, func(w http.ResponseWriter, req *http.Request) {
		if !allow(w, req, http.MethodPost) {
			return
		}
		c.CreateSession(w, req)
	})

	// sessions/{id}/messages
	r.Handle(chatSessionsPrefix+"/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, chatSessionsPrefix+"/")
		id, tail, found := strings.Cut(rest, "/")
		if !found || id == "" || tail != "messages" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch req.Method {
		case http.MethodGet:
			c.ListMessages(w, req, id)
		case http.MethodPost:
			c.SendMessage(w, req, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}
