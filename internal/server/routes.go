package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/koskimas/typeshift/internal/gen"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/negroni"
)

const (
	headerRequestID = "X-Request-Id"
	maxBodyBytes    = 1 << 20
)

func (s *Server) setupRoutes() {
	s.router.Handle("/api/transform", s.rateLimited(s.handleTransform())).Methods("POST")
	s.router.HandleFunc("/api/targets", s.handleTargets()).Methods("GET")
	s.router.HandleFunc("/api/settings/{key}", s.handleGetSetting()).Methods("GET")
	s.router.HandleFunc("/api/settings/{key}", s.handlePutSetting()).Methods("PUT")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.pipeline.Registry(), promhttp.HandlerOpts{})).Methods("GET")
	s.router.Use(s.logMiddleware)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := negroni.NewResponseWriter(w)
		next.ServeHTTP(ww, r)
		s.log.Infow(r.Method+" "+r.RequestURI,
			"status", ww.Status(),
			"bytes", ww.Size(),
			"requestId", ww.Header().Get(headerRequestID))
	})
}

func requestID(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	id := r.Header.Get(headerRequestID)
	if id == "" {
		id = uuid.NewString()
	}

	w.Header().Set(headerRequestID, id)
	next(w, r)
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type transformRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type transformResponse struct {
	Output      string   `json:"output"`
	Error       string   `json:"error,omitempty"`
	Unsupported []string `json:"unsupported"`
}

func (s *Server) handleTransform() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transformRequest
		if !readJSON(w, r, &req) {
			return
		}

		target := gen.Target(strings.ToLower(strings.TrimSpace(req.Target)))
		if target == "" {
			value, _, err := s.settings.Get(settingTarget)
			if err != nil {
				s.log.Errorw("Failed to read settings", "error", err)
				writeError(w, http.StatusInternalServerError, "failed to read settings")
				return
			}
			target = gen.Target(value)
		}

		out := s.pipeline.Transform(r.Context(), req.Source, target)

		res := transformResponse{
			Output:      out.Text,
			Unsupported: out.Unsupported,
		}
		if res.Unsupported == nil {
			res.Unsupported = []string{}
		}
		if out.Err != nil {
			res.Error = out.Err.Error()
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleTargets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, gen.Targets)
	}
}

type setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *Server) handleGetSetting() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := mux.Vars(r)["key"]

		value, ok, err := s.settings.Get(key)
		if err != nil {
			s.log.Errorw("Failed to read settings", "key", key, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to read settings")
			return
		}

		if !ok {
			writeError(w, http.StatusNotFound, "no setting "+key)
			return
		}

		writeJSON(w, http.StatusOK, setting{Key: key, Value: value})
	}
}

func (s *Server) handlePutSetting() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := mux.Vars(r)["key"]

		var body setting
		if !readJSON(w, r, &body) {
			return
		}

		if key == settingTarget {
			t, err := gen.ParseTarget(body.Value)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			body.Value = string(t)
		}

		if err := s.settings.Set(key, body.Value); err != nil {
			s.log.Errorw("Failed to write settings", "key", key, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to write settings")
			return
		}

		writeJSON(w, http.StatusOK, setting{Key: key, Value: body.Value})
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}

	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
