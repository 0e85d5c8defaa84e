// Package api exposes the resolution service over HTTP: hybrid
// resolution, media analysis and the resolution history.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"video-relay-go/internal/analyze"
	"video-relay-go/internal/crawler"
	"video-relay-go/internal/relay"
	"video-relay-go/internal/resolve"
)

type Resolver interface {
	Resolve(ctx context.Context, url string, minimal bool) (*resolve.Resolution, error)
}

type Analyzer interface {
	Probe(ctx context.Context, url string) (analyze.Result, error)
}

// Deliverer runs the full delivery pipeline (cache gate, resolution,
// caption, send, history); *relay.Relay satisfies it.
type Deliverer interface {
	Deliver(ctx context.Context, url string) (*relay.Artifact, error)
}

type Server struct {
	resolver  Resolver
	analyzer  Analyzer
	deliverer Deliverer
	mux       *http.ServeMux
}

func NewServer(resolver Resolver, analyzer Analyzer, deliverer Deliverer) *Server {
	s := &Server{
		resolver:  resolver,
		analyzer:  analyzer,
		deliverer: deliverer,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /api/hybrid/video_data", s.handleVideoData)
	s.mux.HandleFunc("POST /api/video_extra_data", s.handleVideoExtraData)
	s.mux.HandleFunc("POST /api/deliver", s.handleDeliver)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("GET /api/history/export", s.handleHistoryExport)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleVideoData(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": http.StatusBadRequest, "detail": "url is required"})
		return
	}
	minimal := false
	if v := r.URL.Query().Get("minimal"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"code": http.StatusBadRequest, "detail": "minimal must be a boolean"})
			return
		}
		minimal = b
	}

	res, err := s.resolver.Resolve(r.Context(), url, minimal)
	if err != nil {
		writeError(w, err)
		return
	}

	var data any
	if res.Record != nil {
		data = res.Record
	} else {
		data = res.Raw
	}
	writeJSON(w, http.StatusOK, map[string]any{"code": http.StatusOK, "data": data})
}

func (s *Server) handleVideoExtraData(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": http.StatusBadRequest, "detail": err.Error()})
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": http.StatusBadRequest, "detail": "url is required"})
		return
	}

	res, err := s.analyzer.Probe(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeliver(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": http.StatusBadRequest, "detail": err.Error()})
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": http.StatusBadRequest, "detail": "url is required"})
		return
	}

	art, err := s.deliverer.Deliver(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"code": http.StatusOK, "data": art})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch crawler.KindOf(err) {
	case crawler.ErrorKindUnrecognizedSource, crawler.ErrorKindIdentifierNotFound:
		status = http.StatusBadRequest
	case crawler.ErrorKindUnsupportedType:
		status = http.StatusUnprocessableEntity
	case crawler.ErrorKindMalformedMetadata, crawler.ErrorKindMediaResolution, crawler.ErrorKindHTTP, crawler.ErrorKindForbidden:
		status = http.StatusBadGateway
	case crawler.ErrorKindRateLimited:
		status = http.StatusTooManyRequests
	case crawler.ErrorKindTimeout:
		status = http.StatusGatewayTimeout
	}
	writeJSON(w, status, map[string]any{
		"code":   status,
		"kind":   string(crawler.KindOf(err)),
		"detail": err.Error(),
	})
}
