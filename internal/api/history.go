package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"video-relay-go/internal/config"
	"video-relay-go/internal/store"
)

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"code": http.StatusBadRequest, "detail": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	rows, err := store.ListResolutions(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if rows == nil {
		rows = []store.ResolutionRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"code": http.StatusOK, "data": rows})
}

func (s *Server) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	dir := config.AppConfig.DataDir
	if dir == "" {
		dir = "data"
	}
	path := filepath.Join(dir, "export", "resolutions.xlsx")
	if err := store.ExportXLSX(r.Context(), path, 10000); err != nil {
		writeError(w, err)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("content-type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("content-disposition", `attachment; filename="resolutions.xlsx"`)
	http.ServeContent(w, r, "resolutions.xlsx", st.ModTime(), f)
}
