package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/cleaning"
	"github.com/KaramelBytes/datalens-cli/internal/loader"
	"github.com/KaramelBytes/datalens-cli/internal/session"
	"github.com/KaramelBytes/datalens-cli/internal/table"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
)

const maxOptionsBytes = 64 << 10

// writeJSON encodes v before committing the status so an unencodable value
// becomes a 500 rather than a truncated 200.
func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response", "err", err)
		code = http.StatusInternalServerError
		b = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(append(b, '\n'))
}

func jsonErr(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// current loads the session table or writes the error response.
func (s *Server) current(w http.ResponseWriter, r *http.Request) (*table.Table, bool) {
	t, err := s.store.Get(r.Context(), sessionID(r))
	if errors.Is(err, session.ErrNotFound) {
		jsonErr(w, "no data loaded", http.StatusBadRequest)
		return nil, false
	}
	if err != nil {
		s.log.Error("load session", "err", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return t, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonErr(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonErr(w, "parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		jsonErr(w, "no file part", http.StatusBadRequest)
		return
	}
	defer file.Close()
	if hdr.Filename == "" {
		jsonErr(w, "no selected file", http.StatusBadRequest)
		return
	}
	if !loader.Supported(hdr.Filename) {
		jsonErr(w, "file type not allowed", http.StatusBadRequest)
		return
	}
	t, err := loader.Read(hdr.Filename, file, s.cfg.Loader)
	if err != nil {
		jsonErr(w, "read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	sid := sessionID(r)
	if err := s.store.Load(r.Context(), sid, t); err != nil {
		s.log.Error("store upload", "err", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.removeCleaned(sid)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"filename": hdr.Filename,
		"rows":     t.NumRows(),
		"columns":  t.NumCols(),
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	t, ok := s.current(w, r)
	if !ok {
		return
	}
	head := t.Head(queryInt(r, "n", s.cfg.PreviewRows))
	rows := make([][]any, head.NumRows())
	for i := range rows {
		vals := head.Row(i)
		row := make([]any, len(vals))
		for j, v := range vals {
			row[j] = v.Interface()
		}
		rows[i] = row
	}
	writeJSON(w, http.StatusOK, map[string]any{"columns": head.Names(), "rows": rows})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	t, ok := s.current(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.Summarize(t))
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	t, ok := s.current(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Analyzer.ExtractFeatures(t))
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	t, ok := s.current(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxOptionsBytes))
	if err != nil {
		jsonErr(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	opt := cleaning.DefaultOptions()
	if len(body) > 0 {
		if opt, err = cleaning.DecodeOptions(body); err != nil {
			jsonErr(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if !cleaning.KnownMissingMethod(opt.Missing.Method) {
		s.log.Warn("unknown missing method, values left as is", "method", opt.Missing.Method)
	}
	out, rep, err := cleaning.Clean(t, opt)
	if errors.Is(err, cleaning.ErrConfig) {
		jsonErr(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Error("clean", "err", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}
	sid := sessionID(r)
	if err := s.store.Set(r.Context(), sid, out); err != nil {
		s.log.Error("store cleaned", "err", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := utils.EnsureDir(s.cfg.DataDir); err != nil {
		s.log.Error("data dir", "err", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := loader.WriteCSVFile(s.cleanedPath(sid), out); err != nil {
		s.log.Error("write cleaned csv", "err", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "report": rep})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(s.cleanedPath(sessionID(r)))
	if err != nil {
		jsonErr(w, "no cleaned data available", http.StatusBadRequest)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="cleaned_data.csv"`)
	if _, err := io.Copy(w, f); err != nil {
		s.log.Warn("send cleaned csv", "err", err)
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	err := s.store.Reset(r.Context(), sid)
	if errors.Is(err, session.ErrNotFound) {
		jsonErr(w, "no data loaded", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Error("reset", "err", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.removeCleaned(sid)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Data reset to original"})
}

func (s *Server) removeCleaned(sid string) {
	if err := os.Remove(s.cleanedPath(sid)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("remove cleaned csv", "err", err)
	}
}
