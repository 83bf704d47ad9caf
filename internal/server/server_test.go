package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KaramelBytes/datalens-cli/internal/loader"
	"github.com/KaramelBytes/datalens-cli/internal/session"
)

const salesCSV = "id,city,amount\n1,Paris,10\n2,Lyon,20\n2,Lyon,20\n3,Nice,\n4,Paris,40\n"

type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func newClient(t *testing.T) *client {
	t.Helper()
	s := New(Config{DataDir: t.TempDir(), Loader: loader.DefaultOptions()}, session.NewMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &client{t: t, h: s.Handler()}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) upload(name, content string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		c.t.Fatal(err)
	}
	io.WriteString(fw, content)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestHealth(t *testing.T) {
	c := newClient(t)
	if rec := c.get("/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestNoDataLoaded(t *testing.T) {
	c := newClient(t)
	for _, path := range []string{"/preview", "/summary", "/extract-features"} {
		rec := c.get(path)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", path, rec.Code)
		}
		if got := decode(t, rec)["error"]; got != "no data loaded" {
			t.Fatalf("%s: error = %v", path, got)
		}
	}
	if rec := c.post("/reset", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("reset status = %d", rec.Code)
	}
	if rec := c.get("/download-cleaned"); rec.Code != http.StatusBadRequest {
		t.Fatalf("download status = %d", rec.Code)
	}
	if c.cookie == nil {
		t.Fatalf("expected a session cookie")
	}
}

func TestUploadRejects(t *testing.T) {
	c := newClient(t)
	if rec := c.upload("notes.txt", "hello"); rec.Code != http.StatusBadRequest {
		t.Fatalf("txt upload status = %d", rec.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	if rec := c.do(req); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty form status = %d", rec.Code)
	}
}

func TestUploadCleanDownloadReset(t *testing.T) {
	c := newClient(t)
	rec := c.upload("sales.csv", salesCSV)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	up := decode(t, rec)
	if up["rows"].(float64) != 5 || up["columns"].(float64) != 3 || up["filename"] != "sales.csv" {
		t.Fatalf("upload body = %v", up)
	}

	prev := decode(t, c.get("/preview?n=2"))
	if rows := prev["rows"].([]any); len(rows) != 2 {
		t.Fatalf("preview rows = %v", rows)
	}

	sum := decode(t, c.get("/summary"))
	if sum["duplicate_rows"].(float64) != 1 || sum["total_missing"].(float64) != 1 {
		t.Fatalf("summary = %v", sum)
	}

	feat := decode(t, c.get("/extract-features"))
	if nf := feat["numeric_features"].([]any); len(nf) != 2 {
		t.Fatalf("numeric features = %v", nf)
	}

	rec = c.post("/clean", `{"missing":{"method":"mean"},"remove_outliers":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("clean: %d %s", rec.Code, rec.Body.String())
	}
	report := decode(t, rec)["report"].(map[string]any)
	if report["summary"] != "(5, 3) → (4, 3)" {
		t.Fatalf("report summary = %v", report["summary"])
	}
	acts := report["actions"].([]any)
	if len(acts) == 0 || acts[0] != "Removed 1 duplicate rows" {
		t.Fatalf("actions = %v", acts)
	}

	rec = c.get("/download-cleaned")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "text/csv" {
		t.Fatalf("download: %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 5 || lines[0] != "id,city,amount" {
		t.Fatalf("cleaned csv = %q", rec.Body.String())
	}

	if got := decode(t, c.get("/summary"))["shape"].(map[string]any)["rows"]; got != 4.0 {
		t.Fatalf("rows after clean = %v", got)
	}
	if rec := c.post("/reset", ""); rec.Code != http.StatusOK {
		t.Fatalf("reset: %d", rec.Code)
	}
	if got := decode(t, c.get("/summary"))["shape"].(map[string]any)["rows"]; got != 5.0 {
		t.Fatalf("rows after reset = %v", got)
	}
	if rec := c.get("/download-cleaned"); rec.Code != http.StatusBadRequest {
		t.Fatalf("download after reset: %d", rec.Code)
	}
}

func TestCleanConfigError(t *testing.T) {
	c := newClient(t)
	c.upload("sales.csv", salesCSV)
	rec := c.post("/clean", `{"outlier_method":"mad"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if msg := decode(t, rec)["error"].(string); !strings.Contains(msg, "outlier_method") {
		t.Fatalf("error = %q", msg)
	}
	if got := decode(t, c.get("/summary"))["shape"].(map[string]any)["rows"]; got != 5.0 {
		t.Fatalf("table changed after failed clean: rows = %v", got)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	a := newClient(t)
	a.upload("sales.csv", salesCSV)
	b := &client{t: t, h: a.h}
	if rec := b.get("/summary"); rec.Code != http.StatusBadRequest {
		t.Fatalf("other session should see no data, got %d", rec.Code)
	}
}

func TestWriteJSONUnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"x": math.Inf(1)})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "internal error" {
		t.Fatalf("error = %v", got)
	}
}

func TestSummaryWithExtremeValues(t *testing.T) {
	c := newClient(t)
	if rec := c.upload("big.csv", "x,y\n1e308,1\n1e308,2\n1,3\n"); rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	for _, path := range []string{"/summary", "/extract-features"} {
		rec := c.get(path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d body %q", path, rec.Code, rec.Body.String())
		}
		decode(t, rec)
	}
}
