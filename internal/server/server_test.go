package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gogpu/math2img"
)

func newServer(t *testing.T, opts ...math2img.Option) *Server {
	t.Helper()
	r, err := math2img.New(opts...)
	if err != nil {
		t.Fatalf("math2img.New() error = %v", err)
	}
	t.Cleanup(r.Close)
	return New(r, nil)
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestHealth(t *testing.T) {
	rec := do(newServer(t), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("body = %q", got)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", rec.Header().Get("Content-Type"))
	}
}

// =============================================================================
// Equations
// =============================================================================

func TestEquation(t *testing.T) {
	s := newServer(t)
	height := func(mode string) int {
		rec := do(s, http.MethodPost, "/v1/equation?mode="+mode, `\frac{a}{b}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("mode %s: status = %d, body %s", mode, rec.Code, rec.Body)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("Content-Type = %q, want image/png", ct)
		}
		img, err := png.Decode(rec.Body)
		if err != nil {
			t.Fatalf("PNG decode failed: %v", err)
		}
		return img.Bounds().Dy()
	}
	if inline, display := height("inline"), height("display"); display <= inline {
		t.Errorf("display height %d, want taller than inline %d", display, inline)
	}
}

func TestEquationErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		msg    string
	}{
		{"bad mode", "/v1/equation?mode=block", "x", http.StatusBadRequest, "mode must be inline or display"},
		{"empty body", "/v1/equation", "  \n", http.StatusBadRequest, "empty equation"},
		{"unknown command", "/v1/equation", `\foobar{x}`, http.StatusUnprocessableEntity, "foobar"},
		{"missing argument", "/v1/equation", `\frac{a}`, http.StatusUnprocessableEntity, "parse"},
	}
	s := newServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if msg := errorMessage(t, rec); !strings.Contains(msg, tt.msg) {
				t.Errorf("error = %q, want it to contain %q", msg, tt.msg)
			}
		})
	}
}

func TestEquationBodyLimit(t *testing.T) {
	s := newServer(t)
	s.maxBody = 8
	rec := do(s, http.MethodPost, "/v1/equation", strings.Repeat("x", 64))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestEquationMethodNotAllowed(t *testing.T) {
	rec := do(newServer(t), http.MethodGet, "/v1/equation", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

// =============================================================================
// Documents
// =============================================================================

func TestDocument(t *testing.T) {
	doc := "Inline $a+b$, broken $\\frac{a}$ and\n\n$$c = d$$\n"
	rec := do(newServer(t), http.MethodPost, "/v1/document?format=latex", doc)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp documentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Equations) != 3 || resp.TimedOut {
		t.Fatalf("response = %+v, want 3 equations", resp)
	}

	for i, eq := range resp.Equations {
		if eq.Index != i+1 || eq.Name != math2img.FileName(i+1) {
			t.Errorf("equation %d: index %d name %q", i+1, eq.Index, eq.Name)
		}
	}
	if eq := resp.Equations[1]; eq.Error == "" || eq.PNG != "" || eq.Text != `\frac{a}` {
		t.Errorf("equation 2 = %+v, want an error and no image", eq)
	}
	if eq := resp.Equations[2]; eq.Mode != "display" {
		t.Errorf("equation 3 mode = %q, want display", eq.Mode)
	}
	data, err := base64.StdEncoding.DecodeString(resp.Equations[0].PNG)
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("equation 1 PNG decode failed: %v", err)
	}
}

func TestDocumentMarkdown(t *testing.T) {
	doc := "Math $x^2$.\n\n```\n$y$\n```\n"
	rec := do(newServer(t), http.MethodPost, "/v1/document?format=md", doc)
	var resp documentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Equations) != 1 || resp.Equations[0].Text != "x^2" {
		t.Errorf("equations = %+v, want only x^2", resp.Equations)
	}
}

func TestDocumentWarnings(t *testing.T) {
	rec := do(newServer(t), http.MethodPost, "/v1/document", "cost $5 and\n\nmore")
	var resp documentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Equations) != 0 || len(resp.Warnings) != 1 {
		t.Errorf("response = %+v, want no equations and one warning", resp)
	}
}

func TestDocumentUnknownFormat(t *testing.T) {
	rec := do(newServer(t), http.MethodPost, "/v1/document?format=rst", "$x$")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestClosedRenderer(t *testing.T) {
	r, err := math2img.New()
	if err != nil {
		t.Fatalf("math2img.New() error = %v", err)
	}
	s := New(r, nil)
	r.Close()

	for _, target := range []string{"/v1/equation", "/v1/document"} {
		rec := do(s, http.MethodPost, target, "$x$")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", target, rec.Code)
		}
	}
}
