package view

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew_ParsesAllTemplates(t *testing.T) {
	if _, err := New(); err != nil {
		t.Fatalf("New() error = %v", err)
	}
}

func TestRender_WritesHTML(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	w := httptest.NewRecorder()
	renderer.Render(w, "home.html", nil)

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if !strings.Contains(w.Body.String(), "<html") {
		t.Errorf("body should contain HTML, got: %s", w.Body.String())
	}
}

func TestRender_UnknownTemplate_Returns500(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	w := httptest.NewRecorder()
	renderer.Render(w, "no_such.html", nil)

	if w.Code != 500 {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
