package view

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yanizio/legacyfilm/internal/pricing"
	"github.com/yanizio/legacyfilm/internal/requestinfo"
)

func TestRenderHome(t *testing.T) {
	e := New("")
	head := NewHead("Legacy Film")
	head.Meta("description", `Films & "stories"`)
	head.Meta("description", "duplicate ignored")

	w := httptest.NewRecorder()
	err := e.Render(w, http.StatusOK, "home", &Page{
		Head: head,
		Info: &requestinfo.RequestInfo{UA: requestinfo.UA{Device: "phone"}},
		Data: HomeData{Packages: pricing.All(), PaymentsEnabled: true},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	body := w.Body.String()
	for _, want := range []string{
		"<title>Legacy Film</title>",
		`content="Films &amp; &#34;stories&#34;"`,
		`class="device-phone"`,
		"Signature Story",
		"$2,250 deposit",
		`data-package="masterpiece"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "duplicate ignored") {
		t.Error("duplicate meta rendered")
	}
}

func TestRenderLeadStates(t *testing.T) {
	e := New("")
	out, err := e.RenderToString("free-questions", &Page{Data: LeadData{
		Title:       "Free Interview Questions",
		Fields:      `<input name="name">`,
		SubmitError: "Please wait 10 seconds before submitting again.",
	}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `<input name="name">`) || !strings.Contains(string(out), "Please wait 10 seconds") {
		t.Fatalf("form state not rendered: %s", out)
	}

	out, err = e.RenderToString("free-questions", &Page{Data: LeadData{Success: true}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "Thank you!") || strings.Contains(string(out), "<form") {
		t.Fatalf("success state wrong: %s", out)
	}
}

func TestOverrideDirShadowsEmbedded(t *testing.T) {
	dir := t.TempDir()
	src := `{{ define "content" }}<p>custom home</p>{{ end }}`
	if err := os.WriteFile(filepath.Join(dir, "home.html"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := New(dir).RenderToString("home", &Page{Data: HomeData{}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "custom home") || !strings.Contains(string(out), "site-header") {
		t.Fatalf("override not applied over embedded layout: %s", out)
	}
}

func TestRenderMissingPage(t *testing.T) {
	w := httptest.NewRecorder()
	if err := New("").Render(w, http.StatusOK, "nope", &Page{}); err == nil {
		t.Fatal("missing page rendered")
	}
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", w.Code)
	}
}

func TestFormatCents(t *testing.T) {
	tests := map[int64]string{
		0:        "$0",
		100000:   "$1,000",
		225000:   "$2,250",
		400050:   "$4,000.50",
		12345678: "$123,456.78",
		-500:     "-$5",
	}
	for in, want := range tests {
		if got := FormatCents(in); got != want {
			t.Errorf("FormatCents(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestJSONLDEscapes(t *testing.T) {
	h := NewHead("")
	if err := h.JSONLD(map[string]string{"name": "</script><b>"}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(h.JSON()), "</script><b>") {
		t.Fatalf("JSON-LD not escaped: %s", h.JSON())
	}
}
