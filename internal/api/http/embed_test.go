package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	api "github.com/quizmill/quizmill/internal/api/http"
	"github.com/quizmill/quizmill/internal/payload"
)

func demoItems() []payload.Item {
	return []payload.Item{{
		Prompt: "2+2?",
		Options: []payload.Option{
			{Label: "A", Body: "3"},
			{Label: "B", Body: "4", Correct: true},
		},
	}}
}

func TestEmbedPageAlwaysRendersAttribution(t *testing.T) {
	h := &api.Embeds{PublicURL: "https://quizmill.example", ItemCap: 24}

	// every embeddable surface shows the origin link; no parameter,
	// including hostile ones, may remove it
	queries := []string{
		"",
		"theme=dark&bg=111827&accent=16a34a&radius=0",
		"footer=0&attribution=false&branding=none",
	}
	for _, q := range queries {
		req := httptest.NewRequest(http.MethodGet, "/embed/questions?"+q, nil)
		rec := httptest.NewRecorder()
		h.PageHandler().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("query %q: status %d", q, rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `href="https://quizmill.example"`) {
			t.Fatalf("query %q: attribution link missing", q)
		}
		if !strings.Contains(body, "Powered by") {
			t.Fatalf("query %q: attribution text missing", q)
		}
	}
}

func TestEmbedPageAppliesThemeDefaults(t *testing.T) {
	h := &api.Embeds{PublicURL: "https://quizmill.example"}
	req := httptest.NewRequest(http.MethodGet, "/embed/questions", nil)
	rec := httptest.NewRecorder()
	h.PageHandler().ServeHTTP(rec, req)

	body := rec.Body.String()
	wants := []string{
		"--bg: #ffffff", "--accent: #2563eb", "--radius: 8px",
		"--font: system-ui", `data-theme="light"`, `data-mode="practice"`,
	}
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Fatalf("default theme missing %q", want)
		}
	}
}

func TestEmbedPageAppliesThemeParams(t *testing.T) {
	h := &api.Embeds{PublicURL: "https://quizmill.example"}
	req := httptest.NewRequest(http.MethodGet, "/embed/questions?theme=dark&bg=111827&radius=0&font=Georgia&mode=exam", nil)
	rec := httptest.NewRecorder()
	h.PageHandler().ServeHTTP(rec, req)

	body := rec.Body.String()
	wants := []string{
		"--bg: #111827", "--radius: 0px", "--font: Georgia",
		`data-theme="dark"`, `data-mode="exam"`,
	}
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Fatalf("theme param not applied: missing %q", want)
		}
	}
}

func TestCreateEmbedRoundTrips(t *testing.T) {
	h := &api.Embeds{PublicURL: "https://quizmill.example", ItemCap: 24}

	reqBody, _ := json.Marshal(map[string]interface{}{
		"title": "Demo",
		"items": demoItems(),
		"query": "theme=dark",
	})
	req := httptest.NewRequest(http.MethodPost, "/embeds", bytes.NewReader(reqBody))
	rec := httptest.NewRecorder()
	h.CreateEmbedHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		URL    string `json:"url"`
		IFrame string `json:"iframe"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}

	u, err := url.Parse(resp.URL)
	if err != nil {
		t.Fatalf("bad embed url: %v", err)
	}
	if u.Path != "/embed/questions" || u.RawQuery != "theme=dark" {
		t.Fatalf("unexpected url: %s", resp.URL)
	}
	if u.Fragment == "" {
		t.Fatalf("payload must ride the fragment, url: %s", resp.URL)
	}
	p, err := payload.Decode(u.Fragment)
	if err != nil {
		t.Fatalf("fragment does not decode: %v", err)
	}
	if p.Title != "Demo" || len(p.Items) != 1 {
		t.Fatalf("decoded payload: %+v", p)
	}
	if !strings.Contains(resp.IFrame, "<iframe") {
		t.Fatalf("iframe snippet missing")
	}
}

func TestCreateEmbedAppliesItemCap(t *testing.T) {
	h := &api.Embeds{PublicURL: "https://quizmill.example", ItemCap: 3}

	items := []payload.Item{}
	for i := 0; i < 10; i++ {
		items = append(items, demoItems()[0])
	}
	reqBody, _ := json.Marshal(map[string]interface{}{"title": "Big", "items": items})
	req := httptest.NewRequest(http.MethodPost, "/embeds", bytes.NewReader(reqBody))
	rec := httptest.NewRecorder()
	h.CreateEmbedHandler().ServeHTTP(rec, req)

	var resp struct {
		ItemsEncoded int `json:"items_encoded"`
		ItemsDropped int `json:"items_dropped"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.ItemsEncoded != 3 || resp.ItemsDropped != 7 {
		t.Fatalf("cap not applied: %+v", resp)
	}
}

func TestCreateEmbedRejectsInvalidPayload(t *testing.T) {
	h := &api.Embeds{PublicURL: "https://quizmill.example", ItemCap: 24}
	reqBody := []byte(`{"title":"","items":[]}`)
	req := httptest.NewRequest(http.MethodPost, "/embeds", bytes.NewReader(reqBody))
	rec := httptest.NewRecorder()
	h.CreateEmbedHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}
