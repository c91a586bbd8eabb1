package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/quizmill/quizmill/internal/payload"
	"github.com/quizmill/quizmill/internal/theme"
)

// Embeds builds embed URLs and serves the embed page shell. The payload
// travels in the URL fragment so it never reaches server logs; the shell
// reads location.hash client-side and the server only contributes theme
// and chrome.
type Embeds struct {
	PublicURL string
	ItemCap   int
}

type createEmbedReq struct {
	Title string         `json:"title"`
	Kind  payload.Kind   `json:"kind,omitempty"`
	Items []payload.Item `json:"items"`
	Query string         `json:"query,omitempty"` // optional theming query string, e.g. "theme=dark&accent=16a34a"
}

type createEmbedResp struct {
	URL          string `json:"url"`
	IFrame       string `json:"iframe"`
	ItemsEncoded int    `json:"items_encoded"`
	ItemsDropped int    `json:"items_dropped"`
}

// CreateEmbedHandler encodes a payload into a shareable embed URL. The
// item cap is applied here, on the caller side of the codec: the codec
// encodes exactly what it is given.
func (h *Embeds) CreateEmbedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEmbedReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		p := payload.EmbedPayload{Title: req.Title, Kind: req.Kind, Items: req.Items}
		dropped := 0
		if h.ItemCap > 0 && len(p.Items) > h.ItemCap {
			dropped = len(p.Items) - h.ItemCap
			p = payload.Truncate(p, h.ItemCap)
		}
		if err := validateInline(p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		tok, err := payload.Encode(p)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		u := h.PublicURL + "/embed/questions"
		if req.Query != "" {
			u += "?" + req.Query
		}
		u += "#" + tok
		_ = json.NewEncoder(w).Encode(createEmbedResp{
			URL:          u,
			IFrame:       fmt.Sprintf(`<iframe src=%q width="100%%" height="520" frameborder="0" loading="lazy"></iframe>`, u),
			ItemsEncoded: len(p.Items),
			ItemsDropped: dropped,
		})
	}
}

type embedPageData struct {
	Theme     theme.Theme
	PublicURL string
}

// PageHandler serves the self-sufficient embed shell. Theming comes from
// query parameters with documented defaults; the attribution footer is
// fixed chrome no parameter can remove.
func (h *Embeds) PageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := embedPageData{
			Theme:     theme.FromQuery(r.URL.Query()),
			PublicURL: h.PublicURL,
		}
		if err := embedPage.Execute(w, data); err != nil {
			http.Error(w, "render failed", http.StatusInternalServerError)
		}
	}
}

var embedPage = template.Must(template.New("embed").Parse(`<!doctype html>
<html data-theme="{{.Theme.Scheme}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Quiz</title>
<style>
  :root {
    --bg: {{.Theme.Background}};
    --accent: {{.Theme.Accent}};
    --radius: {{.Theme.Radius}}px;
    --font: {{.Theme.Font}};
  }
  body { margin: 0; background: var(--bg); font-family: var(--font), sans-serif; }
  [data-theme="dark"] body { color: #e5e7eb; }
  #player { padding: 16px; border-radius: var(--radius); }
  #fallback { display: none; padding: 24px; text-align: center; }
  .footer { padding: 8px 16px; font-size: 12px; border-top: 1px solid rgba(128,128,128,.3); }
  .footer a { color: var(--accent); text-decoration: none; }
</style>
</head>
<body>
<div id="player"
     data-mode="{{.Theme.Mode}}"
     data-show-progress="{{.Theme.ShowProgress}}"
     data-show-score="{{.Theme.ShowScore}}"
     data-show-explanations="{{.Theme.ShowExplanations}}"></div>
<div id="fallback">This quiz could not be loaded: invalid or missing data.</div>
<div class="footer">Powered by <a href="{{.PublicURL}}" target="_blank" rel="noopener">Quizmill</a></div>
<script>
(function () {
  var player = document.getElementById("player");
  var fallback = document.getElementById("fallback");
  function fail() { player.style.display = "none"; fallback.style.display = "block"; }
  var token = window.location.hash.replace(/^#/, "");
  if (!token) { fail(); return; }
  var raw;
  try {
    raw = atob(token.replace(/-/g, "+").replace(/_/g, "/"));
  } catch (e) { fail(); return; }
  var data;
  try { data = JSON.parse(decodeURIComponent(escape(raw))); } catch (e) { fail(); return; }
  if (!data || typeof data.title !== "string" || !data.title ||
      !Array.isArray(data.items) || data.items.length === 0) { fail(); return; }
  document.title = data.title;
  if (window.quizmillBoot) {
    window.quizmillBoot(player, data); // presentation adapter, loaded separately
  } else {
    player.textContent = data.title + " (" + data.items.length + " items)";
  }
})();
</script>
</body>
</html>
`))
