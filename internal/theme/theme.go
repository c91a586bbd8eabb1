// Package theme parses the embed theming query parameters. The engine
// treats the result as read-only input supplied by the embedding page;
// every field defaults independently when absent.
package theme

import (
	"net/url"
	"regexp"
	"strconv"
)

type Scheme string

const (
	SchemeLight Scheme = "light"
	SchemeDark  Scheme = "dark"
)

// Mode values mirror the session's feedback contract; the embed shell
// forwards the requested mode to the player untouched.
const (
	ModePractice = "practice"
	ModeExam     = "exam"
)

type Theme struct {
	Background string `json:"bg"`
	Accent     string `json:"accent"`
	Radius     int    `json:"radius"` // px
	Font       string `json:"font"`
	Scheme     Scheme `json:"theme"`
	Mode       string `json:"mode"` // practice|exam

	ShowProgress     bool `json:"show_progress"`
	ShowScore        bool `json:"show_score"`
	ShowExplanations bool `json:"show_explanations"`
}

// Default is the documented fallback for every field.
func Default() Theme {
	return Theme{
		Background:       "#ffffff",
		Accent:           "#2563eb",
		Radius:           8,
		Font:             "system-ui",
		Scheme:           SchemeLight,
		Mode:             ModePractice,
		ShowProgress:     true,
		ShowScore:        true,
		ShowExplanations: true,
	}
}

var (
	hexColor = regexp.MustCompile(`^#?[0-9a-fA-F]{3}(?:[0-9a-fA-F]{3})?$`)
	fontName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 -]{0,63}$`)
)

// FromQuery overlays any recognized parameters onto the defaults.
// Unknown or malformed values fall back silently; a broken embed link
// should still render.
func FromQuery(q url.Values) Theme {
	t := Default()
	if v := q.Get("bg"); hexColor.MatchString(v) {
		t.Background = withHash(v)
	}
	if v := q.Get("accent"); hexColor.MatchString(v) {
		t.Accent = withHash(v)
	}
	if v := q.Get("radius"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 48 {
			t.Radius = n
		}
	}
	if v := q.Get("font"); fontName.MatchString(v) {
		t.Font = v
	}
	if v := q.Get("theme"); v == string(SchemeDark) {
		t.Scheme = SchemeDark
	}
	if v := q.Get("mode"); v == ModeExam {
		t.Mode = ModeExam
	}
	if v := q.Get("progress"); v != "" {
		t.ShowProgress = boolParam(v, t.ShowProgress)
	}
	if v := q.Get("score"); v != "" {
		t.ShowScore = boolParam(v, t.ShowScore)
	}
	if v := q.Get("explanations"); v != "" {
		t.ShowExplanations = boolParam(v, t.ShowExplanations)
	}
	return t
}

func withHash(v string) string {
	if v[0] == '#' {
		return v
	}
	return "#" + v
}

func boolParam(v string, def bool) bool {
	switch v {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return def
	}
}
