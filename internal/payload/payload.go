package payload

// Kind distinguishes the two session families carried over the wire.
type Kind string

const (
	KindQuiz       Kind = "quiz"
	KindFlashcards Kind = "flashcards"
)

type Option struct {
	Label   string `json:"label"` // "A", "B", ...
	Body    string `json:"body"`
	Correct bool   `json:"isCorrect"`
}

// Item is one assessable unit: an MCQ question or a flashcard.
// Identity is positional within the payload; external ids are the
// embedding page's concern.
type Item struct {
	// multiple choice
	Prompt      string   `json:"prompt,omitempty"`
	Options     []Option `json:"options,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Weight      float64  `json:"weight,omitempty"` // 0 means default 1
	Difficulty  string   `json:"difficulty,omitempty"`

	// flashcard
	Front string `json:"front,omitempty"`
	Back  string `json:"back,omitempty"`
	Hint  string `json:"hint,omitempty"`
}

// EmbedPayload is the minimal wire entity an embed page needs to
// reconstruct a session. Theming and scoring thresholds travel as
// separate query parameters, never inside the encoded payload.
type EmbedPayload struct {
	Title string `json:"title"`
	Kind  Kind   `json:"kind,omitempty"` // absent means quiz (legacy payloads)
	Items []Item `json:"items"`
}

// PointWeight returns the item's scoring weight, defaulting to 1.
func (it Item) PointWeight() float64 {
	if it.Weight > 0 {
		return it.Weight
	}
	return 1
}

// IsFlashcard reports whether the item carries card faces instead of options.
func (it Item) IsFlashcard() bool {
	return it.Front != "" && len(it.Options) == 0
}

// CorrectOption returns the index of the item's correct option, or -1 if
// the item has none (a content defect the engine tolerates: no selection
// can ever be correct).
func (it Item) CorrectOption() int {
	for i, o := range it.Options {
		if o.Correct {
			return i
		}
	}
	return -1
}

// Truncate returns a copy of p holding at most max items. Callers bound
// the payload before encoding; the codec itself never drops items.
func Truncate(p EmbedPayload, max int) EmbedPayload {
	if max <= 0 || len(p.Items) <= max {
		return p
	}
	out := p
	out.Items = make([]Item, max)
	copy(out.Items, p.Items[:max])
	return out
}
