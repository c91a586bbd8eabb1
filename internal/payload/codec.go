package payload

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Reason tags a decode failure so callers can map it to a fallback view
// without string-matching error text.
type Reason string

const (
	ReasonMalformedEncoding Reason = "malformed_encoding"
	ReasonInvalidJSON       Reason = "invalid_json"
	ReasonMissingTitle      Reason = "missing_title"
	ReasonEmptyItems        Reason = "empty_items"
	ReasonInvalidItem       Reason = "invalid_item"
)

type DecodeError struct {
	Reason Reason
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func decodeErr(r Reason, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Reason: r, Detail: fmt.Sprintf(format, args...)}
}

// Encode serializes p to compact JSON and applies the raw URL-safe base64
// alphabet, so the token is legal inside a URL fragment. Encoding is
// stable: the same payload always yields the same token.
func Encode(p EmbedPayload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Decode reverses Encode and validates the payload. Every failure is a
// *DecodeError; Decode never panics on hostile input.
//
// Legacy embed tokens were produced with the standard padded alphabet
// ("+", "/", "="); those still decode.
func Decode(token string) (EmbedPayload, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return EmbedPayload{}, decodeErr(ReasonMalformedEncoding, "empty token")
	}
	raw, err := decodeBase64(token)
	if err != nil {
		return EmbedPayload{}, decodeErr(ReasonMalformedEncoding, "%v", err)
	}
	var p EmbedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return EmbedPayload{}, decodeErr(ReasonInvalidJSON, "%v", err)
	}
	if strings.TrimSpace(p.Title) == "" {
		return EmbedPayload{}, decodeErr(ReasonMissingTitle, "title is required")
	}
	if len(p.Items) == 0 {
		return EmbedPayload{}, decodeErr(ReasonEmptyItems, "payload has no items")
	}
	if p.Kind == "" {
		p.Kind = KindQuiz
	}
	for i, it := range p.Items {
		if err := validateItem(p.Kind, it); err != nil {
			return EmbedPayload{}, decodeErr(ReasonInvalidItem, "item %d: %v", i, err)
		}
	}
	return p, nil
}

func decodeBase64(token string) ([]byte, error) {
	if raw, err := base64.RawURLEncoding.DecodeString(token); err == nil {
		return raw, nil
	}
	if raw, err := base64.URLEncoding.DecodeString(token); err == nil {
		return raw, nil
	}
	return base64.StdEncoding.DecodeString(token)
}

func validateItem(kind Kind, it Item) error {
	if kind == KindFlashcards {
		if strings.TrimSpace(it.Front) == "" || strings.TrimSpace(it.Back) == "" {
			return fmt.Errorf("flashcard needs front and back")
		}
		return nil
	}
	if strings.TrimSpace(it.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	if len(it.Options) < 2 {
		return fmt.Errorf("need at least 2 options, got %d", len(it.Options))
	}
	if it.CorrectOption() == -1 {
		return fmt.Errorf("no option marked correct")
	}
	return nil
}
