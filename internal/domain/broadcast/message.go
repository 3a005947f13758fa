package broadcast

import (
	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/internal/model"
)

// Message is what one user receives from a broadcast.
type Message struct {
	BroadcastID string            `json:"broadcast_id"`
	UserID      int64             `json:"user_id"`
	Language    string            `json:"language"`
	Texts       map[string]string `json:"texts"`
	Photo       string            `json:"photo,omitempty"`
	Video       string            `json:"video,omitempty"`
	Album       []string          `json:"album,omitempty"`
	Button      *model.Button     `json:"button,omitempty"`
}

// Text returns the text in the language of the user, falling back to english.
func (m Message) Text() string {
	if text, ok := m.Texts[m.Language]; ok && text != "" {
		return text
	}

	return m.Texts[entity.DefaultLanguage]
}
