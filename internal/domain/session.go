package domain

import (
	"slices"
	"strings"
	"time"
)

type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WithMessage devuelve una copia de la sesión con el mensaje agregado al final.
// La sesión original y su slice de mensajes no se modifican.
func (s Session) WithMessage(msg Message, at time.Time) Session {
	msgs := make([]Message, 0, len(s.Messages)+1)
	msgs = append(msgs, s.Messages...)
	msg.Attachments = slices.Clone(msg.Attachments)
	msgs = append(msgs, msg)
	s.Messages = msgs
	s.UpdatedAt = at
	return s
}

// WithTitle devuelve una copia de la sesión con otro título.
func (s Session) WithTitle(title string, at time.Time) Session {
	s.Messages = slices.Clone(s.Messages)
	s.Title = title
	s.UpdatedAt = at
	return s
}

// HasUserText indica si la sesión ya recibió un mensaje del usuario con texto.
// Los mensajes solo con adjuntos no cuentan.
func (s Session) HasUserText() bool {
	for _, m := range s.Messages {
		if m.Role == RoleUser && strings.TrimSpace(m.Content) != "" {
			return true
		}
	}
	return false
}
