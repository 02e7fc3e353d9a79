package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lofty-chat/internal/domain"
	"lofty-chat/internal/repository"
)

const (
	sessionTitleMaxRunes = 30
	persistTimeout       = 2 * time.Second
)

// SessionStore es el único dueño de las sesiones de chat y del puntero a la sesión activa.
// Cada operación es atómica; las escrituras al repositorio ocurren bajo el mismo lock
// para que el almacenamiento vea las mutaciones en orden.
type SessionStore struct {
	mu       sync.Mutex
	repo     repository.SessionRepository
	logger   *zap.Logger
	now      func() time.Time
	sessions []domain.Session
	activeID string
}

func NewSessionStore(repo repository.SessionRepository, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Load lee el estado persistido una sola vez al arrancar. Si no hay sesiones crea una.
func (s *SessionStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo != nil {
		sessions, activeID, err := s.repo.Load(ctx)
		if err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}
		s.sessions = sessions
		s.activeID = activeID
	}

	if len(s.sessions) == 0 {
		s.createLocked()
		return nil
	}
	if s.indexLocked(s.activeID) < 0 {
		s.activeID = s.sessions[0].ID
		s.persistLocked()
	}
	return nil
}

// CreateSession agrega una sesión vacía titulada "New chat N" y la activa.
func (s *SessionStore) CreateSession() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *SessionStore) SelectSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return fmt.Errorf("select %s: %w", id, domain.ErrSessionNotFound)
	}
	s.activeID = id
	s.persistLocked()
	return nil
}

// DeleteSession elimina la sesión. Si era la activa, activa la primera restante
// o crea una nueva cuando no queda ninguna.
func (s *SessionStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("delete %s: %w", id, domain.ErrSessionNotFound)
	}
	s.sessions = slices.Delete(slices.Clone(s.sessions), idx, idx+1)

	if s.activeID == id {
		if len(s.sessions) == 0 {
			s.createLocked()
			return nil
		}
		s.activeID = s.sessions[0].ID
	}
	s.persistLocked()
	return nil
}

// AppendMessage agrega el mensaje al final de la sesión indicada. El primer mensaje
// del usuario con texto define el título.
func (s *SessionStore) AppendMessage(sessionID string, msg domain.Message) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(sessionID)
	if idx < 0 {
		return domain.Session{}, fmt.Errorf("append to %s: %w", sessionID, domain.ErrSessionNotFound)
	}
	now := s.now()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}

	current := s.sessions[idx]
	firstUserText := msg.Role == domain.RoleUser && strings.TrimSpace(msg.Content) != "" && !current.HasUserText()
	updated := current.WithMessage(msg, now)
	if firstUserText {
		updated = updated.WithTitle(TitleFromContent(msg.Content), now)
	}

	s.replaceLocked(idx, updated)
	s.persistLocked()
	return updated, nil
}

func (s *SessionStore) RenameSession(id, title string) (domain.Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Session{}, domain.ValidationError("title", "is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return domain.Session{}, fmt.Errorf("rename %s: %w", id, domain.ErrSessionNotFound)
	}
	updated := s.sessions[idx].WithTitle(title, s.now())
	s.replaceLocked(idx, updated)
	s.persistLocked()
	return updated, nil
}

// ClearAll borra todas las sesiones y crea una nueva en la misma operación.
func (s *SessionStore) ClearAll() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = nil
	s.activeID = ""
	return s.createLocked()
}

// EnsureActive devuelve la sesión activa, creándola si no existe.
func (s *SessionStore) EnsureActive() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(s.activeID); idx >= 0 {
		return s.sessions[idx]
	}
	if len(s.sessions) > 0 {
		s.activeID = s.sessions[0].ID
		s.persistLocked()
		return s.sessions[0]
	}
	return s.createLocked()
}

func (s *SessionStore) Active() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(s.activeID)
	if idx < 0 {
		return domain.Session{}, false
	}
	return s.sessions[idx], true
}

func (s *SessionStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *SessionStore) Get(id string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return domain.Session{}, fmt.Errorf("get %s: %w", id, domain.ErrSessionNotFound)
	}
	return s.sessions[idx], nil
}

// List devuelve una copia de las sesiones en orden de creación.
func (s *SessionStore) List() []domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sessions)
}

// Export serializa todas las sesiones como JSON indentado.
func (s *SessionStore) Export() ([]byte, error) {
	sessions := s.List()
	if sessions == nil {
		sessions = []domain.Session{}
	}
	return json.MarshalIndent(sessions, "", "  ")
}

func (s *SessionStore) createLocked() domain.Session {
	now := s.now()
	session := domain.Session{
		ID:        uuid.NewString(),
		Title:     fmt.Sprintf("New chat %d", len(s.sessions)+1),
		Messages:  []domain.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions = append(slices.Clone(s.sessions), session)
	s.activeID = session.ID
	s.persistLocked()
	return session
}

// replaceLocked nunca escribe sobre el slice compartido con copias devueltas por List.
func (s *SessionStore) replaceLocked(idx int, session domain.Session) {
	next := slices.Clone(s.sessions)
	next[idx] = session
	s.sessions = next
}

func (s *SessionStore) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.sessions, func(sess domain.Session) bool { return sess.ID == id })
}

// persistLocked escribe el estado completo. Un fallo se loguea y no se propaga:
// el estado en memoria sigue siendo la fuente de verdad.
func (s *SessionStore) persistLocked() {
	if s.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.repo.Save(ctx, s.sessions, s.activeID); err != nil {
		s.logger.Warn("persist sessions failed", zap.Error(err), zap.Int("sessions", len(s.sessions)))
	}
}

// TitleFromContent corta el texto a 30 runas y agrega "..." si era más largo.
func TitleFromContent(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= sessionTitleMaxRunes {
		return content
	}
	return string(runes[:sessionTitleMaxRunes]) + "..."
}
