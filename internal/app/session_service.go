package app

import (
	"context"
	"log"
	"strings"
	"time"

	"docquery/internal/model"
)

// SessionService persists whole conversations for replay. A save either
// creates a session or fully replaces the title and message list of an
// existing one; there is no partial append.
type SessionService struct {
	sessions SessionStore
	cache    SessionCache
}

func NewSessionService(sessions SessionStore, cache SessionCache) *SessionService {
	return &SessionService{
		sessions: sessions,
		cache:    cache,
	}
}

type SaveSessionInput struct {
	UserID    string
	SessionID string // empty = create
	Title     string
	Messages  []model.ChatMessage
}

// SessionData is a session with its message list decoded.
type SessionData struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Messages  []model.ChatMessage `json:"messages"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (s *SessionService) Save(ctx context.Context, input SaveSessionInput) (string, error) {
	if input.UserID == "" {
		return "", ErrInvalidInput
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "New Chat"
	}

	var session *model.ChatSession
	if input.SessionID != "" {
		existing, err := s.sessions.GetByIDAndUserID(input.SessionID, input.UserID)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return "", ErrSessionNotFound
		}
		existing.Title = title
		if err := existing.EncodeMessages(input.Messages); err != nil {
			return "", err
		}
		if err := s.sessions.ReplaceContent(existing); err != nil {
			return "", err
		}
		session = existing
	} else {
		session = &model.ChatSession{
			UserID: input.UserID,
			Title:  title,
		}
		if err := session.EncodeMessages(input.Messages); err != nil {
			return "", err
		}
		if err := s.sessions.Create(session); err != nil {
			return "", err
		}
	}

	s.invalidate(ctx, input.UserID)
	return session.ID, nil
}

// List returns the user's sessions newest-first, served from the cache when
// it is warm.
func (s *SessionService) List(ctx context.Context, userID string) ([]SessionData, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}

	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, userID); err == nil && ok {
			return decodeSessions(cached)
		}
	}

	sessions, err := s.sessions.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, sessions); err != nil {
			log.Printf("cache session list failed for user %s: %v", userID, err)
		}
	}
	return decodeSessions(sessions)
}

func (s *SessionService) Get(ctx context.Context, userID, sessionID string) (*SessionData, error) {
	if userID == "" || sessionID == "" {
		return nil, ErrInvalidInput
	}
	session, err := s.sessions.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	messages, err := session.DecodeMessages()
	if err != nil {
		return nil, err
	}
	return &SessionData{
		ID:        session.ID,
		Title:     session.Title,
		Messages:  messages,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}, nil
}

func (s *SessionService) Delete(ctx context.Context, userID, sessionID string) error {
	if userID == "" || sessionID == "" {
		return ErrInvalidInput
	}
	deleted, err := s.sessions.DeleteByIDAndUserID(sessionID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSessionNotFound
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *SessionService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.Printf("invalidate session list cache failed for user %s: %v", userID, err)
	}
}

func decodeSessions(sessions []model.ChatSession) ([]SessionData, error) {
	out := make([]SessionData, 0, len(sessions))
	for i := range sessions {
		messages, err := sessions[i].DecodeMessages()
		if err != nil {
			return nil, err
		}
		out = append(out, SessionData{
			ID:        sessions[i].ID,
			Title:     sessions[i].Title,
			Messages:  messages,
			CreatedAt: sessions[i].CreatedAt,
			UpdatedAt: sessions[i].UpdatedAt,
		})
	}
	return out, nil
}
