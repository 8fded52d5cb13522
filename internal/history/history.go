// Package history keeps a bounded, in-memory conversation context per
// chat. Everything here is volatile: a restart starts every conversation
// from scratch.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DisaAst/chathub-bot/internal/logger"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Modality records what kind of input produced the message. Assistant
// replies are always text regardless of what they responded to.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
	ModalityImage Modality = "image"
)

type Message struct {
	ID            string
	Role          Role
	ParticipantID int64
	Text          string
	Modality      Modality
	// MediaRef holds the transport file id for media messages, empty for
	// plain text.
	MediaRef  string
	CreatedAt time.Time
}

type Stats struct {
	TotalConversations int
	TotalMessages      int
	MediaMessages      int
}

// Store holds per-chat message lists. Each list is trimmed back to the
// context limit once it grows past twice the limit, so appends stay O(1)
// amortized while Recent always sees the full window.
type Store struct {
	mu            sync.RWMutex
	conversations map[int64][]Message
	limit         int
	logger        logger.Logger
	now           func() time.Time
}

func NewStore(limit int, log logger.Logger) *Store {
	return &Store{
		conversations: make(map[int64][]Message),
		limit:         limit,
		logger:        log,
		now:           time.Now,
	}
}

func (s *Store) AppendUser(chatID, participantID int64, text string, modality Modality, mediaRef string) Message {
	return s.append(chatID, RoleUser, participantID, text, modality, mediaRef)
}

// AppendAssistant records a reply. Assistant messages are always text,
// whatever modality they responded to.
func (s *Store) AppendAssistant(chatID int64, text string) Message {
	return s.append(chatID, RoleAssistant, 0, text, ModalityText, "")
}

func (s *Store) append(chatID int64, role Role, participantID int64, text string, modality Modality, mediaRef string) Message {
	msg := Message{
		ID:            uuid.NewString(),
		Role:          role,
		ParticipantID: participantID,
		Text:          text,
		Modality:      modality,
		MediaRef:      mediaRef,
		CreatedAt:     s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	messages := append(s.conversations[chatID], msg)
	if len(messages) > 2*s.limit {
		trimmed := make([]Message, s.limit)
		copy(trimmed, messages[len(messages)-s.limit:])
		messages = trimmed
		s.logger.WithFields(logger.Fields{
			"chat_id": chatID,
			"kept":    s.limit,
		}).Debug("Trimmed conversation history")
	}
	s.conversations[chatID] = messages

	return msg
}

// Recent returns up to limit most recent messages in chronological order.
// The returned slice is a copy; callers may not mutate stored state.
func (s *Store) Recent(chatID int64) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.conversations[chatID]
	if len(messages) > s.limit {
		messages = messages[len(messages)-s.limit:]
	}

	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}

func (s *Store) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, chatID)
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{TotalConversations: len(s.conversations)}
	for _, messages := range s.conversations {
		stats.TotalMessages += len(messages)
		for _, msg := range messages {
			if msg.Modality != ModalityText {
				stats.MediaMessages++
			}
		}
	}
	return stats
}
