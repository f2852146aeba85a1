package conversation

import (
	"fmt"
	"sync"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn. Immutable once appended.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	AudioURL  string    `json:"audioUrl,omitempty"`
	FileURL   string    `json:"fileUrl,omitempty"`
	FileType  string    `json:"fileType,omitempty"`
}

// MessageLog is a strictly append-ordered record of turns. A counter
// combined with the timestamp keeps IDs unique even for rapid-fire
// appends inside the same millisecond.
type MessageLog struct {
	mu      sync.Mutex
	counter int
	clock   func() time.Time
	msgs    []Message
}

func NewMessageLog(clock func() time.Time) *MessageLog {
	if clock == nil {
		clock = time.Now
	}
	return &MessageLog{clock: clock}
}

func (l *MessageLog) Append(role Role, text string) Message {
	return l.append(Message{Role: role, Text: text})
}

func (l *MessageLog) AppendAssistant(text, audioURL, fileURL, fileType string) Message {
	return l.append(Message{
		Role:     RoleAssistant,
		Text:     text,
		AudioURL: audioURL,
		FileURL:  fileURL,
		FileType: fileType,
	})
}

func (l *MessageLog) append(m Message) Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counter++
	now := l.clock()
	m.ID = fmt.Sprintf("msg-%d-%d", l.counter, now.UnixMilli())
	m.CreatedAt = now
	l.msgs = append(l.msgs, m)
	return m
}

// Messages returns the turns in insertion order.
func (l *MessageLog) Messages() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

func (l *MessageLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs)
}

// Clear drops the whole log and restarts the ID counter.
func (l *MessageLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = nil
	l.counter = 0
}
