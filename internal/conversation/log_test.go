package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessageLogPreservesInsertionOrder(t *testing.T) {
	l := NewMessageLog(nil)

	l.Append(RoleSystem, "m1")
	l.Append(RoleUser, "m2")
	l.Append(RoleAssistant, "m3")

	msgs := l.Messages()
	require.Len(t, msgs, 3)
	require.Equal(t, "m1", msgs[0].Text)
	require.Equal(t, "m2", msgs[1].Text)
	require.Equal(t, "m3", msgs[2].Text)
	require.False(t, msgs[1].CreatedAt.Before(msgs[0].CreatedAt))
}

func TestMessageIDsUniqueWithinOneMillisecond(t *testing.T) {
	frozen := time.Unix(1700000000, 0)
	l := NewMessageLog(func() time.Time { return frozen })

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		m := l.Append(RoleSystem, "tick")
		require.False(t, seen[m.ID], "duplicate id %s", m.ID)
		seen[m.ID] = true
	}
}

func TestMessageLogClear(t *testing.T) {
	l := NewMessageLog(nil)
	l.Append(RoleSystem, "x")
	first := l.Messages()[0].ID

	l.Clear()
	require.Zero(t, l.Len())

	// counter restarts, ids start over
	again := l.Append(RoleSystem, "x")
	require.Equal(t, firstCounterPart(first), firstCounterPart(again.ID))
}

func firstCounterPart(id string) string {
	// ids look like msg-<counter>-<millis>
	for i := 4; i < len(id); i++ {
		if id[i] == '-' {
			return id[:i]
		}
	}
	return id
}

func TestAppendAssistantCarriesRefs(t *testing.T) {
	l := NewMessageLog(nil)
	m := l.AppendAssistant("katso kuva", "", "https://x/p.jpg", "image/jpeg")
	require.Equal(t, RoleAssistant, m.Role)
	require.Equal(t, "https://x/p.jpg", m.FileURL)
	require.Equal(t, "image/jpeg", m.FileType)
}
