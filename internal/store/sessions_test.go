package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistdesk/pkg/desktypes"
)

func TestStore_SessionDistinguishesEmptyFromUnloaded(t *testing.T) {
	s := New()

	_, ok := s.Session("a1")
	assert.False(t, ok, "never-loaded session must not report as cached")

	s.SetSession("a1", nil)
	msgs, ok := s.Session("a1")
	assert.True(t, ok, "loaded-but-empty session must report as cached")
	assert.Empty(t, msgs)
}

func TestStore_AppendMessage(t *testing.T) {
	s := New()
	s.AppendMessage("a1", desktypes.ChatMessage{ID: "m1", Role: desktypes.RoleUser, Content: "hello"})
	s.AppendMessage("a1", desktypes.ChatMessage{ID: "m2", Role: desktypes.RoleAssistant, Content: "hi there"})

	msgs, ok := s.Session("a1")
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "hi there", msgs[1].Content)
	assert.Equal(t, 2, s.SessionLen("a1"))
}

func TestStore_RemoveMessageByIdentity(t *testing.T) {
	s := New()
	s.AppendMessage("a1", desktypes.ChatMessage{ID: "m1", Content: "first"})
	s.AppendMessage("a1", desktypes.ChatMessage{ID: "m2", Content: "second"})
	s.AppendMessage("a1", desktypes.ChatMessage{ID: "m3", Content: "third"})

	assert.True(t, s.RemoveMessage("a1", "m2"))

	msgs, _ := s.Session("a1")
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m3", msgs[1].ID)

	assert.False(t, s.RemoveMessage("a1", "m2"))
	assert.False(t, s.RemoveMessage("unknown", "m1"))
}

func TestStore_SessionReturnsCopy(t *testing.T) {
	s := New()
	s.SetSession("a1", []desktypes.ChatMessage{{ID: "m1", Content: "original"}})

	msgs, _ := s.Session("a1")
	msgs[0].Content = "mutated"

	fresh, _ := s.Session("a1")
	assert.Equal(t, "original", fresh[0].Content)
}

func TestStore_DropSession(t *testing.T) {
	s := New()
	s.SetSession("a1", []desktypes.ChatMessage{{ID: "m1"}})

	s.DropSession("a1")
	_, ok := s.Session("a1")
	assert.False(t, ok, "dropped session must re-fetch on next access")
}

func TestStore_InvalidateSessions(t *testing.T) {
	s := New()
	s.SetSession("a1", []desktypes.ChatMessage{{ID: "m1"}})
	s.SetSession("a2", nil)
	require.Len(t, s.SessionIDs(), 2)

	s.InvalidateSessions()
	assert.Empty(t, s.SessionIDs())
	_, ok := s.Session("a1")
	assert.False(t, ok)
}
