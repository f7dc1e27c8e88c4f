package services

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistdesk/internal/store"
	"assistdesk/pkg/desktypes"
)

func newTestChatSessionService(t *testing.T, st *store.Store, handler http.HandlerFunc) *ChatSessionService {
	t.Helper()
	gateway := newTestGateway(t, st, handler)
	service := NewChatSessionService(st, gateway)
	require.NoError(t, service.Initialize())
	return service
}

func TestChatSessionService_GetNeverLoaded(t *testing.T) {
	service := newTestChatSessionService(t, newTestStore(), func(w http.ResponseWriter, _ *http.Request) {
		t.Error("Get must never fetch")
	})

	msgs := service.Get("a1")
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestChatSessionService_EnsureLoaded(t *testing.T) {
	st := newTestStore()
	requests := 0
	service := newTestChatSessionService(t, st, func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/assistants/a1/messages", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"role": "user", "content": "hello", "timestamp": "2025-01-01T10:00:00"},
			{"role": "assistant", "content": "hi there", "timestamp": "2025-01-01T10:00:02"}
		]`))
	})

	service.EnsureLoaded("a1")

	msgs := service.Get("a1")
	require.Len(t, msgs, 2)
	assert.Equal(t, desktypes.RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, desktypes.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "hi there", msgs[1].Content)
	assert.NotEmpty(t, msgs[0].ID, "loaded messages get local ids")

	// Each id loads at most once per activation.
	service.EnsureLoaded("a1")
	assert.Equal(t, 1, requests)
}

func TestChatSessionService_EnsureLoadedIndependentPerAssistant(t *testing.T) {
	st := newTestStore()
	service := newTestChatSessionService(t, st, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assistants/a1/messages":
			_, _ = w.Write([]byte(`[{"role": "user", "content": "for a1", "timestamp": "2025-01-01T10:00:00"}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	})

	service.EnsureLoaded("a1")
	service.EnsureLoaded("a2")

	require.Len(t, service.Get("a1"), 1)
	assert.Empty(t, service.Get("a2"))
	_, ok := st.Session("a2")
	assert.True(t, ok, "an empty fetched history is still cached")
}

func TestChatSessionService_EnsureLoadedFailureDegradesToEmpty(t *testing.T) {
	st := newTestStore()
	requests := 0
	service := newTestChatSessionService(t, st, func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	})

	service.EnsureLoaded("a1")

	msgs, ok := st.Session("a1")
	assert.True(t, ok, "a failed fetch caches an empty history")
	assert.Empty(t, msgs)
	assert.False(t, st.Loading("session:a1"))

	// No automatic re-fetch after the failure.
	service.EnsureLoaded("a1")
	assert.Equal(t, 1, requests)
}

func TestChatSessionService_EnsureLoadedSkipsUnknownRoles(t *testing.T) {
	st := newTestStore()
	service := newTestChatSessionService(t, st, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"role": "system", "content": "ignored", "timestamp": "2025-01-01T10:00:00"},
			{"role": "user", "content": "kept", "timestamp": "2025-01-01T10:00:01"}
		]`))
	})

	service.EnsureLoaded("a1")

	msgs := service.Get("a1")
	require.Len(t, msgs, 1)
	assert.Equal(t, "kept", msgs[0].Content)
}

func TestChatSessionService_Clear(t *testing.T) {
	st := newTestStore()
	st.SetSession("a1", []desktypes.ChatMessage{{ID: "m1", Content: "hello"}})

	var gotPath string
	service := newTestChatSessionService(t, st, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, service.Clear("a1"))
	assert.Equal(t, "DELETE /assistants/a1/messages", gotPath)

	msgs, ok := st.Session("a1")
	assert.True(t, ok, "cleared session stays cached as empty")
	assert.Empty(t, msgs)
}

func TestChatSessionService_ClearRemoteFailureKeepsHistory(t *testing.T) {
	st := newTestStore()
	st.SetSession("a1", []desktypes.ChatMessage{{ID: "m1", Content: "hello"}})

	service := newTestChatSessionService(t, st, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := service.Clear("a1")
	var te *desktypes.TransportError
	require.ErrorAs(t, err, &te)

	// The local cache must not pretend the server-side history is gone.
	msgs, _ := st.Session("a1")
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Content)
}

func TestChatSessionService_Drop(t *testing.T) {
	st := newTestStore()
	st.SetSession("a1", []desktypes.ChatMessage{{ID: "m1"}})

	service := newTestChatSessionService(t, st, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	service.Drop("a1")
	_, ok := st.Session("a1")
	assert.False(t, ok)
}

func TestChatSessionService_InvalidateAll(t *testing.T) {
	st := newTestStore()
	st.SetSession("a1", []desktypes.ChatMessage{{ID: "m1"}})
	st.SetSession("a2", []desktypes.ChatMessage{{ID: "m2"}})

	service := newTestChatSessionService(t, st, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	service.InvalidateAll()
	assert.Empty(t, st.SessionIDs())
}

func TestChatSessionService_ExportImportRoundTrip(t *testing.T) {
	st := newTestStore()
	st.SetAssistants([]desktypes.Assistant{{ID: "a1", Name: "Support Bot"}})
	st.SetSession("a1", []desktypes.ChatMessage{
		{ID: "m1", Role: desktypes.RoleUser, Content: "hello"},
		{ID: "m2", Role: desktypes.RoleAssistant, Content: "hi there"},
	})

	service := newTestChatSessionService(t, st, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, service.ExportSession("a1", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Support Bot")

	// Import into a different assistant replaces its cached history.
	require.NoError(t, service.ImportSession("a2", path))
	msgs := service.Get("a2")
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, desktypes.RoleAssistant, msgs[1].Role)
}

func TestChatSessionService_ExportUnloadedSession(t *testing.T) {
	service := newTestChatSessionService(t, newTestStore(), func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	err := service.ExportSession("a1", filepath.Join(t.TempDir(), "session.yaml"))
	var notFound *desktypes.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestChatSessionService_ImportMissingFile(t *testing.T) {
	service := newTestChatSessionService(t, newTestStore(), func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	err := service.ImportSession("a1", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
