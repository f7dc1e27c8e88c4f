package services

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"assistdesk/internal/logger"
	"assistdesk/internal/store"
	"assistdesk/internal/testutils"
	"assistdesk/pkg/desktypes"
)

// ChatSessionService caches per-assistant message histories. Sessions are
// lazily loaded, at most once per assistant id per project activation, and
// independently cached per id. A failed history fetch degrades to an empty
// history rather than an error: conversation continuity is not
// safety-critical and an error banner would be worse than a blank transcript.
type ChatSessionService struct {
	initialized bool
	store       *store.Store
	gateway     *GatewayService
}

// NewChatSessionService creates a ChatSessionService.
func NewChatSessionService(st *store.Store, gateway *GatewayService) *ChatSessionService {
	return &ChatSessionService{
		store:   st,
		gateway: gateway,
	}
}

// Name returns the service name "chat_session" for registration.
func (c *ChatSessionService) Name() string {
	return "chat_session"
}

// Initialize marks the service ready.
func (c *ChatSessionService) Initialize() error {
	c.initialized = true
	return nil
}

// messagePayload is the backend's wire representation of a chat message.
type messagePayload struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Get returns the cached history for an assistant id, or an empty sequence if
// the session was never loaded. Get never blocks and never fetches.
func (c *ChatSessionService) Get(assistantID string) []desktypes.ChatMessage {
	msgs, ok := c.store.Session(assistantID)
	if !ok {
		return []desktypes.ChatMessage{}
	}
	return msgs
}

// EnsureLoaded fetches the history for an assistant id unless a cached entry
// already exists. On transport failure it caches an empty history so the id
// resolves; a re-fetch happens only after an explicit Clear or a project
// switch.
func (c *ChatSessionService) EnsureLoaded(assistantID string) {
	if !c.initialized {
		return
	}
	if _, ok := c.store.Session(assistantID); ok {
		return
	}

	flag := "session:" + assistantID
	c.store.SetLoading(flag, true)
	defer c.store.SetLoading(flag, false)

	var payloads []messagePayload
	err := c.gateway.GetJSON("/assistants/"+url.PathEscape(assistantID)+"/messages", &payloads)
	if err != nil {
		logger.Debug("History fetch failed, caching empty session", "assistant", assistantID, "error", err)
		c.store.SetSession(assistantID, nil)
		return
	}

	msgs := make([]desktypes.ChatMessage, 0, len(payloads))
	for _, p := range payloads {
		role, err := desktypes.ParseRole(p.Role)
		if err != nil {
			logger.Warn("Skipping message with unknown role", "assistant", assistantID, "role", p.Role)
			continue
		}
		msgs = append(msgs, desktypes.ChatMessage{
			ID:        testutils.GenerateUUID(c.store),
			Role:      role,
			Content:   p.Content,
			Timestamp: parseBackendTime(p.Timestamp),
		})
	}
	c.store.SetSession(assistantID, msgs)
	logger.Debug("Session loaded", "assistant", assistantID, "messages", len(msgs))
}

// Clear deletes an assistant's history remotely, then resets the local cache
// to empty. The local reset happens only after remote success so a failed
// remote delete never hides history that still exists server-side.
func (c *ChatSessionService) Clear(assistantID string) error {
	if !c.initialized {
		return fmt.Errorf("chat session service not initialized")
	}

	if err := c.gateway.Delete("/assistants/" + url.PathEscape(assistantID) + "/messages"); err != nil {
		return err
	}

	c.store.SetSession(assistantID, nil)
	logger.Info("Chat history cleared", "assistant", assistantID)
	return nil
}

// Drop removes one assistant's cached session without touching the backend.
// Used when the assistant itself is deleted.
func (c *ChatSessionService) Drop(assistantID string) {
	c.store.DropSession(assistantID)
}

// InvalidateAll drops every cached session. The credential store calls this
// on project switch.
func (c *ChatSessionService) InvalidateAll() {
	c.store.InvalidateSessions()
	logger.Debug("All chat sessions invalidated")
}

// ExportSession writes an assistant's cached history to a YAML snapshot file.
func (c *ChatSessionService) ExportSession(assistantID, path string) error {
	if !c.initialized {
		return fmt.Errorf("chat session service not initialized")
	}

	msgs, ok := c.store.Session(assistantID)
	if !ok {
		return &desktypes.NotFoundError{Kind: "session", ID: assistantID}
	}

	snapshot := desktypes.SessionSnapshot{
		AssistantID: assistantID,
		ExportedAt:  testutils.GetCurrentTime(c.store),
		Messages:    msgs,
	}
	if a, found := c.store.Assistant(assistantID); found {
		snapshot.AssistantName = a.Name
	}

	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	logger.Info("Session exported", "assistant", assistantID, "path", path, "messages", len(msgs))
	return nil
}

// ImportSession replaces an assistant's cached history with the contents of a
// YAML snapshot file. The import is local only; it does not write through to
// the backend.
func (c *ChatSessionService) ImportSession(assistantID, path string) error {
	if !c.initialized {
		return fmt.Errorf("chat session service not initialized")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var snapshot desktypes.SessionSnapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("failed to decode session file: %w", err)
	}

	c.store.SetSession(assistantID, snapshot.Messages)
	logger.Info("Session imported", "assistant", assistantID, "messages", len(snapshot.Messages))
	return nil
}
