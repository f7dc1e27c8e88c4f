package services

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"assistdesk/internal/logger"
	"assistdesk/internal/store"
	"assistdesk/internal/testutils"
	"assistdesk/pkg/desktypes"
)

// MessagingService orchestrates the optimistic message exchange: the user
// message is appended to the session before the round-trip so readers see it
// immediately, then either the assistant reply is appended after it or the
// optimistic entry is rolled back by id.
//
// At most one send per assistant id may be in flight at a time. The lock is
// what makes rollback well-defined: with it held, the optimistic entry is the
// only unconfirmed message in the session, so removing it by id can never
// disturb history appended by a different operation.
type MessagingService struct {
	initialized bool
	store       *store.Store
	gateway     *GatewayService

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewMessagingService creates a MessagingService.
func NewMessagingService(st *store.Store, gateway *GatewayService) *MessagingService {
	return &MessagingService{
		store:    st,
		gateway:  gateway,
		inFlight: make(map[string]struct{}),
	}
}

// Name returns the service name "messaging" for registration.
func (m *MessagingService) Name() string {
	return "messaging"
}

// Initialize marks the service ready.
func (m *MessagingService) Initialize() error {
	m.initialized = true
	return nil
}

// sendRequest and sendResponse are the wire shapes of the message round-trip.
type sendRequest struct {
	Message string `json:"message"`
}

type sendResponse struct {
	Response string `json:"response"`
}

// InFlight reports whether a send for the given assistant id is currently in
// progress.
func (m *MessagingService) InFlight(assistantID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inFlight[assistantID]
	return ok
}

// acquire claims the in-flight slot for an assistant id.
func (m *MessagingService) acquire(assistantID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.inFlight[assistantID]; ok {
		return false
	}
	m.inFlight[assistantID] = struct{}{}
	return true
}

func (m *MessagingService) release(assistantID string) {
	m.mu.Lock()
	delete(m.inFlight, assistantID)
	m.mu.Unlock()
}

// Send performs one message round-trip for an assistant. On success the
// returned message is the assistant's reply, already appended to the session
// directly after its paired user message. On failure the optimistic user
// entry has been removed and the session is otherwise unchanged. No retry is
// performed; the caller may resubmit.
func (m *MessagingService) Send(assistantID, text string) (*desktypes.ChatMessage, error) {
	if !m.initialized {
		return nil, fmt.Errorf("messaging service not initialized")
	}

	if strings.TrimSpace(text) == "" {
		return nil, &desktypes.ValidationError{Reason: "message cannot be empty"}
	}

	if !m.acquire(assistantID) {
		return nil, &desktypes.SendError{Reason: fmt.Sprintf("a send to assistant %q is already in flight", assistantID)}
	}
	defer m.release(assistantID)

	optimistic := desktypes.ChatMessage{
		ID:        testutils.GenerateUUID(m.store),
		Role:      desktypes.RoleUser,
		Content:   text,
		Timestamp: testutils.GetCurrentTime(m.store),
	}
	m.store.AppendMessage(assistantID, optimistic)

	var resp sendResponse
	err := m.gateway.PostJSON(
		"/assistants/"+url.PathEscape(assistantID)+"/message",
		sendRequest{Message: text},
		&resp,
	)
	if err != nil {
		// Roll back exactly the entry this call appended, by id.
		m.store.RemoveMessage(assistantID, optimistic.ID)
		logger.Warn("Send failed, optimistic message rolled back", "assistant", assistantID, "error", err)
		return nil, &desktypes.SendError{Reason: err.Error(), Err: err}
	}

	reply := desktypes.ChatMessage{
		ID:        testutils.GenerateUUID(m.store),
		Role:      desktypes.RoleAssistant,
		Content:   resp.Response,
		Timestamp: testutils.GetCurrentTime(m.store),
	}
	m.store.AppendMessage(assistantID, reply)

	logger.Debug("Message exchange completed", "assistant", assistantID)
	return &reply, nil
}
