package services

import (
	"fmt"
	"net/url"
	"time"

	"assistdesk/internal/logger"
	"assistdesk/internal/store"
	"assistdesk/pkg/desktypes"
)

// CreationWorkflow is the external collaborator that performs the multi-step
// assistant creation (file validation, optional conversion, indexing, model
// configuration). The directory only consumes its final result.
// CreationService satisfies this.
type CreationWorkflow interface {
	Create(spec desktypes.CreationSpec, filePath string) (*desktypes.Assistant, error)
}

// AssistantService is the authoritative directory of assistants for the
// active project. A load replaces the entire cached list; there is no partial
// merge.
type AssistantService struct {
	initialized bool
	store       *store.Store
	gateway     *GatewayService
	workflow    CreationWorkflow
	sessions    SessionDropper
}

// SessionDropper drops one assistant's cached session. ChatSessionService
// satisfies this.
type SessionDropper interface {
	Drop(assistantID string)
}

// NewAssistantService creates an AssistantService.
func NewAssistantService(st *store.Store, gateway *GatewayService, workflow CreationWorkflow, sessions SessionDropper) *AssistantService {
	return &AssistantService{
		store:    st,
		gateway:  gateway,
		workflow: workflow,
		sessions: sessions,
	}
}

// Name returns the service name "assistant" for registration.
func (a *AssistantService) Name() string {
	return "assistant"
}

// Initialize marks the service ready.
func (a *AssistantService) Initialize() error {
	a.initialized = true
	return nil
}

// assistantPayload is the backend's wire representation of an assistant.
// created_at arrives as an ISO string that may or may not carry a timezone.
type assistantPayload struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Theme          string  `json:"theme"`
	CreatedAt      string  `json:"created_at"`
	FileName       string  `json:"file_name"`
	FileType       string  `json:"file_type"`
	MessageCount   int     `json:"message_count"`
	TotalTokens    int     `json:"total_tokens"`
	TotalCostEuros float64 `json:"total_cost_euros"`
}

func (p assistantPayload) toAssistant() desktypes.Assistant {
	return desktypes.Assistant{
		ID:             p.ID,
		Name:           p.Name,
		Theme:          p.Theme,
		FileName:       p.FileName,
		FileType:       p.FileType,
		CreatedAt:      parseBackendTime(p.CreatedAt),
		MessageCount:   p.MessageCount,
		TotalTokens:    p.TotalTokens,
		TotalCostEuros: p.TotalCostEuros,
	}
}

// parseBackendTime accepts RFC3339 and the backend's naive ISO timestamps.
func parseBackendTime(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t
	}
	return time.Time{}
}

// Load fetches the full assistant list for the active project and replaces
// the cached directory.
func (a *AssistantService) Load() error {
	if !a.initialized {
		return fmt.Errorf("assistant service not initialized")
	}

	a.store.SetLoading("assistants", true)
	defer a.store.SetLoading("assistants", false)

	var payloads []assistantPayload
	if err := a.gateway.GetJSON("/assistants", &payloads); err != nil {
		logger.Error("Failed to load assistant directory", "error", err)
		return err
	}

	assistants := make([]desktypes.Assistant, 0, len(payloads))
	for _, p := range payloads {
		assistants = append(assistants, p.toAssistant())
	}
	a.store.SetAssistants(assistants)

	logger.Debug("Assistant directory loaded", "count", len(assistants))
	return nil
}

// Create delegates to the creation workflow. On success the returned
// assistant is appended to the directory; on failure the directory is left
// unchanged and the workflow's error is surfaced as-is.
func (a *AssistantService) Create(spec desktypes.CreationSpec, filePath string) (*desktypes.Assistant, error) {
	if !a.initialized {
		return nil, fmt.Errorf("assistant service not initialized")
	}

	a.store.SetLoading("assistants", true)
	defer a.store.SetLoading("assistants", false)

	assistant, err := a.workflow.Create(spec, filePath)
	if err != nil {
		return nil, err
	}

	a.store.AddAssistant(*assistant)
	logger.Info("Assistant created", "assistant", assistant.Name, "theme", assistant.Theme)
	return assistant, nil
}

// Delete removes an assistant remotely and from the cached directory, drops
// its chat session, and clears the selection when the deleted assistant was
// selected.
func (a *AssistantService) Delete(id string) error {
	if !a.initialized {
		return fmt.Errorf("assistant service not initialized")
	}

	if _, ok := a.store.Assistant(id); !ok {
		return &desktypes.NotFoundError{Kind: "assistant", ID: id}
	}

	if err := a.gateway.Delete("/assistants/" + url.PathEscape(id)); err != nil {
		return err
	}

	a.store.RemoveAssistant(id)
	if a.sessions != nil {
		a.sessions.Drop(id)
	}

	logger.Info("Assistant deleted", "assistant", id)
	return nil
}

// Select marks an assistant as selected for presentation collaborators.
func (a *AssistantService) Select(id string) error {
	if !a.initialized {
		return fmt.Errorf("assistant service not initialized")
	}
	if _, ok := a.store.Assistant(id); !ok {
		return &desktypes.NotFoundError{Kind: "assistant", ID: id}
	}
	a.store.SetSelectedAssistantID(id)
	return nil
}
