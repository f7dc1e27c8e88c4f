package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"assistdesk/internal/logger"
	"assistdesk/internal/store"
	"assistdesk/internal/testutils"
	"assistdesk/pkg/desktypes"
)

// CreationService drives the assistant creation workflow: local file
// validation, then a multipart upload to the backend, which performs the
// conversion, indexing, and model configuration steps server-side. The whole
// workflow can take multiple seconds; the directory only consumes the final
// result.
type CreationService struct {
	initialized bool
	store       *store.Store
	gateway     *GatewayService
	logger      *log.Logger
}

// NewCreationService creates a CreationService.
func NewCreationService(st *store.Store, gateway *GatewayService) *CreationService {
	return &CreationService{
		store:   st,
		gateway: gateway,
		logger:  logger.NewStyledLogger("CreationService"),
	}
}

// Name returns the service name "creation" for registration.
func (c *CreationService) Name() string {
	return "creation"
}

// Initialize marks the service ready.
func (c *CreationService) Initialize() error {
	c.initialized = true
	return nil
}

// fileTypeFor maps an accepted source file extension to the backend's file
// type label. Only structured text formats are accepted; binary formats are
// rejected locally before any upload.
func fileTypeFor(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "JSON", true
	case ".jsonl":
		return "JSONL", true
	case ".txt":
		return "TXT", true
	default:
		return "", false
	}
}

// creationResponse is the backend's reply to a successful creation.
type creationResponse struct {
	Message     string `json:"message"`
	AssistantID string `json:"assistant_id"`
}

// Create validates the source file, uploads it with the assistant spec, and
// returns the created assistant. All failures surface as *CreationError with
// the backend's detail message when one is available.
func (c *CreationService) Create(spec desktypes.CreationSpec, filePath string) (*desktypes.Assistant, error) {
	if !c.initialized {
		return nil, fmt.Errorf("creation service not initialized")
	}

	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, &desktypes.CreationError{Detail: "assistant name cannot be empty"}
	}

	fileType, ok := fileTypeFor(filePath)
	if !ok {
		return nil, &desktypes.CreationError{Detail: "unsupported file type: use JSON, JSONL or TXT"}
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &desktypes.CreationError{Detail: fmt.Sprintf("cannot read source file: %v", err), Err: err}
	}

	c.logger.Info("Creating assistant", "assistant", name, "theme", spec.Theme, "file", filepath.Base(filePath))

	fields := map[string]string{
		"name":  name,
		"theme": spec.Theme,
	}
	var resp creationResponse
	if err := c.gateway.PostMultipart("/assistants", fields, "file", filepath.Base(filePath), content, &resp); err != nil {
		detail := fmt.Sprintf("assistant creation failed: %v", err)
		var te *desktypes.TransportError
		if errors.As(err, &te) && te.Detail != "" {
			detail = te.Detail
		}
		return nil, &desktypes.CreationError{Detail: detail, Err: err}
	}

	assistant := &desktypes.Assistant{
		ID:        resp.AssistantID,
		Name:      name,
		Theme:     spec.Theme,
		FileName:  filepath.Base(filePath),
		FileType:  fileType,
		CreatedAt: testutils.GetCurrentTime(c.store),
	}
	return assistant, nil
}
