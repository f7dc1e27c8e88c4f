package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"assistdesk/internal/logger"
)

// relevantModelFamily is the model-id substring the probe counts. The count
// is stored on the project as its capability count.
const relevantModelFamily = "gpt-4"

// ProbeService validates an upstream credential by listing the models it can
// reach and counting the relevant family. It talks directly to the upstream
// model service, not to the backend, so it does not go through the gateway.
type ProbeService struct {
	initialized bool
	baseURL     string
	timeout     time.Duration
}

// NewProbeService creates a probe against the given upstream base URL.
func NewProbeService(baseURL string) *ProbeService {
	return &ProbeService{
		baseURL: baseURL,
		timeout: 30 * time.Second,
	}
}

// Name returns the service name "probe" for registration.
func (p *ProbeService) Name() string {
	return "probe"
}

// Initialize marks the service ready.
func (p *ProbeService) Initialize() error {
	p.initialized = true
	logger.Debug("ProbeService initialized", "base_url", p.baseURL)
	return nil
}

// SetTimeout configures the probe timeout.
func (p *ProbeService) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// Probe lists the models reachable with the given credential and returns the
// number of relevant-family models. A non-nil error means the credential is
// invalid or the upstream service was unreachable; either way the credential
// must not be persisted.
func (p *ProbeService) Probe(apiKey string) (int, error) {
	if !p.initialized {
		return 0, fmt.Errorf("probe service not initialized")
	}

	options := []option.RequestOption{option.WithAPIKey(apiKey)}
	if p.baseURL != "" {
		options = append(options, option.WithBaseURL(p.baseURL))
	}
	client := openai.NewClient(options...)

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	count := 0
	iter := client.Models.ListAutoPaging(ctx)
	for iter.Next() {
		model := iter.Current()
		if strings.Contains(model.ID, relevantModelFamily) {
			count++
		}
	}
	if err := iter.Err(); err != nil {
		logger.Debug("Capability probe failed", "error", err)
		return 0, err
	}

	logger.Debug("Capability probe succeeded", "model_count", count)
	return count, nil
}
