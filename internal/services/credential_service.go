package services

import (
	"context"
	"fmt"
	"strings"

	"assistdesk/internal/logger"
	"assistdesk/internal/storage"
	"assistdesk/internal/store"
	"assistdesk/internal/testutils"
	"assistdesk/pkg/desktypes"
)

// upstreamKeyPrefix is the expected shape of an upstream credential.
const upstreamKeyPrefix = "sk-"

// CapabilityProber validates a credential against the upstream model service
// and returns the relevant model count. ProbeService satisfies this.
type CapabilityProber interface {
	Probe(apiKey string) (int, error)
}

// DirectoryReloader reloads the assistant directory for the active project.
// AssistantService satisfies this.
type DirectoryReloader interface {
	Load() error
}

// SessionInvalidator drops every cached chat session. ChatSessionService
// satisfies this.
type SessionInvalidator interface {
	InvalidateAll()
}

// CredentialService manages named upstream-project credentials and the
// active-project pointer. Projects are persisted in SQLite and survive
// restarts. Switching the active project completes all downstream cache
// invalidation before returning, so callers never observe old-project
// assistants mixed with new-project sessions.
type CredentialService struct {
	initialized bool
	store       *store.Store
	repo        *storage.ProjectRepository
	prober      CapabilityProber

	directory DirectoryReloader
	sessions  SessionInvalidator
}

// NewCredentialService creates a CredentialService. Invalidation targets are
// attached separately because the assistant and session services are
// constructed after this one.
func NewCredentialService(st *store.Store, repo *storage.ProjectRepository, prober CapabilityProber) *CredentialService {
	return &CredentialService{
		store:  st,
		repo:   repo,
		prober: prober,
	}
}

// Name returns the service name "credential" for registration.
func (c *CredentialService) Name() string {
	return "credential"
}

// Initialize marks the service ready.
func (c *CredentialService) Initialize() error {
	c.initialized = true
	return nil
}

// AttachInvalidation wires the downstream caches invalidated on a project
// switch. Must be called before SwitchActive is used.
func (c *CredentialService) AttachInvalidation(directory DirectoryReloader, sessions SessionInvalidator) {
	c.directory = directory
	c.sessions = sessions
}

// Bootstrap loads persisted projects into the store and, when no default
// project exists yet, attempts to synthesize one from the environment
// fallback credential. A fallback credential that fails validation leaves the
// store without a default; the empty-project state is legal and consumers
// must handle it.
func (c *CredentialService) Bootstrap(fallbackKey string) error {
	if !c.initialized {
		return fmt.Errorf("credential service not initialized")
	}

	ctx := context.Background()
	projects, err := c.repo.List(ctx)
	if err != nil {
		return err
	}

	hasDefault := false
	for _, p := range projects {
		if p.IsDefault {
			hasDefault = true
			break
		}
	}

	if !hasDefault && strings.HasPrefix(fallbackKey, upstreamKeyPrefix) {
		count, probeErr := c.prober.Probe(fallbackKey)
		if probeErr != nil {
			logger.Debug("Fallback credential failed validation, no default project created", "error", probeErr)
		} else {
			def := desktypes.Project{
				ID:         desktypes.DefaultProjectID,
				Name:       "Default project",
				APIKey:     fallbackKey,
				CreatedAt:  testutils.GetCurrentTime(c.store),
				ModelCount: count,
				IsDefault:  true,
			}
			if err := c.repo.Insert(ctx, def); err != nil {
				return err
			}
			projects = append([]desktypes.Project{def}, projects...)
			logger.Info("Default project synthesized from environment credential", "model_count", count)
		}
	}

	c.store.SetProjects(projects)

	activeID, err := c.repo.ActiveID(ctx)
	if err != nil {
		return err
	}
	if _, ok := c.store.Project(activeID); !ok {
		activeID = ""
	}
	if activeID == "" {
		if def, ok := c.store.DefaultProject(); ok {
			activeID = def.ID
		} else if len(projects) > 0 {
			activeID = projects[0].ID
		}
		if activeID != "" {
			if err := c.repo.SetActiveID(ctx, activeID); err != nil {
				return err
			}
		}
	}
	c.store.SetActiveProjectID(activeID)

	logger.Debug("Credential store bootstrapped", "projects", len(projects), "active", activeID)
	return nil
}

// ListProjects returns the persisted projects, default-first.
func (c *CredentialService) ListProjects() []desktypes.Project {
	return c.store.Projects()
}

// AddProject validates and persists a new project. The credential must have
// the expected shape and pass a live capability probe before anything is
// committed.
func (c *CredentialService) AddProject(name, apiKey string) (*desktypes.Project, error) {
	if !c.initialized {
		return nil, fmt.Errorf("credential service not initialized")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &desktypes.ValidationError{Reason: "project name cannot be empty"}
	}
	if !strings.HasPrefix(apiKey, upstreamKeyPrefix) {
		return nil, &desktypes.ValidationError{Reason: fmt.Sprintf("upstream API key must start with %q", upstreamKeyPrefix)}
	}

	count, err := c.prober.Probe(apiKey)
	if err != nil {
		return nil, &desktypes.ValidationError{Reason: fmt.Sprintf("credential validation failed: %v", err)}
	}

	project := desktypes.Project{
		ID:         testutils.GenerateUUID(c.store),
		Name:       name,
		APIKey:     apiKey,
		CreatedAt:  testutils.GetCurrentTime(c.store),
		ModelCount: count,
	}

	if err := c.repo.Insert(context.Background(), project); err != nil {
		return nil, err
	}
	c.store.AddProject(project)

	logger.Info("Project added", "project", project.Name, "model_count", count)
	return &project, nil
}

// SwitchActive makes the given project active. Before returning it drops
// every cached chat session, clears the assistant directory, and reloads the
// directory for the new project, so no stale data is observable after this
// call resolves. A failed directory reload leaves the directory empty rather
// than stale; the switch itself still succeeds.
func (c *CredentialService) SwitchActive(projectID string) (*desktypes.Project, error) {
	if !c.initialized {
		return nil, fmt.Errorf("credential service not initialized")
	}

	project, ok := c.store.Project(projectID)
	if !ok {
		return nil, &desktypes.NotFoundError{Kind: "project", ID: projectID}
	}

	if err := c.repo.SetActiveID(context.Background(), projectID); err != nil {
		return nil, err
	}
	c.store.SetActiveProjectID(projectID)

	if c.sessions != nil {
		c.sessions.InvalidateAll()
	}
	c.store.ClearAssistants()
	if c.directory != nil {
		if err := c.directory.Load(); err != nil {
			logger.Warn("Directory reload after project switch failed", "project", project.Name, "error", err)
		}
	}

	logger.Info("Switched active project", "project", project.Name)
	return &project, nil
}

// DeleteProject removes a non-default project. Deleting the active project
// falls back to the default project via SwitchActive.
func (c *CredentialService) DeleteProject(projectID string) error {
	if !c.initialized {
		return fmt.Errorf("credential service not initialized")
	}

	project, ok := c.store.Project(projectID)
	if !ok {
		return &desktypes.NotFoundError{Kind: "project", ID: projectID}
	}
	if project.IsDefault {
		return &desktypes.ProtectedEntityError{Kind: "project", ID: projectID}
	}

	if err := c.repo.Delete(context.Background(), projectID); err != nil {
		return err
	}
	c.store.RemoveProject(projectID)

	if c.store.ActiveProjectID() == projectID {
		if def, hasDefault := c.store.DefaultProject(); hasDefault {
			if _, err := c.SwitchActive(def.ID); err != nil {
				return err
			}
		} else {
			if err := c.repo.SetActiveID(context.Background(), ""); err != nil {
				return err
			}
			c.store.SetActiveProjectID("")
		}
	}

	logger.Info("Project deleted", "project", project.Name)
	return nil
}
