package store

import "assistdesk/pkg/desktypes"

// Projects returns a copy of the project list.
func (s *Store) Projects() []desktypes.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]desktypes.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// SetProjects replaces the project list.
func (s *Store) SetProjects(projects []desktypes.Project) {
	s.mu.Lock()
	s.projects = make([]desktypes.Project, len(projects))
	copy(s.projects, projects)
	s.mu.Unlock()
	s.notify()
}

// AddProject appends a project to the list.
func (s *Store) AddProject(p desktypes.Project) {
	s.mu.Lock()
	s.projects = append(s.projects, p)
	s.mu.Unlock()
	s.notify()
}

// RemoveProject removes a project by id. It reports whether the project was
// present.
func (s *Store) RemoveProject(id string) bool {
	s.mu.Lock()
	found := false
	kept := s.projects[:0]
	for _, p := range s.projects {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	s.projects = kept
	s.mu.Unlock()
	if found {
		s.notify()
	}
	return found
}

// Project looks up a project by id.
func (s *Store) Project(id string) (desktypes.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return desktypes.Project{}, false
}

// DefaultProject returns the project marked as default, if any.
func (s *Store) DefaultProject() (desktypes.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.IsDefault {
			return p, true
		}
	}
	return desktypes.Project{}, false
}

// ActiveProject returns the active project, if one is set.
func (s *Store) ActiveProject() (desktypes.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeProjectID == "" {
		return desktypes.Project{}, false
	}
	for _, p := range s.projects {
		if p.ID == s.activeProjectID {
			return p, true
		}
	}
	return desktypes.Project{}, false
}

// ActiveProjectID returns the active project id, empty if none.
func (s *Store) ActiveProjectID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeProjectID
}

// SetActiveProjectID updates the active project pointer.
func (s *Store) SetActiveProjectID(id string) {
	s.mu.Lock()
	s.activeProjectID = id
	s.mu.Unlock()
	s.notify()
}
