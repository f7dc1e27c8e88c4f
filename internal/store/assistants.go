package store

import "assistdesk/pkg/desktypes"

// Assistants returns a copy of the cached assistant directory.
func (s *Store) Assistants() []desktypes.Assistant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]desktypes.Assistant, len(s.assistants))
	copy(out, s.assistants)
	return out
}

// SetAssistants replaces the entire cached directory. There is no partial
// merge: a directory load is always a full replacement.
func (s *Store) SetAssistants(assistants []desktypes.Assistant) {
	s.mu.Lock()
	s.assistants = make([]desktypes.Assistant, len(assistants))
	copy(s.assistants, assistants)
	s.mu.Unlock()
	s.notify()
}

// AddAssistant appends a newly created assistant to the directory.
func (s *Store) AddAssistant(a desktypes.Assistant) {
	s.mu.Lock()
	s.assistants = append(s.assistants, a)
	s.mu.Unlock()
	s.notify()
}

// RemoveAssistant removes an assistant by id, clearing the selection if the
// removed assistant was selected. It reports whether the assistant was
// present.
func (s *Store) RemoveAssistant(id string) bool {
	s.mu.Lock()
	found := false
	kept := s.assistants[:0]
	for _, a := range s.assistants {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	s.assistants = kept
	if found && s.selectedAssistantID == id {
		s.selectedAssistantID = ""
	}
	s.mu.Unlock()
	if found {
		s.notify()
	}
	return found
}

// Assistant looks up an assistant by id in the cached directory.
func (s *Store) Assistant(id string) (desktypes.Assistant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assistants {
		if a.ID == id {
			return a, true
		}
	}
	return desktypes.Assistant{}, false
}

// SelectedAssistantID returns the current selection, empty if none.
func (s *Store) SelectedAssistantID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedAssistantID
}

// SetSelectedAssistantID updates the selection.
func (s *Store) SetSelectedAssistantID(id string) {
	s.mu.Lock()
	s.selectedAssistantID = id
	s.mu.Unlock()
	s.notify()
}

// ClearAssistants drops the cached directory and selection. Used on project
// switch so no stale directory entry is observable while the new project's
// list loads.
func (s *Store) ClearAssistants() {
	s.mu.Lock()
	s.assistants = nil
	s.selectedAssistantID = ""
	s.mu.Unlock()
	s.notify()
}
