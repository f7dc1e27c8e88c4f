package store

import "assistdesk/pkg/desktypes"

// Session returns a copy of the cached history for an assistant id. The
// second return reports whether an entry exists at all; a loaded-but-empty
// history and a never-loaded one are distinct states.
func (s *Store) Session(assistantID string) ([]desktypes.ChatMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs, ok := s.sessions[assistantID]
	if !ok {
		return nil, false
	}
	out := make([]desktypes.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, true
}

// SessionLen returns the cached history length for an assistant id, zero if
// never loaded.
func (s *Store) SessionLen(assistantID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[assistantID])
}

// SetSession replaces the cached history for an assistant id.
func (s *Store) SetSession(assistantID string, msgs []desktypes.ChatMessage) {
	s.mu.Lock()
	stored := make([]desktypes.ChatMessage, len(msgs))
	copy(stored, msgs)
	s.sessions[assistantID] = stored
	s.mu.Unlock()
	s.notify()
}

// AppendMessage appends one message to an assistant's history, creating the
// session entry if it does not exist yet.
func (s *Store) AppendMessage(assistantID string, msg desktypes.ChatMessage) {
	s.mu.Lock()
	s.sessions[assistantID] = append(s.sessions[assistantID], msg)
	s.mu.Unlock()
	s.notify()
}

// RemoveMessage removes the message with the given id from an assistant's
// history. Removal is by message identity, not position, so a rollback never
// touches an entry appended by another operation. It reports whether the
// message was found.
func (s *Store) RemoveMessage(assistantID, messageID string) bool {
	s.mu.Lock()
	msgs, ok := s.sessions[assistantID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	found := false
	kept := msgs[:0]
	for _, m := range msgs {
		if m.ID == messageID {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	s.sessions[assistantID] = kept
	s.mu.Unlock()
	if found {
		s.notify()
	}
	return found
}

// DropSession removes the cached entry for an assistant id entirely, so the
// next access re-fetches.
func (s *Store) DropSession(assistantID string) {
	s.mu.Lock()
	delete(s.sessions, assistantID)
	s.mu.Unlock()
	s.notify()
}

// InvalidateSessions drops every cached session. Called on project switch.
func (s *Store) InvalidateSessions() {
	s.mu.Lock()
	s.sessions = make(map[string][]desktypes.ChatMessage)
	s.mu.Unlock()
	s.notify()
}

// SessionIDs returns the assistant ids that currently have a cached session.
func (s *Store) SessionIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
