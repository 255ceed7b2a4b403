// Package roster owns the in-memory character list and the single selection.
//
// The manager is a pure state machine: network calls live in the
// orchestrator's commands, and only server-confirmed results are folded in
// here. A character never appears in the roster before the server has
// assigned its id, and never leaves it before the server has confirmed the
// delete. All methods run on the program's update loop, so no locking is
// needed; the discipline is the component boundary.
package roster

import (
	"github.com/parley-chat/parley/internal/api"
	perrors "github.com/parley-chat/parley/internal/errors"
	"github.com/parley-chat/parley/internal/logger"
)

// Manager holds the roster and selection.
type Manager struct {
	characters []api.Character
	selectedID string
}

// New creates an empty roster manager.
func New() *Manager {
	return &Manager{}
}

// Characters returns a copy of the roster in server order.
func (m *Manager) Characters() []api.Character {
	out := make([]api.Character, len(m.characters))
	copy(out, m.characters)
	return out
}

// Len returns the roster size.
func (m *Manager) Len() int {
	return len(m.characters)
}

// Get returns the character with the given id, or nil.
func (m *Manager) Get(id string) *api.Character {
	for i := range m.characters {
		if m.characters[i].ID == id {
			c := m.characters[i]
			return &c
		}
	}
	return nil
}

// SelectedID returns the selected character's id, or empty string.
func (m *Manager) SelectedID() string {
	return m.selectedID
}

// Selected returns the selected character, or nil when none is selected.
func (m *Manager) Selected() *api.Character {
	if m.selectedID == "" {
		return nil
	}
	return m.Get(m.selectedID)
}

// ApplyList replaces the roster wholesale with a fresh server list. An
// existing valid selection is preserved; otherwise the first entry is
// selected, or the selection cleared when the list is empty. Returns true
// if the selection changed.
func (m *Manager) ApplyList(characters []api.Character) bool {
	m.characters = make([]api.Character, len(characters))
	copy(m.characters, characters)

	if m.selectedID != "" && m.Get(m.selectedID) != nil {
		return false
	}

	prev := m.selectedID
	if len(m.characters) > 0 {
		m.selectedID = m.characters[0].ID
	} else {
		m.selectedID = ""
	}
	logger.Debug("Roster: loaded %d characters, selection %q -> %q", len(characters), prev, m.selectedID)
	return m.selectedID != prev
}

// ApplyCreated appends a server-confirmed character and selects it.
// Returns true if the selection changed.
func (m *Manager) ApplyCreated(c api.Character) bool {
	m.characters = append(m.characters, c)
	prev := m.selectedID
	m.selectedID = c.ID
	logger.Debug("Roster: created character %s (%s)", c.Name, c.ID)
	return m.selectedID != prev
}

// ApplyRemoved removes a character after the server confirmed the delete.
// If the removed character was selected, the selection falls back to the
// first remaining character, or to none when the roster is empty. Returns
// true if the selection changed.
func (m *Manager) ApplyRemoved(id string) bool {
	idx := -1
	for i := range m.characters {
		if m.characters[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	m.characters = append(m.characters[:idx], m.characters[idx+1:]...)

	if m.selectedID != id {
		return false
	}
	if len(m.characters) > 0 {
		m.selectedID = m.characters[0].ID
	} else {
		m.selectedID = ""
	}
	logger.Debug("Roster: removed %s, selection now %q", id, m.selectedID)
	return true
}

// Select sets the selection to a character currently in the roster. Pure
// local operation. Returns true if the selection changed.
func (m *Manager) Select(id string) (bool, error) {
	if m.Get(id) == nil {
		return false, perrors.CharacterNotFound(id)
	}
	if m.selectedID == id {
		return false, nil
	}
	m.selectedID = id
	return true, nil
}
