package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/emberfell/skirmish/internal/game/character"
)

// PlayerSession tracks a connected player's state.
type PlayerSession struct {
	// UID is the unique player identifier (the character UID).
	UID string
	// Account is the account username (for logging).
	Account string
	// Character is the live character model. Combat mutates it directly.
	Character *character.Character
	// ArenaID is the arena the player currently occupies.
	ArenaID string
	// Feed carries outbound lines to the player's connection.
	Feed *Feed
}

// Name returns the character display name shown in-game.
func (s *PlayerSession) Name() string {
	return s.Character.Name()
}

// Manager tracks all active player sessions and arena occupancy.
// All methods are safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	players   map[string]*PlayerSession  // uid -> session
	arenaSets map[string]map[string]bool // arenaID -> set of UIDs
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{
		players:   make(map[string]*PlayerSession),
		arenaSets: make(map[string]map[string]bool),
	}
}

// AddPlayer registers a new player session in the given arena.
//
// Precondition: account and arenaID must be non-empty; char must be non-nil.
// Postcondition: Returns the created PlayerSession with an open Feed, or
// an error if the character UID is already connected.
func (m *Manager) AddPlayer(account string, char *character.Character, arenaID string) (*PlayerSession, error) {
	if char == nil {
		return nil, fmt.Errorf("character must not be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	uid := char.UID()
	if _, exists := m.players[uid]; exists {
		return nil, fmt.Errorf("player %q already connected", uid)
	}

	sess := &PlayerSession{
		UID:       uid,
		Account:   account,
		Character: char,
		ArenaID:   arenaID,
		Feed:      NewFeed(uid, 64),
	}
	char.Location = arenaID

	m.players[uid] = sess
	if m.arenaSets[arenaID] == nil {
		m.arenaSets[arenaID] = make(map[string]bool)
	}
	m.arenaSets[arenaID][uid] = true

	return sess, nil
}

// RemovePlayer removes a player session and cleans up arena occupancy.
//
// Postcondition: The player is removed from all tracking and their Feed
// is closed. Returns an error if not found.
func (m *Manager) RemovePlayer(uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.players[uid]
	if !exists {
		return fmt.Errorf("player %q not found", uid)
	}

	if set, ok := m.arenaSets[sess.ArenaID]; ok {
		delete(set, uid)
		if len(set) == 0 {
			delete(m.arenaSets, sess.ArenaID)
		}
	}

	_ = sess.Feed.Close()

	delete(m.players, uid)
	return nil
}

// MovePlayer moves a player from their current arena to a new one.
//
// Postcondition: Returns the old arena ID, or an error if the player is
// not found.
func (m *Manager) MovePlayer(uid, newArenaID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.players[uid]
	if !exists {
		return "", fmt.Errorf("player %q not found", uid)
	}

	oldArenaID := sess.ArenaID

	if set, ok := m.arenaSets[oldArenaID]; ok {
		delete(set, uid)
		if len(set) == 0 {
			delete(m.arenaSets, oldArenaID)
		}
	}

	sess.ArenaID = newArenaID
	sess.Character.Location = newArenaID
	if m.arenaSets[newArenaID] == nil {
		m.arenaSets[newArenaID] = make(map[string]bool)
	}
	m.arenaSets[newArenaID][uid] = true

	return oldArenaID, nil
}

// PlayersInArena returns the sessions of all players in the given arena.
//
// Postcondition: Returns a slice of sessions (may be empty).
func (m *Manager) PlayersInArena(arenaID string) []*PlayerSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uids, ok := m.arenaSets[arenaID]
	if !ok {
		return nil
	}

	sessions := make([]*PlayerSession, 0, len(uids))
	for uid := range uids {
		if sess, ok := m.players[uid]; ok {
			sessions = append(sessions, sess)
		}
	}
	return sessions
}

// NamesInArena returns the character display names of all players in the
// given arena.
func (m *Manager) NamesInArena(arenaID string) []string {
	sessions := m.PlayersInArena(arenaID)
	names := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		names = append(names, sess.Name())
	}
	return names
}

// GetPlayer returns the session for the given UID.
//
// Postcondition: Returns (session, true) if found, or (nil, false) otherwise.
func (m *Manager) GetPlayer(uid string) (*PlayerSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.players[uid]
	return sess, ok
}

// FindInArena returns the first player in the arena whose character name
// matches the given prefix, case-insensitively.
//
// Postcondition: Returns (session, true) on a match, or (nil, false).
func (m *Manager) FindInArena(arenaID, namePrefix string) (*PlayerSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := strings.ToLower(namePrefix)
	for uid := range m.arenaSets[arenaID] {
		sess, ok := m.players[uid]
		if !ok {
			continue
		}
		if strings.HasPrefix(strings.ToLower(sess.Name()), prefix) {
			return sess, true
		}
	}
	return nil, false
}

// PlayerCount returns the total number of connected players.
func (m *Manager) PlayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}
