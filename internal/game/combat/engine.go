package combat

import (
	"sync"

	"go.uber.org/zap"
)

// Engine is the process-wide registry of combat sessions, one per arena.
// It hands out the existing session for an arena or lazily creates one,
// and drops its entry when a session terminates so a later battle in the
// same arena gets a fresh session.
type Engine struct {
	mu       sync.Mutex
	sessions map[string]*Session

	opts   Options
	logger *zap.Logger
}

// NewEngine creates an engine. Sessions it creates inherit opts, with the
// engine chaining its own registry cleanup onto opts.OnStop.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		sessions: make(map[string]*Session),
		opts:     opts,
		logger:   logger,
	}
}

// GetOrCreate returns the session for arena, creating an idle one when none
// exists.
//
// Precondition: arena must not be nil and must allow combat.
func (e *Engine) GetOrCreate(arena Arena) (*Session, error) {
	if arena == nil {
		return nil, ErrNoArena
	}
	if !arena.CombatAllowed() {
		return nil, ErrCombatNotAllowed
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[arena.ID()]; ok {
		return s, nil
	}

	opts := e.opts
	userOnStop := opts.OnStop
	opts.OnStop = func(s *Session) {
		e.release(s.ArenaID())
		if userOnStop != nil {
			userOnStop(s)
		}
	}
	s := NewSession(arena, opts)
	e.sessions[arena.ID()] = s
	e.logger.Debug("combat session created", zap.String("arena", arena.ID()))
	return s, nil
}

// Get returns the session for the given arena ID, or nil when no battle is
// in progress there.
func (e *Engine) Get(arenaID string) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[arenaID]
}

// Sessions returns every live session. The slice is a copy.
func (e *Engine) Sessions() []*Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Session, 0, len(e.sessions))
	for _, s := range e.sessions {
		out = append(out, s)
	}
	return out
}

// Release stops the session for the given arena ID, if any. Stopping fires
// the session's OnStop chain, which removes the registry entry.
func (e *Engine) Release(arenaID string) {
	e.mu.Lock()
	s := e.sessions[arenaID]
	e.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

// StopAll terminates every live session. Called on server shutdown.
func (e *Engine) StopAll() {
	for _, s := range e.Sessions() {
		s.Stop()
	}
}

func (e *Engine) release(arenaID string) {
	e.mu.Lock()
	delete(e.sessions, arenaID)
	e.mu.Unlock()
	e.logger.Debug("combat session released", zap.String("arena", arenaID))
}
