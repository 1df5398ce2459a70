package combat

import (
	"fmt"
	mathrand "math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default session tuning. Overridable through Options; the server wires
// these from configuration.
const (
	DefaultTurnDuration = 30 * time.Second
	DefaultFleeTimeout  = 5
)

// Options configures a Session. Zero values fall back to the defaults
// above; Oracle and NewNotifier may be nil for sessions that never resolve
// stunts or run headless (tests).
type Options struct {
	// TurnDuration is the length of the decision window.
	TurnDuration time.Duration
	// FleeTimeout is how many consecutive turns a combatant must keep
	// fleeing before escaping.
	FleeTimeout int
	// QueueCapacity bounds each combatant's action queue.
	QueueCapacity int
	// Source provides randomness for turn-order shuffling and survivor
	// picks. Nil falls back to math/rand.
	Source Source
	// Oracle resolves opposed checks for stunts.
	Oracle Oracle
	// NewNotifier builds the narration sink for a session's arena.
	NewNotifier func(arena Arena) Notifier
	// AfterTurn runs after every resolution pass that leaves combat
	// running, outside the session lock. Used for NPC re-queueing and
	// snapshot persistence.
	AfterTurn func(s *Session)
	// OnLeave runs whenever a combatant leaves the session for any reason
	// (defeat, escape, explicit removal, teardown), under the session
	// lock. It must not call back into the session.
	OnLeave func(s *Session, c Combatant)
	// OnStop runs once after the session has terminated, outside the
	// session lock. The engine uses it to drop its registry entry.
	OnStop func(s *Session)

	Logger *zap.Logger
}

// mathSource adapts the global math/rand generator to Source for sessions
// constructed without one.
type mathSource struct{}

func (mathSource) Intn(n int) int { return mathrand.Intn(n) }

// nopNotifier drops all narration.
type nopNotifier struct{}

func (nopNotifier) Broadcast(string, Combatant, bool) {}

// Session is the aggregate root of one battle: the combatant registry, the
// per-combatant action queues, the advantage ledger, flee tracking, the
// defeated record, and the turn scheduler. One session exists per arena
// with active combat; sessions for different arenas share no state.
//
// A single coarse mutex guards all mutable state and the resolution pass.
// Submissions from any number of goroutines lock the same mutex, so a
// submission that lands before resolution begins is visible in that turn;
// one landing during resolution waits and lands in the next window.
type Session struct {
	mu sync.Mutex

	arena    Arena
	turn     int
	order    []Combatant          // insertion order; display only, never resolution order
	byUID    map[string]Combatant
	queues   map[string]*Queue
	ledger   *Ledger
	fleeing  map[string]int  // UID -> turn flight began
	defeated []Combatant     // append-only
	// submitted tracks who queued an action since the last resolution, for
	// the everyone-committed early trigger.
	submitted map[string]bool

	timer   *TurnTimer
	active  bool
	stopped bool

	turnDuration time.Duration
	fleeTimeout  int
	queueCap     int
	src          Source
	oracle       Oracle
	notifier     Notifier
	afterTurn    func(s *Session)
	onLeave      func(s *Session, c Combatant)
	onStop       func(s *Session)
	logger       *zap.Logger
}

// NewSession creates an idle session for the given arena.
//
// Precondition: arena must not be nil (callers go through
// Engine.GetOrCreate, which checks). The session starts with no combatants
// and no running timer.
func NewSession(arena Arena, opts Options) *Session {
	s := &Session{
		arena:        arena,
		byUID:        make(map[string]Combatant),
		queues:       make(map[string]*Queue),
		fleeing:      make(map[string]int),
		submitted:    make(map[string]bool),
		turnDuration: opts.TurnDuration,
		fleeTimeout:  opts.FleeTimeout,
		queueCap:     opts.QueueCapacity,
		src:          opts.Source,
		oracle:       opts.Oracle,
		afterTurn:    opts.AfterTurn,
		onLeave:      opts.OnLeave,
		onStop:       opts.OnStop,
		logger:       opts.Logger,
	}
	if s.turnDuration <= 0 {
		s.turnDuration = DefaultTurnDuration
	}
	if s.fleeTimeout <= 0 {
		s.fleeTimeout = DefaultFleeTimeout
	}
	if s.queueCap < 1 {
		s.queueCap = DefaultQueueCapacity
	}
	if s.src == nil {
		s.src = mathSource{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if opts.NewNotifier != nil {
		s.notifier = opts.NewNotifier(arena)
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	s.ledger = NewLedger(func(uid string) bool {
		_, ok := s.fleeing[uid]
		return ok
	})
	return s
}

// Arena returns the battle location.
func (s *Session) Arena() Arena { return s.arena }

// ArenaID returns the battle location's identifier.
func (s *Session) ArenaID() string { return s.arena.ID() }

// Turn returns the number of completed resolution passes.
func (s *Session) Turn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// Active reports whether the scheduler is currently ticking.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// AddCombatant registers c. Idempotent: re-adding an existing member is a
// no-op.
//
// Postcondition: Returns true iff c was newly added.
func (s *Session) AddCombatant(c Combatant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	if _, ok := s.byUID[c.UID()]; ok {
		return false
	}
	s.byUID[c.UID()] = c
	s.order = append(s.order, c)
	s.queues[c.UID()] = NewQueue(s.queueCap)
	return true
}

// RemoveCombatant removes the combatant with the given UID, discarding its
// queue, ledger entries, and flee progress. Removing a non-member is a
// silent no-op.
func (s *Session) RemoveCombatant(uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(uid)
}

// removeLocked drops uid from every session structure and fires OnLeave.
func (s *Session) removeLocked(uid string) {
	c, ok := s.byUID[uid]
	if !ok {
		return
	}
	delete(s.byUID, uid)
	delete(s.queues, uid)
	delete(s.fleeing, uid)
	delete(s.submitted, uid)
	s.ledger.Drop(uid)
	for i, member := range s.order {
		if member.UID() == uid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.onLeave != nil {
		s.onLeave(s, c)
	}
}

// Combatants returns the registered combatants in insertion order.
func (s *Session) Combatants() []Combatant {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]Combatant, len(s.order))
	copy(cp, s.order)
	return cp
}

// Defeated returns the combatants removed at zero or negative health, in
// defeat order.
func (s *Session) Defeated() []Combatant {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]Combatant, len(s.defeated))
	copy(cp, s.defeated)
	return cp
}

// Start transitions the session from idle to active and arms the turn
// timer. Safe to call repeatedly; only the first call has effect. A
// stopped session cannot be restarted.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active || s.stopped {
		return
	}
	s.active = true
	s.timer = NewTurnTimer(s.turnDuration, s.tick)
	s.logger.Info("combat started",
		zap.String("arena", s.arena.ID()),
		zap.Int("combatants", len(s.order)),
	)
}

// Stop tears down the session: every combatant is removed, the timer is
// disarmed, and no further resolution can fire. Idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	wasStopped := s.stopped
	s.stopLocked()
	s.mu.Unlock()
	if !wasStopped && s.onStop != nil {
		s.onStop(s)
	}
}

func (s *Session) stopLocked() {
	if s.stopped {
		return
	}
	for _, c := range append([]Combatant(nil), s.order...) {
		s.removeLocked(c.UID())
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.active = false
	s.stopped = true
	s.logger.Info("combat stopped",
		zap.String("arena", s.arena.ID()),
		zap.Int("turns", s.turn),
	)
}

// QueueAction submits r as uid's next action. At capacity the oldest
// pending request is evicted, so with the default capacity of one a new
// submission always replaces the pending action. When every registered
// combatant has submitted since the last resolution, the turn resolves
// immediately instead of waiting out the window.
//
// Precondition: uid must be registered; r must pass Validate; any
// referenced target or recipient must be registered.
func (s *Session) QueueAction(uid string, r Request) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSessionOver
	}
	if _, ok := s.byUID[uid]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownCombatant, uid)
	}
	if err := r.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	for _, ref := range []string{r.Target, r.Recipient} {
		if ref == "" {
			continue
		}
		if _, ok := s.byUID[ref]; !ok {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrUnknownCombatant, ref)
		}
	}

	s.queues[uid].Push(r)
	s.submitted[uid] = true

	ended := false
	fired := false
	if s.active && s.allSubmittedLocked() {
		// Everyone has committed: resolve now rather than waiting out the
		// window. The pending timer fire must be cancelled first.
		s.timer.Stop()
		ended = s.resolveTurnLocked()
		fired = true
	}
	s.mu.Unlock()

	if fired {
		s.finishTurn(ended)
	}
	return nil
}

// allSubmittedLocked reports whether every registered combatant has queued
// at least one action since the last resolution.
func (s *Session) allSubmittedLocked() bool {
	for uid := range s.byUID {
		if !s.submitted[uid] {
			return false
		}
	}
	return len(s.byUID) > 0
}

// NextAction returns uid's pending action without rotating the queue, for
// status displays.
func (s *Session) NextAction(uid string) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[uid]
	if !ok {
		return Request{}, fmt.Errorf("%w: %s", ErrUnknownCombatant, uid)
	}
	return q.Peek(), nil
}

// tick is the timer-fired resolution entry point.
func (s *Session) tick() {
	s.mu.Lock()
	if s.stopped || !s.active {
		s.mu.Unlock()
		return
	}
	ended := s.resolveTurnLocked()
	s.mu.Unlock()
	s.finishTurn(ended)
}

// finishTurn runs the post-resolution callbacks outside the session lock.
func (s *Session) finishTurn(ended bool) {
	if ended {
		if s.onStop != nil {
			s.onStop(s)
		}
		return
	}
	if s.afterTurn != nil {
		s.afterTurn(s)
	}
}

// resolveTurnLocked performs one full resolution pass. Caller holds s.mu.
//
// Returns true when the battle ended during this pass (the session is then
// stopped).
func (s *Session) resolveTurnLocked() bool {
	s.turn++
	s.logger.Debug("resolving turn",
		zap.String("arena", s.arena.ID()),
		zap.Int("turn", s.turn),
	)

	// Uniform random permutation; this order exists only for this pass.
	actors := make([]Combatant, len(s.order))
	copy(actors, s.order)
	for i := len(actors) - 1; i > 0; i-- {
		j := s.src.Intn(i + 1)
		actors[i], actors[j] = actors[j], actors[i]
	}

	for _, actor := range actors {
		q, ok := s.queues[actor.UID()]
		if !ok {
			// Removed by an earlier action this pass.
			continue
		}
		s.runAction(actor, q.NextRotate())
	}

	// Defeat sweep. The on-defeat hook runs before removal so a player's
	// death save can restore positive HP; they leave the battle either way
	// and the final HP sign classifies them in the end report.
	for _, c := range actors {
		if _, present := s.byUID[c.UID()]; !present {
			continue
		}
		if c.HP() <= 0 {
			c.OnDefeat()
			s.removeLocked(c.UID())
			s.defeated = append(s.defeated, c)
			s.notifier.Broadcast(fmt.Sprintf("%s falls to the ground, defeated.", c.Name()), c, false)
		}
	}

	// Flight sweep: anyone who has kept fleeing long enough escapes.
	for uid, started := range s.fleeing {
		if s.turn-started >= s.fleeTimeout {
			c := s.byUID[uid]
			s.notifier.Broadcast(fmt.Sprintf("%s successfully flees from combat.", c.Name()), c, false)
			s.removeLocked(uid)
		}
	}

	if ended := s.checkVictoryLocked(); ended {
		return true
	}

	// Open the next decision window.
	for uid := range s.submitted {
		delete(s.submitted, uid)
	}
	s.timer.Reset(s.turnDuration, s.tick)
	return false
}

// checkVictoryLocked ends combat when one side has no members left.
// Caller holds s.mu.
func (s *Session) checkVictoryLocked() bool {
	var standing []Combatant
	if len(s.order) > 0 {
		// Any survivor works: sides partition the whole set.
		survivor := s.order[s.src.Intn(len(s.order))]
		allies, enemies := s.sidesLocked(survivor)
		if len(enemies) > 0 {
			return false
		}
		standing = append([]Combatant{survivor}, allies...)
	}

	var knockedOut, killed []Combatant
	for _, c := range s.defeated {
		if c.HP() > 0 {
			knockedOut = append(knockedOut, c)
		} else {
			killed = append(killed, c)
		}
	}

	if len(standing) > 0 {
		s.notifier.Broadcast(fmt.Sprintf("The battle is over. %s are still standing.", nameList(standing)), nil, false)
	} else {
		s.notifier.Broadcast("The battle is over. No-one stands as the victor.", nil, false)
	}
	if len(knockedOut) > 0 {
		s.notifier.Broadcast(fmt.Sprintf("%s were taken down, but will live.", nameList(knockedOut)), nil, false)
	}
	if len(killed) > 0 {
		s.notifier.Broadcast(fmt.Sprintf("%s were killed.", nameList(killed)), nil, false)
	}

	s.stopLocked()
	return true
}

// nameList joins combatant names as "A, B and C".
func nameList(cs []Combatant) string {
	switch len(cs) {
	case 0:
		return ""
	case 1:
		return cs[0].Name()
	}
	out := cs[0].Name()
	for i := 1; i < len(cs)-1; i++ {
		out += ", " + cs[i].Name()
	}
	return out + " and " + cs[len(cs)-1].Name()
}

// Sides partitions the battle from c's perspective.
//
// In a free-for-all arena every other combatant is an enemy and c has no
// allies. Otherwise combatants split by the player classifier: same-class
// others are allies, the opposite class are enemies. Neither list includes
// c itself.
func (s *Session) Sides(c Combatant) (allies, enemies []Combatant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sidesLocked(c)
}

func (s *Session) sidesLocked(c Combatant) (allies, enemies []Combatant) {
	for _, other := range s.order {
		if other.UID() == c.UID() {
			continue
		}
		switch {
		case s.arena.FreeForAll():
			enemies = append(enemies, other)
		case other.IsPlayer() == c.IsPlayer():
			allies = append(allies, other)
		default:
			enemies = append(enemies, other)
		}
	}
	return allies, enemies
}

// forceHoldLocked replaces actor's whole queue with a single Hold. This is
// not a submission: it must not mark the actor as having acted this window
// or it could fire early resolution from inside a resolution pass.
func (s *Session) forceHoldLocked(actor Combatant) {
	if q, ok := s.queues[actor.UID()]; ok {
		q.Replace(HoldRequest())
	}
}
