package combat

import (
	"fmt"
	"strings"

	"github.com/emberfell/skirmish/internal/game/ruleset"
)

// ReportEntry is one combatant's line in a battle report.
type ReportEntry struct {
	Name string
	// Hurt is the visible health state ("unharmed", "heavily wounded"...).
	Hurt string
	// NextAction is the keyword of the pending queued action.
	NextAction string
}

// Report is a structured battle overview from one combatant's perspective:
// the viewer's side first (viewer at the top), then the opposing side. The
// telnet layer renders it; String provides a plain fallback.
type Report struct {
	Turn    int
	Allies  []ReportEntry // includes the viewer, first
	Enemies []ReportEntry
}

// Report builds the battle summary for viewer.
//
// Precondition: viewer should be registered; an unregistered viewer sees
// everyone as an enemy or ally per the usual side rules with an empty ally
// column.
func (s *Session) Report(viewer Combatant) Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	allies, enemies := s.sidesLocked(viewer)
	rep := Report{Turn: s.turn}
	if _, ok := s.byUID[viewer.UID()]; ok {
		rep.Allies = append(rep.Allies, s.entryLocked(viewer))
	}
	for _, c := range allies {
		rep.Allies = append(rep.Allies, s.entryLocked(c))
	}
	for _, c := range enemies {
		rep.Enemies = append(rep.Enemies, s.entryLocked(c))
	}
	return rep
}

func (s *Session) entryLocked(c Combatant) ReportEntry {
	next := HoldRequest()
	if q, ok := s.queues[c.UID()]; ok {
		next = q.Peek()
	}
	return ReportEntry{
		Name:       c.Name(),
		Hurt:       ruleset.HurtDescription(c.HP(), c.MaxHP()),
		NextAction: next.Kind.String(),
	}
}

// String renders the report as two columns joined by "vs", one pair of
// lines per row.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Turn %d\n", r.Turn)
	rows := len(r.Allies)
	if len(r.Enemies) > rows {
		rows = len(r.Enemies)
	}
	for i := 0; i < rows; i++ {
		left, right := "", ""
		if i < len(r.Allies) {
			left = r.Allies[i].Line()
		}
		if i < len(r.Enemies) {
			right = r.Enemies[i].Line()
		}
		mid := "  "
		if i == rows/2 {
			mid = "vs"
		}
		fmt.Fprintf(&b, "%-34s %s %s\n", left, mid, right)
	}
	return b.String()
}

// Line formats the entry as "Name (hurt) [next]".
func (e ReportEntry) Line() string {
	return fmt.Sprintf("%s (%s) [%s]", e.Name, e.Hurt, e.NextAction)
}
