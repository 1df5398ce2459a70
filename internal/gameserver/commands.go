package gameserver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emberfell/skirmish/internal/frontend/telnet"
	"github.com/emberfell/skirmish/internal/game/command"
	"github.com/emberfell/skirmish/internal/game/ruleset"
	"github.com/emberfell/skirmish/internal/game/session"
)

// dispatch executes one resolved command and returns the text for the
// issuing player. Quit is handled by the session loop, not here.
func (s *Server) dispatch(ps *session.PlayerSession, cmd *command.Command, parsed command.ParseResult) (string, error) {
	switch cmd.Handler {
	case command.HandlerMove:
		direction := cmd.Name
		if direction == "go" {
			if len(parsed.Args) == 0 {
				return "", fmt.Errorf("go where?")
			}
			direction = strings.ToLower(parsed.Args[0])
		}
		return s.move(ps, direction)

	case command.HandlerLook:
		return s.renderArena(ps), nil

	case command.HandlerExits:
		arena, ok := s.world.Arena(ps.ArenaID)
		if !ok {
			return "", fmt.Errorf("you are nowhere")
		}
		return renderExits(arena.Exits()), nil

	case command.HandlerSay:
		if parsed.RawArgs == "" {
			return "", fmt.Errorf("say what?")
		}
		s.sayToArena(ps, telnet.Colorf(telnet.Cyan, "%s says, %q", ps.Name(), parsed.RawArgs), false)
		return telnet.Colorf(telnet.Cyan, "You say, %q", parsed.RawArgs), nil

	case command.HandlerWho:
		return s.renderWho(), nil

	case command.HandlerStatus:
		return s.renderStatus(ps), nil

	case command.HandlerHelp:
		return renderHelp(command.DefaultRegistry()), nil

	case command.HandlerAttack, command.HandlerStunt, command.HandlerBoost,
		command.HandlerUse, command.HandlerWield, command.HandlerFlee, command.HandlerHold:
		intent, err := command.ParseIntent(cmd.Handler, parsed.Args)
		if err != nil {
			return "", err
		}
		if err := s.SubmitIntent(ps, intent); err != nil {
			return "", err
		}
		return telnet.Colorize(telnet.Dim, "Your action is committed for this turn."), nil

	default:
		return "", fmt.Errorf("nothing happens")
	}
}

// move walks the player through an exit. Forbidden while the player is in
// a running battle; fleeing is the only way out.
func (s *Server) move(ps *session.PlayerSession, direction string) (string, error) {
	if battle := s.engine.Get(ps.ArenaID); battle != nil && inBattle(battle, ps.UID) {
		return "", fmt.Errorf("you are in battle; flee before you can leave")
	}
	dest, err := s.world.Navigate(ps.ArenaID, direction)
	if err != nil {
		return "", fmt.Errorf("you cannot go %s", direction)
	}
	s.sayToArena(ps, fmt.Sprintf("%s leaves %s.", ps.Name(), direction), false)
	if _, err := s.players.MovePlayer(ps.UID, dest.ID()); err != nil {
		return "", err
	}
	s.sayToArena(ps, fmt.Sprintf("%s arrives.", ps.Name()), false)
	return s.renderArena(ps), nil
}

// sayToArena pushes line to every player in ps's arena; includeSelf
// controls whether ps also receives it.
func (s *Server) sayToArena(ps *session.PlayerSession, line string, includeSelf bool) {
	for _, other := range s.players.PlayersInArena(ps.ArenaID) {
		if !includeSelf && other.UID == ps.UID {
			continue
		}
		_ = other.Feed.Push(line)
	}
}

// renderArena composes the look view: title, description, occupants and
// exits.
func (s *Server) renderArena(ps *session.PlayerSession) string {
	arena, ok := s.world.Arena(ps.ArenaID)
	if !ok {
		return "A featureless void."
	}
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.Bold+telnet.BrightWhite, arena.Name()))
	b.WriteString("\r\n")
	b.WriteString(arena.Description())

	for _, inst := range s.npcs.InstancesInArena(arena.ID()) {
		hurt := ruleset.HurtDescription(inst.HP(), inst.MaxHP())
		b.WriteString("\r\n")
		b.WriteString(fmt.Sprintf("%s is here (%s).",
			inst.Name(), telnet.Colorize(telnet.HurtColor(hurt), hurt)))
	}
	for _, other := range s.players.PlayersInArena(arena.ID()) {
		if other.UID == ps.UID {
			continue
		}
		b.WriteString("\r\n")
		b.WriteString(fmt.Sprintf("%s is here.", other.Name()))
	}

	b.WriteString("\r\n")
	b.WriteString(renderExits(arena.Exits()))
	return b.String()
}

func renderExits(exits map[string]string) string {
	if len(exits) == 0 {
		return "There is no way out."
	}
	directions := make([]string, 0, len(exits))
	for direction := range exits {
		directions = append(directions, direction)
	}
	sort.Strings(directions)
	return telnet.Colorize(telnet.Dim, "Exits: "+strings.Join(directions, ", "))
}

// renderWho lists everyone connected and where they are.
func (s *Server) renderWho() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d adventurer(s) in Emberfell:", s.players.PlayerCount()))
	for _, arena := range s.world.All() {
		for _, ps := range s.players.PlayersInArena(arena.ID()) {
			b.WriteString("\r\n")
			b.WriteString(fmt.Sprintf("  %s - %s", ps.Name(), arena.Name()))
		}
	}
	return b.String()
}

// renderStatus shows the player's own condition, equipment and, when in
// battle, the battle report.
func (s *Server) renderStatus(ps *session.PlayerSession) string {
	char := ps.Character
	hurt := ruleset.HurtDescription(char.HP(), char.MaxHP())
	var b strings.Builder
	b.WriteString(fmt.Sprintf("You are %s (%d/%d HP).",
		telnet.Colorize(telnet.HurtColor(hurt), hurt), char.HP(), char.MaxHP()))
	if w := char.Wielded(); w != nil {
		b.WriteString("\r\n")
		b.WriteString(fmt.Sprintf("Wielding: %s.", w.Name()))
	}
	if carried := char.Carried(); len(carried) > 0 {
		names := make([]string, 0, len(carried))
		for _, item := range carried {
			names = append(names, item.Name())
		}
		b.WriteString("\r\n")
		b.WriteString("Carrying: " + strings.Join(names, ", ") + ".")
	}
	if battle := s.engine.Get(ps.ArenaID); battle != nil && inBattle(battle, ps.UID) {
		b.WriteString("\r\n")
		b.WriteString(battle.Report(char).String())
	}
	return b.String()
}

// renderHelp lists commands grouped by category.
func renderHelp(registry *command.Registry) string {
	byCategory := registry.CommandsByCategory()
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var b strings.Builder
	for i, category := range categories {
		if i > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString(telnet.Colorize(telnet.Bold, strings.ToUpper(category[:1])+category[1:]))
		for _, cmd := range byCategory[category] {
			b.WriteString("\r\n")
			name := cmd.Name
			if len(cmd.Aliases) > 0 {
				name += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			b.WriteString(fmt.Sprintf("  %-28s %s", name, cmd.Help))
		}
	}
	return b.String()
}
