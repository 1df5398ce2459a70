package gameserver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/emberfell/skirmish/internal/frontend/telnet"
	"github.com/emberfell/skirmish/internal/game/character"
	"github.com/emberfell/skirmish/internal/game/command"
	"github.com/emberfell/skirmish/internal/game/ruleset"
	"github.com/emberfell/skirmish/internal/game/session"
	"github.com/emberfell/skirmish/internal/storage/postgres"
)

// Starting kit for characters without equipment. IDs must exist in the
// item content; missing entries are skipped.
const (
	starterWeaponID = "rusty-sword"
	starterPotionID = "healing-draught"
)

// Defaults for characters created at first login.
var newCharacterBonuses = ruleset.Abilities{Strength: 1, Dexterity: 1, Constitution: 1}

const newCharacterHP = 10

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z'-]{1,23}$`)

// ErrCharacterStoreRequired is returned by login when the server runs
// without a character store.
var ErrCharacterStoreRequired = errors.New("gameserver: no character store configured")

// HandleSession runs one Telnet client from greeting to disconnect. It is
// the telnet.SessionHandler used by the acceptor.
//
// Postcondition: the player session is removed and the character state
// persisted, whatever ends the connection.
func (s *Server) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	_ = conn.WriteLine(telnet.Colorize(telnet.Bold, "Welcome to Emberfell."))
	_ = conn.WriteLine("Battles here resolve all at once: choose your action each turn and hold your nerve.")

	ps, err := s.login(ctx, conn)
	if err != nil {
		return err
	}
	defer s.logout(ps)

	// Drain the feed to the client until the feed closes on logout.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for line := range ps.Feed.Lines() {
			if werr := conn.WriteLine(line); werr != nil {
				return
			}
		}
	}()
	defer wg.Wait()

	_ = conn.WriteLine(s.renderArena(ps))
	registry := command.DefaultRegistry()
	prompt := telnet.Colorf(telnet.BrightCyan, "[%s]> ", ps.Name())

	for {
		if err := conn.WritePrompt(prompt); err != nil {
			return err
		}
		line, err := conn.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		parsed := command.Parse(line)
		if parsed.Command == "" {
			continue
		}
		cmd, ok := registry.Resolve(parsed.Command)
		if !ok {
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, fmt.Sprintf("Unknown command %q. Try 'help'.", parsed.Command)))
			continue
		}
		if cmd.Handler == command.HandlerQuit {
			_ = conn.WriteLine("Farewell.")
			return nil
		}
		out, err := s.dispatch(ps, cmd, parsed)
		if err != nil {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, err.Error()))
			continue
		}
		if out != "" {
			_ = conn.WriteLine(out)
		}
	}
}

// login asks for a character name and attaches the connection to it,
// creating the character on first visit.
func (s *Server) login(ctx context.Context, conn *telnet.Conn) (*session.PlayerSession, error) {
	if s.chars == nil {
		return nil, ErrCharacterStoreRequired
	}
	for {
		if err := conn.WritePrompt("By what name are you known? "); err != nil {
			return nil, err
		}
		line, err := conn.ReadLine()
		if err != nil {
			return nil, fmt.Errorf("reading name: %w", err)
		}
		name := strings.TrimSpace(line)
		if !namePattern.MatchString(name) {
			_ = conn.WriteLine("Names are 2 to 24 letters, starting with a letter.")
			continue
		}

		char, err := s.loadOrCreate(ctx, name)
		if err != nil {
			s.logger.Error("loading character", zap.String("name", name), zap.Error(err))
			_ = conn.WriteLine("Something went wrong fetching that character. Try again.")
			continue
		}
		char.DefeatHook = s.playerDefeated
		s.outfit(char)

		arenaID := char.Location
		if _, ok := s.world.Arena(arenaID); !ok {
			arenaID = s.world.Start().ID()
		}

		ps, err := s.players.AddPlayer(name, char, arenaID)
		if err != nil {
			_ = conn.WriteLine(fmt.Sprintf("%s is already walking Emberfell. Pick another name.", name))
			continue
		}
		_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "Welcome, %s.", char.Name()))
		s.sayToArena(ps, fmt.Sprintf("%s appears.", char.Name()), false)
		return ps, nil
	}
}

// loadOrCreate fetches the named character or creates and persists a new
// one with the starting stat line.
func (s *Server) loadOrCreate(ctx context.Context, name string) (*character.Character, error) {
	char, err := s.chars.GetByName(ctx, name)
	if err == nil {
		if char.HP() < 1 {
			// Knocked out on last visit; they wake with a sliver of health.
			char.SetHP(1)
		}
		return char, nil
	}
	if !errors.Is(err, postgres.ErrCharacterNotFound) {
		return nil, err
	}
	char, err = character.New(name, newCharacterBonuses, newCharacterHP)
	if err != nil {
		return nil, err
	}
	char.Location = s.world.Start().ID()
	return s.chars.Create(ctx, char)
}

// outfit hands the character the starting kit. Equipment is not
// persisted, so returning characters are re-armed on login.
func (s *Server) outfit(char *character.Character) {
	if char.Wielded() == nil {
		if weapon := s.items.Weapon(starterWeaponID); weapon != nil {
			char.SetWielded(weapon)
		}
	}
	if char.FindItem(starterPotionID) == nil {
		if potion := s.items.SpawnConsumable(starterPotionID); potion != nil {
			char.Carry(potion)
		}
	}
}

// logout detaches the player: leave any battle, persist, drop the session.
func (s *Server) logout(ps *session.PlayerSession) {
	if battle := s.engine.Get(ps.ArenaID); battle != nil {
		battle.RemoveCombatant(ps.UID)
	}
	s.sayToArena(ps, fmt.Sprintf("%s fades away.", ps.Name()), false)
	s.persistCharacterAsync(ps.Character)
	if err := s.players.RemovePlayer(ps.UID); err != nil {
		s.logger.Warn("removing player session", zap.String("player", ps.UID), zap.Error(err))
	}
}
