package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/emberfell/skirmish/internal/game/character"
	"github.com/emberfell/skirmish/internal/game/ruleset"
)

func newChar(t *testing.T, name string) *character.Character {
	t.Helper()
	c, err := character.New(name, ruleset.Abilities{Strength: 1, Dexterity: 1}, 12)
	require.NoError(t, err)
	return c
}

func TestFeed_Push(t *testing.T) {
	f := NewFeed("test", 4)
	require.NoError(t, f.Push("hello"))

	line := <-f.Lines()
	assert.Equal(t, "hello", line)
}

func TestFeed_PushClosed(t *testing.T) {
	f := NewFeed("test", 4)
	require.NoError(t, f.Close())
	assert.True(t, f.IsClosed())
	assert.Error(t, f.Push("fail"))
}

func TestFeed_PushFull(t *testing.T) {
	f := NewFeed("test", 1)
	require.NoError(t, f.Push("first"))
	err := f.Push("overflow")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "buffer full")
}

func TestFeed_CloseIdempotent(t *testing.T) {
	f := NewFeed("test", 4)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.True(t, f.IsClosed())
}

func TestManager_AddPlayer(t *testing.T) {
	m := NewManager()
	alice := newChar(t, "Alice")
	sess, err := m.AddPlayer("alice", alice, "square")
	require.NoError(t, err)
	assert.Equal(t, "Alice", sess.Name())
	assert.Equal(t, "square", sess.ArenaID)
	assert.Equal(t, "square", alice.Location)
	require.NotNil(t, sess.Feed)
	assert.Equal(t, 1, m.PlayerCount())
}

func TestManager_AddPlayerDuplicate(t *testing.T) {
	m := NewManager()
	alice := newChar(t, "Alice")
	_, err := m.AddPlayer("alice", alice, "square")
	require.NoError(t, err)
	_, err = m.AddPlayer("alice2", alice, "cave")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already connected")
}

func TestManager_RemovePlayer(t *testing.T) {
	m := NewManager()
	alice := newChar(t, "Alice")
	sess, err := m.AddPlayer("alice", alice, "square")
	require.NoError(t, err)

	require.NoError(t, m.RemovePlayer(sess.UID))
	assert.Equal(t, 0, m.PlayerCount())
	assert.Empty(t, m.PlayersInArena("square"))
	assert.True(t, sess.Feed.IsClosed())

	assert.Error(t, m.RemovePlayer("unknown"))
}

func TestManager_MovePlayer(t *testing.T) {
	m := NewManager()
	alice := newChar(t, "Alice")
	sess, err := m.AddPlayer("alice", alice, "square")
	require.NoError(t, err)

	oldArena, err := m.MovePlayer(sess.UID, "cave")
	require.NoError(t, err)
	assert.Equal(t, "square", oldArena)
	assert.Equal(t, "cave", sess.ArenaID)
	assert.Equal(t, "cave", alice.Location)

	assert.Empty(t, m.NamesInArena("square"))
	assert.Equal(t, []string{"Alice"}, m.NamesInArena("cave"))

	_, err = m.MovePlayer("unknown", "cave")
	assert.Error(t, err)
}

func TestManager_FindInArena(t *testing.T) {
	m := NewManager()
	alice := newChar(t, "Alice")
	bob := newChar(t, "Bob")
	_, err := m.AddPlayer("alice", alice, "square")
	require.NoError(t, err)
	_, err = m.AddPlayer("bob", bob, "square")
	require.NoError(t, err)

	sess, ok := m.FindInArena("square", "bo")
	require.True(t, ok)
	assert.Equal(t, "Bob", sess.Name())

	sess, ok = m.FindInArena("square", "ALICE")
	require.True(t, ok)
	assert.Equal(t, "Alice", sess.Name())

	_, ok = m.FindInArena("square", "charlie")
	assert.False(t, ok)
	_, ok = m.FindInArena("cave", "alice")
	assert.False(t, ok)
}

func TestManager_OccupancyConsistency(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewManager()
		arenas := []string{"square", "cave", "gate"}
		var uids []string

		n := rapid.IntRange(1, 8).Draw(t, "players")
		for i := 0; i < n; i++ {
			c, err := character.New(fmt.Sprintf("Player%d", i), ruleset.Abilities{}, 10)
			if err != nil {
				t.Fatalf("character.New: %v", err)
			}
			arena := rapid.SampledFrom(arenas).Draw(t, "arena")
			if _, err := m.AddPlayer(c.Name(), c, arena); err != nil {
				t.Fatalf("AddPlayer: %v", err)
			}
			uids = append(uids, c.UID())
		}

		moves := rapid.IntRange(0, 10).Draw(t, "moves")
		for i := 0; i < moves; i++ {
			uid := rapid.SampledFrom(uids).Draw(t, "uid")
			arena := rapid.SampledFrom(arenas).Draw(t, "dest")
			if _, err := m.MovePlayer(uid, arena); err != nil {
				t.Fatalf("MovePlayer: %v", err)
			}
		}

		// Every player appears in exactly the arena their session names.
		total := 0
		for _, arena := range arenas {
			for _, sess := range m.PlayersInArena(arena) {
				if sess.ArenaID != arena {
					t.Fatalf("player %s listed in %s but session says %s", sess.UID, arena, sess.ArenaID)
				}
				total++
			}
		}
		if total != m.PlayerCount() {
			t.Fatalf("occupancy total %d != player count %d", total, m.PlayerCount())
		}
	})
}
