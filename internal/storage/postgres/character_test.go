package postgres_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberfell/skirmish/internal/game/character"
	"github.com/emberfell/skirmish/internal/game/ruleset"
	"github.com/emberfell/skirmish/internal/storage/postgres"
	"github.com/emberfell/skirmish/internal/testutil"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func makeTestCharacter(name string) *character.Character {
	return &character.Character{
		CharUID:  "char-" + name,
		CharName: name,
		Location: "square",
		Bonuses: ruleset.Abilities{
			Strength: 2, Dexterity: 1, Constitution: 1,
			Intelligence: 0, Wisdom: -1, Charisma: 0,
		},
		HPMax:     12,
		HPCurrent: 12,
	}
}

func TestCharacterRepository_Create(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	name := uniqueName("Zara")
	created, err := repo.Create(ctx, makeTestCharacter(name))
	require.NoError(t, err)

	assert.Greater(t, created.ID, int64(0))
	assert.Equal(t, "char-"+name, created.CharUID)
	assert.Equal(t, name, created.CharName)
	assert.Equal(t, "square", created.Location)
	assert.Equal(t, 2, created.Bonuses.Strength)
	assert.Equal(t, -1, created.Bonuses.Wisdom)
	assert.Equal(t, 12, created.HPMax)
	assert.Equal(t, 12, created.HPCurrent)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestCharacterRepository_DuplicateNameError(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	c := makeTestCharacter(uniqueName("Zara"))
	_, err := repo.Create(ctx, c)
	require.NoError(t, err)

	dup := makeTestCharacter(c.CharName)
	dup.CharUID = c.CharUID + "-other"
	_, err = repo.Create(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, postgres.ErrCharacterNameTaken)
}

func TestCharacterRepository_GetByUID(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, makeTestCharacter(uniqueName("Brom")))
	require.NoError(t, err)

	got, err := repo.GetByUID(ctx, created.CharUID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.CharName, got.CharName)

	_, err = repo.GetByUID(ctx, "no-such-uid")
	assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)
}

func TestCharacterRepository_GetByNameIsCaseInsensitive(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	name := uniqueName("Mira")
	created, err := repo.Create(ctx, makeTestCharacter(name))
	require.NoError(t, err)

	got, err := repo.GetByName(ctx, strings.ToUpper(name))
	require.NoError(t, err)
	assert.Equal(t, created.CharUID, got.CharUID)
}

func TestCharacterRepository_SaveState(t *testing.T) {
	repo := postgres.NewCharacterRepository(testutil.NewPool(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, makeTestCharacter(uniqueName("Kest")))
	require.NoError(t, err)

	require.NoError(t, repo.SaveState(ctx, created.CharUID, "cave", 4))

	got, err := repo.GetByUID(ctx, created.CharUID)
	require.NoError(t, err)
	assert.Equal(t, "cave", got.Location)
	assert.Equal(t, 4, got.HPCurrent)
	assert.Equal(t, 12, got.HPMax)

	err = repo.SaveState(ctx, "no-such-uid", "cave", 4)
	assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)
}
