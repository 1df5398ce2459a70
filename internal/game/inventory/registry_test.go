package inventory_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/emberfell/skirmish/internal/game/dice"
	"github.com/emberfell/skirmish/internal/game/inventory"
)

func newRegistry(t *testing.T) *inventory.Registry {
	t.Helper()
	return inventory.NewRegistry(dice.NewRoller(dice.NewCryptoSource(), zaptest.NewLogger(t)))
}

func TestRegistry_RegisterWeapon_Lookup(t *testing.T) {
	r := newRegistry(t)
	if err := r.RegisterWeapon(swordDef()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := r.Weapon("shortsword")
	if got == nil {
		t.Fatal("expected non-nil Weapon, got nil")
	}
	if got.ID() != "shortsword" {
		t.Fatalf("expected ID=%q, got %q", "shortsword", got.ID())
	}
}

func TestRegistry_RegisterWeapon_CollisionError(t *testing.T) {
	r := newRegistry(t)
	if err := r.RegisterWeapon(swordDef()); err != nil {
		t.Fatalf("unexpected error on first register: %v", err)
	}
	if err := r.RegisterWeapon(swordDef()); err == nil {
		t.Fatal("expected collision error on second register, got nil")
	}
}

func TestRegistry_RegisterWeapon_RejectsInvalidDef(t *testing.T) {
	r := newRegistry(t)
	bad := swordDef()
	bad.DamageDice = "banana"
	if err := r.RegisterWeapon(bad); err == nil {
		t.Fatal("expected validation error, got nil")
	}
}

func TestRegistry_SpawnConsumable_InstancesAreIndependent(t *testing.T) {
	r := newRegistry(t)
	if err := r.RegisterConsumable(potionDef()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := r.SpawnConsumable("healing-draught")
	second := r.SpawnConsumable("healing-draught")
	if first == nil || second == nil {
		t.Fatal("expected spawned consumables, got nil")
	}
	if first == second {
		t.Fatal("expected independent instances")
	}

	drinker := &testFighter{uid: "a", name: "Alice", hp: 10, maxHP: 20}
	first.AtPostUse(drinker, drinker)
	if first.Remaining() != 0 {
		t.Fatalf("expected first instance expended, got %d uses", first.Remaining())
	}
	if second.Remaining() != 1 {
		t.Fatalf("expected second instance untouched, got %d uses", second.Remaining())
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := newRegistry(t)
	if err := r.RegisterWeapon(swordDef()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.RegisterConsumable(potionDef()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item := r.Resolve("shortsword"); item == nil || item.ID() != "shortsword" {
		t.Fatalf("expected shortsword, got %v", item)
	}
	if item := r.Resolve("healing-draught"); item == nil || item.ID() != "healing-draught" {
		t.Fatalf("expected healing-draught, got %v", item)
	}
	if item := r.Resolve("does-not-exist"); item != nil {
		t.Fatalf("expected nil, got %v", item)
	}
}

func TestRegistry_LoadDir(t *testing.T) {
	dir := t.TempDir()
	for sub, body := range map[string]string{
		filepath.Join("weapons", "club.yaml"): `
id: club
name: a crude club
damage_dice: 1d4
attack_ability: str
`,
		filepath.Join("consumables", "draught.yaml"): `
id: healing-draught
name: a healing draught
effect: heal
effect_dice: 1d8
uses: 1
`,
	} {
		path := filepath.Join(dir, sub)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	r := newRegistry(t)
	if err := r.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if r.Weapon("club") == nil {
		t.Fatal("expected club to be registered")
	}
	if r.SpawnConsumable("healing-draught") == nil {
		t.Fatal("expected healing-draught to be registered")
	}
	if got := len(r.AllWeapons()); got != 1 {
		t.Fatalf("expected 1 weapon, got %d", got)
	}
}
