package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hylla/samla/internal/domain"
	"github.com/hylla/samla/internal/engine"
)

func openTestGateway(t *testing.T) *Gateway {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "samla.db")
	gw, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = gw.Close()
	})
	return gw
}

func TestGateway_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	gw := openTestGateway(t)

	player := domain.NewPlayer("Ash", []string{"woodcutting", "mining"})
	wood := player.Skill("woodcutting")
	wood.AddXP(250)
	wood.RecordAction("chop_oak")
	wood.RecordAction("chop_oak")
	player.GrantItem("oak_log", 2)
	player.GrantItem("iron_ore", 1)

	if err := gw.Save(ctx, player); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := gw.Load(ctx, "Ash")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Name != "Ash" {
		t.Fatalf("unexpected player name %q", loaded.Name)
	}
	if !reflect.DeepEqual(loaded.Inventory, player.Inventory) {
		t.Fatalf("inventory = %v, want %v", loaded.Inventory, player.Inventory)
	}
	if !reflect.DeepEqual(loaded.CollectionLog, player.CollectionLog) {
		t.Fatalf("collection log = %v, want %v", loaded.CollectionLog, player.CollectionLog)
	}
	loadedWood := loaded.Skill("woodcutting")
	if loadedWood.XP != 250 || loadedWood.Level != 3 {
		t.Fatalf("woodcutting = xp %v level %d, want xp 250 level 3", loadedWood.XP, loadedWood.Level)
	}
	if loadedWood.ActionCounts["chop_oak"] != 2 {
		t.Fatalf("chop_oak count = %d, want 2", loadedWood.ActionCounts["chop_oak"])
	}
}

func TestGateway_SaveOverwritesByName(t *testing.T) {
	ctx := context.Background()
	gw := openTestGateway(t)

	player := domain.NewPlayer("Ash", []string{"woodcutting"})
	if err := gw.Save(ctx, player); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	player.GrantItem("oak_log", 7)
	if err := gw.Save(ctx, player); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	names, err := gw.ListSaves(ctx)
	if err != nil {
		t.Fatalf("ListSaves() error = %v", err)
	}
	if len(names) != 1 || names[0] != "Ash" {
		t.Fatalf("ListSaves() = %v, want [Ash]", names)
	}

	loaded, err := gw.Load(ctx, "Ash")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Inventory["oak_log"] != 7 {
		t.Fatalf("inventory after overwrite = %d, want 7", loaded.Inventory["oak_log"])
	}
}

func TestGateway_ListSavesSortsByName(t *testing.T) {
	ctx := context.Background()
	gw := openTestGateway(t)

	for _, name := range []string{"Zelda", "Ash", "Mina"} {
		if err := gw.Save(ctx, domain.NewPlayer(name, nil)); err != nil {
			t.Fatalf("Save(%s) error = %v", name, err)
		}
	}

	names, err := gw.ListSaves(ctx)
	if err != nil {
		t.Fatalf("ListSaves() error = %v", err)
	}
	want := []string{"Ash", "Mina", "Zelda"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("ListSaves() = %v, want %v", names, want)
	}
}

func TestGateway_LoadMissingSave(t *testing.T) {
	gw := openTestGateway(t)

	_, err := gw.Load(context.Background(), "nobody")
	if !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("Load() error = %v, want engine.ErrNotFound", err)
	}
}

func TestGateway_LoadCorruptPayload(t *testing.T) {
	ctx := context.Background()
	gw := openTestGateway(t)

	_, err := gw.db.ExecContext(ctx, `
		INSERT INTO saves(id, name, payload_json, created_at, updated_at)
		VALUES ('x', 'Broken', 'not json', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')
	`)
	if err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	_, err = gw.Load(ctx, "Broken")
	if !errors.Is(err, engine.ErrCorruptSave) {
		t.Fatalf("Load() error = %v, want engine.ErrCorruptSave", err)
	}
}

func TestGateway_OpenInMemory(t *testing.T) {
	gw, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = gw.Close()
	})

	ctx := context.Background()
	if err := gw.Save(ctx, domain.NewPlayer("Ash", nil)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := gw.Load(ctx, "Ash"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}
