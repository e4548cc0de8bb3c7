package service

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"empiremap/api/model"
)

func chainGraph(n int) (AdjacencyGraph, []model.OwnerKey) {
	owners := make([]model.OwnerKey, n)
	for i := range owners {
		owners[i] = model.OwnerKey{ID: int64(i + 1), Name: fmt.Sprintf("E%d", i+1)}
	}
	g := make(AdjacencyGraph, n)
	for _, k := range owners {
		g[k] = make(map[model.OwnerKey]struct{})
	}
	for i := 0; i+1 < n; i++ {
		g.addEdge(owners[i], owners[i+1])
	}
	return g, owners
}

func TestAssignColorsNeighborsDiffer(t *testing.T) {
	g, _ := chainGraph(10)
	colors, updated := assignColors(g, model.ColorPalette, ColorStore{}, false)
	if !updated {
		t.Error("fresh assignment should mark store updated")
	}
	for owner, neighbors := range g {
		for nb := range neighbors {
			if colors[owner] == colors[nb] {
				t.Errorf("neighbors %v and %v share color %s", owner, nb, colors[owner])
			}
		}
	}
}

func TestAssignColorsIsolatedOwners(t *testing.T) {
	a := model.OwnerKey{ID: 1, Name: "A"}
	b := model.OwnerKey{ID: 2, Name: "B"}
	g := AdjacencyGraph{
		a: {},
		b: {},
	}
	colors, _ := assignColors(g, model.ColorPalette, ColorStore{}, false)
	if colors[a] == "" || colors[b] == "" {
		t.Error("isolated owners must still receive colors")
	}
}

func TestAssignColorsStoredColorWins(t *testing.T) {
	g, owners := chainGraph(3)
	store := ColorStore{
		owners[1].ID: {Name: owners[1].Name, Color: "#AAFF00ff"},
	}
	colors, _ := assignColors(g, model.ColorPalette, store, false)
	if colors[owners[1]] != "#AAFF00ff" {
		t.Errorf("stored color not reused: got %s", colors[owners[1]])
	}
}

func TestAssignColorsIdempotent(t *testing.T) {
	g, _ := chainGraph(5)
	store := ColorStore{}
	first, updated := assignColors(g, model.ColorPalette, store, false)
	if !updated {
		t.Fatal("first run should update the store")
	}
	second, updated := assignColors(g, model.ColorPalette, store, false)
	if updated {
		t.Error("second run with populated store should not update")
	}
	for k, c := range first {
		if second[k] != c {
			t.Errorf("color for %v changed between runs: %s -> %s", k, c, second[k])
		}
	}
}

func TestAssignColorsNameRefresh(t *testing.T) {
	a := model.OwnerKey{ID: 1, Name: "Renamed"}
	g := AdjacencyGraph{a: {}}
	store := ColorStore{1: {Name: "Old Name", Color: "#963333ff"}}
	_, updated := assignColors(g, model.ColorPalette, store, false)
	if !updated {
		t.Error("name change should mark store updated")
	}
	if store[1].Name != "Renamed" {
		t.Errorf("store name not refreshed: %s", store[1].Name)
	}
	if store[1].Color != "#963333ff" {
		t.Errorf("stored color must not change on rename: %s", store[1].Color)
	}
}

func TestAssignColorsPaletteExhaustion(t *testing.T) {
	// 完全图：所有者数超过调色板大小，后来者必然退化到取模色
	n := len(model.ColorPalette) + 2
	owners := make([]model.OwnerKey, n)
	for i := range owners {
		owners[i] = model.OwnerKey{ID: int64(i + 1), Name: fmt.Sprintf("E%d", i+1)}
	}
	g := make(AdjacencyGraph, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.addEdge(owners[i], owners[j])
		}
	}
	colors, _ := assignColors(g, model.ColorPalette, ColorStore{}, false)
	if len(colors) != n {
		t.Fatalf("expected %d colored owners, got %d", n, len(colors))
	}
	valid := make(map[string]struct{})
	for _, c := range model.ColorPalette {
		valid[c] = struct{}{}
	}
	for k, c := range colors {
		if _, ok := valid[c]; !ok {
			t.Errorf("owner %v got color %s outside the palette", k, c)
		}
	}
}

func TestAssignColorsPersistence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "colors", "store.yaml")
	g, owners := chainGraph(4)

	first, updated := AssignColors(g, model.ColorPalette, false, path)
	if !updated {
		t.Fatal("first run should persist the store")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("store file not written: %v", err)
	}

	second, updated := AssignColors(g, model.ColorPalette, false, path)
	if updated {
		t.Error("second run should reuse the persisted store unchanged")
	}
	for _, k := range owners {
		if first[k] != second[k] {
			t.Errorf("color for %v not stable across runs: %s -> %s", k, first[k], second[k])
		}
	}
}
