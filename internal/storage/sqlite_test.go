package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	id, err := store.CreateRun(Run{Seed: 1, Population: 5, Generations: 2})
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()
	if _, err := store.GetRun(id); err != nil {
		t.Errorf("GetRun() after reopen failed: %v", err)
	}
}

func TestStoreRunLifecycle(t *testing.T) {
	store := openTestStore(t)

	id, err := store.CreateRun(Run{Seed: 42, Population: 50, Generations: 10, Config: "screen: {}\n"})
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}

	r, err := store.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if r.Seed != 42 || r.Population != 50 || r.Generations != 10 || r.Config != "screen: {}\n" {
		t.Errorf("GetRun() = %+v", r)
	}
	if r.Status != StatusRunning || !r.FinishedAt.IsZero() {
		t.Errorf("new run status = %q finished %v, want running and unfinished", r.Status, r.FinishedAt)
	}

	if err := store.FinishRun(id, StatusSolved, 12.5); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}
	r, err = store.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if r.Status != StatusSolved || r.BestFitness != 12.5 {
		t.Errorf("finished run = %q %v, want solved 12.5", r.Status, r.BestFitness)
	}
	if r.FinishedAt.IsZero() {
		t.Error("finished run has no finish time")
	}
}

func TestStoreNotFound(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.GetRun(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun() error = %v, want ErrNotFound", err)
	}
	if err := store.FinishRun(99, StatusFinished, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("FinishRun() error = %v, want ErrNotFound", err)
	}
	if _, err := store.LoadChampion(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadChampion() error = %v, want ErrNotFound", err)
	}
}

func TestStoreListRuns(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 15; i++ {
		if _, err := store.CreateRun(Run{Seed: int64(i), Population: 1, Generations: 1}); err != nil {
			t.Fatalf("CreateRun() failed: %v", err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"limit 5", 5, 5},
		{"default limit", 0, 10},
		{"above count", 50, 15},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runs, err := store.ListRuns(tc.limit)
			if err != nil {
				t.Fatalf("ListRuns() failed: %v", err)
			}
			if len(runs) != tc.want {
				t.Fatalf("ListRuns(%d) returned %d runs, want %d", tc.limit, len(runs), tc.want)
			}
			for i := 1; i < len(runs); i++ {
				if runs[i].ID >= runs[i-1].ID {
					t.Errorf("runs not newest first: %d then %d", runs[i-1].ID, runs[i].ID)
				}
			}
		})
	}
}

func TestStoreHistory(t *testing.T) {
	store := openTestStore(t)
	id, err := store.CreateRun(Run{Seed: 1, Population: 3, Generations: 3})
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}

	for _, gen := range []int{2, 0, 1} {
		g := Generation{
			RunID:      id,
			Generation: gen,
			Best:       float64(gen) + 1,
			Mean:       0.5,
			StdDev:     0.25,
			Worst:      -1,
			BestGenome: gen + 10,
			Ticks:      100 * (gen + 1),
			Score:      100 * (gen + 1),
			Capped:     gen == 2,
			Elapsed:    1500 * time.Millisecond,
		}
		if err := store.SaveGeneration(g); err != nil {
			t.Fatalf("SaveGeneration() failed: %v", err)
		}
	}

	history, err := store.History(id)
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("History() returned %d generations, want 3", len(history))
	}
	for i, g := range history {
		if g.Generation != i || g.Best != float64(i)+1 || g.BestGenome != i+10 {
			t.Errorf("history[%d] = %+v", i, g)
		}
		if g.Capped != (i == 2) || g.Elapsed != 1500*time.Millisecond {
			t.Errorf("history[%d] capped/elapsed = %v / %v", i, g.Capped, g.Elapsed)
		}
	}

	other, err := store.History(id + 1)
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("History() of unknown run returned %d generations", len(other))
	}
}

func TestStoreChampion(t *testing.T) {
	store := openTestStore(t)
	id, err := store.CreateRun(Run{Seed: 1, Population: 3, Generations: 3})
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}

	first := Champion{RunID: id, GenomeID: 4, Generation: 0, Fitness: 3.2, Genes: []float64{0.5, -1.25, 2}}
	if err := store.SaveChampion(first); err != nil {
		t.Fatalf("SaveChampion() failed: %v", err)
	}
	better := Champion{RunID: id, GenomeID: 17, Generation: 2, Fitness: 9.9, Genes: []float64{1, 2, 3}}
	if err := store.SaveChampion(better); err != nil {
		t.Fatalf("SaveChampion() failed: %v", err)
	}

	got, err := store.LoadChampion(id)
	if err != nil {
		t.Fatalf("LoadChampion() failed: %v", err)
	}
	if got.GenomeID != 17 || got.Generation != 2 || got.Fitness != 9.9 {
		t.Errorf("LoadChampion() = %+v, want genome 17", got)
	}
	if len(got.Genes) != 3 || got.Genes[0] != 1 || got.Genes[2] != 3 {
		t.Errorf("LoadChampion() genes = %v", got.Genes)
	}
}
