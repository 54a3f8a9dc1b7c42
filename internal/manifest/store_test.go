package manifest

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	return store, path
}

func seed(t *testing.T, store *FileStore) {
	t.Helper()
	records := []Record{
		{Type: TypeJob, ID: "123", Name: "nightly-etl"},
		{Type: TypeJob, ID: "456", Name: "backfill"},
		{Type: TypeDashboard, ID: "abc", Name: "sales", URL: "https://x.cloud.databricks.com/dashboards/abc"},
	}
	for _, rec := range records {
		if err := store.Add(rec); err != nil {
			t.Fatalf("Add(%s/%s) error: %v", rec.Type, rec.ID, err)
		}
	}
}

func TestFileStoreListFilter(t *testing.T) {
	store, _ := newTestStore(t)
	seed(t, store)

	all := store.List("")
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}

	jobs := store.List(TypeJob)
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	for _, rec := range jobs {
		if rec.Type != TypeJob {
			t.Fatalf("filter leaked record of type %s", rec.Type)
		}
	}
}

func TestFileStoreRemove(t *testing.T) {
	store, _ := newTestStore(t)
	seed(t, store)

	if !store.Remove(TypeJob, "123") {
		t.Fatal("expected removal of existing record")
	}
	if store.Remove(TypeJob, "123") {
		t.Fatal("second removal must report not found")
	}
	if store.Remove(TypeDashboard, "123") {
		t.Fatal("type must participate in the match")
	}
	if len(store.List("")) != 2 {
		t.Fatalf("expected 2 records left, got %d", len(store.List("")))
	}
}

func TestFileStorePersistsAcrossReload(t *testing.T) {
	store, path := newTestStore(t)
	seed(t, store)
	if !store.Remove(TypeJob, "456") {
		t.Fatal("expected removal")
	}

	reloaded, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	records := reloaded.List("")
	if len(records) != 2 {
		t.Fatalf("expected 2 persisted records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.CreatedAt.IsZero() {
			t.Fatalf("record %s/%s lost its creation timestamp", rec.Type, rec.ID)
		}
	}
}

func TestFileStoreAddValidation(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Add(Record{Type: TypeJob}); err == nil {
		t.Fatal("expected error for record without id")
	}
	if err := store.Add(Record{ID: "123"}); err == nil {
		t.Fatal("expected error for record without type")
	}
}

func TestFileStoreStampsCreatedAt(t *testing.T) {
	store, _ := newTestStore(t)
	before := time.Now().UTC().Add(-time.Second)
	if err := store.Add(Record{Type: TypePipeline, ID: "p1", Name: "ingest"}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	rec := store.List(TypePipeline)[0]
	if rec.CreatedAt.Before(before) {
		t.Fatalf("CreatedAt not stamped: %v", rec.CreatedAt)
	}
}
