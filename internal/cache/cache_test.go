package cache

import (
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "sub", "spec.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRecordAndLookup(t *testing.T) {
	c := openTemp(t)
	if err := c.Record("main.px", "f", "int", "f.int"); err != nil {
		t.Fatal(err)
	}
	e, ok, err := c.Lookup("main.px", "f", "int")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if e.Symbol != "f.int" || e.ID == "" {
		t.Errorf("unexpected entry %+v", e)
	}

	_, ok, err = c.Lookup("main.px", "f", "float")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected a miss for a different arg tuple")
	}
}

func TestUpsertKeepsSingleRow(t *testing.T) {
	c := openTemp(t)
	for i := 0; i < 3; i++ {
		if err := c.Record("main.px", "f", "int", "f.int"); err != nil {
			t.Fatal(err)
		}
	}
	rows, _, err := c.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("rows = %d, want 1 (upsert)", rows)
	}
}

func TestEntriesSorted(t *testing.T) {
	c := openTemp(t)
	for _, s := range []struct{ fn, args, sym string }{
		{"g", "float", "g.float"},
		{"f", "int", "f.int"},
		{"f", "", "f.generic"},
	} {
		if err := c.Record("main.px", s.fn, s.args, s.sym); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := c.Entries("main.px")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Symbol > entries[i].Symbol {
			t.Errorf("entries not symbol-ordered: %+v", entries)
		}
	}

	other, err := c.Entries("other.px")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Error("entries must be scoped per source")
	}
}

func TestStatsSize(t *testing.T) {
	c := openTemp(t)
	if err := c.Record("main.px", "f", "int", "f.int"); err != nil {
		t.Fatal(err)
	}
	rows, bytes, err := c.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("rows = %d", rows)
	}
	if bytes <= 0 {
		t.Errorf("bytes = %d, want > 0", bytes)
	}
}
