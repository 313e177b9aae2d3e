package database

import (
	"reflect"
	"testing"
	"testing/fstest"
)

func TestMigrationNames_OrderedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.sql":       {Data: []byte("SELECT 1")},
		"001_state_store.sql": {Data: []byte("SELECT 1")},
		"README.md":           {Data: []byte("docs")},
		"002_second.sql":      {Data: []byte("SELECT 1")},
		"abc.sql":             {Data: []byte("SELECT 1")},
	}

	got, err := migrationNames(fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"001_state_store.sql", "002_second.sql", "010_later.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := migrationNames(Migrations())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) == 0 || names[0] != "001_state_store.sql" {
		t.Fatalf("expected embedded state store migration, got %v", names)
	}
}
