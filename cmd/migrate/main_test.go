package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  int
		name     string
	}{
		{"0001_create_operations.sql", true, 1, "create_operations"},
		{"0012_add_index.sql", true, 12, "add_index"},
		{"001_invalid.sql", false, 0, ""},
		{"0001_test", false, 0, ""},
		{"0001.sql", false, 0, ""},
		{"invalid_0001_test.sql", false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := parseMigrationFilename(tt.filename)
			if ok != tt.valid || version != tt.version || name != tt.name {
				t.Errorf("parseMigrationFilename(%q) = %d, %q, %v; want %d, %q, %v",
					tt.filename, version, name, ok, tt.version, tt.name, tt.valid)
			}
		})
	}
}

func TestChecksumConsistency(t *testing.T) {
	a := checksum([]byte("CREATE TABLE test (id INT64);"))
	b := checksum([]byte("CREATE TABLE test (id INT64);"))
	c := checksum([]byte("CREATE TABLE different (id INT64);"))

	if a != b {
		t.Error("same content produced different checksums")
	}
	if a == c {
		t.Error("different content produced the same checksum")
	}
	if len(a) != 64 {
		t.Errorf("checksum length = %d, want 64 hex chars", len(a))
	}
}

func TestReadMigrations(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"0002_second.sql":      "SELECT 2 FROM `{{PROJECT_ID}}.{{DATASET_ID}}.{{OPERATIONS_TABLE}}`",
		"0001_first.sql":       "SELECT 1",
		"README.md":            "not a migration",
		"0003_not_sql.txt.bak": "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	vars := map[string]string{
		"{{PROJECT_ID}}":       "demo",
		"{{DATASET_ID}}":       "finance",
		"{{OPERATIONS_TABLE}}": "operations",
	}
	migrations, err := readMigrations(dir, vars, zerolog.Nop())
	if err != nil {
		t.Fatalf("readMigrations() error = %v", err)
	}

	if len(migrations) != 2 || migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Fatalf("migrations = %+v", migrations)
	}
	if migrations[1].SQL != "SELECT 2 FROM `demo.finance.operations`" {
		t.Errorf("rendered SQL = %q", migrations[1].SQL)
	}
	if migrations[1].Checksum != checksum([]byte(files["0002_second.sql"])) {
		t.Error("checksum must be computed before placeholder substitution")
	}
}

func TestPendingMigrations(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Name: "first", Checksum: "aaa"},
		{Version: 2, Name: "second", Checksum: "bbb"},
	}
	applied := []AppliedMigration{{Version: 1, Name: "first", Checksum: "changed"}}

	pending := pendingMigrations(migrations, applied, zerolog.Nop())
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Errorf("pending = %+v", pending)
	}
}

func TestRepositoryMigrations(t *testing.T) {
	dir, err := resolveMigrationsDir("migrations/bigquery")
	if err != nil {
		t.Skipf("migrations not reachable from test dir: %v", err)
	}

	migrations, err := readMigrations(dir, map[string]string{
		"{{PROJECT_ID}}":       "p",
		"{{DATASET_ID}}":       "d",
		"{{OPERATIONS_TABLE}}": "operations",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("readMigrations() error = %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("no migrations found")
	}
	for _, m := range migrations {
		if strings.Contains(m.SQL, "{{") {
			t.Errorf("%s has unresolved placeholders", m.Filename)
		}
	}
	if !strings.Contains(migrations[0].SQL, "`p.d.operations`") {
		t.Errorf("first migration does not create the operations table:\n%s", migrations[0].SQL)
	}
}
