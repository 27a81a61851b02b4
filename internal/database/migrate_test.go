//nolint:testpackage
package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_Embedded(t *testing.T) {
	migrations, err := LoadMigrations(migrationFiles)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "001_create_snapshots", migrations[0].Name)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS snapshots")
}

func TestLoadMigrations_OrderAndSkips(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/010_add_index.sql":   {Data: []byte("CREATE INDEX a ON b (c);")},
		"migrations/002_second.sql":      {Data: []byte("SELECT 2;")},
		"migrations/001_first.sql":       {Data: []byte("SELECT 1;")},
		"migrations/README.md":           {Data: []byte("docs")},
		"migrations/noversion.sql":       {Data: []byte("SELECT 0;")},
		"migrations/abc_not_numeric.sql": {Data: []byte("SELECT 0;")},
	}

	migrations, err := LoadMigrations(fsys)
	require.NoError(t, err)

	var versions []int
	for _, m := range migrations {
		versions = append(versions, m.Version)
	}
	assert.Equal(t, []int{1, 2, 10}, versions)
	assert.Equal(t, "SELECT 2;", migrations[1].SQL)
}

func TestLoadMigrations_MissingDirectory(t *testing.T) {
	_, err := LoadMigrations(fstest.MapFS{})
	assert.Error(t, err)
}

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		file    string
		version int
		name    string
		ok      bool
	}{
		{"001_create_snapshots.sql", 1, "001_create_snapshots", true},
		{"12_x.sql", 12, "12_x", true},
		{"create.sql", 0, "", false},
		{"v1_create.sql", 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			version, name, ok := parseMigrationName(tt.file)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, tt.name, name)
		})
	}
}
