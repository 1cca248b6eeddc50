package migration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"add tours table":   "add_tours_table",
		"Add-Tours-Table":   "add_tours_table",
		"ADD_TOURS_TABLE":   "add_tours_table",
		"add__tours__table": "add_tours_table",
		"Add Leases 123":    "add_leases_123",
		"   spaces   ":      "spaces",
		"special!@#$chars":  "specialchars",
		"trailing_":         "trailing",
		"_leading":          "leading",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, slug(in), in)
	}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("-- test"), 0o644))
	}
}

var created = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCreate(t *testing.T) {
	dir := t.TempDir()

	f, err := Create(dir, "add tours table", "Tours for leads", created)
	require.NoError(t, err)

	assert.Equal(t, uint(1), f.Version)
	assert.Equal(t, "add_tours_table", f.Name)
	assert.Equal(t, filepath.Join(dir, "000001_add_tours_table.up.sql"), f.Up)
	assert.Equal(t, filepath.Join(dir, "000001_add_tours_table.down.sql"), f.Down)

	up, err := os.ReadFile(f.Up)
	require.NoError(t, err)
	assert.Equal(t, "-- add tours table\n-- created 2026-03-01T12:00:00Z\n-- Tours for leads\n\n", string(up))

	down, err := os.ReadFile(f.Down)
	require.NoError(t, err)
	assert.Contains(t, string(down), "-- rollback")

	_, err = Create(dir, "!!!", "", created)
	assert.Error(t, err)
}

func TestCreate_NextVersion(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeFiles(t, dir,
		"000001_init_schema.up.sql", "000001_init_schema.down.sql",
		"000007_add_events.up.sql", "000007_add_events.down.sql",
	)

	f, err := Create(dir, "add buyables", "", created)
	require.NoError(t, err)
	assert.Equal(t, uint(8), f.Version)
	assert.FileExists(t, filepath.Join(dir, "000008_add_buyables.down.sql"))
}

func TestCreate_MakesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	_, err := Create(dir, "init", "", created)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"000010_add_payouts.up.sql", "000010_add_payouts.down.sql",
		"000001_init_schema.up.sql", "000001_init_schema.down.sql",
		"000002_add_leases.up.sql", "000002_add_leases.down.sql",
		"README.md", ".gitkeep", "notes_without_version.up.sql",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000003_dir.up.sql"), 0o755))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, uint(1), files[0].Version)
	assert.Equal(t, "init_schema", files[0].Name)
	assert.Equal(t, uint(2), files[1].Version)
	assert.Equal(t, uint(10), files[2].Version)
	assert.Equal(t, filepath.Join(dir, "000010_add_payouts.down.sql"), files[2].Down)

	files, err = Scan(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestOpenSource_Embedded(t *testing.T) {
	src, err := openSource("")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}

func TestOpenSource_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "000004_extra.up.sql", "000004_extra.down.sql")

	src, err := openSource(dir)
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(4), first)
}
