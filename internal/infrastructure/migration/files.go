package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// File is one numbered up/down pair in a migrations directory
type File struct {
	Version uint
	Name    string
	Up      string
	Down    string
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// slug lowercases name, drops punctuation and joins words with "_"
func slug(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	var out []string
	for _, w := range words {
		if w = nonWord.ReplaceAllString(w, ""); w != "" {
			out = append(out, w)
		}
	}
	return strings.Join(out, "_")
}

// Scan lists the pairs in dir by version, reading only *.up.sql names.
// A missing directory is empty.
func Scan(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var files []File
	for _, e := range entries {
		base, ok := strings.CutSuffix(e.Name(), ".up.sql")
		if !ok || e.IsDir() {
			continue
		}
		num, name, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(num, 10, 32)
		if err != nil {
			continue
		}
		files = append(files, File{
			Version: uint(v),
			Name:    name,
			Up:      filepath.Join(dir, e.Name()),
			Down:    filepath.Join(dir, base+".down.sql"),
		})
	}
	slices.SortFunc(files, func(a, b File) int { return int(a.Version) - int(b.Version) })
	return files, nil
}

// Create writes an empty pair numbered after the newest one in dir, in
// the six digit layout of "migrate create -seq".
func Create(dir, name, description string, now time.Time) (File, error) {
	s := slug(name)
	if s == "" {
		return File{}, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return File{}, err
	}
	existing, err := Scan(dir)
	if err != nil {
		return File{}, err
	}

	f := File{Version: 1, Name: s}
	if n := len(existing); n > 0 {
		f.Version = existing[n-1].Version + 1
	}
	base := fmt.Sprintf("%06d_%s", f.Version, s)
	f.Up = filepath.Join(dir, base+".up.sql")
	f.Down = filepath.Join(dir, base+".down.sql")

	header := fmt.Sprintf("-- %s\n-- created %s\n", name, now.UTC().Format(time.RFC3339))
	up := header
	if description != "" {
		up += "-- " + description + "\n"
	}
	if err := writeNew(f.Up, up+"\n"); err != nil {
		return File{}, err
	}
	if err := writeNew(f.Down, header+"-- rollback\n\n"); err != nil {
		_ = os.Remove(f.Up)
		return File{}, err
	}
	return f, nil
}

func writeNew(path, body string) error {
	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := fh.WriteString(body); err != nil {
		fh.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return fh.Close()
}
