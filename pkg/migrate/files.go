package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var (
	migrationNameRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
	slugStripRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

const migrationTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- undo %[1]s
-- +goose StatementEnd
`

func slug(name string) string {
	return strings.Trim(slugStripRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// CreateSQLMigration writes an empty goose migration named
// <dir>/<YYYYMMDDHHMMSS>_<slug>.sql and returns its path.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	s := slug(name)
	if s == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	path := filepath.Join(dir, time.Now().UTC().Format(versionLayout)+"_"+s+".sql")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, migrationTemplate, s); err != nil {
		return "", fmt.Errorf("write migration %s: %w", path, err)
	}
	return path, nil
}

// ValidateDir checks every .sql file under dir for a well-formed name, unique
// version, and both goose sections. When dir holds one subdirectory per
// driver, every driver must ship the same set of versions.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	versions := map[string]map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}
		return checkMigrationFile(path, versions)
	})
	if err != nil {
		return err
	}
	return checkDriversAligned(versions)
}

func checkMigrationFile(path string, versions map[string]map[string]string) error {
	name := filepath.Base(path)
	m := migrationNameRe.FindStringSubmatch(name)
	if m == nil {
		return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
	}
	parent := filepath.Dir(path)
	if versions[parent] == nil {
		versions[parent] = map[string]string{}
	}
	if prev, ok := versions[parent][m[1]]; ok {
		return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
	}
	versions[parent][m[1]] = name

	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(string(body), marker) {
			return fmt.Errorf("migration %q missing %q", name, marker)
		}
	}
	return nil
}

func checkDriversAligned(versions map[string]map[string]string) error {
	if len(versions) < 2 {
		return nil
	}
	dirs := make([]string, 0, len(versions))
	for d := range versions {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	base := versions[dirs[0]]
	for _, d := range dirs[1:] {
		other := versions[d]
		for v := range base {
			if _, ok := other[v]; !ok {
				return fmt.Errorf("version %s exists in %s but not in %s", v, dirs[0], d)
			}
		}
		for v := range other {
			if _, ok := base[v]; !ok {
				return fmt.Errorf("version %s exists in %s but not in %s", v, d, dirs[0])
			}
		}
	}
	return nil
}
