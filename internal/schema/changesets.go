package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Changeset is one versioned unit of DDL, applied exactly once per
// schema. The runner treats changesets as read-only input.
type Changeset struct {
	ID       int
	Name     string
	SQL      string
	Checksum string
}

// LoadChangesets reads every .sql file in fsys, named like
// 0001_create_users.sql, and returns them ordered by ID ascending.
// The checksum is a SHA-256 of the file content and is what the ledger
// records for drift detection.
func LoadChangesets(fsys fs.FS) ([]Changeset, error) {
	entries, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}

	var changesets []Changeset
	seen := make(map[int]string)
	for _, filename := range entries {
		id, name, err := parseChangesetFilename(filename)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("duplicate changeset id %d: %s and %s", id, prev, filename)
		}
		seen[id] = filename

		content, err := fs.ReadFile(fsys, filename)
		if err != nil {
			return nil, fmt.Errorf("read changeset %s: %w", filename, err)
		}
		sum := sha256.Sum256(content)
		changesets = append(changesets, Changeset{
			ID:       id,
			Name:     name,
			SQL:      string(content),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(changesets, func(i, j int) bool { return changesets[i].ID < changesets[j].ID })
	return changesets, nil
}

func parseChangesetFilename(filename string) (int, string, error) {
	base := strings.TrimSuffix(path.Base(filename), ".sql")
	idPart, name, found := strings.Cut(base, "_")
	if !found {
		return 0, "", fmt.Errorf("changeset %s: expected <id>_<name>.sql", filename)
	}
	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		return 0, "", fmt.Errorf("changeset %s: invalid id %q", filename, idPart)
	}
	return id, name, nil
}
