package schema

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestLoadChangesets_OrderedByID(t *testing.T) {
	fsys := fstest.MapFS{
		"0010_add_index.sql":   {Data: []byte("CREATE INDEX i ON users (email);")},
		"0001_create_users.sql": {Data: []byte("CREATE TABLE users ();")},
		"0002_add_column.sql":  {Data: []byte("ALTER TABLE users ADD COLUMN email TEXT;")},
	}

	changesets, err := LoadChangesets(fsys)
	assert.NoError(t, err)
	assert.Len(t, changesets, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{changesets[0].ID, changesets[1].ID, changesets[2].ID})
	assert.Equal(t, "create_users", changesets[0].Name)
	assert.Equal(t, "CREATE TABLE users ();", changesets[0].SQL)
}

func TestLoadChangesets_ChecksumIsStable(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_a.sql": {Data: []byte("CREATE TABLE a ();")},
	}

	first, err := LoadChangesets(fsys)
	assert.NoError(t, err)
	second, err := LoadChangesets(fsys)
	assert.NoError(t, err)
	assert.Equal(t, first[0].Checksum, second[0].Checksum)
	assert.Len(t, first[0].Checksum, 64)

	changed := fstest.MapFS{
		"0001_a.sql": {Data: []byte("CREATE TABLE a (id INT);")},
	}
	third, err := LoadChangesets(changed)
	assert.NoError(t, err)
	assert.NotEqual(t, first[0].Checksum, third[0].Checksum)
}

func TestLoadChangesets_RejectsDuplicateIDs(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_a.sql": {Data: []byte("a")},
		"0001_b.sql": {Data: []byte("b")},
	}

	_, err := LoadChangesets(fsys)
	assert.ErrorContains(t, err, "duplicate changeset id")
}

func TestLoadChangesets_RejectsMalformedNames(t *testing.T) {
	for _, filename := range []string{"create_users.sql", "0000_zero.sql", "x_name.sql"} {
		fsys := fstest.MapFS{filename: {Data: []byte("a")}}
		_, err := LoadChangesets(fsys)
		assert.Error(t, err, filename)
	}
}
