package schema

import (
	"regexp"
	"strings"

	"github.com/theoribbi/tenantly/internal/common"
)

// SchemaPrefix is prepended to a company slug to form its schema name.
// Computed once at creation and persisted; never recomputed for
// existing tenants.
const SchemaPrefix = "c_"

// Schema names and slugs are interpolated into DDL and search_path
// statements, which cannot be parameterized. This grammar is the single
// injection defense: validation happens before any statement is built.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Name is a validated schema identifier. The zero value is invalid;
// construct through NewName so anything holding a Name is safe to
// interpolate.
type Name string

// NewName validates raw against the identifier grammar: letters,
// digits, underscore, hyphen, not starting with a digit, and within
// Postgres' 63-byte identifier limit.
func NewName(raw string) (Name, error) {
	if len(raw) == 0 || len(raw) > 63 || !identifierPattern.MatchString(raw) {
		return "", &common.InvalidNameError{Name: raw}
	}
	return Name(raw), nil
}

// NameForSlug derives the schema name for a slug. Pure function of the
// slug; callers persist the result rather than re-deriving it later.
func NameForSlug(slug string) (Name, error) {
	if _, err := NewName(slug); err != nil {
		return "", err
	}
	return Name(SchemaPrefix + strings.ToLower(slug)), nil
}

func (n Name) String() string { return string(n) }

// Quoted returns the name as a quoted SQL identifier. The grammar
// excludes double quotes, so plain wrapping is sufficient.
func (n Name) Quoted() string { return `"` + string(n) + `"` }
