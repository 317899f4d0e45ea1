// Package migrations embeds the versioned tenant changesets. The
// runner treats these files as read-only input; editing an
// already-deployed changeset is detected as drift at migrate time.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed tenant/*.sql
var tenantFS embed.FS

// Tenant returns the changeset source for tenant schemas.
func Tenant() fs.FS {
	sub, err := fs.Sub(tenantFS, "tenant")
	if err != nil {
		panic(err)
	}
	return sub
}
