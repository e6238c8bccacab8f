// Package storage archives uploaded import files to object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Archive keeps a copy of an uploaded file
type Archive interface {
	// Archive stores body under a generated key and returns that key
	Archive(ctx context.Context, name string, body io.ReadSeeker, contentType string) (string, error)
}

// ArchiveKey returns <prefix>/YYYY/MM/DD/<id>-<name>
func ArchiveKey(prefix, name string, at time.Time, id uuid.UUID) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	prefix = strings.Trim(prefix, "/")
	return path.Join(prefix, at.UTC().Format("2006/01/02"), fmt.Sprintf("%s-%s", id, name))
}

// NoopArchive discards uploads; used when storage is disabled
type NoopArchive struct{}

// Archive implements Archive
func (NoopArchive) Archive(context.Context, string, io.ReadSeeker, string) (string, error) {
	return "", nil
}

var _ Archive = NoopArchive{}
