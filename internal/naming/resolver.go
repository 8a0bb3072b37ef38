package naming

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/models"
)

// ExistsFunc reports whether a metadata document with the given id already
// exists in the kind's collection.
type ExistsFunc func(ctx context.Context, kind models.Kind, id string) (bool, error)

// Resolve finds a collision-free media id for baseName by probing the
// metadata store sequentially: baseName, stem-1.ext, stem-2.ext, and so on.
// The first free name wins. reserved holds ids already claimed earlier in the
// same batch, so in-batch collisions resolve the same way store collisions
// do. Probe errors propagate; nothing has been written at that point.
func Resolve(ctx context.Context, exists ExistsFunc, kind models.Kind, baseName string, reserved map[string]bool) (string, error) {
	stem, ext := splitName(baseName)
	candidate := baseName
	for n := 1; ; n++ {
		if !reserved[candidate] {
			taken, err := exists(ctx, kind, candidate)
			if err != nil {
				return "", fmt.Errorf("probe %q: %w", candidate, err)
			}
			if !taken {
				return candidate, nil
			}
		}
		candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
}

func splitName(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}
