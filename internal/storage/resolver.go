package storage

import (
	"fmt"
	"strings"
)

// Resolver turns stored object paths into public URLs. It performs no I/O.
type Resolver struct {
	base   string
	bucket string
}

// NewResolver builds a resolver for the Supabase project at publicBase.
func NewResolver(publicBase, bucket string) Resolver {
	return Resolver{base: strings.TrimRight(publicBase, "/"), bucket: strings.Trim(bucket, "/")}
}

// Resolve returns the public URL for path. Absolute URLs pass through.
func (r Resolver) Resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", r.base, r.bucket, strings.TrimLeft(path, "/"))
}

// Join builds an object path from folder segments, ignoring empty ones.
func Join(parts ...string) string {
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			segs = append(segs, p)
		}
	}
	return strings.Join(segs, "/")
}
