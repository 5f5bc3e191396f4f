package template

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"
)

// mergeFS implements fs.FS over an ordered list of directories.
type mergeFS struct {
	dirs []fs.FS

	// A cache for minimizing ascertaining which directory holds the template.
	cache map[string]int
	mu    sync.RWMutex
}

// Open opens the file matching the name using the following strategy:
// - check the cache
// - check each directory in order
//
// Whenever a file is found and is not present in the cache, it is added.
// Nothing removes references from the cache.
//
// If a file is removed from a directory during runtime,
// then a reference to it from the cache returns the same error (fs.ErrNotExist)
// as if the cache did not have that reference.
func (mfs *mergeFS) Open(name string) (fs.File, error) {
	mfs.mu.RLock()
	i, ok := mfs.cache[name]
	mfs.mu.RUnlock()
	if ok {
		return mfs.dirs[i].Open(name)
	}

	for i, dir := range mfs.dirs {
		file, err := dir.Open(name)
		if err == nil {
			mfs.mu.Lock()
			mfs.cache[name] = i
			mfs.mu.Unlock()

			return file, nil
		}

		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrInvalid) {
			return nil, fmt.Errorf("unable to open template: %w", err)
		}
	}

	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

//go:embed tmpl/*
var pkgFS embed.FS
