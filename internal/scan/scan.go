// Package scan walks a directory tree in the background and streams the
// image files it finds over a channel.
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// FileItem is a single discovered image file.
type FileItem struct {
	Path string
}

// FileItems is a batch of discovered image files.
type FileItems []FileItem

// LoggerFunc receives human-readable progress and error messages from a
// running scan.
type LoggerFunc func(msg string)

// FileScannerImpl walks the filesystem with filepath.WalkDir.
type FileScannerImpl struct{}

// Run starts a background walk of root and returns a channel of matching
// files. Only files whose lowercased extension is present in exts are
// emitted. Unreadable directories are skipped, not fatal. The channel is
// closed when the walk finishes.
func (s *FileScannerImpl) Run(root string, exts map[string]bool, logger LoggerFunc) <-chan FileItem {
	out := make(chan FileItem, 256)

	go func() {
		defer close(out)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if logger != nil {
					logger(fmt.Sprintf("Skipping %s: %v", path, err))
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !exts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			out <- FileItem{Path: path}
			return nil
		})
		if err != nil && logger != nil {
			logger(fmt.Sprintf("Scan of %s failed: %v", root, err))
		}
	}()

	return out
}
