// Package discovery finds benchmark result files under a results root.
package discovery

import (
	"errors"
	"io/fs"
	"iter"
	"path/filepath"
	"regexp"

	"github.com/rotisserie/eris"
)

// ErrNoResults is returned by Collect when no file under the root matches.
var ErrNoResults = errors.New("discovery: no result files found")

// Find walks root recursively and yields the path of every regular file whose
// base name matches pattern. Paths are yielded lazily in walk order. A walk
// error is yielded once with an empty path and ends the sequence.
func Find(root string, pattern *regexp.Regexp) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stopped := false
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !pattern.MatchString(d.Name()) {
				return nil
			}
			if !yield(path, nil) {
				stopped = true
				return fs.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield("", eris.Wrapf(err, "discovery: walk %s", root))
		}
	}
}

// Collect materializes Find and fails with ErrNoResults when nothing matched.
func Collect(root string, pattern *regexp.Regexp) ([]string, error) {
	var paths []string
	for path, err := range Find(root, pattern) {
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil, eris.Wrapf(ErrNoResults, "discovery: root %s, pattern %s", root, pattern)
	}
	return paths, nil
}

// GroupKey returns the grouping key of a result file: its parent directory name.
func GroupKey(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// RunHash returns the "hash" capture group of pattern for the file's base
// name, or "" when the pattern has no such group or does not match.
func RunHash(path string, pattern *regexp.Regexp) string {
	m := pattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return ""
	}
	idx := pattern.SubexpIndex("hash")
	if idx < 0 {
		return ""
	}
	return m[idx]
}
