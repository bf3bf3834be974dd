package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"lintel/internal/config"
)

// DiscoverOptions tune file discovery.
type DiscoverOptions struct {
	// NoGitignore disables .gitignore handling.
	NoGitignore bool
}

// ignoreStack holds the .gitignore matchers of the directories between the
// walk root and the current path.
type ignoreStack struct {
	dirs     []string
	matchers []*ignore.GitIgnore
}

func (s *ignoreStack) push(dir string) error {
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	m, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	s.dirs = append(s.dirs, dir)
	s.matchers = append(s.matchers, m)
	return nil
}

// pop drops matchers of directories that do not contain path.
func (s *ignoreStack) pop(path string) {
	for len(s.dirs) > 0 {
		top := s.dirs[len(s.dirs)-1]
		if path == top || top == "." && !filepath.IsAbs(path) || strings.HasPrefix(path, top+string(filepath.Separator)) {
			return
		}
		s.dirs = s.dirs[:len(s.dirs)-1]
		s.matchers = s.matchers[:len(s.matchers)-1]
	}
}

func (s *ignoreStack) ignored(path string, isDir bool) bool {
	for i, m := range s.matchers {
		rel, err := filepath.Rel(s.dirs[i], path)
		if err != nil || rel == "." {
			continue
		}
		rel = filepath.ToSlash(rel)
		if isDir {
			rel += "/"
		}
		if m.MatchesPath(rel) {
			return true
		}
	}
	return false
}

// Discover expands paths into the sorted list of files to analyse. Files named
// explicitly are kept unless excluded by [all_cops] exclude; directories are
// walked and filtered by the include and exclude patterns and by .gitignore.
func Discover(paths []string, cfg *config.Config, opts DiscoverOptions) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		root = filepath.Clean(root)
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", root, err)
		}
		if !info.IsDir() {
			if !cfg.Excluded(root) {
				add(root)
			}
			continue
		}

		var stack ignoreStack
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			stack.pop(filepath.Dir(path))
			if d.IsDir() {
				if path != root && (cfg.Excluded(path) || !opts.NoGitignore && stack.ignored(path, true)) {
					return fs.SkipDir
				}
				if !opts.NoGitignore {
					return stack.push(path)
				}
				return nil
			}
			if !opts.NoGitignore && stack.ignored(path, false) {
				return nil
			}
			if cfg.Include(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %q: %w", root, err)
		}
	}

	// Сортируем для детерминированного порядка
	slices.Sort(files)
	return files, nil
}
