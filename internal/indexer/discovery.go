package indexer

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern keeps the source pattern next to its compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// root matches files directly under the root when pattern starts with **/
	root glob.Glob
}

// FileDiscovery finds headers under a root with glob patterns and ignore rules.
// Patterns are matched against slash-separated paths relative to the root.
type FileDiscovery struct {
	rootDir        string
	headerPatterns []compiledPattern
	ignorePatterns []compiledPattern
}

// NewFileDiscovery compiles the header and ignore patterns.
func NewFileDiscovery(rootDir string, headerPatterns, ignorePatterns []string) (*FileDiscovery, error) {
	headers, err := compilePatterns(headerPatterns)
	if err != nil {
		return nil, err
	}
	ignores, err := compilePatterns(ignorePatterns)
	if err != nil {
		return nil, err
	}
	return &FileDiscovery{rootDir: rootDir, headerPatterns: headers, ignorePatterns: ignores}, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		cp := compiledPattern{pattern: p, glob: g}
		if rest, ok := strings.CutPrefix(p, "**/"); ok {
			if cp.root, err = glob.Compile(rest, '/'); err != nil {
				return nil, err
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// Discover walks the root and returns the absolute paths of matching headers
// in lexical order. Ignored directories are not descended into.
func (fd *FileDiscovery) Discover() ([]string, error) {
	var files []string
	err := filepath.WalkDir(fd.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, ok := fd.rel(path)
		if !ok {
			return nil
		}
		if d.IsDir() {
			if fd.shouldIgnore(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !fd.shouldIgnore(rel) && matchesAny(rel, fd.headerPatterns) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// Matches reports whether path, absolute or relative to the root, is a
// header that Discover would return.
func (fd *FileDiscovery) Matches(path string) bool {
	rel, ok := fd.rel(path)
	if !ok {
		return false
	}
	return !fd.shouldIgnore(rel) && matchesAny(rel, fd.headerPatterns)
}

// IgnoresDir reports whether a directory is excluded by the ignore rules.
func (fd *FileDiscovery) IgnoresDir(path string) bool {
	rel, ok := fd.rel(path)
	return ok && fd.shouldIgnore(rel)
}

// Rel returns path relative to the root with forward slashes.
func (fd *FileDiscovery) Rel(path string) string {
	rel, ok := fd.rel(path)
	if !ok {
		return filepath.ToSlash(path)
	}
	return rel
}

func (fd *FileDiscovery) rel(path string) (string, bool) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(fd.rootDir, path)
	}
	rel, err := filepath.Rel(fd.rootDir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// shouldIgnore checks the ignore patterns against the path itself and, for
// directories, against the path with a /** suffix.
func (fd *FileDiscovery) shouldIgnore(rel string) bool {
	if rel == ".cppdoc" || strings.HasPrefix(rel, ".cppdoc/") {
		return true
	}
	return matchesAny(rel, fd.ignorePatterns) || matchesAny(rel+"/**", fd.ignorePatterns)
}

func matchesAny(rel string, patterns []compiledPattern) bool {
	rootLevel := !strings.Contains(rel, "/")
	for _, cp := range patterns {
		if cp.glob.Match(rel) {
			return true
		}
		if rootLevel && cp.root != nil && cp.root.Match(rel) {
			return true
		}
	}
	return false
}
