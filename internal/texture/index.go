package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// Index maps texture names, as PMD materials spell them, to files under a
// model directory. Lookups ignore case and path separators.
type Index struct {
	paths map[string]string // lower-case relative path → full path
	bases map[string]string // lower-case base name → full path
}

var imageExts = map[string]bool{
	".bmp": true, ".png": true, ".tga": true, ".jpg": true, ".jpeg": true,
}

// BuildIndex scans dir and its subdirectories for image files.
func BuildIndex(dir string) *Index {
	idx := &Index{paths: make(map[string]string), bases: make(map[string]string)}

	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !imageExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		idx.paths[strings.ToLower(filepath.ToSlash(rel))] = path
		base := strings.ToLower(filepath.Base(path))
		if _, exists := idx.bases[base]; !exists {
			idx.bases[base] = path
		}
		return nil
	})

	return idx
}

// ResolvePath returns the file for a material texture name, or ("", false).
// A sphere map suffix ("face.bmp*face.sph") is dropped, and sphere maps on
// their own are not indexed.
func (idx *Index) ResolvePath(name string) (string, bool) {
	name, _, _ = strings.Cut(name, "*")
	name = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "" {
		return "", false
	}
	if path, ok := idx.paths[name]; ok {
		return path, true
	}
	path, ok := idx.bases[filepath.Base(name)]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.paths)
}
