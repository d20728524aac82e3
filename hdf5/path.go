package hdf5

import (
	"fmt"
	"path"
	"strings"
)

// SplitPath splits a path into its components. Leading and trailing
// slashes are ignored and empty components are removed.
//
//   - "/" -> []string{}
//   - "/foo/bar" -> []string{"foo", "bar"}
func SplitPath(p string) []string {
	out := []string{}
	for _, part := range strings.Split(p, "/") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// CleanPath normalizes a path to start with "/" and have no trailing slash.
func CleanPath(p string) string {
	parts := SplitPath(p)
	return "/" + strings.Join(parts, "/")
}

// JoinPath joins a parent path and a child name.
func JoinPath(parent, name string) string {
	return path.Join(CleanPath(parent), name)
}

// validName reports whether name can be a single link name.
func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q is not a valid object name", ErrInvalidPath, name)
	}
	return nil
}
