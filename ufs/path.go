package ufs

import "strings"

// splitPath breaks an absolute path into its non-empty components, ignoring
// leading or repeated slashes.
func splitPath(p string) []string {
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, c := range parts {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// pathToInode walks p component by component from the root inode (0),
// requiring every intermediate component to be a directory.
func (fsys *FileSystem) pathToInode(p string) (uint32, error) {
	components := splitPath(p)
	current := uint32(rootInode)

	for _, c := range components {
		in, err := fsys.getInode(current)
		if err != nil {
			return 0, err
		}
		if !in.isDir {
			return 0, ErrInvalidPath
		}
		next, err := fsys.hasFile(in, c)
		if err != nil {
			return 0, err
		}
		if next < 0 {
			return 0, ErrInvalidPath
		}
		current = uint32(next)
	}
	return current, nil
}

// splitParentAndLeaf splits a path into its parent directory path and leaf
// name, stripping a trailing slash.
func splitParentAndLeaf(p string) (parent, leaf string) {
	p = strings.TrimSuffix(p, "/")
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return "", p
	}
	parent = p[:idx]
	if parent == "" {
		parent = "/"
	}
	leaf = p[idx+1:]
	return parent, leaf
}
