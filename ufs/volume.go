package ufs

import "github.com/google/uuid"

// VolumeID returns the UUID format_fs stamped into the superblock's reserved
// padding, and true if one is present. This is purely a diagnostic aid for
// telling two images apart — it is never consulted by
// any allocator or path-resolution decision, so its absence (an all-zero
// field, as produced by any strictly spec-minimal formatter) never affects
// correctness.
func (fsys *FileSystem) VolumeID() (uuid.UUID, bool) {
	var zero [16]byte
	if fsys.sb.volumeID == zero {
		return uuid.UUID{}, false
	}
	return uuid.UUID(fsys.sb.volumeID), true
}
