package cascade

import (
	"fmt"
	"path/filepath"
	"sort"
)

// RecordingSet is a read-only snapshot of one device's recordings inside a
// work directory: matched data/index file pairs sorted by capture id.
type RecordingSet struct {
	Role  string
	Data  []string
	Index []string
}

// Captures returns the number of recorded captures in the set.
func (rs RecordingSet) Captures() int { return len(rs.Data) }

// Discover lists the {role}*data.bin / {role}*idx.bin pairs under workdir.
// Both lists are sorted ascending, which orders them by capture id given the
// recorder's zero-padded naming. An empty list is ErrMissingFiles, unequal
// list lengths are ErrCountMismatch; either is fatal for that role. Discover
// takes a fresh snapshot every call; rerun it after the directory changes.
func Discover(workdir, role string) (RecordingSet, error) {
	data, err := filepath.Glob(filepath.Join(workdir, role+"*data.bin"))
	if err != nil {
		return RecordingSet{}, fmt.Errorf("discover %s data files: %w", role, err)
	}
	index, err := filepath.Glob(filepath.Join(workdir, role+"*idx.bin"))
	if err != nil {
		return RecordingSet{}, fmt.Errorf("discover %s index files: %w", role, err)
	}
	sort.Strings(data)
	sort.Strings(index)

	if len(data) == 0 || len(index) == 0 {
		return RecordingSet{}, fmt.Errorf("%w for device %q in %s", ErrMissingFiles, role, workdir)
	}
	if len(data) != len(index) {
		return RecordingSet{}, fmt.Errorf("%w for device %q: %d data, %d index",
			ErrCountMismatch, role, len(data), len(index))
	}

	return RecordingSet{Role: role, Data: data, Index: index}, nil
}
