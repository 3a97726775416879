package downloads

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/NamanBalaji/mirrordl/internal/logger"
)

var ErrInsufficientSpace = errors.New("insufficient disk space")

// SpaceChecker verifies that dir can hold need more bytes.
type SpaceChecker interface {
	Ensure(dir string, need int64) error
}

type SpaceCheckFunc func(dir string, need int64) error

func (f SpaceCheckFunc) Ensure(dir string, need int64) error {
	return f(dir, need)
}

// DiskSpace checks free space on the volume holding dir. When usage cannot be
// read the check passes and the write itself is left to fail.
func DiskSpace() SpaceChecker {
	return SpaceCheckFunc(func(dir string, need int64) error {
		if dir == "" {
			dir = "."
		}

		usage, err := disk.Usage(dir)
		if err != nil {
			logger.Debugf("Could not read disk usage for %s: %v", dir, err)
			return nil
		}

		if need > 0 && usage.Free < uint64(need) {
			return fmt.Errorf("%w: need %d bytes, %d free in %s", ErrInsufficientSpace, need, usage.Free, dir)
		}

		return nil
	})
}
