package report

import (
	"github.com/shirou/gopsutil/v4/disk"
)

// diskUsage is replaced in tests.
var diskUsage = func(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

// FreeSpace returns the free bytes of the filesystem holding path. It is
// best effort: ok is false when the figure is unavailable.
func FreeSpace(path string) (free uint64, ok bool) {
	free, err := diskUsage(path)
	if err != nil {
		return 0, false
	}
	return free, true
}

// MeasureBefore starts a free-space measurement for path. It returns nil
// when the free space cannot be read.
func MeasureBefore(path string) *DiskFree {
	free, ok := FreeSpace(path)
	if !ok {
		return nil
	}
	return &DiskFree{Path: path, Before: free}
}

// MeasureAfter completes a measurement started with MeasureBefore.
func (d *DiskFree) MeasureAfter() {
	if d == nil {
		return
	}
	if free, ok := FreeSpace(d.Path); ok {
		d.After = free
	} else {
		d.After = d.Before
	}
}
