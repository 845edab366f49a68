//go:build windows

package unlhauae

import "golang.org/x/sys/windows"

// freeSpace returns the bytes available to the calling user under path.
func freeSpace(path string) (uint64, error) {
	var avail, total, totalFree uint64
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	if err := windows.GetDiskFreeSpaceEx(p, &avail, &total, &totalFree); err != nil {
		return 0, err
	}
	return avail, nil
}
