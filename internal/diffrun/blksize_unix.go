//go:build !windows

package diffrun

import (
	"io"

	"golang.org/x/sys/unix"
)

// pipeBlockSize sizes reads from the pipe's reported block size,
// falling back to 8 KiB when the descriptor cannot be inspected.
func pipeBlockSize(r io.Reader) int {
	if f, ok := r.(interface{ Fd() uintptr }); ok {
		var st unix.Stat_t
		if err := unix.Fstat(int(f.Fd()), &st); err == nil && st.Blksize > 0 {
			return int(st.Blksize)
		}
	}
	return fallbackChunkSize
}
