//go:build windows

package diffrun

import "io"

func pipeBlockSize(io.Reader) int {
	return fallbackChunkSize
}
