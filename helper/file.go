package helper

import (
	"os"
	"path/filepath"
	"time"
)

// FilenameByDatePattern builds "<prefix><date><postfix>" using the supplied
// Go time layout, e.g. FilenameByDatePattern("20060102", "rx_", ".csv").
func FilenameByDatePattern(layout, prefix, postfix string) string {
	return prefix + time.Now().Format(layout) + postfix
}

// ScratchPath returns a path inside OS temp space for the given file name.
// Downloads land here before being pushed to durable storage.
func ScratchPath(name string) string {
	return filepath.Join(os.TempDir(), filepath.Base(name))
}
