package dac

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// controlFilePermissions applies only when a control file is created, which
// never happens on real hardware (sysfs attributes already exist).
const controlFilePermissions = 0644

// writeControlFile writes value to a control file as plain decimal text.
// The file is opened, written, and closed in one bounded operation.
func writeControlFile(path string, value int32) error {
	data := []byte(strconv.FormatInt(int64(value), 10))
	if err := os.WriteFile(path, data, controlFilePermissions); err != nil {
		return fmt.Errorf("writing control file: %w", err)
	}
	return nil
}

// readControlFile reads a plain-text decimal integer from a control file.
// Trailing whitespace is tolerated; unreadable or malformed content falls
// back to def.
func readControlFile(path string, def int32) int32 {
	data, err := os.ReadFile(path)
	if err != nil {
		return def
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return def
	}
	return int32(n)
}

// controlFileExists reports whether the control file for a feature is
// present on this unit.
func controlFileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
