package dac

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveBasePath locates the hardware instance directory for the DAC.
//
// The kernel driver registers the chip under a directory whose name embeds
// its bus address; the surrounding path segments vary by SoC revision, so
// the match is on fragment (e.g. "0048") rather than an exact name. Entries
// are scanned in filesystem order and the first directory whose name
// contains fragment wins; there should only be one candidate anyway.
//
// Returns ("", false) when the parent cannot be read or nothing matches.
// Callers treat that as a degraded state, not a fatal error.
func ResolveBasePath(parent, fragment string) (string, bool) {
	entries, err := os.ReadDir(parent)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if strings.Contains(entry.Name(), fragment) {
			return filepath.Join(parent, entry.Name()), true
		}
	}

	return "", false
}
