package cdp

import (
	"fmt"

	"github.com/go-rod/rod/lib/launcher"
)

// DiscoverExecutable finds a usable Chrome/Chromium binary on this machine.
// It never launches or downloads anything; it only reuses go-rod's search
// of the well-known install locations and PATH.
func DiscoverExecutable() (string, error) {
	path, exists := launcher.LookPath()
	if !exists {
		return "", fmt.Errorf("%w: no chrome/chromium binary found on PATH or well-known locations", ErrSpawnFailed)
	}
	return path, nil
}
