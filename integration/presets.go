// Package integration provides resource presets and assembly helpers for
// building the platform runtime. Presets bundle the store backend, cache
// sizes and contract cache capacity into named profiles (light, full,
// archive) so operators pick a workload instead of tuning every knob.
//
// Usage:
//
//	p := integration.LightPreset()   // development and CI
//	p := integration.FullPreset()    // validators
//	p := integration.ArchivePreset() // explorers replaying history
package integration

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/storage"
)

// Store backends.
const (
	MemoryBackend  = "memory"
	LevelDBBackend = "leveldb"
)

// Preset captures the parameters that vary across resource profiles.
type Preset struct {
	Name    string
	Backend string
	// CacheMB and Handles tune the leveldb backend.
	CacheMB int
	Handles int
	// ContractCacheSize is the capacity of the global contract cache.
	ContractCacheSize int
}

// DefaultPreset is the full preset.
func DefaultPreset() Preset {
	return FullPreset()
}

// LightPreset keeps the state in memory. Nothing survives a restart.
func LightPreset() Preset {
	return Preset{
		Name:              "light",
		Backend:           MemoryBackend,
		ContractCacheSize: 64,
	}
}

// FullPreset persists the state in leveldb with moderate caches.
func FullPreset() Preset {
	return Preset{
		Name:              "full",
		Backend:           LevelDBBackend,
		CacheMB:           1024,
		Handles:           512,
		ContractCacheSize: 512,
	}
}

// ArchivePreset is tuned for replaying long histories: large caches and
// every contract kept hot.
func ArchivePreset() Preset {
	return Preset{
		Name:              "archive",
		Backend:           LevelDBBackend,
		CacheMB:           4096,
		Handles:           2048,
		ContractCacheSize: 4096,
	}
}

// GetPresetByName looks up a preset by name.
func GetPresetByName(name string) (Preset, error) {
	switch name {
	case "light":
		return LightPreset(), nil
	case "full", "default", "":
		return FullPreset(), nil
	case "archive":
		return ArchivePreset(), nil
	}
	return Preset{}, errors.Errorf("unknown preset %q (valid: light, full, archive)", name)
}

func openStore(dir string, p Preset) (*storage.Store, error) {
	switch p.Backend {
	case MemoryBackend:
		return storage.NewMemory(), nil
	case LevelDBBackend:
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrapf(err, "create %s", dir)
		}
		return storage.OpenLevelDB(filepath.Join(dir, "state"), p.CacheMB, p.Handles)
	}
	return nil, errors.Errorf("unknown store backend %q", p.Backend)
}

// MakeDrive opens the platform state under dir with the preset's backend.
func MakeDrive(dir string, p Preset) (*drive.Drive, error) {
	store, err := openStore(dir, p)
	if err != nil {
		return nil, err
	}
	d, err := drive.New(store, p.ContractCacheSize)
	if err != nil {
		store.Close()
		return nil, err
	}
	return d, nil
}
