package execution

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/hupe1980/vecflow/internal/conv"
	"github.com/hupe1980/vecflow/internal/fs"
	"github.com/hupe1980/vecflow/internal/resource"
)

// DiskManagerMode selects where spill files are created.
type DiskManagerMode int

const (
	// DiskManagerDisabled refuses to create spill files.
	DiskManagerDisabled DiskManagerMode = iota
	// DiskManagerOSTemp spills into a fresh directory under os.TempDir.
	DiskManagerOSTemp
	// DiskManagerDirectories spills into fresh directories under the configured roots.
	DiskManagerDirectories
)

// String returns the mode name.
func (m DiskManagerMode) String() string {
	switch m {
	case DiskManagerDisabled:
		return "Disabled"
	case DiskManagerOSTemp:
		return "OSTemp"
	case DiskManagerDirectories:
		return "Directories"
	default:
		return "Unknown"
	}
}

// DiskManagerConfig configures a DiskManager.
type DiskManagerConfig struct {
	Mode DiskManagerMode

	// Directories are the spill roots for DiskManagerDirectories.
	Directories []string

	// Codec compresses spill files. Defaults to zstd.
	Codec SpillCodec

	// IOLimitBytesPerSec throttles spill writes. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// NewDiskManagerConfig returns an OS temp dir configuration with zstd compression.
func NewDiskManagerConfig() DiskManagerConfig {
	return DiskManagerConfig{Mode: DiskManagerOSTemp, Codec: SpillCodecZstd}
}

// DiskManager hands out spill files.
//
// Spill directories are created lazily on the first spill file, so a
// configured but unused DiskManager never touches the disk.
type DiskManager struct {
	cfg    DiskManagerConfig
	fs     fs.FileSystem
	io     *resource.Controller
	logger *slog.Logger

	// lowSpaceBytes triggers a warning when a spill dir has less free space.
	lowSpaceBytes int64

	mu   sync.Mutex
	dirs []string
	next atomic.Uint64
}

// NewDiskManager creates a DiskManager. A nil logger uses slog.Default().
func NewDiskManager(cfg DiskManagerConfig, logger *slog.Logger) (*DiskManager, error) {
	if cfg.Mode == DiskManagerDirectories && len(cfg.Directories) == 0 {
		return nil, errors.New("disk manager: no spill directories configured")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DiskManager{
		cfg:    cfg,
		fs:     fs.Default,
		io:     resource.NewController(resource.Config{IOLimitBytesPerSec: cfg.IOLimitBytesPerSec}),
		logger: logger,
	}, nil
}

// Enabled reports whether spill files can be created.
func (d *DiskManager) Enabled() bool {
	return d != nil && d.cfg.Mode != DiskManagerDisabled
}

// Mode returns the configured mode.
func (d *DiskManager) Mode() DiskManagerMode {
	if d == nil {
		return DiskManagerDisabled
	}
	return d.cfg.Mode
}

// Codec returns the spill compression codec.
func (d *DiskManager) Codec() SpillCodec { return d.cfg.Codec }

// CreateSpillFile creates a new, empty spill file. The description ends up
// in the file name for debugging.
func (d *DiskManager) CreateSpillFile(description string) (*SpillFile, error) {
	if !d.Enabled() {
		return nil, fmt.Errorf("%w: cannot create spill file for %q", ErrSpillDisabled, description)
	}

	dir, err := d.pickDir()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.arrow", sanitize(description), uuid.NewString()))
	f, err := d.fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create spill file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	return &SpillFile{path: path, codec: d.cfg.Codec, fs: d.fs, io: d.io}, nil
}

// SpillDirs returns the spill directories created so far.
func (d *DiskManager) SpillDirs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dirs...)
}

// Close removes every spill directory created by the manager.
func (d *DiskManager) Close() error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for _, dir := range d.dirs {
		if err := d.fs.RemoveAll(dir); err != nil {
			errs = append(errs, err)
		}
	}
	d.dirs = nil
	return errors.Join(errs...)
}

func (d *DiskManager) pickDir() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dirs == nil {
		roots := d.cfg.Directories
		if d.cfg.Mode == DiskManagerOSTemp {
			roots = []string{os.TempDir()}
		}
		for _, root := range roots {
			dir, err := d.fs.MkdirTemp(root, "vecflow-spill-")
			if err != nil {
				return "", fmt.Errorf("create spill dir under %s: %w", root, err)
			}
			d.checkFreeSpace(dir)
			d.dirs = append(d.dirs, dir)
		}
	}

	i := d.next.Add(1) - 1
	return d.dirs[i%uint64(len(d.dirs))], nil
}

func (d *DiskManager) checkFreeSpace(dir string) {
	threshold, err := conv.Int64ToUint64(d.lowSpaceBytes)
	if err != nil || threshold == 0 {
		return
	}
	free, err := freeSpace(dir)
	if err != nil {
		d.logger.Debug("Spill dir free space unknown", "dir", dir, "error", err)
		return
	}
	if free < threshold {
		d.logger.Warn("Spill dir has less free space than the memory pool",
			"dir", dir, "free_bytes", free, "pool_bytes", d.lowSpaceBytes)
	}
}

func sanitize(s string) string {
	if s == "" {
		return "spill"
	}
	b := []byte(s)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			b[i] = '_'
		}
	}
	return string(b)
}
