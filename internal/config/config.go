package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. The timing values mirror the render
// behavior of browser-based share UIs: listings appear within seconds,
// click races resolve within tens to hundreds of milliseconds.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sharecrawl"

	// DefaultReadyTimeout bounds the wait for a folder listing to render.
	DefaultReadyTimeout = 20 * time.Second

	// DefaultLocationTimeout bounds the wait for the location to change
	// after a folder is activated or the back affordance is invoked.
	DefaultLocationTimeout = 10 * time.Second

	// DefaultPreviewTimeout bounds the wait for a preview surface after a
	// leaf is activated. Expiry is a soft outcome, not an error: many
	// leaves simply never produce a preview.
	DefaultPreviewTimeout = 20 * time.Second

	// DefaultActivateRetries is the number of click attempts before the
	// forced non-interactive activation fallback is used. The underlying
	// faults are render races, so a small fixed count suffices and
	// exponential backoff would only slow the crawl down.
	DefaultActivateRetries = 3

	// DefaultRetryDelay is the pause between click attempts.
	DefaultRetryDelay = 250 * time.Millisecond

	// DefaultSettleDelay is the grace pause after a successful click,
	// letting UI animations finish before the next observation.
	DefaultSettleDelay = 200 * time.Millisecond

	// DefaultPacingDelay is the pause between batch targets. Applied
	// regardless of outcome to avoid hammering the share frontend.
	DefaultPacingDelay = 500 * time.Millisecond

	// DefaultOutputDir is where per-target artifact documents are written.
	DefaultOutputDir = "out"

	// DefaultLedgerFile is the processed-target ledger file name, placed
	// under the XDG data directory unless overridden.
	DefaultLedgerFile = "processed.log"

	// DefaultIDColumn is the target-list column holding the target ID.
	DefaultIDColumn = "brand"

	// DefaultLocatorColumn is the target-list column holding the share link.
	DefaultLocatorColumn = "link"

	// UnboundedDepth disables the depth budget.
	UnboundedDepth = -1
)

// DefaultExtensions is the raster-image suffix allow-list selecting
// extractable leaves. Matching is case-insensitive.
func DefaultExtensions() []string {
	return []string{".png", ".jpg", ".jpeg"}
}

// Config holds all runtime options for sharecrawl. It is populated from
// defaults, the optional configuration file, and CLI flags, then passed
// through the application explicitly rather than held as global state.
type Config struct {
	// Headless controls whether the browser backing the navigation
	// session runs without a visible window.
	Headless bool

	// ReadyTimeout bounds the wait for a listing to render.
	ReadyTimeout time.Duration

	// LocationTimeout bounds waits for location convergence.
	LocationTimeout time.Duration

	// PreviewTimeout bounds the wait for a leaf preview surface.
	PreviewTimeout time.Duration

	// ActivateRetries is the click attempt count before the forced
	// activation fallback.
	ActivateRetries int

	// RetryDelay is the pause between click attempts.
	RetryDelay time.Duration

	// SettleDelay is the grace pause after a successful click.
	SettleDelay time.Duration

	// MaxDepth is the crawl depth budget. Negative means unbounded.
	// Depth 0 crawls only the root listing.
	MaxDepth int

	// Extensions is the case-insensitive suffix allow-list for leaves.
	Extensions []string

	// PacingDelay is the pause between batch targets.
	PacingDelay time.Duration

	// OutputDir is the directory artifact documents are written to.
	OutputDir string

	// LedgerPath is the processed-target ledger file.
	LedgerPath string

	// DBDir is the directory for the optional crawl history database.
	// Empty disables history persistence.
	DBDir string

	// SaveToDB indicates whether finished crawls are stored in the
	// history database.
	SaveToDB bool

	// TargetsPath is the CSV file holding the target list for batch runs.
	TargetsPath string

	// IDColumn and LocatorColumn name the target-list columns to read.
	IDColumn      string
	LocatorColumn string

	// Overwrite re-crawls targets already present in the ledger.
	Overwrite bool

	// Verbose enables debug-level log output.
	Verbose bool

	// ConfigFilePath is an explicitly requested configuration file.
	// Empty means search the standard locations.
	ConfigFilePath string

	// Shares holds per-share overrides loaded from the configuration file.
	Shares *File
}

// NewConfig creates a Config with default values. Defaults are non-zero
// for most fields, so relying on the zero value is not an option.
func NewConfig() *Config {
	return &Config{
		Headless:        true,
		ReadyTimeout:    DefaultReadyTimeout,
		LocationTimeout: DefaultLocationTimeout,
		PreviewTimeout:  DefaultPreviewTimeout,
		ActivateRetries: DefaultActivateRetries,
		RetryDelay:      DefaultRetryDelay,
		SettleDelay:     DefaultSettleDelay,
		MaxDepth:        UnboundedDepth,
		Extensions:      DefaultExtensions(),
		PacingDelay:     DefaultPacingDelay,
		OutputDir:       DefaultOutputDir,
		LedgerPath:      filepath.Join(XDGDataDir(), DefaultLedgerFile),
		DBDir:           XDGDataDir(),
		SaveToDB:        true,
		IDColumn:        DefaultIDColumn,
		LocatorColumn:   DefaultLocatorColumn,
	}
}

// Validate checks the configuration for values that would make a crawl
// misbehave. It returns a sentinel error describing the first problem.
func (c *Config) Validate() error {
	if c.ReadyTimeout <= 0 || c.LocationTimeout <= 0 || c.PreviewTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ActivateRetries < 1 {
		return ErrInvalidRetries
	}
	if c.PacingDelay < 0 {
		return ErrInvalidPacingDelay
	}
	if len(c.Extensions) == 0 {
		return ErrNoExtensions
	}
	return nil
}

// EffectiveDepth returns the depth budget for the given share link.
// Precedence: per-share entry, then the config file's defaults section,
// then the flag or built-in value. Negative means unbounded.
func (c *Config) EffectiveDepth(locator string) int {
	if c.Shares != nil {
		if sc, ok := c.Shares.Shares[locator]; ok && sc.Depth != nil {
			return *sc.Depth
		}
		if c.Shares.Defaults.Depth != nil {
			return *c.Shares.Defaults.Depth
		}
	}
	return c.MaxDepth
}

// EffectiveExtensions returns the extension allow-list for the given
// share link, with the same precedence as EffectiveDepth.
func (c *Config) EffectiveExtensions(locator string) []string {
	if c.Shares != nil {
		if sc, ok := c.Shares.Shares[locator]; ok && len(sc.Extensions) > 0 {
			return sc.Extensions
		}
		if len(c.Shares.Defaults.Extensions) > 0 {
			return c.Shares.Defaults.Extensions
		}
	}
	return c.Extensions
}

// XDGDataDir returns the XDG data directory for sharecrawl.
// On Linux: ~/.local/share/sharecrawl.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}
