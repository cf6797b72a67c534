package vgca

// Application-wide defaults shared by config loading and the CLI.
const (
	DefaultAppName    = "vgc-analyzer"
	DefaultConfigPath = "$HOME/.config/vgc-analyzer"
	DefaultCacheDir   = "$HOME/.cache/vgc-analyzer"

	// Embedded history database defaults.
	DefaultDatabaseDir  = "$HOME/.local/share/vgc-analyzer"
	DefaultDatabaseDSN  = "file:vgc-analyzer.db"
	DefaultDatabaseType = "libsql"
)
