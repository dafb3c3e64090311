package store

// ContentCache keeps generated content between runs, such as the last good
// output of each target.
type ContentCache interface {
	Get(key string) (string, bool, error)
	Set(key string, value string) error
}

type SettingsStore interface {
	Get(key string) (string, bool, error)
	Set(key string, value string) error
	// EnsureDefault stores def unless key already has a value and returns
	// the value in effect.
	EnsureDefault(key string, def string) (string, error)
}

const (
	tableContent  = "content"
	tableSettings = "settings"
)
