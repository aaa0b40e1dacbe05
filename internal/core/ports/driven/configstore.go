package driven

// ConfigStore holds flat settings addressed by dot paths such as "llm.model".
type ConfigStore interface {
	// Get returns the raw value stored under key. Numbers come back as
	// whatever the backing format produced: int, int64 or float64.
	Get(key string) (any, bool)

	// Update merges values into the store and persists them in one write.
	// Either every value is stored or none is.
	Update(values map[string]any) error

	// Path describes where the settings live, for display.
	Path() string
}
