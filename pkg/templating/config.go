package templating

// TemplateConfig holds all configuration options for the templating engine.
type TemplateConfig struct {
	// LeftDelim and RightDelim are the action delimiters. Empty means "{{" and "}}".
	LeftDelim  string `json:"left_delim"`
	RightDelim string `json:"right_delim"`

	// PagePattern is the doublestar pattern, relative to the template directory,
	// matching full page templates.
	PagePattern string `json:"page_pattern"`

	// PartialPattern matches partial templates that are parsed into the set but
	// never served on their own.
	PartialPattern string `json:"partial_pattern"`

	// WatchDebounceMs is how long Watch waits after the last filesystem event
	// before reloading, in milliseconds.
	WatchDebounceMs int `json:"watch_debounce_ms"`
}

// DefaultConfig returns a TemplateConfig with the standard delimiters and
// file patterns.
func DefaultConfig() TemplateConfig {
	return TemplateConfig{
		LeftDelim:       "{{",
		RightDelim:      "}}",
		PagePattern:     "**/*.tmpl.html",
		PartialPattern:  "**/*.part.html",
		WatchDebounceMs: 250,
	}
}
