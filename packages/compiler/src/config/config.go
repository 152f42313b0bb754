package config

// DefaultGlobals are the JavaScript globals a component script may reference
// without declaring them.
var DefaultGlobals = []string{
	"undefined", "NaN", "Infinity", "globalThis", "window", "document", "console",
	"Math", "JSON", "Date", "Object", "Array", "String", "Number", "Boolean",
	"Promise", "Map", "Set", "WeakMap", "WeakSet", "Symbol", "RegExp", "Error",
	"TypeError", "parseInt", "parseFloat", "isNaN", "isFinite", "setTimeout",
	"clearTimeout", "setInterval", "clearInterval", "requestAnimationFrame",
	"fetch", "encodeURIComponent", "decodeURIComponent", "performance", "navigator",
	"location", "localStorage", "sessionStorage", "Event", "CustomEvent",
}

// CompilerConfig represents the compiler configuration
type CompilerConfig struct {
	// Globals lists names resolved as host globals rather than binding variables.
	Globals []string
	// Verify runs generated component source through the embedded JS engine.
	Verify bool
	// SourceMaps emits a source map next to each compiled component.
	SourceMaps bool
	// PreserveWhitespaces keeps whitespace-only text nodes in templates.
	PreserveWhitespaces bool
	// ClassPrefix is prepended to generated component class names.
	ClassPrefix string
	// CachePath is the bbolt file backing the persistent compile cache. Empty disables it.
	CachePath string
}

// NewCompilerConfig creates a new CompilerConfig with optional parameters
func NewCompilerConfig(opts ...CompilerConfigOption) *CompilerConfig {
	config := &CompilerConfig{
		Globals:             append([]string(nil), DefaultGlobals...),
		Verify:              false,
		SourceMaps:          false,
		PreserveWhitespaces: PreserveWhitespacesDefault(nil, false),
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// CompilerConfigOption is a function that modifies CompilerConfig
type CompilerConfigOption func(*CompilerConfig)

// WithGlobals adds names to the set of known host globals
func WithGlobals(names ...string) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.Globals = append(c.Globals, names...)
	}
}

// WithVerify sets whether generated code is checked with the JS engine
func WithVerify(verify bool) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.Verify = verify
	}
}

// WithSourceMaps sets whether to emit source maps
func WithSourceMaps(enabled bool) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.SourceMaps = enabled
	}
}

// WithPreserveWhitespaces sets whether to preserve whitespaces
func WithPreserveWhitespaces(preserve bool) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.PreserveWhitespaces = preserve
	}
}

// WithClassPrefix sets the generated class name prefix
func WithClassPrefix(prefix string) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.ClassPrefix = prefix
	}
}

// WithCachePath enables the persistent compile cache at path
func WithCachePath(path string) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.CachePath = path
	}
}

// PreserveWhitespacesDefault returns the default value for preserveWhitespaces
func PreserveWhitespacesDefault(preserveWhitespacesOption *bool, defaultSetting bool) bool {
	if preserveWhitespacesOption == nil {
		return defaultSetting
	}
	return *preserveWhitespacesOption
}

// IsGlobal reports whether name is a configured host global.
func (c *CompilerConfig) IsGlobal(name string) bool {
	for _, g := range c.Globals {
		if g == name {
			return true
		}
	}
	return false
}
