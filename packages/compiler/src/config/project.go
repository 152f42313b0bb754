package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectFileName is the name of the project configuration file.
const ProjectFileName = "wick.toml"

// Project represents a wick.toml project configuration.
type Project struct {
	Compiler CompilerSection `toml:"compiler"`
	Source   SourceSection   `toml:"source"`
	Serve    ServeSection    `toml:"serve"`

	// Dir is the directory containing the wick.toml file (set at load time).
	Dir string `toml:"-"`
}

// CompilerSection mirrors CompilerConfig options.
type CompilerSection struct {
	Globals             []string `toml:"globals"`
	Verify              bool     `toml:"verify"`
	SourceMaps          bool     `toml:"source-maps"`
	PreserveWhitespaces bool     `toml:"preserve-whitespaces"`
	ClassPrefix         string   `toml:"class-prefix"`
	Cache               string   `toml:"cache"`
}

// SourceSection configures where components are read and written.
type SourceSection struct {
	Dirs     []string `toml:"dirs"`
	Output   string   `toml:"output"`
	Manifest bool     `toml:"manifest"`
}

// ServeSection configures the development server.
type ServeSection struct {
	Addr string `toml:"addr"`
	// Debounce is how long the server waits after a source event before
	// recompiling
	Debounce string `toml:"debounce"`
}

// LoadProject parses a wick.toml file from the given directory.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	p, err := ParseProject(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	p.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return p, nil
}

// ParseProject decodes wick.toml content and applies defaults.
func ParseProject(data string) (*Project, error) {
	var p Project
	if _, err := toml.Decode(data, &p); err != nil {
		return nil, err
	}
	p.applyDefaults()
	return &p, nil
}

// DefaultProject returns the configuration used when no wick.toml exists.
func DefaultProject(dir string) *Project {
	p := &Project{Dir: dir}
	p.applyDefaults()
	return p
}

func (p *Project) applyDefaults() {
	if len(p.Source.Dirs) == 0 {
		p.Source.Dirs = []string{"."}
	}
	if p.Source.Output == "" {
		p.Source.Output = filepath.Join("dist", "wick")
	}
	if p.Serve.Addr == "" {
		p.Serve.Addr = "127.0.0.1:8092"
	}
	if p.Serve.Debounce == "" {
		p.Serve.Debounce = "100ms"
	}
}

// FindAndLoadProject walks up from startDir to find a wick.toml file,
// then loads and returns it. Returns nil if no project file is found.
func FindAndLoadProject(startDir string) (*Project, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(path); err == nil {
			return LoadProject(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (p *Project) SourceDirPaths() []string {
	var paths []string
	for _, d := range p.Source.Dirs {
		paths = append(paths, filepath.Join(p.Dir, d))
	}
	return paths
}

// OutputDir returns the absolute output directory.
func (p *Project) OutputDir() string {
	if filepath.IsAbs(p.Source.Output) {
		return p.Source.Output
	}
	return filepath.Join(p.Dir, p.Source.Output)
}

// CompilerOptions converts the [compiler] table into functional options.
func (p *Project) CompilerOptions() []CompilerConfigOption {
	opts := []CompilerConfigOption{
		WithGlobals(p.Compiler.Globals...),
		WithVerify(p.Compiler.Verify),
		WithSourceMaps(p.Compiler.SourceMaps),
		WithPreserveWhitespaces(p.Compiler.PreserveWhitespaces),
		WithClassPrefix(p.Compiler.ClassPrefix),
	}
	if p.Compiler.Cache != "" {
		cache := p.Compiler.Cache
		if !filepath.IsAbs(cache) {
			cache = filepath.Join(p.Dir, cache)
		}
		opts = append(opts, WithCachePath(cache))
	}
	return opts
}
