package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Manifest is the application manifest read at startup.
type Manifest struct {
	Application Application `yaml:"application" toml:"application"`
	Renderer    Renderer    `yaml:"renderer" toml:"renderer"`
	Assets      Assets      `yaml:"assets" toml:"assets"`
	Logging     Logging     `yaml:"logging" toml:"logging"`
}

type Application struct {
	Name      string `yaml:"name" toml:"name"`
	Title     string `yaml:"title" toml:"title"`
	Width     int    `yaml:"width" toml:"width"`
	Height    int    `yaml:"height" toml:"height"`
	Resizable bool   `yaml:"resizable" toml:"resizable"`
}

// Renderer selects and configures the backend.
type Renderer struct {
	// Backend is a registered backend name: "opengl", "vulkan" or "headless".
	Backend string `yaml:"backend" toml:"backend"`
	// Version is "auto" or a backend version such as "gl41" or "vulkan12".
	Version string `yaml:"version" toml:"version"`
	// CoordinateSystem is "lhs", "rhs" or empty for the backend default.
	CoordinateSystem string     `yaml:"coordinate_system" toml:"coordinate_system"`
	VSync            bool       `yaml:"vsync" toml:"vsync"`
	FPSLimit         int        `yaml:"fps_limit" toml:"fps_limit"`
	ClearColor       [4]float32 `yaml:"clear_color" toml:"clear_color"`
	// Debug enables GL error checks and Vulkan validation layers.
	Debug bool `yaml:"debug" toml:"debug"`
}

type Assets struct {
	Root           string `yaml:"root" toml:"root"`
	DecodeWorkers  int    `yaml:"decode_workers" toml:"decode_workers"`
	MaxTextureSize int    `yaml:"max_texture_size" toml:"max_texture_size"`
}

type Logging struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" toml:"level"`
}

// Default returns the manifest used when no file is given.
func Default() *Manifest {
	return &Manifest{
		Application: Application{Name: "ark", Title: "ark", Width: 900, Height: 600, Resizable: true},
		Renderer: Renderer{
			Backend:    "opengl",
			Version:    "auto",
			VSync:      true,
			ClearColor: GetClearColor(),
		},
		Assets:  Assets{Root: ".", DecodeWorkers: GetDecodeWorkers(), MaxTextureSize: GetMaxTextureSize()},
		Logging: Logging{Level: "warn"},
	}
}

var ErrUnknownFormat = errors.New("unknown manifest format")

// Load reads a YAML or TOML manifest, chosen by file extension, on top of
// Default. A leading ~ in path is expanded.
func Load(path string) (*Manifest, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand manifest path: %w", err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m := Default()
	if err := Decode(m, filepath.Ext(p), data); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", p, err)
	}
	if m.Assets.Root, err = homedir.Expand(m.Assets.Root); err != nil {
		return nil, fmt.Errorf("expand assets root: %w", err)
	}
	return m, m.Validate()
}

// Decode unmarshals data into m. ext is ".yaml", ".yml" or ".toml".
func Decode(m *Manifest, ext string, data []byte) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, m)
	case ".toml":
		return toml.Unmarshal(data, m)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
}

// Validate normalizes names and rejects values no backend can honor.
func (m *Manifest) Validate() error {
	r := &m.Renderer
	r.Backend = strings.ToLower(strings.TrimSpace(r.Backend))
	r.Version = strings.ToLower(strings.TrimSpace(r.Version))
	if r.Version == "" {
		r.Version = "auto"
	}
	if r.Backend == "" {
		return errors.New("renderer.backend is empty")
	}
	switch strings.ToLower(r.CoordinateSystem) {
	case "", "default", "auto", "lhs", "left", "rhs", "right":
	default:
		return fmt.Errorf("renderer.coordinate_system: unknown value %q", r.CoordinateSystem)
	}
	if m.Application.Width <= 0 || m.Application.Height <= 0 {
		return fmt.Errorf("application size %dx%d is not positive", m.Application.Width, m.Application.Height)
	}
	return nil
}

// Apply pushes the runtime settings of m into the process-wide settings.
func (m *Manifest) Apply() {
	ApplyRenderer(m.Renderer)
	SetDecodeWorkers(m.Assets.DecodeWorkers)
	SetMaxTextureSize(m.Assets.MaxTextureSize)
}
