package renderer

import (
	"fmt"
	"slices"
	"strings"

	"ark-render/internal/core"
	"ark-render/internal/graphics"
)

// RendererVersion is a backend API version. OpenGL versions are encoded as
// major*10+minor, Vulkan versions as 100+major*10+minor.
type RendererVersion int

const (
	VersionAuto     RendererVersion = 0
	VersionOpenGL33 RendererVersion = 33
	VersionOpenGL40 RendererVersion = 40
	VersionOpenGL41 RendererVersion = 41
	VersionOpenGL42 RendererVersion = 42
	VersionOpenGL43 RendererVersion = 43
	VersionOpenGL44 RendererVersion = 44
	VersionOpenGL45 RendererVersion = 45
	VersionOpenGL46 RendererVersion = 46
	VersionVulkan11 RendererVersion = 111
	VersionVulkan12 RendererVersion = 112
	VersionVulkan13 RendererVersion = 113
)

func (v RendererVersion) IsOpenGL() bool { return v >= VersionOpenGL33 && v <= VersionOpenGL46 }
func (v RendererVersion) IsVulkan() bool { return v >= VersionVulkan11 && v <= VersionVulkan13 }

// Major and Minor split the API version.
func (v RendererVersion) Major() int {
	if v.IsVulkan() {
		return int(v-100) / 10
	}
	return int(v) / 10
}

func (v RendererVersion) Minor() int {
	return int(v) % 10
}

func (v RendererVersion) String() string {
	switch {
	case v == VersionAuto:
		return "auto"
	case v.IsOpenGL():
		return fmt.Sprintf("gl%d%d", v.Major(), v.Minor())
	case v.IsVulkan():
		return fmt.Sprintf("vulkan%d%d", v.Major(), v.Minor())
	}
	return fmt.Sprintf("RendererVersion(%d)", int(v))
}

// GLSLVersion is the #version line body for OpenGL versions, for example
// "410 core".
func (v RendererVersion) GLSLVersion() string {
	switch {
	case v.IsOpenGL():
		return fmt.Sprintf("%d%d0 core", v.Major(), v.Minor())
	case v.IsVulkan():
		return "450"
	}
	return ""
}

// ParseRendererVersion accepts the String form, case-insensitively.
func ParseRendererVersion(s string) (RendererVersion, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "auto" {
		return VersionAuto, nil
	}
	for _, v := range allVersions {
		if v.String() == s {
			return v, nil
		}
	}
	return VersionAuto, fmt.Errorf("unknown renderer version %q", s)
}

var allVersions = []RendererVersion{
	VersionOpenGL33, VersionOpenGL40, VersionOpenGL41, VersionOpenGL42,
	VersionOpenGL43, VersionOpenGL44, VersionOpenGL45, VersionOpenGL46,
	VersionVulkan11, VersionVulkan12, VersionVulkan13,
}

// RenderEngineContext is the backend's resolved view of the manifest: the
// API version, the NDC viewport and the shader snippet definitions.
type RenderEngineContext struct {
	version     RendererVersion
	viewport    graphics.Viewport
	definitions map[string]string
	annotations map[string]string
	traits      core.Traits
}

func NewRenderEngineContext(version RendererVersion, viewport graphics.Viewport) *RenderEngineContext {
	return &RenderEngineContext{
		version:     version,
		viewport:    viewport,
		definitions: make(map[string]string),
		annotations: make(map[string]string),
	}
}

func (c *RenderEngineContext) Version() RendererVersion    { return c.version }
func (c *RenderEngineContext) Viewport() graphics.Viewport { return c.viewport }
func (c *RenderEngineContext) Traits() *core.Traits        { return &c.traits }

// SetVersion replaces an automatic version once the surface reports the real
// one.
func (c *RenderEngineContext) SetVersion(v RendererVersion) {
	c.version = v
}

// Define adds a #define injected into every shader by Preprocess.
func (c *RenderEngineContext) Define(name, value string) {
	c.definitions[name] = value
}

func (c *RenderEngineContext) Definitions() map[string]string {
	return c.definitions
}

// Annotate records backend-specific qualifiers, such as a layout binding
// prefix, looked up by shader authors with Annotation.
func (c *RenderEngineContext) Annotate(name, value string) {
	c.annotations[name] = value
}

func (c *RenderEngineContext) Annotation(name string) string {
	return c.annotations[name]
}

// Preprocess prefixes src with the #version line and definitions. Sources
// that already declare a version are returned unchanged.
func (c *RenderEngineContext) Preprocess(src string) string {
	if strings.HasPrefix(strings.TrimSpace(src), "#version") {
		return src
	}
	var sb strings.Builder
	if v := c.version.GLSLVersion(); v != "" {
		sb.WriteString("#version " + v + "\n")
	}
	names := make([]string, 0, len(c.definitions))
	for n := range c.definitions {
		names = append(names, n)
	}
	slices.Sort(names)
	for _, n := range names {
		fmt.Fprintf(&sb, "#define %s %s\n", n, c.definitions[n])
	}
	sb.WriteString(src)
	return sb.String()
}
