// Package styles defines the visual styling for appbox's terminal output.
//
// All styles use semantic names and adaptive colors that adjust to light and
// dark terminal themes. Definitions live in the embedded styles.yaml.
package styles

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ColorDef represents an adaptive color definition in YAML
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef represents a style definition in YAML
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	Background   string `yaml:"background,omitempty"`
	MarginBottom int    `yaml:"marginBottom,omitempty"`
	PaddingLeft  int    `yaml:"paddingLeft,omitempty"`
}

// Config represents the complete styles configuration
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// StyleRegistry maps semantic names to lipgloss styles
var StyleRegistry map[string]lipgloss.Style

//go:embed styles.yaml
var embeddedStyles []byte

func init() {
	if err := LoadStylesFromData(embeddedStyles); err != nil {
		initDefaultStyles()
	}
}

// initDefaultStyles registers unstyled entries so lookups never fail.
func initDefaultStyles() {
	StyleRegistry = make(map[string]lipgloss.Style)
	for _, name := range []string{
		"Header", "Name", "Source", "Path", "Command",
		"Success", "Error", "Warning", "Muted", "DryRunBanner",
	} {
		StyleRegistry[name] = lipgloss.NewStyle()
	}
}

// LoadStylesFromData loads style configuration from byte data
func LoadStylesFromData(data []byte) error {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse styles data: %w", err)
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(config.Colors))
	for name, def := range config.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	registry := make(map[string]lipgloss.Style, len(config.Styles))
	for name, def := range config.Styles {
		registry[name] = buildStyle(def, colors)
	}
	StyleRegistry = registry
	return nil
}

func buildStyle(def StyleDef, colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	style := lipgloss.NewStyle()

	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if color, ok := colors[def.Foreground]; ok {
		style = style.Foreground(color)
	}
	if color, ok := colors[def.Background]; ok {
		style = style.Background(color)
	}
	if def.MarginBottom > 0 {
		style = style.MarginBottom(def.MarginBottom)
	}
	if def.PaddingLeft > 0 {
		style = style.PaddingLeft(def.PaddingLeft)
	}
	return style
}

// GetStyle safely retrieves a style from the registry
func GetStyle(name string) lipgloss.Style {
	if style, ok := StyleRegistry[name]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Render applies the named style to s.
func Render(name, s string) string {
	return GetStyle(name).Render(s)
}
