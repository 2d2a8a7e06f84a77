package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

var defaultConfig = Config{
	Address:   "",
	HTTP:      "",
	MaxMSize:  DefaultMaxMSize,
	BarHeight: DefaultBarHeight,
	Border:    DefaultBorder,
	ColMode:   DefaultColMode,
	Tags:      []string{"1"},
	Colors: Colors{
		Focus:  DefaultFocusColor,
		Normal: DefaultNormalColor,
	},
}

const (
	DefaultMaxMSize    = 8192
	DefaultBarHeight   = 16
	DefaultBorder      = 1
	DefaultColMode     = "equal"
	DefaultFocusColor  = "#4c7899"
	DefaultNormalColor = "#333333"
)

type Config struct {
	// Address is a dial string, unix!/path or tcp!host!port.
	Address   string   `json:"address" yaml:"address"`
	HTTP      string   `json:"http" yaml:"http"`
	MaxMSize  uint32   `json:"max_msize" yaml:"max_msize"`
	BarHeight int      `json:"bar_height" yaml:"bar_height"`
	Border    int      `json:"border" yaml:"border"`
	ColMode   string   `json:"colmode" yaml:"colmode"`
	Tags      []string `json:"tags" yaml:"tags"`
	Colors    Colors   `json:"colors" yaml:"colors"`
}

type Colors struct {
	Focus  string `json:"focus" yaml:"focus"`
	Normal string `json:"normal" yaml:"normal"`
}

// DefaultAddress is the namespace socket wmii clients look for.
func DefaultAddress() string {
	display := os.Getenv("DISPLAY")
	if display == "" {
		display = ":0"
	}
	// Drop the screen number, ":0.0" and ":0" share a namespace.
	if i := strings.LastIndex(display, "."); i > strings.LastIndex(display, ":") {
		display = display[:i]
	}

	return fmt.Sprintf("unix!/tmp/ns.%s.%s/wmii", os.Getenv("USER"), display)
}

// Normalize fills unset fields with defaults and expands environment
// variables in the address.
func Normalize(cfg Config) Config {
	if cfg.Address == "" {
		cfg.Address = DefaultAddress()
	} else {
		cfg.Address = os.ExpandEnv(cfg.Address)
	}
	if cfg.MaxMSize == 0 {
		cfg.MaxMSize = DefaultMaxMSize
	}
	if cfg.BarHeight <= 0 {
		cfg.BarHeight = DefaultBarHeight
	}
	if cfg.Border < 0 {
		cfg.Border = DefaultBorder
	}
	if cfg.ColMode == "" {
		cfg.ColMode = DefaultColMode
	}
	if len(cfg.Tags) == 0 {
		cfg.Tags = []string{"1"}
	}
	if cfg.Colors.Focus == "" {
		cfg.Colors.Focus = DefaultFocusColor
	}
	if cfg.Colors.Normal == "" {
		cfg.Colors.Normal = DefaultNormalColor
	}
	return cfg
}

// ParseColor parses "#rrggbb" into a pixel value.
func ParseColor(s string) (uint32, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return 0, fmt.Errorf("invalid color: %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color: %q: %w", s, err)
	}

	return uint32(v), nil
}
