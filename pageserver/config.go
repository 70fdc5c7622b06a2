package pageserver

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
)

// Config holds the resolved settings for a page-server process: the
// backing-file path and size, and the listen address/port. Fields mirror
// the flag names in cmd/pageserver one-for-one so a config file and the
// command line can merge field-by-field.
type Config struct {
	File    string `json:"file"`
	Size    int64  `json:"size,omitempty"`
	Port    int    `json:"port,omitempty"`
	Addr    string `json:"addr,omitempty"`
	Verbose bool   `json:"verbose,omitempty"`
}

// DefaultConfig returns the built-in defaults: port 8964, address 0.0.0.0.
func DefaultConfig() Config {
	return Config{
		Port: 8964,
		Addr: "0.0.0.0",
	}
}

// LoadConfigFile reads a HuJSON (JSON plus comments and trailing commas)
// config file at path and merges its fields over base. A zero-value field
// in the file (e.g. omitted "port") leaves base's value untouched.
func LoadConfigFile(base Config, path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return Config{}, fmt.Errorf("pageserver: parsing config %s: %w", path, err)
	}
	var overlay Config
	if err := json.Unmarshal(std, &overlay); err != nil {
		return Config{}, fmt.Errorf("pageserver: decoding config %s: %w", path, err)
	}
	merged := base
	if overlay.File != "" {
		merged.File = overlay.File
	}
	if overlay.Size != 0 {
		merged.Size = overlay.Size
	}
	if overlay.Port != 0 {
		merged.Port = overlay.Port
	}
	if overlay.Addr != "" {
		merged.Addr = overlay.Addr
	}
	if overlay.Verbose {
		merged.Verbose = overlay.Verbose
	}
	return merged, nil
}

// ParseSize parses a size argument in the "N[K|M|G]" form used by --size,
// e.g. "64M", "128m", "1G", or a bare byte count such as "4096".
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("pageserver: empty size")
	}
	mult := int64(1)
	suffix := s[len(s)-1]
	digits := s
	switch suffix {
	case 'k', 'K':
		mult = 1 << 10
		digits = s[:len(s)-1]
	case 'm', 'M':
		mult = 1 << 20
		digits = s[:len(s)-1]
	case 'g', 'G':
		mult = 1 << 30
		digits = s[:len(s)-1]
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("pageserver: invalid size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("pageserver: negative size %q", s)
	}
	return n * mult, nil
}
