// Package config holds the run configuration for djvuget: the external
// tool commands, the politeness throttle and the resource matching
// parameters. Configuration comes from an optional TOML file; every key
// has a default matching the Kramerius publishing conventions.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Config is the run configuration.
type Config struct {
	// MergeTool is the external command that combines per-page files
	// into the final document (invoked as: tool -c out page...).
	MergeTool string `toml:"merge_tool"`

	// TextTool is the external command that attaches a text layer to a
	// page file (invoked as: tool -s -e script pagefile).
	TextTool string `toml:"text_tool"`

	// PageDelay is the pause between consecutive page fetches, as a Go
	// duration string. A politeness throttle toward the source servers,
	// not a tuning knob.
	PageDelay string `toml:"page_delay"`

	// ImageMIME and TextMIME are the exact MIME types selecting page
	// resources inside the manifest file groups.
	ImageMIME string `toml:"image_mime"`
	TextMIME  string `toml:"text_mime"`

	// TextCharset is the IANA name of the charset forced onto fetched
	// text resources; the servers omit or mis-declare the encoding.
	TextCharset string `toml:"text_charset"`

	delay    time.Duration
	encoding encoding.Encoding
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		MergeTool:   "djvm",
		TextTool:    "djvused",
		PageDelay:   "1s",
		ImageMIME:   "image/vnd.djvu",
		TextMIME:    "text/plain",
		TextCharset: "utf-8",
	}
}

// Load reads the configuration from path, falling back to defaults when
// the file does not exist. The returned configuration is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// No file is fine; defaults apply.
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and resolves the derived values, so
// a bad charset or delay fails before any network work starts.
func (c *Config) Validate() error {
	if c.MergeTool == "" {
		return errors.New("merge_tool must not be empty")
	}
	if c.TextTool == "" {
		return errors.New("text_tool must not be empty")
	}

	delay, err := time.ParseDuration(c.PageDelay)
	if err != nil {
		return fmt.Errorf("invalid page_delay %q: %w", c.PageDelay, err)
	}
	if delay < 0 {
		return fmt.Errorf("page_delay %q must not be negative", c.PageDelay)
	}
	c.delay = delay

	enc, err := ianaindex.IANA.Encoding(c.TextCharset)
	if err != nil || enc == nil {
		return fmt.Errorf("unsupported text_charset %q", c.TextCharset)
	}
	c.encoding = enc

	return nil
}

// Delay returns the parsed page fetch delay. Valid after Validate.
func (c *Config) Delay() time.Duration {
	return c.delay
}

// Encoding returns the resolved text charset. Valid after Validate.
func (c *Config) Encoding() encoding.Encoding {
	return c.encoding
}
