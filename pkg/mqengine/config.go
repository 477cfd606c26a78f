package mqengine

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is the shape of a `.mqrc` file: per-project defaults for module
// search paths and whether to use the compiled evaluation path, so a
// caller does not need to pass the same flags on every invocation.
//
// Example `.mqrc`:
//
//	search_paths = [".", "./lib"]
//	use_compiler = true
type Config struct {
	SearchPaths []string `toml:"search_paths"`
	UseCompiler bool     `toml:"use_compiler"`
}

// LoadConfig reads and decodes a `.mqrc` TOML file at path. A missing file
// is not an error — it returns a zero-value Config so callers can treat
// "no config" the same as "empty config".
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, errors.Wrapf(err, "statting config %q", path)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding config %q", path)
	}
	return &cfg, nil
}

// WithConfig turns a loaded Config into the Options it corresponds to.
// Empty/zero fields are left at the Engine's defaults, so a `.mqrc` that
// only sets one field does not clobber the other.
func WithConfig(cfg *Config) Option {
	return func(e *Engine) {
		if cfg == nil {
			return
		}
		if len(cfg.SearchPaths) > 0 {
			e.loader.SetPaths(cfg.SearchPaths)
		}
		if cfg.UseCompiler {
			e.useCompiler = true
		}
	}
}
