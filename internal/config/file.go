package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/gosynge/diff3merge/internal/diff3err"
)

// FileConfig is the optional settings file: defaults for knobs that
// rarely change per invocation. Flags always win over it.
type FileConfig struct {
	DiffProgram  string   `toml:"diff-program"`
	HorizonLines int      `toml:"horizon-lines"`
	Labels       []string `toml:"labels"`
}

// DefaultPath is $XDG_CONFIG_HOME/threemerge/config.toml, falling
// back to ~/.config.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "threemerge", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "threemerge", "config.toml")
}

// Load decodes path, or the default location when path is empty. A
// missing file at the default location is not an error; a missing or
// malformed file named with --config is.
func Load(path string) (*FileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	fc := &FileConfig{}
	if path == "" {
		return fc, nil
	}
	if _, err := toml.DecodeFile(path, fc); err != nil {
		if !explicit && os.IsNotExist(err) {
			return fc, nil
		}
		return nil, diff3err.New(diff3err.Usage, path, err)
	}
	return fc, nil
}

// Apply folds file defaults into c for every knob the command line
// left unset.
func (fc *FileConfig) Apply(c *Config) {
	if c.DiffProgram == "" {
		c.DiffProgram = fc.DiffProgram
	}
	if c.HorizonLines == 0 {
		c.HorizonLines = fc.HorizonLines
	}
	for i := 0; i < len(fc.Labels) && i < 3; i++ {
		if c.Labels[i] == "" {
			c.Labels[i] = fc.Labels[i]
		}
	}
}
