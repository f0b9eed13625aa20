package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultSiteFile is read from the working directory when no other site
// file is named.
const DefaultSiteFile = "xafs.toml"

// Site holds machine-specific settings shared by every stage: where the
// external programs live and how figures and logs are produced.
type Site struct {
	FEFF   FEFFConfig   `toml:"feff"`
	Engine EngineConfig `toml:"engine"`
	Plot   PlotConfig   `toml:"plot"`
	Log    LogConfig    `toml:"log"`
}

type FEFFConfig struct {
	Binary string `toml:"binary"`
}

// EngineConfig is the command wrapping the XAFS analysis library. The
// operation name is appended to Args on every call.
type EngineConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

type PlotConfig struct {
	WidthIn  float64 `toml:"width_in"`
	HeightIn float64 `toml:"height_in"`
	Gnuplot  bool    `toml:"gnuplot"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func DefaultSite() *Site {
	return &Site{
		FEFF: FEFFConfig{
			Binary: "feff6l",
		},
		Engine: EngineConfig{
			Command: "xafs-engine",
		},
		Plot: PlotConfig{
			WidthIn:  8,
			HeightIn: 4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadSite builds the site config: defaults, then the TOML file, then
// environment overrides (a .env file in the working directory is loaded
// first). path may be empty, in which case XAFS_CONFIG or DefaultSiteFile
// is tried; a missing default file is not an error.
func LoadSite(path string) (*Site, error) {
	_ = godotenv.Load()

	site := DefaultSite()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("XAFS_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultSiteFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, site); err != nil {
			return nil, fmt.Errorf("site config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("site config: %w", err)
	}

	site.applyEnv()
	return site, nil
}

func (s *Site) applyEnv() {
	if v := os.Getenv("XAFS_FEFF_BINARY"); v != "" {
		s.FEFF.Binary = v
	}
	if fields := strings.Fields(os.Getenv("XAFS_ENGINE_COMMAND")); len(fields) > 0 {
		s.Engine.Command = fields[0]
		s.Engine.Args = fields[1:]
	}
	if v := os.Getenv("XAFS_LOG_LEVEL"); v != "" {
		s.Log.Level = v
	}
	if v := os.Getenv("XAFS_GNUPLOT"); v != "" {
		s.Plot.Gnuplot = strings.EqualFold(v, "true") || v == "1"
	}
}
