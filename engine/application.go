package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/vesta-engine/vesta/engine/core"
)

// ApplicationConfig holds the window and startup settings of an
// application. It is normally loaded from a TOML file next to the binary.
type ApplicationConfig struct {
	Name        string `toml:"name"`
	StartPosX   uint32 `toml:"start_pos_x"`
	StartPosY   uint32 `toml:"start_pos_y"`
	StartWidth  uint32 `toml:"start_width"`
	StartHeight uint32 `toml:"start_height"`
	AssetsRoot  string `toml:"assets_root"`
	LogLevel    string `toml:"log_level"`
}

func defaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:        "Vesta Application",
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  1280,
		StartHeight: 720,
		AssetsRoot:  "assets",
		LogLevel:    "info",
	}
}

// LoadApplicationConfig reads the TOML config at path. A missing file is
// not an error, the defaults are returned instead.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	cfg := defaultApplicationConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			core.LogWarn("config file %s not found, using defaults", path)
			return cfg, nil
		}
		err = fmt.Errorf("failed to read config %s: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		err = fmt.Errorf("failed to parse config %s: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}

	if cfg.StartWidth == 0 || cfg.StartHeight == 0 {
		err := fmt.Errorf("config %s has a zero window dimension", path)
		core.LogError(err.Error())
		return nil, err
	}
	return cfg, nil
}
