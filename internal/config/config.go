package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "jrnl.db"
)

type Keymap struct {
	Quit      string `toml:"quit"`
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	AddTask   string `toml:"add_task"`
	AddNote   string `toml:"add_note"`
	Cycle     string `toml:"cycle_status"`
	Done      string `toml:"done"`
	Delete    string `toml:"delete"`
	LinkMode  string `toml:"link"`
	SearchKey string `toml:"search"`
	Due       string `toml:"due"`
	Recur     string `toml:"recur"`
	Confirm   string `toml:"confirm"`
	Cancel    string `toml:"cancel"`
	NextView  string `toml:"next_view"`
	PrevView  string `toml:"prev_view"`
}

type Config struct {
	DBPath      string `toml:"db_path"`
	DefaultView string `toml:"default_view"`
	Keys        Keymap `toml:"keys"`
}

// ResolveConfigPath prefers ~/.config/jrnl/config.toml, falling back to the
// working directory when no home is available.
func ResolveConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(home, ".config", "jrnl", DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(path), DefaultDBName)
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig(dir string) Config {
	return Config{
		DBPath:      filepath.Join(dir, DefaultDBName),
		DefaultView: "journal",
		Keys: Keymap{
			Quit:      "q",
			Up:        "k",
			Down:      "j",
			AddTask:   "a",
			AddNote:   "n",
			Cycle:     " ",
			Done:      "x",
			Delete:    "d",
			LinkMode:  "l",
			SearchKey: "/",
			Due:       "u",
			Recur:     "r",
			Confirm:   "enter",
			Cancel:    "esc",
			NextView:  "tab",
			PrevView:  "shift+tab",
		},
	}
}
