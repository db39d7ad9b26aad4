/*
Package config manages TOML config for wikitalk services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/feldtn/wikitalk/internal/utils"
)

// Config holds the entire config structure
type Config struct {
	Server     ServerConfig             `toml:"server"`
	API        APIConfig                `toml:"api"`
	Placement  PlacementConfig          `toml:"placement"`
	Timestamps TimestampConfig          `toml:"timestamps"`
	Triggers   map[string]TriggerConfig `toml:"autocomplete"`
}

// ServerConfig has IPC server related options.
type ServerConfig struct {
	MaxLimit  int `toml:"max_limit"`
	MinPrefix int `toml:"min_prefix"`
	MaxPrefix int `toml:"max_prefix"`
}

// APIConfig points the collaborator client at a wiki.
type APIConfig struct {
	URL            string `toml:"url"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// PlacementConfig carries per-site overrides for where new topics go.
// A page whose title starts with one of these prefixes skips the
// chronology scan entirely.
type PlacementConfig struct {
	TopPrefixes    []string `toml:"top_prefixes"`
	BottomPrefixes []string `toml:"bottom_prefixes"`
}

// TimestampConfig lists signature layouts by name, in Go reference-time
// notation without a zone part.
type TimestampConfig struct {
	Layouts map[string]string `toml:"layouts"`
}

// TriggerConfig is the static per-trigger data for one autocomplete
// channel. Pattern inserts the chosen name at every "$1".
type TriggerConfig struct {
	Marker        string `toml:"marker"`
	MinLength     int    `toml:"min_length"`
	MaxLength     int    `toml:"max_length"`
	MaxSpaces     int    `toml:"max_spaces"`
	CharBlacklist string `toml:"char_blacklist"`
	Pattern       string `toml:"pattern"`
	CaretOffset   int    `toml:"caret_offset"`
	CaretInside   bool   `toml:"caret_inside"`
	Static        bool   `toml:"static"` // no remote pass; roster-only channel
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/wikitalk
// 2. Current executable dir
// 3. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "wikitalk")
	if err := utils.EnsureDir(primaryPath); err == nil {
		return primaryPath, nil
	}
	return utils.GetExecutableDir()
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: ~/.config/wikitalk/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
// Trigger thresholds are empirically tuned; channels stop issuing remote
// lookups once a query can no longer be a plausible name for the trigger.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:  64,
			MinPrefix: 1,
			MaxPrefix: 60,
		},
		API: APIConfig{
			URL:            "https://en.wikipedia.org/w/api.php",
			UserAgent:      "wikitalk/0.4 (talk page helper)",
			TimeoutSeconds: 10,
		},
		Placement: PlacementConfig{},
		Timestamps: TimestampConfig{
			Layouts: map[string]string{},
		},
		Triggers: map[string]TriggerConfig{
			"mention": {
				Marker:        "@",
				MinLength:     1,
				MaxLength:     85,
				MaxSpaces:     5,
				CharBlacklist: "#<>[]|{}/@:",
				Pattern:       "[[User:$1|$1]]",
				CaretOffset:   0,
			},
			"wikilink": {
				Marker:        "[[",
				MinLength:     1,
				MaxLength:     255,
				MaxSpaces:     9,
				CharBlacklist: "#<>[]|{}",
				Pattern:       "[[$1]]",
				CaretOffset:   0,
			},
			"template": {
				Marker:        "{{",
				MinLength:     1,
				MaxLength:     255,
				MaxSpaces:     9,
				CharBlacklist: "#<>[]|{}",
				Pattern:       "{{$1}}",
				CaretOffset:   0,
			},
			"tag": {
				Marker:        "<",
				MinLength:     1,
				MaxLength:     30,
				MaxSpaces:     0,
				CharBlacklist: "",
				Pattern:       "<$1></$1>",
				CaretInside:   true,
				Static:        true,
			},
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. Decoding runs into a pre-filled
// default struct, so a file that sets only some keys keeps defaults for
// the rest.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return nil, err
	}
	// a user file that declares [autocomplete.mention] with only a marker
	// would otherwise zero the tuned thresholds for that trigger; every
	// zero-valued threshold falls back to its builtin
	defaults := DefaultConfig()
	for name, trigger := range config.Triggers {
		def, ok := defaults.Triggers[name]
		if !ok {
			continue
		}
		if trigger.Marker == "" {
			trigger.Marker = def.Marker
		}
		if trigger.MinLength == 0 {
			trigger.MinLength = def.MinLength
		}
		if trigger.MaxLength == 0 {
			trigger.MaxLength = def.MaxLength
		}
		if trigger.MaxSpaces == 0 {
			trigger.MaxSpaces = def.MaxSpaces
		}
		if trigger.CharBlacklist == "" {
			trigger.CharBlacklist = def.CharBlacklist
		}
		if trigger.Pattern == "" {
			trigger.Pattern = def.Pattern
		}
		config.Triggers[name] = trigger
	}
	return config, nil
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
