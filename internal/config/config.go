// Package config loads postreview settings from the global config file, the
// project's .postreviewconfig, a .env file and the environment.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds all configurable postreview settings.
type Config struct {
	ServerURL     string `json:"server_url"`
	Project       string `json:"project"`
	User          string `json:"user"` // review server user
	P4Port        string `json:"p4_port"`
	P4Client      string `json:"p4_client"`
	P4User        string `json:"p4_user"`
	P4Password    string `json:"-"` // environment only
	GitPath       string `json:"git_path"`
	DefaultFormat string `json:"default_format"` // "markdown" | "json"
	OutputDir     string `json:"output_dir"`
	LogLevel      string `json:"log_level"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		ServerURL:     "http://crucible.example.com",
		Project:       "CR",
		P4Port:        "perforce:1666",
		GitPath:       "git",
		DefaultFormat: "markdown",
		OutputDir:     ".",
		LogLevel:      "info",
	}
}

// Dir returns the postreview config directory, ~/.config/postreview.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "postreview"), nil
}

// LoadGlobal reads ~/.config/postreview/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return loadFile(filepath.Join(dir, "config.json"), true)
}

// LoadProject reads .postreviewconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".postreviewconfig", false)
}

// LoadDotEnv loads .env from the current working directory into the process
// environment. Variables already set win, and a missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load(".env")
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	overlay(&result, global)
	overlay(&result, project)
	return result
}

// overlay copies the non-empty fields of src over dst.
func overlay(dst, src *Config) {
	if src == nil {
		return
	}
	set := func(field *string, v string) {
		if v != "" {
			*field = v
		}
	}
	set(&dst.ServerURL, src.ServerURL)
	set(&dst.Project, src.Project)
	set(&dst.User, src.User)
	set(&dst.P4Port, src.P4Port)
	set(&dst.P4Client, src.P4Client)
	set(&dst.P4User, src.P4User)
	set(&dst.P4Password, src.P4Password)
	set(&dst.GitPath, src.GitPath)
	set(&dst.DefaultFormat, src.DefaultFormat)
	set(&dst.OutputDir, src.OutputDir)
	set(&dst.LogLevel, src.LogLevel)
}

// ApplyEnv fills fields the config files left empty from P4PORT, P4CLIENT,
// P4USER, P4PASSWD and USER.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	fill := func(field *string, key string) {
		if *field == "" {
			*field = getenv(key)
		}
	}
	fill(&cfg.P4Client, "P4CLIENT")
	fill(&cfg.P4User, "P4USER")
	fill(&cfg.P4Password, "P4PASSWD")
	fill(&cfg.User, "USER")
	if v := getenv("P4PORT"); v != "" && (cfg.P4Port == "" || cfg.P4Port == Defaults().P4Port) {
		cfg.P4Port = v
	}
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
