package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type GlobalFlags struct {
	ConfigPath      string
	JSON            bool
	Plain           bool
	Select          string
	ResultsOnly     bool
	EnableCommands  string
	LogLevel        string
	Timeout         string
	ApprovalTimeout string
	PollInterval    string
	NoCache         bool
}

type Settings struct {
	OutputMode      string
	SelectFields    []string
	ResultsOnly     bool
	EnableCommands  []string
	LogLevel        string
	Timeout         time.Duration
	ApprovalTimeout time.Duration
	PollInterval    time.Duration
	Retries         int
	SessionPath     string
	SessionLockPath string
	CacheEnabled    bool
	CachePath       string
	CacheLockPath   string
	BridgeURL       string
	BridgeToken     string
	RPCOverrides    map[string]string
}

type fileConfig struct {
	Output   string `yaml:"output"`
	LogLevel string `yaml:"log_level"`
	Timeout  string `yaml:"timeout"`
	Retries  *int   `yaml:"retries"`
	Approval struct {
		Timeout      string `yaml:"timeout"`
		PollInterval string `yaml:"poll_interval"`
	} `yaml:"approval"`
	Sessions struct {
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"sessions"`
	Cache struct {
		Enabled  *bool  `yaml:"enabled"`
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"cache"`
	Bridge struct {
		URL      string `yaml:"url"`
		Token    string `yaml:"token"`
		TokenEnv string `yaml:"token_env"`
	} `yaml:"bridge"`
	RPC map[string]string `yaml:"rpc"`
}

func Load(flags GlobalFlags) (Settings, error) {
	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}

	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}

	applyEnv(&settings)

	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	if settings.ApprovalTimeout <= 0 {
		settings.ApprovalTimeout = 5 * time.Minute
	}
	if settings.PollInterval <= 0 {
		settings.PollInterval = 10 * time.Second
	}
	if settings.Retries < 0 {
		settings.Retries = 0
	}

	return settings, nil
}

func defaultSettings() (Settings, error) {
	sessionPath, sessionLock, err := defaultSessionPaths()
	if err != nil {
		return Settings{}, err
	}
	cachePath, cacheLock, err := defaultCachePaths()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		OutputMode:      "json",
		LogLevel:        "info",
		Timeout:         30 * time.Second,
		ApprovalTimeout: 5 * time.Minute,
		PollInterval:    10 * time.Second,
		Retries:         2,
		SessionPath:     sessionPath,
		SessionLockPath: sessionLock,
		CacheEnabled:    true,
		CachePath:       cachePath,
		CacheLockPath:   cacheLock,
		BridgeURL:       "http://127.0.0.1:7643",
		RPCOverrides:    map[string]string{},
	}, nil
}

func resolveConfigPath(input string) (string, error) {
	if strings.TrimSpace(input) != "" {
		return input, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "walletbeam", "config.yaml"), nil
}

func defaultSessionPaths() (string, string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, "walletbeam")
	return filepath.Join(dir, "sessions.json"), filepath.Join(dir, "sessions.lock"), nil
}

func defaultCachePaths() (string, string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, "walletbeam")
	return filepath.Join(dir, "resolve.db"), filepath.Join(dir, "resolve.lock"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.Output != "" {
		settings.OutputMode = strings.ToLower(cfg.Output)
	}
	if cfg.LogLevel != "" {
		settings.LogLevel = strings.ToLower(cfg.LogLevel)
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		settings.Timeout = d
	}
	if cfg.Retries != nil {
		settings.Retries = *cfg.Retries
	}
	if cfg.Approval.Timeout != "" {
		d, err := time.ParseDuration(cfg.Approval.Timeout)
		if err != nil {
			return fmt.Errorf("config approval.timeout: %w", err)
		}
		settings.ApprovalTimeout = d
	}
	if cfg.Approval.PollInterval != "" {
		d, err := time.ParseDuration(cfg.Approval.PollInterval)
		if err != nil {
			return fmt.Errorf("config approval.poll_interval: %w", err)
		}
		settings.PollInterval = d
	}
	if cfg.Sessions.Path != "" {
		settings.SessionPath = cfg.Sessions.Path
	}
	if cfg.Sessions.LockPath != "" {
		settings.SessionLockPath = cfg.Sessions.LockPath
	}
	if cfg.Cache.Enabled != nil {
		settings.CacheEnabled = *cfg.Cache.Enabled
	}
	if cfg.Cache.Path != "" {
		settings.CachePath = cfg.Cache.Path
	}
	if cfg.Cache.LockPath != "" {
		settings.CacheLockPath = cfg.Cache.LockPath
	}
	if cfg.Bridge.URL != "" {
		settings.BridgeURL = cfg.Bridge.URL
	}
	if cfg.Bridge.Token != "" {
		settings.BridgeToken = cfg.Bridge.Token
	}
	if cfg.Bridge.TokenEnv != "" {
		settings.BridgeToken = os.Getenv(cfg.Bridge.TokenEnv)
	}
	for chainID, url := range cfg.RPC {
		settings.RPCOverrides[strings.TrimSpace(chainID)] = strings.TrimSpace(url)
	}

	return nil
}

func applyEnv(settings *Settings) {
	if v := os.Getenv("WALLETBEAM_OUTPUT"); v != "" {
		settings.OutputMode = strings.ToLower(v)
	}
	if v := os.Getenv("WALLETBEAM_LOG_LEVEL"); v != "" {
		settings.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("WALLETBEAM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	if v := os.Getenv("WALLETBEAM_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			settings.Retries = n
		}
	}
	if v := os.Getenv("WALLETBEAM_APPROVAL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.ApprovalTimeout = d
		}
	}
	if v := os.Getenv("WALLETBEAM_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.PollInterval = d
		}
	}
	if v := os.Getenv("WALLETBEAM_SESSIONS_PATH"); v != "" {
		settings.SessionPath = v
	}
	if v := os.Getenv("WALLETBEAM_SESSIONS_LOCK_PATH"); v != "" {
		settings.SessionLockPath = v
	}
	if v := os.Getenv("WALLETBEAM_NO_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.CacheEnabled = !b
		}
	}
	if v := os.Getenv("WALLETBEAM_CACHE_PATH"); v != "" {
		settings.CachePath = v
	}
	if v := os.Getenv("WALLETBEAM_CACHE_LOCK_PATH"); v != "" {
		settings.CacheLockPath = v
	}
	if v := os.Getenv("WALLETBEAM_BRIDGE_URL"); v != "" {
		settings.BridgeURL = v
	}
	if v := os.Getenv("WALLETBEAM_BRIDGE_TOKEN"); v != "" {
		settings.BridgeToken = v
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.JSON && flags.Plain {
		return fmt.Errorf("cannot use --json and --plain together")
	}
	if flags.JSON {
		settings.OutputMode = "json"
	}
	if flags.Plain {
		settings.OutputMode = "plain"
	}
	if strings.TrimSpace(flags.Select) != "" {
		parts := strings.Split(flags.Select, ",")
		fields := make([]string, 0, len(parts))
		for _, part := range parts {
			f := strings.TrimSpace(part)
			if f != "" {
				fields = append(fields, f)
			}
		}
		settings.SelectFields = fields
	}
	settings.ResultsOnly = flags.ResultsOnly

	if strings.TrimSpace(flags.EnableCommands) != "" {
		parts := strings.Split(flags.EnableCommands, ",")
		allowed := make([]string, 0, len(parts))
		for _, part := range parts {
			v := strings.TrimSpace(part)
			if v != "" {
				allowed = append(allowed, v)
			}
		}
		settings.EnableCommands = allowed
	}

	if flags.LogLevel != "" {
		settings.LogLevel = strings.ToLower(strings.TrimSpace(flags.LogLevel))
	}
	if flags.Timeout != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	if flags.ApprovalTimeout != "" {
		d, err := time.ParseDuration(flags.ApprovalTimeout)
		if err != nil {
			return fmt.Errorf("parse --approval-timeout: %w", err)
		}
		settings.ApprovalTimeout = d
	}
	if flags.PollInterval != "" {
		d, err := time.ParseDuration(flags.PollInterval)
		if err != nil {
			return fmt.Errorf("parse --poll-interval: %w", err)
		}
		settings.PollInterval = d
	}
	if flags.NoCache {
		settings.CacheEnabled = false
	}

	if settings.OutputMode != "json" && settings.OutputMode != "plain" {
		return fmt.Errorf("output must be json or plain")
	}

	return nil
}
