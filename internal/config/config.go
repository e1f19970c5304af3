package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type RuntimeConfig struct {
	DBPath               string
	LogPath              string
	DesktopNotifications bool
	ExactAlarms          bool
	InexactSlack         time.Duration
	LateThreshold        time.Duration
	RolloverTime         string
	TimerBuffer          int
}

func DefaultRuntimeConfig() RuntimeConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return RuntimeConfig{
		DBPath:               filepath.Join(home, ".dailytask", "dailytask.db"),
		LogPath:              filepath.Join(home, ".dailytask", "dailytask.log"),
		DesktopNotifications: true,
		ExactAlarms:          true,
		InexactSlack:         time.Minute,
		LateThreshold:        10 * time.Minute,
		RolloverTime:         "00:05",
		TimerBuffer:          64,
	}
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("DAILYTASK_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("DAILYTASK_LOG_PATH")); v != "" {
		cfg.LogPath = v
	}
	if v, ok := getEnvBool("DAILYTASK_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvBool("DAILYTASK_EXACT_ALARMS"); ok {
		cfg.ExactAlarms = v
	}
	if v, ok := getEnvInt("DAILYTASK_INEXACT_SLACK_SECONDS"); ok && v >= 0 {
		cfg.InexactSlack = time.Duration(v) * time.Second
	}
	if v, ok := getEnvInt("DAILYTASK_LATE_THRESHOLD_MINUTES"); ok && v > 0 {
		cfg.LateThreshold = time.Duration(v) * time.Minute
	}
	if v := strings.TrimSpace(os.Getenv("DAILYTASK_ROLLOVER_TIME")); v != "" {
		cfg.RolloverTime = v
	}
	if v, ok := getEnvInt("DAILYTASK_TIMER_BUFFER"); ok && v > 0 {
		cfg.TimerBuffer = v
	}
	return cfg
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
