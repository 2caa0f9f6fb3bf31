package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/dep2p/go-dds"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// 环境变量名（均使用 DDS_ 前缀）
const (
	envPrefix     = "DDS_"
	envPreset     = "PRESET"
	envMaxHandles = "MAX_HANDLES"
	envLogLevel   = "LOG_LEVEL"
	envLogFile    = "LOG_FILE"
	envMetrics    = "METRICS"
	envIntrospect = "INTROSPECT"
)

// loadConfigFile 从 JSON 文件加载配置
func loadConfigFile(path string) (*dds.UserConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, err
	}
	return dds.ParseUserConfig(data)
}

// applyEnvOverrides 应用环境变量覆盖配置
//
// 环境变量优先级高于配置文件，但低于命令行参数。
func applyEnvOverrides(cfg *dds.UserConfig) {
	// DDS_PRESET
	if v := os.Getenv(envPrefix + envPreset); v != "" {
		cfg.Preset = v
	}

	// DDS_MAX_HANDLES
	if v := os.Getenv(envPrefix + envMaxHandles); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxHandles = n
		}
	}

	// DDS_LOG_LEVEL
	if v := os.Getenv(envPrefix + envLogLevel); v != "" {
		if cfg.Log == nil {
			cfg.Log = &dds.LogUserConfig{}
		}
		cfg.Log.Level = v
	}

	// DDS_METRICS
	if v := os.Getenv(envPrefix + envMetrics); v != "" {
		if cfg.Diagnostics == nil {
			cfg.Diagnostics = &dds.DiagnosticsUserConfig{}
		}
		enable := parseBool(v)
		cfg.Diagnostics.Metrics = &enable
	}

	// DDS_INTROSPECT
	if v := os.Getenv(envPrefix + envIntrospect); v != "" {
		if cfg.Diagnostics == nil {
			cfg.Diagnostics = &dds.DiagnosticsUserConfig{}
		}
		cfg.Diagnostics.Introspect = v
	}
}

// getLogFileFromEnv 从环境变量获取日志文件路径
func getLogFileFromEnv() string {
	return os.Getenv(envPrefix + envLogFile)
}

// parseBool 解析布尔值字符串
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
