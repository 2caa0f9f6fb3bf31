package config

import (
	"errors"
	"fmt"
)

// ValidateAll 验证整个配置的有效性
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并修复可自动修复的问题
//
//   - 句柄上限超出槽位范围 -> 截断到上限
//   - 排空日志间隔为负 -> 使用默认值
//   - 未知日志格式 -> text
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if c.Handles.MaxHandles > MaxHandleSlots {
		c.Handles.MaxHandles = MaxHandleSlots
	}
	if c.Entity.DrainLogInterval < 0 {
		c.Entity.DrainLogInterval = DefaultEntityConfig().DrainLogInterval
	}
	if c.Log.Format != "json" {
		c.Log.Format = "text"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}
	return c, nil
}

// MustValidate 验证配置，如果失败则 panic
//
// 仅用于初始化阶段或测试代码。
func MustValidate(c *Config) {
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("config validation failed: %v", err))
	}
}
