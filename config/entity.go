package config

import (
	"errors"
	"time"
)

// EntityConfig 实体生命周期配置
type EntityConfig struct {
	// DrainLogInterval 删除时等待 pin 排空的日志间隔
	//
	// 等待超过该间隔时按此频率输出 Debug 日志，0 表示不输出。
	DrainLogInterval Duration `json:"drain_log_interval"`

	// DefaultStatusMask 新建实体的初始状态使能掩码（与类型允许的掩码求交）
	DefaultStatusMask uint32 `json:"default_status_mask"`
}

// DefaultEntityConfig 返回默认实体配置
func DefaultEntityConfig() EntityConfig {
	return EntityConfig{
		DrainLogInterval:  Duration(time.Second),
		DefaultStatusMask: 0xffff,
	}
}

// Validate 验证实体配置
func (c EntityConfig) Validate() error {
	if c.DrainLogInterval < 0 {
		return errors.New("drain log interval must be non-negative")
	}
	if c.DefaultStatusMask&^0xffff != 0 {
		return errors.New("default status mask must fit in 16 bits")
	}
	return nil
}

// WithDrainLogInterval 设置排空日志间隔
func (c EntityConfig) WithDrainLogInterval(d time.Duration) EntityConfig {
	c.DrainLogInterval = Duration(d)
	return c
}
