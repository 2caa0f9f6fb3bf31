package config

import (
	"errors"
	"fmt"
)

// MaxHandleSlots 句柄中槽位字段可表示的最大槽位数
const MaxHandleSlots = 1<<17 - 1

// HandlesConfig 句柄表配置
type HandlesConfig struct {
	// MaxHandles 同时存活的实体数上限（含根实体）
	MaxHandles int `json:"max_handles"`
}

// DefaultHandlesConfig 返回默认句柄表配置
func DefaultHandlesConfig() HandlesConfig {
	return HandlesConfig{
		MaxHandles: MaxHandleSlots,
	}
}

// Validate 验证句柄表配置
func (c HandlesConfig) Validate() error {
	if c.MaxHandles < 2 {
		return errors.New("max handles must be at least 2")
	}
	if c.MaxHandles > MaxHandleSlots {
		return fmt.Errorf("max handles cannot exceed %d", MaxHandleSlots)
	}
	return nil
}

// WithMaxHandles 设置句柄上限
func (c HandlesConfig) WithMaxHandles(n int) HandlesConfig {
	c.MaxHandles = n
	return c
}
