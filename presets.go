package dds

// Preset 预设配置名称
type Preset string

const (
	// PresetDefault 默认配置
	PresetDefault Preset = "default"

	// PresetDebug 调试配置：Debug 日志，缩短排空日志间隔
	PresetDebug Preset = "debug"

	// PresetConstrained 受限配置：小容量句柄表，关闭生命周期事件
	PresetConstrained Preset = "constrained"
)

// AvailablePresets 返回所有可用的预设
func AvailablePresets() []Preset {
	return []Preset{PresetDefault, PresetDebug, PresetConstrained}
}

func (p Preset) valid() bool {
	switch p {
	case "", PresetDefault, PresetDebug, PresetConstrained:
		return true
	}
	return false
}
