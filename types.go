package dds

import "github.com/dep2p/go-dds/pkg/types"

// ════════════════════════════════════════════════════════════════════════════
//                              类型重导出
// ════════════════════════════════════════════════════════════════════════════

type (
	// Handle 实体句柄
	Handle = types.Handle

	// DomainID 域标识
	DomainID = types.DomainID

	// InstanceID 实体实例标识
	InstanceID = types.InstanceID

	// GUID 实体全局标识
	GUID = types.GUID

	// EntityKind 实体类型
	EntityKind = types.EntityKind

	// QoS 策略集合
	QoS = types.QoS

	// Listener 状态回调集合
	Listener = types.Listener

	// ListenerFunc 单个状态回调
	ListenerFunc = types.ListenerFunc

	// StatusID 通信状态
	StatusID = types.StatusID

	// StatusMask 状态位集合
	StatusMask = types.StatusMask

	// EvtEntityCreated 实体创建事件
	EvtEntityCreated = types.EvtEntityCreated

	// EvtEntityDeleted 实体删除事件
	EvtEntityDeleted = types.EvtEntityDeleted

	// EvtRuntimePhase 运行时阶段变更事件
	EvtRuntimePhase = types.EvtRuntimePhase
)

// DefaultDomainID 默认域
const DefaultDomainID = types.DefaultDomainID

// 通信状态
const (
	StatusInconsistentTopic        = types.StatusInconsistentTopic
	StatusOfferedDeadlineMissed    = types.StatusOfferedDeadlineMissed
	StatusRequestedDeadlineMissed  = types.StatusRequestedDeadlineMissed
	StatusOfferedIncompatibleQoS   = types.StatusOfferedIncompatibleQoS
	StatusRequestedIncompatibleQoS = types.StatusRequestedIncompatibleQoS
	StatusSampleLost               = types.StatusSampleLost
	StatusSampleRejected           = types.StatusSampleRejected
	StatusDataOnReaders            = types.StatusDataOnReaders
	StatusDataAvailable            = types.StatusDataAvailable
	StatusLivelinessLost           = types.StatusLivelinessLost
	StatusLivelinessChanged        = types.StatusLivelinessChanged
	StatusPublicationMatched       = types.StatusPublicationMatched
	StatusSubscriptionMatched      = types.StatusSubscriptionMatched
)

// 状态位
const (
	InconsistentTopicStatus        = types.InconsistentTopicStatus
	OfferedDeadlineMissedStatus    = types.OfferedDeadlineMissedStatus
	RequestedDeadlineMissedStatus  = types.RequestedDeadlineMissedStatus
	OfferedIncompatibleQoSStatus   = types.OfferedIncompatibleQoSStatus
	RequestedIncompatibleQoSStatus = types.RequestedIncompatibleQoSStatus
	SampleLostStatus               = types.SampleLostStatus
	SampleRejectedStatus           = types.SampleRejectedStatus
	DataOnReadersStatus            = types.DataOnReadersStatus
	DataAvailableStatus            = types.DataAvailableStatus
	LivelinessLostStatus           = types.LivelinessLostStatus
	LivelinessChangedStatus        = types.LivelinessChangedStatus
	PublicationMatchedStatus       = types.PublicationMatchedStatus
	SubscriptionMatchedStatus      = types.SubscriptionMatchedStatus
)

// NewQoS 创建空 QoS
func NewQoS() *QoS {
	return types.NewQoS()
}

// NewListener 创建空 Listener
func NewListener() *Listener {
	return types.NewListener()
}
