package types

import "strings"

// ============================================================================
//                              StatusID - 通信状态
// ============================================================================

// StatusID 通信状态编号
type StatusID int

const (
	// StatusInconsistentTopic 主题定义不一致
	StatusInconsistentTopic StatusID = iota
	// StatusOfferedDeadlineMissed 写者未满足截止期
	StatusOfferedDeadlineMissed
	// StatusRequestedDeadlineMissed 读者未满足截止期
	StatusRequestedDeadlineMissed
	// StatusOfferedIncompatibleQoS 写者提供的 QoS 不兼容
	StatusOfferedIncompatibleQoS
	// StatusRequestedIncompatibleQoS 读者请求的 QoS 不兼容
	StatusRequestedIncompatibleQoS
	// StatusSampleLost 样本丢失
	StatusSampleLost
	// StatusSampleRejected 样本被拒绝
	StatusSampleRejected
	// StatusDataOnReaders 订阅者下有读者收到数据
	StatusDataOnReaders
	// StatusDataAvailable 读者有可用数据
	StatusDataAvailable
	// StatusLivelinessLost 写者活性丢失
	StatusLivelinessLost
	// StatusLivelinessChanged 读者观察到的活性变化
	StatusLivelinessChanged
	// StatusPublicationMatched 写者匹配变化
	StatusPublicationMatched
	// StatusSubscriptionMatched 读者匹配变化
	StatusSubscriptionMatched

	// NumStatus 状态总数
	NumStatus = int(StatusSubscriptionMatched) + 1
)

var statusNames = [NumStatus]string{
	"inconsistent_topic",
	"offered_deadline_missed",
	"requested_deadline_missed",
	"offered_incompatible_qos",
	"requested_incompatible_qos",
	"sample_lost",
	"sample_rejected",
	"data_on_readers",
	"data_available",
	"liveliness_lost",
	"liveliness_changed",
	"publication_matched",
	"subscription_matched",
}

// String 返回状态名称
func (s StatusID) String() string {
	if s < 0 || int(s) >= NumStatus {
		return "unknown"
	}
	return statusNames[s]
}

// Mask 返回该状态对应的位
func (s StatusID) Mask() StatusMask {
	return StatusMask(1) << uint(s)
}

// ============================================================================
//                              StatusMask - 状态位掩码
// ============================================================================

// StatusMask 状态位集合
type StatusMask uint32

const (
	InconsistentTopicStatus        = StatusMask(1) << StatusInconsistentTopic
	OfferedDeadlineMissedStatus    = StatusMask(1) << StatusOfferedDeadlineMissed
	RequestedDeadlineMissedStatus  = StatusMask(1) << StatusRequestedDeadlineMissed
	OfferedIncompatibleQoSStatus   = StatusMask(1) << StatusOfferedIncompatibleQoS
	RequestedIncompatibleQoSStatus = StatusMask(1) << StatusRequestedIncompatibleQoS
	SampleLostStatus               = StatusMask(1) << StatusSampleLost
	SampleRejectedStatus           = StatusMask(1) << StatusSampleRejected
	DataOnReadersStatus            = StatusMask(1) << StatusDataOnReaders
	DataAvailableStatus            = StatusMask(1) << StatusDataAvailable
	LivelinessLostStatus           = StatusMask(1) << StatusLivelinessLost
	LivelinessChangedStatus        = StatusMask(1) << StatusLivelinessChanged
	PublicationMatchedStatus       = StatusMask(1) << StatusPublicationMatched
	SubscriptionMatchedStatus      = StatusMask(1) << StatusSubscriptionMatched
)

// 打包状态字布局：低 16 位为已触发状态，高 16 位为使能掩码
const (
	// StatusWordMask 合法状态位
	StatusWordMask StatusMask = 0xffff
	// EnabledShift 使能掩码在状态字中的偏移
	EnabledShift = 16
	// AllStatus 所有已定义的状态位
	AllStatus = StatusMask(1)<<NumStatus - 1
)

// 各类型可使用的状态掩码
const (
	TopicStatusMask = InconsistentTopicStatus

	WriterStatusMask = LivelinessLostStatus |
		OfferedDeadlineMissedStatus |
		OfferedIncompatibleQoSStatus |
		PublicationMatchedStatus

	ReaderStatusMask = SampleRejectedStatus |
		LivelinessChangedStatus |
		RequestedDeadlineMissedStatus |
		RequestedIncompatibleQoSStatus |
		DataAvailableStatus |
		SampleLostStatus |
		SubscriptionMatchedStatus

	SubscriberStatusMask = DataOnReadersStatus

	PublisherStatusMask StatusMask = 0

	ParticipantStatusMask StatusMask = 0
)

// Has 检查是否包含任一指定位
func (m StatusMask) Has(bits StatusMask) bool {
	return m&bits != 0
}

// String 返回掩码中各状态名称，以 "|" 连接
func (m StatusMask) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for i := 0; i < NumStatus; i++ {
		if m&(StatusMask(1)<<uint(i)) != 0 {
			parts = append(parts, StatusID(i).String())
		}
	}
	if m&^AllStatus != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}

// StatusMaskFor 返回实体类型可使用的状态掩码
func StatusMaskFor(k EntityKind) StatusMask {
	switch k {
	case KindTopic:
		return TopicStatusMask
	case KindWriter:
		return WriterStatusMask
	case KindReader:
		return ReaderStatusMask
	case KindSubscriber:
		return SubscriberStatusMask
	case KindPublisher:
		return PublisherStatusMask
	case KindParticipant:
		return ParticipantStatusMask
	default:
		return 0
	}
}
