package types

// ============================================================================
//                              EntityKind - 实体类型
// ============================================================================

// EntityKind 实体类型标签（构造后不可变）
type EntityKind int

const (
	// KindDontCare 不限类型（仅用于 Lock 的期望类型参数）
	KindDontCare EntityKind = iota
	// KindTopic 主题
	KindTopic
	// KindParticipant 域参与者
	KindParticipant
	// KindReader 数据读者
	KindReader
	// KindWriter 数据写者
	KindWriter
	// KindSubscriber 订阅者
	KindSubscriber
	// KindPublisher 发布者
	KindPublisher
	// KindReadCondition 读条件
	KindReadCondition
	// KindQueryCondition 查询条件
	KindQueryCondition
	// KindGuardCondition 守卫条件
	KindGuardCondition
	// KindWaitSet 等待集
	KindWaitSet
	// KindDomain 域
	KindDomain
	// KindRoot 进程根
	KindRoot
)

// String 返回实体类型的字符串表示
func (k EntityKind) String() string {
	switch k {
	case KindDontCare:
		return "dontcare"
	case KindTopic:
		return "topic"
	case KindParticipant:
		return "participant"
	case KindReader:
		return "reader"
	case KindWriter:
		return "writer"
	case KindSubscriber:
		return "subscriber"
	case KindPublisher:
		return "publisher"
	case KindReadCondition:
		return "readcond"
	case KindQueryCondition:
		return "querycond"
	case KindGuardCondition:
		return "guardcond"
	case KindWaitSet:
		return "waitset"
	case KindDomain:
		return "domain"
	case KindRoot:
		return "root"
	default:
		return "unknown"
	}
}

// HasStatus 报告该类型是否使用"状态+使能掩码"字（否则使用触发字）
func (k EntityKind) HasStatus() bool {
	switch k {
	case KindTopic, KindReader, KindWriter, KindPublisher, KindSubscriber, KindParticipant:
		return true
	default:
		return false
	}
}

// HasQoS 报告该类型是否携带 QoS 配置
func (k EntityKind) HasQoS() bool {
	return k.QoSMask() != 0
}

// AllowsChildren 报告该类型是否可以拥有子实体
//
// 拥有该能力的实体，其引用计数同时计入子实体数量。
func (k EntityKind) AllowsChildren() bool {
	switch k {
	case KindTopic, KindWriter, KindGuardCondition, KindReadCondition, KindQueryCondition, KindWaitSet:
		return false
	default:
		return true
	}
}

// QoSMask 返回该类型可设置的策略掩码
func (k EntityKind) QoSMask() PolicyMask {
	switch k {
	case KindTopic:
		return TopicQoSMask
	case KindParticipant:
		return ParticipantQoSMask
	case KindReader:
		return ReaderQoSMask
	case KindWriter:
		return WriterQoSMask
	case KindSubscriber:
		return SubscriberQoSMask
	case KindPublisher:
		return PublisherQoSMask
	default:
		return 0
	}
}

// ============================================================================
//                              DeleteOrigin - 删除来源
// ============================================================================

// DeleteOrigin 删除请求的来源
type DeleteOrigin int

const (
	// OriginExplicit 用户显式删除
	OriginExplicit DeleteOrigin = iota
	// OriginImplicit 隐式级联（隐式父实体失去最后一个子实体，或主题失去最后一个引用）
	OriginImplicit
	// OriginFromParent 父实体递归删除
	OriginFromParent
)

// String 返回删除来源的字符串表示
func (o DeleteOrigin) String() string {
	switch o {
	case OriginExplicit:
		return "explicit"
	case OriginImplicit:
		return "implicit"
	case OriginFromParent:
		return "from_parent"
	default:
		return "unknown"
	}
}
