package types

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"time"
)

// ============================================================================
//                              策略编号与掩码
// ============================================================================

// PolicyMask 策略存在位集合
type PolicyMask uint64

// 策略位
const (
	PolicyUserData PolicyMask = 1 << iota
	PolicyTopicData
	PolicyGroupData
	PolicyPartition
	PolicyDurability
	PolicyPresentation
	PolicyDeadline
	PolicyLatencyBudget
	PolicyOwnership
	PolicyOwnershipStrength
	PolicyLiveliness
	PolicyTimeBasedFilter
	PolicyReliability
	PolicyDestinationOrder
	PolicyHistory
	PolicyResourceLimits
	PolicyTransportPriority
	PolicyLifespan
	PolicyEntityName
	PolicyEntityFactory
	PolicyWriterDataLifecycle
	PolicyReaderDataLifecycle

	policyEnd
)

// AllPolicies 所有策略位
const AllPolicies = policyEnd - 1

// ChangeableMask 实体使能后仍允许修改的策略
const ChangeableMask = PolicyUserData | PolicyTopicData | PolicyGroupData |
	PolicyDeadline | PolicyLatencyBudget | PolicyOwnershipStrength |
	PolicyTimeBasedFilter | PolicyPartition | PolicyTransportPriority |
	PolicyLifespan | PolicyEntityFactory | PolicyWriterDataLifecycle |
	PolicyReaderDataLifecycle

// RequestedOfferedMask 参与请求/提供匹配的策略
const RequestedOfferedMask = PolicyDurability | PolicyPresentation | PolicyDeadline |
	PolicyLatencyBudget | PolicyOwnership | PolicyLiveliness | PolicyReliability |
	PolicyDestinationOrder

// MatchingMask 修改后需要重新匹配的策略（使能后修改返回 ErrUnsupported）
const MatchingMask = RequestedOfferedMask | PolicyPartition

// 各类型可设置的策略
const (
	TopicQoSMask = PolicyTopicData | PolicyDurability | PolicyDeadline |
		PolicyLatencyBudget | PolicyOwnership | PolicyLiveliness | PolicyReliability |
		PolicyTransportPriority | PolicyLifespan | PolicyDestinationOrder |
		PolicyHistory | PolicyResourceLimits | PolicyEntityName

	ParticipantQoSMask = PolicyUserData | PolicyEntityFactory | PolicyEntityName

	PublisherQoSMask = PolicyPresentation | PolicyPartition | PolicyGroupData |
		PolicyEntityFactory | PolicyEntityName

	SubscriberQoSMask = PublisherQoSMask

	WriterQoSMask = PolicyDurability | PolicyDeadline | PolicyLatencyBudget |
		PolicyOwnership | PolicyOwnershipStrength | PolicyLiveliness | PolicyReliability |
		PolicyTransportPriority | PolicyLifespan | PolicyDestinationOrder |
		PolicyHistory | PolicyResourceLimits | PolicyUserData |
		PolicyWriterDataLifecycle | PolicyEntityName

	ReaderQoSMask = PolicyDurability | PolicyDeadline | PolicyLatencyBudget |
		PolicyOwnership | PolicyLiveliness | PolicyTimeBasedFilter | PolicyReliability |
		PolicyDestinationOrder | PolicyHistory | PolicyResourceLimits | PolicyUserData |
		PolicyReaderDataLifecycle | PolicyEntityName
)

var policyNames = map[PolicyMask]string{
	PolicyUserData:            "user_data",
	PolicyTopicData:           "topic_data",
	PolicyGroupData:           "group_data",
	PolicyPartition:           "partition",
	PolicyDurability:          "durability",
	PolicyPresentation:        "presentation",
	PolicyDeadline:            "deadline",
	PolicyLatencyBudget:       "latency_budget",
	PolicyOwnership:           "ownership",
	PolicyOwnershipStrength:   "ownership_strength",
	PolicyLiveliness:          "liveliness",
	PolicyTimeBasedFilter:     "time_based_filter",
	PolicyReliability:         "reliability",
	PolicyDestinationOrder:    "destination_order",
	PolicyHistory:             "history",
	PolicyResourceLimits:      "resource_limits",
	PolicyTransportPriority:   "transport_priority",
	PolicyLifespan:            "lifespan",
	PolicyEntityName:          "entity_name",
	PolicyEntityFactory:       "entity_factory",
	PolicyWriterDataLifecycle: "writer_data_lifecycle",
	PolicyReaderDataLifecycle: "reader_data_lifecycle",
}

// String 返回掩码中的策略名称
func (m PolicyMask) String() string {
	if m == 0 {
		return "none"
	}
	var buf bytes.Buffer
	for p := PolicyMask(1); p < policyEnd; p <<= 1 {
		if m&p == 0 {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('|')
		}
		buf.WriteString(policyNames[p])
	}
	return buf.String()
}

// ============================================================================
//                              策略取值
// ============================================================================

// Infinite 无限时长
const Infinite = time.Duration(math.MaxInt64)

// LengthUnlimited 资源限制中的"不限"
const LengthUnlimited = -1

// DurabilityKind 持久性
type DurabilityKind int

const (
	DurabilityVolatile DurabilityKind = iota
	DurabilityTransientLocal
	DurabilityTransient
	DurabilityPersistent
)

// AccessScope 呈现范围
type AccessScope int

const (
	AccessScopeInstance AccessScope = iota
	AccessScopeTopic
	AccessScopeGroup
)

// Presentation 呈现策略
type Presentation struct {
	AccessScope    AccessScope
	CoherentAccess bool
	OrderedAccess  bool
}

// OwnershipKind 所有权
type OwnershipKind int

const (
	OwnershipShared OwnershipKind = iota
	OwnershipExclusive
)

// LivelinessKind 活性
type LivelinessKind int

const (
	LivelinessAutomatic LivelinessKind = iota
	LivelinessManualByParticipant
	LivelinessManualByTopic
)

// Liveliness 活性策略
type Liveliness struct {
	Kind          LivelinessKind
	LeaseDuration time.Duration
}

// ReliabilityKind 可靠性
type ReliabilityKind int

const (
	ReliabilityBestEffort ReliabilityKind = iota
	ReliabilityReliable
)

// Reliability 可靠性策略
type Reliability struct {
	Kind            ReliabilityKind
	MaxBlockingTime time.Duration
}

// DestinationOrderKind 目的端排序
type DestinationOrderKind int

const (
	DestinationOrderByReceptionTimestamp DestinationOrderKind = iota
	DestinationOrderBySourceTimestamp
)

// HistoryKind 历史
type HistoryKind int

const (
	HistoryKeepLast HistoryKind = iota
	HistoryKeepAll
)

// History 历史策略
type History struct {
	Kind  HistoryKind
	Depth int32
}

// ResourceLimits 资源限制
type ResourceLimits struct {
	MaxSamples            int32
	MaxInstances          int32
	MaxSamplesPerInstance int32
}

// EntityFactory 实体工厂策略
type EntityFactory struct {
	// AutoEnable 子实体创建后是否自动使能
	AutoEnable bool
}

// WriterDataLifecycle 写者数据生命周期
type WriterDataLifecycle struct {
	AutoDisposeUnregisteredInstances bool
}

// ReaderDataLifecycle 读者数据生命周期
type ReaderDataLifecycle struct {
	AutoPurgeNoWriterSamplesDelay time.Duration
	AutoPurgeDisposedSamplesDelay time.Duration
}

// ============================================================================
//                              QoS - 配置值
// ============================================================================

// QoS 实体配置
//
// 仅 Present 中置位的策略有效。QoS 作为整体替换，存入实体后不得原地修改；
// 需要修改时先 Clone。
type QoS struct {
	Present PolicyMask

	UserData            []byte
	TopicData           []byte
	GroupData           []byte
	Partition           []string
	Durability          DurabilityKind
	Presentation        Presentation
	Deadline            time.Duration
	LatencyBudget       time.Duration
	Ownership           OwnershipKind
	OwnershipStrength   int32
	Liveliness          Liveliness
	TimeBasedFilter     time.Duration
	Reliability         Reliability
	DestinationOrder    DestinationOrderKind
	History             History
	ResourceLimits      ResourceLimits
	TransportPriority   int32
	Lifespan            time.Duration
	EntityName          string
	EntityFactory       EntityFactory
	WriterDataLifecycle WriterDataLifecycle
	ReaderDataLifecycle ReaderDataLifecycle
}

// NewQoS 创建空 QoS
func NewQoS() *QoS {
	return &QoS{}
}

// Has 检查策略是否存在
func (q *QoS) Has(p PolicyMask) bool {
	return q != nil && q.Present&p == p
}

// Clear 移除指定策略
func (q *QoS) Clear(p PolicyMask) *QoS {
	q.Present &^= p
	return q
}

// WithUserData 设置用户数据
func (q *QoS) WithUserData(v []byte) *QoS {
	q.UserData = slices.Clone(v)
	q.Present |= PolicyUserData
	return q
}

// WithTopicData 设置主题数据
func (q *QoS) WithTopicData(v []byte) *QoS {
	q.TopicData = slices.Clone(v)
	q.Present |= PolicyTopicData
	return q
}

// WithGroupData 设置组数据
func (q *QoS) WithGroupData(v []byte) *QoS {
	q.GroupData = slices.Clone(v)
	q.Present |= PolicyGroupData
	return q
}

// WithPartition 设置分区
func (q *QoS) WithPartition(names ...string) *QoS {
	q.Partition = slices.Clone(names)
	q.Present |= PolicyPartition
	return q
}

// WithDurability 设置持久性
func (q *QoS) WithDurability(k DurabilityKind) *QoS {
	q.Durability = k
	q.Present |= PolicyDurability
	return q
}

// WithPresentation 设置呈现策略
func (q *QoS) WithPresentation(p Presentation) *QoS {
	q.Presentation = p
	q.Present |= PolicyPresentation
	return q
}

// WithDeadline 设置截止期
func (q *QoS) WithDeadline(d time.Duration) *QoS {
	q.Deadline = d
	q.Present |= PolicyDeadline
	return q
}

// WithLatencyBudget 设置延迟预算
func (q *QoS) WithLatencyBudget(d time.Duration) *QoS {
	q.LatencyBudget = d
	q.Present |= PolicyLatencyBudget
	return q
}

// WithOwnership 设置所有权
func (q *QoS) WithOwnership(k OwnershipKind) *QoS {
	q.Ownership = k
	q.Present |= PolicyOwnership
	return q
}

// WithOwnershipStrength 设置所有权强度
func (q *QoS) WithOwnershipStrength(v int32) *QoS {
	q.OwnershipStrength = v
	q.Present |= PolicyOwnershipStrength
	return q
}

// WithLiveliness 设置活性
func (q *QoS) WithLiveliness(k LivelinessKind, lease time.Duration) *QoS {
	q.Liveliness = Liveliness{Kind: k, LeaseDuration: lease}
	q.Present |= PolicyLiveliness
	return q
}

// WithTimeBasedFilter 设置最小间隔
func (q *QoS) WithTimeBasedFilter(d time.Duration) *QoS {
	q.TimeBasedFilter = d
	q.Present |= PolicyTimeBasedFilter
	return q
}

// WithReliability 设置可靠性
func (q *QoS) WithReliability(k ReliabilityKind, maxBlocking time.Duration) *QoS {
	q.Reliability = Reliability{Kind: k, MaxBlockingTime: maxBlocking}
	q.Present |= PolicyReliability
	return q
}

// WithDestinationOrder 设置目的端排序
func (q *QoS) WithDestinationOrder(k DestinationOrderKind) *QoS {
	q.DestinationOrder = k
	q.Present |= PolicyDestinationOrder
	return q
}

// WithHistory 设置历史
func (q *QoS) WithHistory(k HistoryKind, depth int32) *QoS {
	q.History = History{Kind: k, Depth: depth}
	q.Present |= PolicyHistory
	return q
}

// WithResourceLimits 设置资源限制
func (q *QoS) WithResourceLimits(maxSamples, maxInstances, maxSamplesPerInstance int32) *QoS {
	q.ResourceLimits = ResourceLimits{
		MaxSamples:            maxSamples,
		MaxInstances:          maxInstances,
		MaxSamplesPerInstance: maxSamplesPerInstance,
	}
	q.Present |= PolicyResourceLimits
	return q
}

// WithTransportPriority 设置传输优先级
func (q *QoS) WithTransportPriority(v int32) *QoS {
	q.TransportPriority = v
	q.Present |= PolicyTransportPriority
	return q
}

// WithLifespan 设置生命期
func (q *QoS) WithLifespan(d time.Duration) *QoS {
	q.Lifespan = d
	q.Present |= PolicyLifespan
	return q
}

// WithEntityName 设置实体名称
func (q *QoS) WithEntityName(name string) *QoS {
	q.EntityName = name
	q.Present |= PolicyEntityName
	return q
}

// WithEntityFactory 设置子实体是否自动使能
func (q *QoS) WithEntityFactory(autoEnable bool) *QoS {
	q.EntityFactory = EntityFactory{AutoEnable: autoEnable}
	q.Present |= PolicyEntityFactory
	return q
}

// WithWriterDataLifecycle 设置写者数据生命周期
func (q *QoS) WithWriterDataLifecycle(autoDispose bool) *QoS {
	q.WriterDataLifecycle = WriterDataLifecycle{AutoDisposeUnregisteredInstances: autoDispose}
	q.Present |= PolicyWriterDataLifecycle
	return q
}

// WithReaderDataLifecycle 设置读者数据生命周期
func (q *QoS) WithReaderDataLifecycle(noWriterDelay, disposedDelay time.Duration) *QoS {
	q.ReaderDataLifecycle = ReaderDataLifecycle{
		AutoPurgeNoWriterSamplesDelay: noWriterDelay,
		AutoPurgeDisposedSamplesDelay: disposedDelay,
	}
	q.Present |= PolicyReaderDataLifecycle
	return q
}

// ============================================================================
//                              合并 / 差异 / 校验
// ============================================================================

// Clone 深拷贝；nil 返回空 QoS
func (q *QoS) Clone() *QoS {
	c := &QoS{}
	if q == nil {
		return c
	}
	*c = *q
	c.UserData = slices.Clone(q.UserData)
	c.TopicData = slices.Clone(q.TopicData)
	c.GroupData = slices.Clone(q.GroupData)
	c.Partition = slices.Clone(q.Partition)
	return c
}

// MergeInMissing 将 src 中存在、q 中缺失且属于 mask 的策略复制到 q
func (q *QoS) MergeInMissing(src *QoS, mask PolicyMask) {
	if src == nil {
		return
	}
	missing := src.Present &^ q.Present & mask
	for p := PolicyMask(1); p < policyEnd; p <<= 1 {
		if missing&p != 0 {
			copyPolicy(q, src, p)
		}
	}
	q.Present |= missing
}

// Delta 返回 a 与 b 在 mask 范围内存在性或取值不同的策略
func Delta(a, b *QoS, mask PolicyMask) PolicyMask {
	if a == nil {
		a = &QoS{}
	}
	if b == nil {
		b = &QoS{}
	}
	delta := (a.Present ^ b.Present) & mask
	both := a.Present & b.Present & mask
	for p := PolicyMask(1); p < policyEnd; p <<= 1 {
		if both&p != 0 && !equalPolicy(a, b, p) {
			delta |= p
		}
	}
	return delta
}

// Equal 检查两个配置是否完全一致
func (q *QoS) Equal(o *QoS) bool {
	return Delta(q, o, AllPolicies) == 0
}

// Validate 检查配置的合法性
//
// 单个策略取值非法返回 ErrBadParameter，策略间组合矛盾返回 ErrInconsistentPolicy。
func (q *QoS) Validate() error {
	if q == nil {
		return nil
	}
	if q.Present&^AllPolicies != 0 {
		return fmt.Errorf("%w: unknown policy bits %#x", ErrBadParameter, uint64(q.Present&^AllPolicies))
	}
	if q.Has(PolicyDeadline) && q.Deadline < 0 {
		return fmt.Errorf("%w: negative deadline", ErrBadParameter)
	}
	if q.Has(PolicyLatencyBudget) && q.LatencyBudget < 0 {
		return fmt.Errorf("%w: negative latency budget", ErrBadParameter)
	}
	if q.Has(PolicyTimeBasedFilter) && q.TimeBasedFilter < 0 {
		return fmt.Errorf("%w: negative minimum separation", ErrBadParameter)
	}
	if q.Has(PolicyLifespan) && q.Lifespan <= 0 {
		return fmt.Errorf("%w: lifespan must be positive", ErrBadParameter)
	}
	if q.Has(PolicyLiveliness) && q.Liveliness.LeaseDuration <= 0 {
		return fmt.Errorf("%w: lease duration must be positive", ErrBadParameter)
	}
	if q.Has(PolicyReliability) && q.Reliability.MaxBlockingTime < 0 {
		return fmt.Errorf("%w: negative max blocking time", ErrBadParameter)
	}
	if q.Has(PolicyHistory) && q.History.Kind == HistoryKeepLast && q.History.Depth < 1 {
		return fmt.Errorf("%w: history depth %d", ErrBadParameter, q.History.Depth)
	}
	if q.Has(PolicyResourceLimits) {
		rl := q.ResourceLimits
		for _, v := range []int32{rl.MaxSamples, rl.MaxInstances, rl.MaxSamplesPerInstance} {
			if v < 1 && v != LengthUnlimited {
				return fmt.Errorf("%w: resource limit %d", ErrBadParameter, v)
			}
		}
		if rl.MaxSamples != LengthUnlimited && rl.MaxSamplesPerInstance != LengthUnlimited &&
			rl.MaxSamplesPerInstance > rl.MaxSamples {
			return fmt.Errorf("%w: max samples per instance exceeds max samples", ErrInconsistentPolicy)
		}
		if q.Has(PolicyHistory) && q.History.Kind == HistoryKeepLast &&
			rl.MaxSamplesPerInstance != LengthUnlimited && q.History.Depth > rl.MaxSamplesPerInstance {
			return fmt.Errorf("%w: history depth exceeds max samples per instance", ErrInconsistentPolicy)
		}
	}
	if q.Has(PolicyDeadline|PolicyTimeBasedFilter) && q.Deadline < q.TimeBasedFilter {
		return fmt.Errorf("%w: deadline shorter than minimum separation", ErrInconsistentPolicy)
	}
	return nil
}

func copyPolicy(dst, src *QoS, p PolicyMask) {
	switch p {
	case PolicyUserData:
		dst.UserData = slices.Clone(src.UserData)
	case PolicyTopicData:
		dst.TopicData = slices.Clone(src.TopicData)
	case PolicyGroupData:
		dst.GroupData = slices.Clone(src.GroupData)
	case PolicyPartition:
		dst.Partition = slices.Clone(src.Partition)
	case PolicyDurability:
		dst.Durability = src.Durability
	case PolicyPresentation:
		dst.Presentation = src.Presentation
	case PolicyDeadline:
		dst.Deadline = src.Deadline
	case PolicyLatencyBudget:
		dst.LatencyBudget = src.LatencyBudget
	case PolicyOwnership:
		dst.Ownership = src.Ownership
	case PolicyOwnershipStrength:
		dst.OwnershipStrength = src.OwnershipStrength
	case PolicyLiveliness:
		dst.Liveliness = src.Liveliness
	case PolicyTimeBasedFilter:
		dst.TimeBasedFilter = src.TimeBasedFilter
	case PolicyReliability:
		dst.Reliability = src.Reliability
	case PolicyDestinationOrder:
		dst.DestinationOrder = src.DestinationOrder
	case PolicyHistory:
		dst.History = src.History
	case PolicyResourceLimits:
		dst.ResourceLimits = src.ResourceLimits
	case PolicyTransportPriority:
		dst.TransportPriority = src.TransportPriority
	case PolicyLifespan:
		dst.Lifespan = src.Lifespan
	case PolicyEntityName:
		dst.EntityName = src.EntityName
	case PolicyEntityFactory:
		dst.EntityFactory = src.EntityFactory
	case PolicyWriterDataLifecycle:
		dst.WriterDataLifecycle = src.WriterDataLifecycle
	case PolicyReaderDataLifecycle:
		dst.ReaderDataLifecycle = src.ReaderDataLifecycle
	}
}

func equalPolicy(a, b *QoS, p PolicyMask) bool {
	switch p {
	case PolicyUserData:
		return bytes.Equal(a.UserData, b.UserData)
	case PolicyTopicData:
		return bytes.Equal(a.TopicData, b.TopicData)
	case PolicyGroupData:
		return bytes.Equal(a.GroupData, b.GroupData)
	case PolicyPartition:
		return slices.Equal(a.Partition, b.Partition)
	case PolicyDurability:
		return a.Durability == b.Durability
	case PolicyPresentation:
		return a.Presentation == b.Presentation
	case PolicyDeadline:
		return a.Deadline == b.Deadline
	case PolicyLatencyBudget:
		return a.LatencyBudget == b.LatencyBudget
	case PolicyOwnership:
		return a.Ownership == b.Ownership
	case PolicyOwnershipStrength:
		return a.OwnershipStrength == b.OwnershipStrength
	case PolicyLiveliness:
		return a.Liveliness == b.Liveliness
	case PolicyTimeBasedFilter:
		return a.TimeBasedFilter == b.TimeBasedFilter
	case PolicyReliability:
		return a.Reliability == b.Reliability
	case PolicyDestinationOrder:
		return a.DestinationOrder == b.DestinationOrder
	case PolicyHistory:
		return a.History == b.History
	case PolicyResourceLimits:
		return a.ResourceLimits == b.ResourceLimits
	case PolicyTransportPriority:
		return a.TransportPriority == b.TransportPriority
	case PolicyLifespan:
		return a.Lifespan == b.Lifespan
	case PolicyEntityName:
		return a.EntityName == b.EntityName
	case PolicyEntityFactory:
		return a.EntityFactory == b.EntityFactory
	case PolicyWriterDataLifecycle:
		return a.WriterDataLifecycle == b.WriterDataLifecycle
	case PolicyReaderDataLifecycle:
		return a.ReaderDataLifecycle == b.ReaderDataLifecycle
	}
	return true
}
