package types

import "time"

// DefaultQoS 返回实体类型的默认配置；不携带配置的类型返回 nil
func DefaultQoS(k EntityKind) *QoS {
	switch k {
	case KindParticipant:
		return NewQoS().
			WithUserData(nil).
			WithEntityFactory(true)
	case KindPublisher, KindSubscriber:
		return NewQoS().
			WithPresentation(Presentation{AccessScope: AccessScopeInstance}).
			WithPartition().
			WithGroupData(nil).
			WithEntityFactory(true)
	case KindTopic:
		return endpointDefaults().
			WithTopicData(nil).
			WithReliability(ReliabilityBestEffort, 100*time.Millisecond)
	case KindWriter:
		return endpointDefaults().
			WithUserData(nil).
			WithOwnershipStrength(0).
			WithReliability(ReliabilityReliable, 100*time.Millisecond).
			WithWriterDataLifecycle(true)
	case KindReader:
		return endpointDefaults().
			WithUserData(nil).
			WithTimeBasedFilter(0).
			WithReliability(ReliabilityBestEffort, 100*time.Millisecond).
			WithReaderDataLifecycle(Infinite, Infinite)
	default:
		return nil
	}
}

func endpointDefaults() *QoS {
	return NewQoS().
		WithDurability(DurabilityVolatile).
		WithDeadline(Infinite).
		WithLatencyBudget(0).
		WithOwnership(OwnershipShared).
		WithLiveliness(LivelinessAutomatic, Infinite).
		WithDestinationOrder(DestinationOrderByReceptionTimestamp).
		WithHistory(HistoryKeepLast, 1).
		WithResourceLimits(LengthUnlimited, LengthUnlimited, LengthUnlimited).
		WithTransportPriority(0).
		WithLifespan(Infinite)
}
