package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
//                              MergeInMissing
// ============================================================================

func TestQoS_MergeInMissing(t *testing.T) {
	dst := NewQoS().WithDeadline(time.Second)
	src := NewQoS().
		WithDeadline(2*time.Second).
		WithPartition("a", "b").
		WithUserData([]byte("u"))

	dst.MergeInMissing(src, PolicyDeadline|PolicyPartition)

	assert.Equal(t, time.Second, dst.Deadline, "已存在的策略不被覆盖")
	assert.Equal(t, []string{"a", "b"}, dst.Partition)
	assert.False(t, dst.Has(PolicyUserData), "mask 之外的策略不被合并")

	// 深拷贝
	src.Partition[0] = "x"
	assert.Equal(t, "a", dst.Partition[0])
}

func TestQoS_MergeInMissingNil(t *testing.T) {
	dst := NewQoS()
	dst.MergeInMissing(nil, AllPolicies)
	assert.Equal(t, PolicyMask(0), dst.Present)
}

// ============================================================================
//                              Delta
// ============================================================================

func TestDelta(t *testing.T) {
	a := NewQoS().WithDeadline(time.Second).WithPartition("p").WithUserData([]byte("x"))
	b := a.Clone()
	assert.Equal(t, PolicyMask(0), Delta(a, b, AllPolicies))
	assert.True(t, a.Equal(b))

	b.WithPartition("q")
	assert.Equal(t, PolicyPartition, Delta(a, b, AllPolicies))
	assert.Equal(t, PolicyMask(0), Delta(a, b, PolicyDeadline))

	b.Clear(PolicyUserData)
	assert.Equal(t, PolicyPartition|PolicyUserData, Delta(a, b, AllPolicies))
}

func TestDelta_NilAndEmptyBytes(t *testing.T) {
	a := NewQoS().WithGroupData(nil)
	b := NewQoS().WithGroupData([]byte{})
	assert.Equal(t, PolicyMask(0), Delta(a, b, AllPolicies))
	assert.Equal(t, PolicyMask(0), Delta(nil, nil, AllPolicies))
}

// ============================================================================
//                              Validate
// ============================================================================

func TestQoS_Validate(t *testing.T) {
	tests := []struct {
		name string
		qos  *QoS
		want error
	}{
		{"nil", nil, nil},
		{"empty", NewQoS(), nil},
		{"negative deadline", NewQoS().WithDeadline(-1), ErrBadParameter},
		{"zero lease", NewQoS().WithLiveliness(LivelinessAutomatic, 0), ErrBadParameter},
		{"zero depth", NewQoS().WithHistory(HistoryKeepLast, 0), ErrBadParameter},
		{"keep all ignores depth", NewQoS().WithHistory(HistoryKeepAll, 0), nil},
		{"bad limit", NewQoS().WithResourceLimits(0, 1, 1), ErrBadParameter},
		{"per instance over total", NewQoS().WithResourceLimits(2, LengthUnlimited, 3), ErrInconsistentPolicy},
		{"depth over limit", NewQoS().WithHistory(HistoryKeepLast, 5).WithResourceLimits(LengthUnlimited, LengthUnlimited, 2), ErrInconsistentPolicy},
		{"deadline under filter", NewQoS().WithDeadline(time.Millisecond).WithTimeBasedFilter(time.Second), ErrInconsistentPolicy},
		{"unknown bits", &QoS{Present: policyEnd}, ErrBadParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.qos.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestDefaultQoS_Valid(t *testing.T) {
	for _, k := range []EntityKind{KindParticipant, KindPublisher, KindSubscriber, KindTopic, KindWriter, KindReader} {
		t.Run(k.String(), func(t *testing.T) {
			q := DefaultQoS(k)
			require.NotNil(t, q)
			assert.NoError(t, q.Validate())
		})
	}
	assert.Nil(t, DefaultQoS(KindWaitSet))
}

func TestPolicyMask_String(t *testing.T) {
	assert.Equal(t, "none", PolicyMask(0).String())
	assert.Equal(t, "group_data|partition", (PolicyGroupData | PolicyPartition).String())
}

func TestMutabilityMasks(t *testing.T) {
	assert.Zero(t, ChangeableMask&PolicyDurability, "durability is immutable")
	assert.NotZero(t, ChangeableMask&PolicyPartition)
	assert.NotZero(t, MatchingMask&PolicyPartition, "partition changes require rematching")
	assert.Zero(t, MatchingMask&PolicyUserData)
}
