package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusID(t *testing.T) {
	assert.Equal(t, "data_on_readers", StatusDataOnReaders.String())
	assert.Equal(t, "unknown", StatusID(-1).String())
	assert.Equal(t, "unknown", StatusID(NumStatus).String())
	assert.Equal(t, DataAvailableStatus, StatusDataAvailable.Mask())
}

func TestStatusMask_String(t *testing.T) {
	assert.Equal(t, "none", StatusMask(0).String())
	assert.Equal(t, "inconsistent_topic|data_available", (InconsistentTopicStatus | DataAvailableStatus).String())
	assert.Equal(t, "unknown", StatusMask(1<<20).String())
}

func TestStatusMaskFor(t *testing.T) {
	assert.Equal(t, TopicStatusMask, StatusMaskFor(KindTopic))
	assert.Zero(t, StatusMaskFor(KindReader)&DataOnReadersStatus, "readers never own data_on_readers")
	assert.Equal(t, DataOnReadersStatus, StatusMaskFor(KindSubscriber))
	assert.Zero(t, StatusMaskFor(KindWaitSet))
	assert.Equal(t, StatusMask(0), AllStatus&^StatusWordMask)
}
