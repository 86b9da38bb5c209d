package brain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lumilearn/cortex/internal/domain"
	"github.com/lumilearn/cortex/internal/llm"
)

// MockSnapshotStore mocks the SnapshotStore interface.
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) Get(ctx context.Context, learnerID, kind string) ([]byte, error) {
	args := m.Called(ctx, learnerID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSnapshotStore) Set(ctx context.Context, learnerID, kind string, data []byte, ttl time.Duration) error {
	args := m.Called(ctx, learnerID, kind, data, ttl)
	return args.Error(0)
}

func TestSnapshotEveryTenInteractions(t *testing.T) {
	snapshots := new(MockSnapshotStore)
	snapshots.On("Get", mock.Anything, "learner-1", mock.Anything).Return(nil, errors.New("not found"))
	snapshots.On("Set", mock.Anything, "learner-1", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	opts := testOptions(llm.NewMockClient())
	opts.Snapshots = snapshots

	b := NewBrain("learner-1", opts)
	ctx := context.Background()
	err := b.Initialize(ctx, domain.LearnerProfile{ID: "learner-1"})
	assert.NoError(t, err)

	for i := 0; i < 9; i++ {
		_, err := b.ProcessInteraction(ctx, correctAnswerRequest())
		assert.NoError(t, err)
	}
	snapshots.AssertNotCalled(t, "Set", mock.Anything, "learner-1", domain.SnapshotKindState, mock.Anything, mock.Anything)

	_, err = b.ProcessInteraction(ctx, correctAnswerRequest())
	assert.NoError(t, err)

	snapshots.AssertCalled(t, "Set", mock.Anything, "learner-1", domain.SnapshotKindState, mock.Anything, mock.Anything)
	snapshots.AssertCalled(t, "Set", mock.Anything, "learner-1", domain.SnapshotKindHistory, mock.Anything, mock.Anything)
}

func TestSnapshotFailureDoesNotFailPipeline(t *testing.T) {
	snapshots := new(MockSnapshotStore)
	snapshots.On("Get", mock.Anything, "learner-1", mock.Anything).Return(nil, errors.New("not found"))
	snapshots.On("Set", mock.Anything, "learner-1", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("store down"))

	opts := testOptions(llm.NewMockClient())
	opts.Snapshots = snapshots

	b := NewBrain("learner-1", opts)
	ctx := context.Background()
	assert.NoError(t, b.Initialize(ctx, domain.LearnerProfile{ID: "learner-1"}))

	for i := 0; i < SnapshotEvery; i++ {
		res, err := b.ProcessInteraction(ctx, correctAnswerRequest())
		assert.NoError(t, err)
		assert.True(t, res.Success)
	}

	summary, err := b.EndSession(ctx)
	assert.NoError(t, err)
	assert.Equal(t, SnapshotEvery, summary.InteractionsCount)
}

func TestRestoreFromSnapshots(t *testing.T) {
	stateBlob := []byte(`{"cognitive_load":0.9,"engagement":0.2,"frustration":0.1,"fatigue":0.1,"confidence":0.4,"motivation":0.5,"attention_span":0.8,"activities_completed":7}`)
	perfBlob := []byte(`{"accuracy":0.8,"speed":1.5,"consistency":0.9,"improvement_rate":0.1,"mastery_levels":{"algebra":0.6}}`)

	snapshots := new(MockSnapshotStore)
	snapshots.On("Get", mock.Anything, "learner-1", domain.SnapshotKindState).Return(stateBlob, nil)
	snapshots.On("Get", mock.Anything, "learner-1", domain.SnapshotKindHistory).Return(perfBlob, nil)

	opts := testOptions(llm.NewMockClient())
	opts.Snapshots = snapshots

	b := NewBrain("learner-1", opts)
	assert.NoError(t, b.Initialize(context.Background(), domain.LearnerProfile{ID: "learner-1"}))

	view, err := b.GetState()
	assert.NoError(t, err)
	assert.Equal(t, 0.9, view.CognitiveState.CognitiveLoad)
	assert.Equal(t, 7, view.CognitiveState.ActivitiesCompleted)
	assert.Equal(t, 0.8, view.Performance.Accuracy)
	assert.Equal(t, 0.6, view.Performance.MasteryLevels["algebra"])
	assert.False(t, view.CognitiveState.SessionStart.IsZero(), "session anchors must reset to now")
}
