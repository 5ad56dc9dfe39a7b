package messagequeue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reliefnet-backend-go/internal/models"
)

type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) Publish(ctx context.Context, queueName string, body []byte) error {
	return m.Called(ctx, queueName, body).Error(0)
}

func (m *mockQueue) Consume(ctx context.Context, queueName string, handler func(ctx context.Context, body []byte) error) error {
	return m.Called(ctx, queueName, handler).Error(0)
}

func (m *mockQueue) Close() error { return m.Called().Error(0) }

func TestEventPublisherRoundTrip(t *testing.T) {
	mq := new(mockQueue)
	var captured []byte
	mq.On("Publish", mock.Anything, "relief.events", mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(2).([]byte) }).
		Return(nil)

	occurred := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := NewEventPublisher(mq, "relief.events")
	err := p.Publish(context.Background(), models.Event{
		Type:       models.EventRescueTeamAssigned,
		OccurredAt: occurred,
		TeamID:     "team",
		DisasterID: "disaster",
	})
	require.NoError(t, err)
	mq.AssertExpectations(t)

	event, err := DecodeEvent(captured)
	require.NoError(t, err)
	assert.Equal(t, models.EventRescueTeamAssigned, event.Type)
	assert.Equal(t, "team", event.TeamID)
	assert.True(t, occurred.Equal(event.OccurredAt))
	assert.NotContains(t, string(captured), "contributionId")
}

func TestEventPublisherPropagatesError(t *testing.T) {
	mq := new(mockQueue)
	mq.On("Publish", mock.Anything, "q", mock.Anything).Return(errors.New("broker down"))

	err := NewEventPublisher(mq, "q").Publish(context.Background(), models.Event{Type: models.EventDisasterDeleted})
	assert.EqualError(t, err, "broker down")
}

func TestDecodeEventRejectsUntyped(t *testing.T) {
	_, err := DecodeEvent([]byte(`{"teamId":"x"}`))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`not json`))
	assert.Error(t, err)
}
