package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ReminderCandidates(ctx context.Context, from, to models.Date) ([]models.ReminderCandidate, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReminderCandidate), args.Error(1)
}

func (m *MockRepository) CreateReminder(ctx context.Context, n models.Notification, renewal models.Date) (int, bool, error) {
	args := m.Called(ctx, n, renewal)
	return args.Int(0), args.Bool(1), args.Error(2)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(message any) error {
	args := m.Called(message)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var now = time.Date(2026, time.February, 1, 9, 30, 0, 0, time.UTC)

func candidate(id int, daysAhead int) models.ReminderCandidate {
	return models.ReminderCandidate{
		Subscription: models.Subscription{
			ID:              id,
			UserID:          "u1",
			Name:            "Netflix",
			Cost:            1599,
			BillingCycle:    models.CycleMonthly,
			NextBillingDate: models.DateOf(now).AddDays(daysAhead),
			IsActive:        true,
		},
		Email:     "user@example.com",
		FirstName: "Ann",
	}
}

func TestSchedulerService_RunOnce(t *testing.T) {
	today := models.DateOf(now)

	tests := []struct {
		name          string
		setupMocks    func(r *MockRepository, p *MockPublisher)
		wantPublished int
		wantErr       bool
	}{
		{
			name: "creates and publishes reminders",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("ReminderCandidates", mock.Anything, today, today.AddDays(3)).
					Return([]models.ReminderCandidate{candidate(1, 1), candidate(2, 3)}, nil).Once()
				r.On("CreateReminder", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
					return n.UserID == "u1" && *n.SubscriptionID == 1 && n.Message != ""
				}), today.AddDays(1)).Return(10, true, nil).Once()
				r.On("CreateReminder", mock.Anything, mock.Anything, today.AddDays(3)).Return(11, true, nil).Once()
				p.On("Publish", mock.MatchedBy(func(m models.ReminderMessage) bool {
					return m.NotificationID == 10 && m.DaysUntil == 1 && m.Email == "user@example.com"
				})).Return(nil).Once()
				p.On("Publish", mock.MatchedBy(func(m models.ReminderMessage) bool {
					return m.NotificationID == 11 && m.DaysUntil == 3
				})).Return(nil).Once()
			},
			wantPublished: 2,
		},
		{
			name: "skips existing reminders",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				r.On("ReminderCandidates", mock.Anything, mock.Anything, mock.Anything).
					Return([]models.ReminderCandidate{candidate(1, 0)}, nil).Once()
				r.On("CreateReminder", mock.Anything, mock.Anything, mock.Anything).Return(0, false, nil).Once()
			},
			wantPublished: 0,
		},
		{
			name: "publish failure does not stop the pass",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("ReminderCandidates", mock.Anything, mock.Anything, mock.Anything).
					Return([]models.ReminderCandidate{candidate(1, 1), candidate(2, 2)}, nil).Once()
				r.On("CreateReminder", mock.Anything, mock.Anything, today.AddDays(1)).Return(10, true, nil).Once()
				r.On("CreateReminder", mock.Anything, mock.Anything, today.AddDays(2)).Return(11, true, nil).Once()
				p.On("Publish", mock.Anything).Return(errors.New("channel closed")).Once()
				p.On("Publish", mock.Anything).Return(nil).Once()
			},
			wantPublished: 1,
		},
		{
			name: "create failure is skipped",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				r.On("ReminderCandidates", mock.Anything, mock.Anything, mock.Anything).
					Return([]models.ReminderCandidate{candidate(1, 1)}, nil).Once()
				r.On("CreateReminder", mock.Anything, mock.Anything, mock.Anything).
					Return(0, false, errors.New("db error")).Once()
			},
			wantPublished: 0,
		},
		{
			name: "repository error",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				r.On("ReminderCandidates", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			pub := new(MockPublisher)
			tt.setupMocks(repo, pub)

			svc := NewSchedulerService(repo, pub, time.Hour, 3, newNoopLogger()).
				WithClock(func() time.Time { return now })
			n, err := svc.RunOnce(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantPublished, n)
			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestSchedulerService_RunStopsOnCancel(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ReminderCandidates", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.ReminderCandidate{}, nil)

	svc := NewSchedulerService(repo, new(MockPublisher), 10*time.Millisecond, 3, newNoopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.GreaterOrEqual(t, len(repo.Calls), 2, "runs immediately and on every tick")
}

func TestReminderText(t *testing.T) {
	sub := candidate(1, 0).Subscription
	assert.Contains(t, reminderText(sub, 0), "renews today")
	assert.Contains(t, reminderText(sub, 1), "renews tomorrow")
	assert.Contains(t, reminderText(sub, 3), "renews in 3 days")
	assert.Contains(t, reminderText(sub, 3), "15.99")
}
