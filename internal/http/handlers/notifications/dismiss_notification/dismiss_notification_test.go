package dismissnotification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	c "reminderengine/internal/core/domain/common"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/reminder"
	service "reminderengine/internal/core/services/dismiss_notification"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDismisser struct {
	result service.Result
	err    error
	ids    []notification.ID
}

func (s *stubDismisser) Dismiss(ctx context.Context, id notification.ID) (service.Result, error) {
	s.ids = append(s.ids, id)
	return s.result, s.err
}

func serve(dismisser Dismisser, url string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Method(http.MethodPost, "/notifications/{notificationID:[0-9]+}/dismiss", New(dismisser))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, url, nil))
	return rr
}

func TestDismissNotification(t *testing.T) {
	// Setup ---
	dismissedAt := time.Date(2024, 1, 1, 10, 1, 0, 0, time.UTC)
	dismisser := &stubDismisser{result: service.Result{
		Reminder: reminder.Reminder{ID: 1, Message: "Tea"},
		Notification: notification.Notification{
			ID:          3,
			ReminderID:  1,
			DismissedAt: c.Some(dismissedAt),
		},
		AlreadyDismissed: true,
	}}

	// Exercise ---
	rr := serve(dismisser, "/notifications/3/dismiss")

	// Verify ---
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []notification.ID{3}, dismisser.ids)

	res := Result{}
	require.Nil(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.True(t, res.AlreadyDismissed)
	assert.False(t, res.Reminder.Active)
	require.NotNil(t, res.Notification.DismissedAt)
	assert.True(t, dismissedAt.Equal(*res.Notification.DismissedAt))
}

func TestDismissNotificationErrors(t *testing.T) {
	cases := []struct {
		err            error
		expectedStatus int
	}{
		{err: notification.ErrNotificationDoesNotExist, expectedStatus: http.StatusNotFound},
		{err: reminder.ErrReminderDoesNotExist, expectedStatus: http.StatusNotFound},
		{err: errors.New("db is down"), expectedStatus: http.StatusInternalServerError},
	}

	for _, testcase := range cases {
		t.Run(testcase.err.Error(), func(t *testing.T) {
			rr := serve(&stubDismisser{err: testcase.err}, "/notifications/3/dismiss")
			assert.Equal(t, testcase.expectedStatus, rr.Code)
		})
	}
}

func TestDismissNotificationWithInvalidID(t *testing.T) {
	dismisser := &stubDismisser{}
	rr := serve(dismisser, "/notifications/99999999999999999999/dismiss")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, dismisser.ids)
}
