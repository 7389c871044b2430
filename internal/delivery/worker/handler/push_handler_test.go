package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kaimono/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReminderUsecase struct {
	enteredBatches [][]uuid.UUID
	actions        []string
	enterErr       error
	actionErr      error
}

func (f *fakeReminderUsecase) ShouldNotify(ctx context.Context, placeID uuid.UUID, now time.Time) (bool, error) {
	return false, nil
}

func (f *fakeReminderUsecase) RecordNotification(ctx context.Context, placeID uuid.UUID, now time.Time) error {
	return nil
}

func (f *fakeReminderUsecase) Snooze(ctx context.Context, placeID uuid.UUID, duration time.Duration) error {
	return nil
}

func (f *fakeReminderUsecase) OnGeofenceEntered(ctx context.Context, placeIDs []uuid.UUID) error {
	f.enteredBatches = append(f.enteredBatches, placeIDs)

	return f.enterErr
}

func (f *fakeReminderUsecase) HandleNotificationAction(ctx context.Context, action string, placeID uuid.UUID, itemIDs []uuid.UUID) error {
	f.actions = append(f.actions, action)

	return f.actionErr
}

type fakeSyncScheduler struct {
	calls int
}

func (f *fakeSyncScheduler) ScheduleSync(ctx context.Context) {
	f.calls++
}

func newTestPushHandler() (*PushHandler, *fakeReminderUsecase, *fakeSyncScheduler) {
	uc := &fakeReminderUsecase{}
	sched := &fakeSyncScheduler{}
	h := &PushHandler{
		verifyPushAuth: false,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		reminderUC:     uc,
		scheduler:      sched,
	}

	return h, uc, sched
}

func pushRequest(t *testing.T, event *service.InboundEvent) *http.Request {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	body, err := json.Marshal(map[string]any{
		"message": map[string]any{
			"data":      base64.StdEncoding.EncodeToString(payload),
			"messageId": "1",
		},
		"subscription": "projects/test/subscriptions/test",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/push", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	return req
}

func doPush(t *testing.T, h *PushHandler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.HandlePush(c))

	return rec
}

func TestHandlePush_EnterDispatchesAndSchedulesSync(t *testing.T) {
	h, uc, sched := newTestPushHandler()

	placeID := uuid.New()
	rec := doPush(t, h, pushRequest(t, &service.InboundEvent{
		Type: service.EventTypeGeofenceTransition,
		Transition: &service.GeofenceTransition{
			Transition: service.TransitionEnter,
			PlaceIDs:   []string{placeID.String()},
		},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, uc.enteredBatches, 1)
	assert.Equal(t, []uuid.UUID{placeID}, uc.enteredBatches[0])
	assert.Equal(t, 1, sched.calls)
}

func TestHandlePush_ExitSchedulesSyncOnly(t *testing.T) {
	h, uc, sched := newTestPushHandler()

	rec := doPush(t, h, pushRequest(t, &service.InboundEvent{
		Type: service.EventTypeGeofenceTransition,
		Transition: &service.GeofenceTransition{
			Transition: service.TransitionExit,
			PlaceIDs:   []string{uuid.NewString()},
		},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, uc.enteredBatches)
	assert.Equal(t, 1, sched.calls)
}

func TestHandlePush_ErrorTransitionSchedulesSync(t *testing.T) {
	h, uc, sched := newTestPushHandler()

	rec := doPush(t, h, pushRequest(t, &service.InboundEvent{
		Type: service.EventTypeGeofenceTransition,
		Transition: &service.GeofenceTransition{
			Transition: service.TransitionError,
		},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, uc.enteredBatches)
	assert.Equal(t, 1, sched.calls)
}

func TestHandlePush_DispatchFailureRequestsRetry(t *testing.T) {
	h, uc, _ := newTestPushHandler()
	uc.enterErr = errors.New("notifier unavailable")

	rec := doPush(t, h, pushRequest(t, &service.InboundEvent{
		Type: service.EventTypeGeofenceTransition,
		Transition: &service.GeofenceTransition{
			Transition: service.TransitionEnter,
			PlaceIDs:   []string{uuid.NewString()},
		},
	}))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandlePush_MalformedPlaceIDsAreDropped(t *testing.T) {
	h, uc, sched := newTestPushHandler()

	placeID := uuid.New()
	rec := doPush(t, h, pushRequest(t, &service.InboundEvent{
		Type: service.EventTypeGeofenceTransition,
		Transition: &service.GeofenceTransition{
			Transition: service.TransitionEnter,
			PlaceIDs:   []string{"not-a-uuid", placeID.String()},
		},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, uc.enteredBatches, 1)
	assert.Equal(t, []uuid.UUID{placeID}, uc.enteredBatches[0])
	assert.Equal(t, 1, sched.calls)
}

func TestHandlePush_NotificationAction(t *testing.T) {
	h, uc, sched := newTestPushHandler()

	rec := doPush(t, h, pushRequest(t, &service.InboundEvent{
		Type: service.EventTypeNotificationAction,
		Action: &service.NotificationAction{
			Action:  "mark_purchased",
			PlaceID: uuid.NewString(),
			ItemIDs: []string{uuid.NewString()},
		},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"mark_purchased"}, uc.actions)
	// Actions schedule their own sync inside the usecase, not here.
	assert.Equal(t, 0, sched.calls)
}

func TestHandlePush_ActionFailureIsNotRetried(t *testing.T) {
	h, uc, _ := newTestPushHandler()
	uc.actionErr = errors.New("unknown reminder action")

	rec := doPush(t, h, pushRequest(t, &service.InboundEvent{
		Type: service.EventTypeNotificationAction,
		Action: &service.NotificationAction{
			Action:  "explode",
			PlaceID: uuid.NewString(),
		},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlePush_BadPayloadIsRejected(t *testing.T) {
	h, _, _ := newTestPushHandler()

	body, err := json.Marshal(map[string]any{
		"message": map[string]any{
			"data":      "%%% not base64 %%%",
			"messageId": "1",
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/push", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doPush(t, h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
