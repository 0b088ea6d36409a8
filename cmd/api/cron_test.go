package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"honhonji/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCronApp(t *testing.T, pending int) (*application, *fakeNotifier) {
	t.Helper()
	notifier := &fakeNotifier{}
	app := newTestApplication(t, store.Storage{
		Places: &fakePlaces{pending: pending},
	})
	app.config.cron.secret = "topsecret"
	app.notifier = notifier
	return app, notifier
}

func postCron(mux http.Handler, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/cron/notify-pending", nil)
	if secret != "" {
		req.Header.Set("X-CRON-SECRET", secret)
	}
	return executeRequest(req, mux)
}

func TestNotifyPending(t *testing.T) {
	t.Run("wrong secret looks like an unknown route", func(t *testing.T) {
		app, notifier := newCronApp(t, 3)
		mux := app.mount()

		checkResponseCode(t, http.StatusNotFound, postCron(mux, "wrong").Code)
		checkResponseCode(t, http.StatusNotFound, postCron(mux, "").Code)
		assert.Empty(t, notifier.sent)
	})

	t.Run("unset secret disables the endpoint", func(t *testing.T) {
		app, notifier := newCronApp(t, 3)
		app.config.cron.secret = ""
		mux := app.mount()

		checkResponseCode(t, http.StatusNotFound, postCron(mux, "").Code)
		assert.Empty(t, notifier.sent)
	})

	t.Run("pending submissions trigger a notification", func(t *testing.T) {
		app, notifier := newCronApp(t, 3)
		mux := app.mount()

		rr := postCron(mux, "topsecret")
		checkResponseCode(t, http.StatusOK, rr.Code)

		require.Len(t, notifier.sent, 1)
		assert.Contains(t, notifier.sent[0], "3")

		var resp struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, true, resp.Data["notified"])
	})

	t.Run("nothing pending means nothing sent", func(t *testing.T) {
		app, notifier := newCronApp(t, 0)
		mux := app.mount()

		rr := postCron(mux, "topsecret")
		checkResponseCode(t, http.StatusOK, rr.Code)
		assert.Empty(t, notifier.sent)

		var resp struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, false, resp.Data["notified"])
	})

	t.Run("webhook failure is a bad gateway", func(t *testing.T) {
		app, notifier := newCronApp(t, 2)
		notifier.err = errors.New("slack is down")
		mux := app.mount()

		rr := postCron(mux, "topsecret")
		checkResponseCode(t, http.StatusBadGateway, rr.Code)
	})
}
