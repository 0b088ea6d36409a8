package main

import (
	"fmt"
	"net/http"
)

// NotifyPending godoc
//
//	@Summary		Notify moderators about pending submissions
//	@Description	Counts places waiting for review and posts a summary to the ops Slack channel. Intended to be hit by a scheduler.
//	@Tags			Ops
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		404	{object}	error
//	@Failure		502	{object}	error
//	@Router			/cron/notify-pending [post]
func (app *application) notifyPendingHandler(w http.ResponseWriter, r *http.Request) {
	// The scheduler authenticates with a shared secret. Anything else sees
	// the same 404 an unknown route would return.
	if app.config.cron.secret == "" || r.Header.Get("X-CRON-SECRET") != app.config.cron.secret {
		http.NotFound(w, r)
		return
	}

	pending, err := app.store.Places.CountPending(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if pending == 0 {
		if err := app.jsonResponse(w, http.StatusOK, map[string]any{"pending": 0, "notified": false}); err != nil {
			app.internalServerError(w, r, err)
		}
		return
	}

	text := fmt.Sprintf("검토 대기 중인 장소가 %d곳 있습니다. 관리자 페이지에서 확인해 주세요.", pending)
	if err := app.notifier.Send(r.Context(), text); err != nil {
		app.logger.Errorw("slack notification failed", "pending", pending, "error", err)
		writeJSONError(w, http.StatusBadGateway, "notification delivery failed")
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]any{"pending": pending, "notified": true}); err != nil {
		app.internalServerError(w, r, err)
	}
}
