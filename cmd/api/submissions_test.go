package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"honhonji/internal/geocode"
	"honhonji/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubmissionsApp(t *testing.T) (*application, *fakeSubmissions, *fakeGeocoder, *fakeProfiles) {
	t.Helper()
	submissions := &fakeSubmissions{}
	geocoder := &fakeGeocoder{coords: &geocode.Coordinates{Latitude: 37.5665, Longitude: 126.978}}
	profiles := &fakeProfiles{}
	app := newTestApplication(t, store.Storage{
		Submissions: submissions,
		Profiles:    profiles,
	})
	app.geocoder = geocoder
	return app, submissions, geocoder, profiles
}

func postSubmission(mux http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/submissions", bytes.NewBufferString(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return executeRequest(req, mux)
}

func TestSubmitPlace(t *testing.T) {
	t.Run("restaurant without address fails validation", func(t *testing.T) {
		app, submissions, _, _ := newSubmissionsApp(t)
		mux := app.mount()

		rr := postSubmission(mux, `{"place_type": "restaurant", "place_name": "김밥천국"}`, nil)
		checkResponseCode(t, http.StatusUnprocessableEntity, rr.Code)

		var resp struct {
			Fields map[string]string `json:"fields"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Contains(t, resp.Fields, "address")
		assert.Empty(t, submissions.submitted)
	})

	t.Run("whitespace-only address fails validation", func(t *testing.T) {
		app, submissions, _, _ := newSubmissionsApp(t)
		mux := app.mount()

		rr := postSubmission(mux, `{"place_type": "cafe", "place_name": "카페", "address": "   "}`, nil)
		checkResponseCode(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Empty(t, submissions.submitted)
	})

	t.Run("trail without address is accepted and skips geocoding", func(t *testing.T) {
		app, submissions, geocoder, _ := newSubmissionsApp(t)
		mux := app.mount()

		rr := postSubmission(mux, `{"place_type": "trail", "place_name": "한강 산책로"}`, nil)
		checkResponseCode(t, http.StatusCreated, rr.Code)

		require.Len(t, submissions.submitted, 1)
		sub := submissions.submitted[0]
		assert.Nil(t, sub.Address)
		assert.Nil(t, sub.Lat)
		assert.Empty(t, geocoder.calls)
	})

	t.Run("address is geocoded on the way in", func(t *testing.T) {
		app, submissions, geocoder, _ := newSubmissionsApp(t)
		mux := app.mount()

		rr := postSubmission(mux, `{"place_type": "restaurant", "place_name": "국밥집", "address": "서울 중구 세종대로 110"}`, nil)
		checkResponseCode(t, http.StatusCreated, rr.Code)

		require.Len(t, geocoder.calls, 1)
		require.Len(t, submissions.submitted, 1)
		sub := submissions.submitted[0]
		require.NotNil(t, sub.Lat)
		assert.InDelta(t, 37.5665, *sub.Lat, 0.0001)
	})

	t.Run("geocoding failure does not block the submission", func(t *testing.T) {
		app, submissions, geocoder, _ := newSubmissionsApp(t)
		geocoder.err = geocode.ErrNoResult
		mux := app.mount()

		rr := postSubmission(mux, `{"place_type": "restaurant", "place_name": "국밥집", "address": "존재하지 않는 주소"}`, nil)
		checkResponseCode(t, http.StatusCreated, rr.Code)

		require.Len(t, submissions.submitted, 1)
		sub := submissions.submitted[0]
		assert.Nil(t, sub.Lat)
		assert.Nil(t, sub.Lng)
		require.NotNil(t, sub.Address)
	})

	t.Run("anonymous and authenticated sources differ", func(t *testing.T) {
		app, submissions, _, profiles := newSubmissionsApp(t)
		mux := app.mount()

		rr := postSubmission(mux, `{"place_type": "trail", "place_name": "북한산 둘레길"}`, nil)
		checkResponseCode(t, http.StatusCreated, rr.Code)

		profileID := seedProfile(profiles)
		rr = postSubmission(mux, `{"place_type": "trail", "place_name": "북한산 둘레길"}`, map[string]string{
			"Authorization": bearerToken(t, app, profileID),
		})
		checkResponseCode(t, http.StatusCreated, rr.Code)

		require.Len(t, submissions.submitted, 2)
		anon, authed := submissions.submitted[0], submissions.submitted[1]
		assert.Equal(t, store.PlaceSourceAdmin, anon.Source)
		assert.Nil(t, anon.SubmittedBy)
		assert.Equal(t, store.PlaceSourceUser, authed.Source)
		require.NotNil(t, authed.SubmittedBy)
		assert.Equal(t, profileID, *authed.SubmittedBy)
	})

	t.Run("tag link failure surfaces as a server error", func(t *testing.T) {
		app, submissions, _, _ := newSubmissionsApp(t)
		submissions.tagErr = errors.New("tag 9 does not exist")
		mux := app.mount()

		rr := postSubmission(mux, `{"place_type": "trail", "place_name": "둘레길", "tag_ids": [9]}`, nil)
		checkResponseCode(t, http.StatusInternalServerError, rr.Code)

		// The place row itself was written before the tag link failed.
		require.Len(t, submissions.submitted, 1)
	})

	t.Run("unknown place type fails validation", func(t *testing.T) {
		app, _, _, _ := newSubmissionsApp(t)
		mux := app.mount()

		rr := postSubmission(mux, `{"place_type": "museum", "place_name": "박물관", "address": "어딘가"}`, nil)
		checkResponseCode(t, http.StatusUnprocessableEntity, rr.Code)
	})
}
