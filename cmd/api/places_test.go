package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"honhonji/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlacesApp(t *testing.T) (*application, *fakePlaces, *fakeLikes, *fakeProfiles) {
	t.Helper()
	places := &fakePlaces{places: map[int64]*store.Place{
		1: {ID: 1, Name: "을지로 국밥", Type: store.PlaceTypeRestaurant, Status: store.PlaceStatusApproved},
	}}
	likes := &fakeLikes{}
	profiles := &fakeProfiles{}
	app := newTestApplication(t, store.Storage{
		Places:   places,
		Likes:    likes,
		Profiles: profiles,
	})
	return app, places, likes, profiles
}

func TestListPlaces(t *testing.T) {
	app, places, _, _ := newPlacesApp(t)
	mux := app.mount()

	t.Run("defaults to restaurants", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/places", nil), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)
		assert.Equal(t, store.PlaceTypeRestaurant, places.lastFilter.Type)
		assert.Zero(t, places.lastFilter.TagID)
	})

	t.Run("passes type and tag through", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/places?type=cafe&tag=3", nil), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)
		assert.Equal(t, store.PlaceTypeCafe, places.lastFilter.Type)
		assert.Equal(t, int64(3), places.lastFilter.TagID)
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/places?type=museum", nil), mux)
		checkResponseCode(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects a malformed tag", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/places?tag=abc", nil), mux)
		checkResponseCode(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetPlace(t *testing.T) {
	app, _, likes, profiles := newPlacesApp(t)
	mux := app.mount()

	t.Run("anonymous caller sees is_liked false", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/places/1", nil), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		var resp struct {
			Data placeDetail `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "을지로 국밥", resp.Data.Name)
		assert.False(t, resp.Data.IsLiked)
	})

	t.Run("authenticated caller sees their bookmark", func(t *testing.T) {
		profileID := seedProfile(profiles)
		likes.liked = map[string]bool{likeKey(1, profileID): true}

		req := httptest.NewRequest(http.MethodGet, "/v1/places/1", nil)
		req.Header.Set("Authorization", bearerToken(t, app, profileID))

		rr := executeRequest(req, mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		var resp struct {
			Data placeDetail `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Data.IsLiked)
	})

	t.Run("unknown place is not found", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/places/999", nil), mux)
		checkResponseCode(t, http.StatusNotFound, rr.Code)
	})

	t.Run("non-numeric id is a bad request", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/places/abc", nil), mux)
		checkResponseCode(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListBookmarks(t *testing.T) {
	app, _, likes, profiles := newPlacesApp(t)
	mux := app.mount()

	profileID := seedProfile(profiles)
	likes.bookmarks = map[uuid.UUID][]store.Place{
		profileID: {
			{ID: 1, Name: "을지로 국밥", Type: store.PlaceTypeRestaurant, Status: store.PlaceStatusApproved},
			{ID: 4, Name: "성수 카페", Type: store.PlaceTypeCafe, Status: store.PlaceStatusApproved},
		},
	}

	t.Run("returns the caller's bookmarks", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/places/bookmarks", nil)
		req.Header.Set("Authorization", bearerToken(t, app, profileID))

		rr := executeRequest(req, mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		var resp struct {
			Data []store.Place `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "을지로 국밥", resp.Data[0].Name)
		assert.Equal(t, "성수 카페", resp.Data[1].Name)
	})

	t.Run("another profile sees an empty list", func(t *testing.T) {
		other := seedProfile(profiles)
		req := httptest.NewRequest(http.MethodGet, "/v1/places/bookmarks", nil)
		req.Header.Set("Authorization", bearerToken(t, app, other))

		rr := executeRequest(req, mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		var resp struct {
			Data []store.Place `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Empty(t, resp.Data)
	})

	t.Run("requires auth", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/places/bookmarks", nil), mux)
		checkResponseCode(t, http.StatusUnauthorized, rr.Code)
	})
}
