package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"honhonji/internal/auth"
	"honhonji/internal/geocode"
	"honhonji/internal/sharecode"
	"honhonji/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestApplication(t *testing.T, st store.Storage) *application {
	t.Helper()

	codec, err := sharecode.New("test-salt")
	if err != nil {
		t.Fatal(err)
	}

	return &application{
		config: config{
			addr: ":0",
			env:  "test",
		},
		store:         st,
		logger:        zap.NewNop().Sugar(),
		authenticator: auth.NewJWTAuthenticator("test-secret", "test-refresh-secret", "honhonji", "honhonji", time.Hour, time.Hour*24),
		shareCodes:    codec,
		mailer:        &fakeMailer{},
	}
}

type fakeMailer struct{}

func (m *fakeMailer) Send(_ string, _ string, _ string, _ any) (int, error) {
	return 200, nil
}

func executeRequest(req *http.Request, mux http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func checkResponseCode(t *testing.T, expected, actual int) {
	t.Helper()
	if expected != actual {
		t.Errorf("expected response code %d, got %d", expected, actual)
	}
}

// bearerToken mints a valid access token for the given profile so tests can
// exercise routes behind AuthTokenMiddleware.
func bearerToken(t *testing.T, app *application, profileID uuid.UUID) string {
	t.Helper()
	access, _, err := app.authenticator.GenerateTokens(profileID.String(), "user")
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + access
}

// Fake store implementations. Each test swaps in only the interfaces the
// route under test touches.

type fakeProfiles struct {
	profiles map[uuid.UUID]*store.Profile
	byEmail  map[string]*store.Profile
}

func (f *fakeProfiles) Create(_ context.Context, p *store.Profile) error {
	if _, ok := f.byEmail[p.Email]; ok {
		return store.ErrDuplicateEmail
	}
	if p.ProfileID == uuid.Nil {
		p.ProfileID = uuid.New()
	}
	if f.profiles == nil {
		f.profiles = map[uuid.UUID]*store.Profile{}
	}
	if f.byEmail == nil {
		f.byEmail = map[string]*store.Profile{}
	}
	f.profiles[p.ProfileID] = p
	f.byEmail[p.Email] = p
	return nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*store.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (*store.Profile, error) {
	p, ok := f.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

// seedProfile registers a profile with the fake store and returns its id.
func seedProfile(f *fakeProfiles) uuid.UUID {
	id := uuid.New()
	if f.profiles == nil {
		f.profiles = map[uuid.UUID]*store.Profile{}
	}
	if f.byEmail == nil {
		f.byEmail = map[string]*store.Profile{}
	}
	p := &store.Profile{ProfileID: id, Name: "tester", Email: fmt.Sprintf("%s@example.com", id), Role: "user"}
	f.profiles[id] = p
	f.byEmail[p.Email] = p
	return id
}

// fakeCourses keeps itineraries in memory with the same ordering rules the
// SQL store enforces.

type fakeCourses struct {
	owner  map[int64]uuid.UUID
	places map[int64][]int64
	nextID int64
}

func newFakeCourses() *fakeCourses {
	return &fakeCourses{
		owner:  map[int64]uuid.UUID{},
		places: map[int64][]int64{},
		nextID: 1,
	}
}

func (f *fakeCourses) seed(profileID uuid.UUID, placeIDs ...int64) int64 {
	id := f.nextID
	f.nextID++
	f.owner[id] = profileID
	f.places[id] = append([]int64(nil), placeIDs...)
	return id
}

func (f *fakeCourses) Create(_ context.Context, c *store.Course) error {
	c.ID = f.nextID
	f.nextID++
	f.owner[c.ID] = c.ProfileID
	f.places[c.ID] = nil
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	return nil
}

func (f *fakeCourses) GetByID(_ context.Context, id int64, profileID uuid.UUID) (*store.Course, error) {
	owner, ok := f.owner[id]
	if !ok || owner != profileID {
		return nil, store.ErrNotFound
	}
	return f.course(id), nil
}

func (f *fakeCourses) GetShared(_ context.Context, id int64) (*store.Course, error) {
	if _, ok := f.owner[id]; !ok {
		return nil, store.ErrNotFound
	}
	return f.course(id), nil
}

func (f *fakeCourses) course(id int64) *store.Course {
	c := &store.Course{ID: id, Name: "course", ProfileID: f.owner[id]}
	for i, placeID := range f.places[id] {
		c.Places = append(c.Places, store.CourseStop{
			Order: i + 1,
			Place: store.Place{ID: placeID, Name: fmt.Sprintf("place %d", placeID)},
		})
	}
	return c
}

func (f *fakeCourses) ListByProfile(_ context.Context, profileID uuid.UUID) ([]store.Course, error) {
	var out []store.Course
	for id, owner := range f.owner {
		if owner == profileID {
			out = append(out, *f.course(id))
		}
	}
	return out, nil
}

func (f *fakeCourses) Owns(_ context.Context, courseID int64, profileID uuid.UUID) (bool, error) {
	owner, ok := f.owner[courseID]
	return ok && owner == profileID, nil
}

func (f *fakeCourses) Update(_ context.Context, id int64, profileID uuid.UUID, name string, _ *string) error {
	owner, ok := f.owner[id]
	if !ok || owner != profileID {
		return store.ErrNotFound
	}
	return nil
}

func (f *fakeCourses) Delete(_ context.Context, id int64, profileID uuid.UUID) error {
	owner, ok := f.owner[id]
	if !ok || owner != profileID {
		return store.ErrNotFound
	}
	delete(f.owner, id)
	delete(f.places, id)
	return nil
}

func (f *fakeCourses) AddPlace(_ context.Context, courseID, placeID int64) (*store.CoursePlace, error) {
	if _, ok := f.owner[courseID]; !ok {
		return nil, store.ErrNotFound
	}
	for _, existing := range f.places[courseID] {
		if existing == placeID {
			return nil, store.ErrDuplicateMembership
		}
	}
	f.places[courseID] = append(f.places[courseID], placeID)
	return &store.CoursePlace{CourseID: courseID, PlaceID: placeID, Order: len(f.places[courseID])}, nil
}

func (f *fakeCourses) AddPlaceToCourses(ctx context.Context, courseIDs []int64, placeID int64) ([]store.CoursePlace, []store.CourseFailure) {
	var results []store.CoursePlace
	var failures []store.CourseFailure
	for _, courseID := range courseIDs {
		cp, err := f.AddPlace(ctx, courseID, placeID)
		if err != nil {
			failures = append(failures, store.CourseFailure{CourseID: courseID, Error: err.Error()})
			continue
		}
		results = append(results, *cp)
	}
	return results, failures
}

func (f *fakeCourses) RemovePlace(_ context.Context, courseID, placeID int64) error {
	if _, ok := f.owner[courseID]; !ok {
		return store.ErrNotFound
	}
	current := f.places[courseID]
	for i, existing := range current {
		if existing == placeID {
			f.places[courseID] = append(current[:i:i], current[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeCourses) Reorder(_ context.Context, courseID int64, placeIDs []int64) error {
	seen := map[int64]bool{}
	for _, id := range placeIDs {
		if seen[id] {
			return fmt.Errorf("place %d repeated: %w", id, store.ErrConflict)
		}
		seen[id] = true
	}
	if _, ok := f.owner[courseID]; !ok {
		return store.ErrNotFound
	}
	current := f.places[courseID]
	if len(placeIDs) != len(current) {
		return fmt.Errorf("reorder: %w", store.ErrConflict)
	}
	members := map[int64]bool{}
	for _, id := range current {
		members[id] = true
	}
	for _, id := range placeIDs {
		if !members[id] {
			return fmt.Errorf("place %d: %w", id, store.ErrNotFound)
		}
	}
	f.places[courseID] = append([]int64(nil), placeIDs...)
	return nil
}

type fakeLikes struct {
	liked     map[string]bool
	bookmarks map[uuid.UUID][]store.Place
}

func likeKey(placeID int64, profileID uuid.UUID) string {
	return fmt.Sprintf("%d/%s", placeID, profileID)
}

func (f *fakeLikes) Toggle(_ context.Context, placeID int64, profileID uuid.UUID) (bool, error) {
	if f.liked == nil {
		f.liked = map[string]bool{}
	}
	key := likeKey(placeID, profileID)
	f.liked[key] = !f.liked[key]
	return f.liked[key], nil
}

func (f *fakeLikes) IsLiked(_ context.Context, placeID int64, profileID uuid.UUID) (bool, error) {
	return f.liked[likeKey(placeID, profileID)], nil
}

func (f *fakeLikes) ListByProfile(_ context.Context, profileID uuid.UUID) ([]store.Place, error) {
	return f.bookmarks[profileID], nil
}

type fakePlaces struct {
	places     map[int64]*store.Place
	pending    int
	lastFilter store.PlaceFilter
}

func (f *fakePlaces) List(_ context.Context, filter store.PlaceFilter) ([]store.Place, error) {
	f.lastFilter = filter
	var out []store.Place
	for _, p := range f.places {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePlaces) GetByID(_ context.Context, id int64) (*store.Place, error) {
	p, ok := f.places[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakePlaces) CountPending(_ context.Context) (int, error) {
	return f.pending, nil
}

type fakeSubmissions struct {
	submitted []*store.PlaceSubmission
	tagErr    error
}

func (f *fakeSubmissions) Submit(_ context.Context, sub *store.PlaceSubmission) (*store.Place, error) {
	f.submitted = append(f.submitted, sub)
	place := &store.Place{ID: int64(len(f.submitted)), Name: sub.Name, Status: store.PlaceStatusPending}
	if f.tagErr != nil {
		return place, f.tagErr
	}
	return place, nil
}

type fakeGeocoder struct {
	coords *geocode.Coordinates
	err    error
	calls  []string
}

func (f *fakeGeocoder) Lookup(_ context.Context, address string) (*geocode.Coordinates, error) {
	f.calls = append(f.calls, address)
	if f.err != nil {
		return nil, f.err
	}
	return f.coords, nil
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}
