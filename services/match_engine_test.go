package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"datee_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- fakes ----------

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
	// listGate, when set, blocks cohort selection until released.
	listGate chan struct{}
	// listErr fails cohort selection for the given gender pair.
	listErr map[[2]models.Gender]error
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	store := &fakeUserStore{users: map[string]*models.User{}}
	for _, u := range users {
		store.users[u.UID] = u
	}
	return store
}

func (f *fakeUserStore) ListIdleUsersByGenderPair(ctx context.Context, gender, desiredGender models.Gender) ([]models.User, error) {
	if f.listGate != nil {
		<-f.listGate
	}
	if err := f.listErr[[2]models.Gender{gender, desiredGender}]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if u.State == models.StateIdle && u.Gender == gender &&
			u.MatchingPref != nil && u.MatchingPref.Gender == desiredGender {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) SetUserState(ctx context.Context, uid string, state models.UserState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return ErrUserNotFound
	}
	u.State = state
	return nil
}

func (f *fakeUserStore) state(uid string) models.UserState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[uid].State
}

type fakeMatchStore struct {
	mu        sync.Mutex
	matches   map[string]models.Match
	insertErr error
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{matches: map[string]models.Match{}}
}

func (f *fakeMatchStore) InsertMatch(ctx context.Context, match models.Match) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches[match.MatchID] = match
	return nil
}

func (f *fakeMatchStore) FindActiveMatches(ctx context.Context) ([]models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Match
	for _, m := range f.matches {
		if m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMatchStore) DeactivateMatch(ctx context.Context, matchID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[matchID]
	if !ok {
		return ErrMatchNotFound
	}
	m.Active = false
	f.matches[matchID] = m
	return nil
}

func (f *fakeMatchStore) activeMatchFor(uid string) *models.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.matches {
		if m.Active && m.Involves(uid) {
			copied := m
			return &copied
		}
	}
	return nil
}

func (f *fakeMatchStore) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.matches {
		if m.Active {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	mu      sync.Mutex
	matched [][2]string
}

func (f *fakeNotifier) NotifyMatched(matchID, uid1, uid2 string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matched = append(f.matched, [2]string{uid1, uid2})
}

// idleUser builds a fully-onboarded Idle user with neutral traits.
func idleUser(uid string, gender, wants models.Gender, age, minAge, maxAge int) *models.User {
	return &models.User{
		UID:            uid,
		Age:            age,
		Gender:         gender,
		State:          models.StateIdle,
		SelfAssessment: &models.Traits{Romance: 3, Openness: 3, Warmheartedness: 3},
		MatchingPref: &models.MatchingPreference{
			Gender: wants,
			MinAge: minAge,
			MaxAge: maxAge,
			Traits: models.Traits{Romance: 3, Openness: 3, Warmheartedness: 3},
		},
	}
}

func newEngine(users *fakeUserStore, matches *fakeMatchStore) *MatchEngine {
	return &MatchEngine{
		Users:   users,
		Matches: matches,
		TTL:     36 * time.Hour,
	}
}

// ---------- BuildGraph ----------

func TestBuildGraphAgeGateIsSymmetric(t *testing.T) {
	// u accepts v's age but v does not accept u's.
	u := idleUser("u", models.GenderMale, models.GenderFemale, 40, 20, 50)
	v := idleUser("v", models.GenderFemale, models.GenderMale, 25, 20, 30)

	edges := BuildGraph([]models.User{*u}, []models.User{*v})
	assert.Empty(t, edges)

	// Widen v's range; now both accept each other.
	v.MatchingPref.MaxAge = 45
	edges = BuildGraph([]models.User{*u}, []models.User{*v})
	require.Len(t, edges, 1)
	assert.Equal(t, "u", edges[0].UserA)
	assert.Equal(t, "v", edges[0].UserB)
}

func TestBuildGraphWeight(t *testing.T) {
	u := idleUser("u", models.GenderMale, models.GenderFemale, 30, 20, 40)
	u.SelfAssessment = &models.Traits{Openness: 3, Romance: 2, Warmheartedness: 4}
	u.MatchingPref.Traits = models.Traits{Openness: 2, Romance: 2, Warmheartedness: 4}

	v := idleUser("v", models.GenderFemale, models.GenderMale, 30, 20, 40)
	v.SelfAssessment = &models.Traits{Openness: 2, Romance: 2, Warmheartedness: 2}
	v.MatchingPref.Traits = models.Traits{Openness: 3, Romance: 2, Warmheartedness: 4}

	// Only v's warmheartedness misses u's preference, by 2: weight sqrt(4).
	edges := BuildGraph([]models.User{*u}, []models.User{*v})
	require.Len(t, edges, 1)
	assert.InDelta(t, 2.0, edges[0].Weight, 1e-9)
}

func TestBuildGraphNoSelfEdge(t *testing.T) {
	u := idleUser("solo", models.GenderMale, models.GenderMale, 30, 18, 59)
	group := []models.User{*u}

	edges := BuildGraph(group, group)
	assert.Empty(t, edges)
}

func TestBuildGraphSameCohortCountsEachPairOnce(t *testing.T) {
	group := []models.User{
		*idleUser("a", models.GenderFemale, models.GenderFemale, 25, 18, 59),
		*idleUser("b", models.GenderFemale, models.GenderFemale, 26, 18, 59),
		*idleUser("c", models.GenderFemale, models.GenderFemale, 27, 18, 59),
	}

	edges := BuildGraph(group, group)
	// 3 users, every pair compatible: exactly C(3,2) edges, no mirrors.
	require.Len(t, edges, 3)
	seen := map[[2]string]bool{}
	for _, e := range edges {
		assert.NotEqual(t, e.UserA, e.UserB)
		assert.False(t, seen[[2]string{e.UserB, e.UserA}], "mirrored edge %s-%s", e.UserA, e.UserB)
		seen[[2]string{e.UserA, e.UserB}] = true
	}
}

func TestBuildGraphSkipsUsersWithoutAssessment(t *testing.T) {
	u := idleUser("u", models.GenderMale, models.GenderFemale, 30, 20, 40)
	v := idleUser("v", models.GenderFemale, models.GenderMale, 30, 20, 40)
	v.SelfAssessment = nil

	assert.Empty(t, BuildGraph([]models.User{*u}, []models.User{*v}))
}

func TestBuildGraphSortsAscending(t *testing.T) {
	near := idleUser("near", models.GenderFemale, models.GenderMale, 30, 20, 40)
	far := idleUser("far", models.GenderFemale, models.GenderMale, 30, 20, 40)
	far.SelfAssessment = &models.Traits{Romance: 1, Openness: 1, Warmheartedness: 1}
	u := idleUser("u", models.GenderMale, models.GenderFemale, 30, 20, 40)

	edges := BuildGraph([]models.User{*u}, []models.User{*near, *far})
	require.Len(t, edges, 2)
	assert.Equal(t, "near", edges[0].UserB)
	assert.Equal(t, "far", edges[1].UserB)
	assert.Less(t, edges[0].Weight, edges[1].Weight)
}

// ---------- ResolveMatches ----------

func TestResolveMatchesGreedyElimination(t *testing.T) {
	users := newFakeUserStore(
		idleUser("a", models.GenderMale, models.GenderFemale, 30, 20, 40),
		idleUser("b", models.GenderFemale, models.GenderMale, 30, 20, 40),
		idleUser("c", models.GenderFemale, models.GenderMale, 30, 20, 40),
	)
	matches := newFakeMatchStore()
	engine := newEngine(users, matches)

	// a-b is the better edge; a-c must be eliminated with it.
	edges := []Edge{
		{UserA: "a", UserB: "b", Weight: 1},
		{UserA: "a", UserB: "c", Weight: 2},
	}
	require.NoError(t, engine.ResolveMatches(context.Background(), edges))

	assert.Equal(t, 1, matches.activeCount())
	require.NotNil(t, matches.activeMatchFor("a"))
	assert.NotNil(t, matches.activeMatchFor("b"))
	assert.Nil(t, matches.activeMatchFor("c"))
	assert.Equal(t, models.StateMatched, users.state("a"))
	assert.Equal(t, models.StateMatched, users.state("b"))
	assert.Equal(t, models.StateIdle, users.state("c"))

	// Re-running on the consumed list is a no-op.
	require.NoError(t, engine.ResolveMatches(context.Background(), nil))
	assert.Equal(t, 1, matches.activeCount())
}

func TestResolveMatchesLowerWeightWins(t *testing.T) {
	users := newFakeUserStore(
		idleUser("a", models.GenderMale, models.GenderFemale, 30, 20, 40),
		idleUser("b", models.GenderFemale, models.GenderMale, 30, 20, 40),
		idleUser("c", models.GenderMale, models.GenderFemale, 30, 20, 40),
		idleUser("d", models.GenderFemale, models.GenderMale, 30, 20, 40),
	)
	matches := newFakeMatchStore()
	notifier := &fakeNotifier{}
	engine := newEngine(users, matches)
	engine.Notifier = notifier

	edges := []Edge{
		{UserA: "c", UserB: "d", Weight: 0.5},
		{UserA: "a", UserB: "b", Weight: 1.5},
	}
	require.NoError(t, engine.ResolveMatches(context.Background(), edges))

	assert.Equal(t, 2, matches.activeCount())
	require.Len(t, notifier.matched, 2)
	assert.Equal(t, [2]string{"c", "d"}, notifier.matched[0])
	assert.Equal(t, [2]string{"a", "b"}, notifier.matched[1])
}

func TestResolveMatchesSkipsUserMatchedElsewhere(t *testing.T) {
	a := idleUser("a", models.GenderMale, models.GenderFemale, 30, 20, 40)
	users := newFakeUserStore(
		a,
		idleUser("b", models.GenderFemale, models.GenderMale, 30, 20, 40),
		idleUser("c", models.GenderFemale, models.GenderMale, 30, 20, 40),
	)
	matches := newFakeMatchStore()
	engine := newEngine(users, matches)

	// a was grabbed by a concurrent writer after cohort selection.
	a.State = models.StateMatched

	edges := []Edge{
		{UserA: "a", UserB: "b", Weight: 1},
		{UserA: "a", UserB: "c", Weight: 2},
	}
	// Silently skipped, not an error.
	require.NoError(t, engine.ResolveMatches(context.Background(), edges))
	assert.Equal(t, 0, matches.activeCount())
	assert.Equal(t, models.StateIdle, users.state("b"))
	assert.Equal(t, models.StateIdle, users.state("c"))
}

func TestResolveMatchesStorageFailureAbortsCohort(t *testing.T) {
	users := newFakeUserStore(
		idleUser("a", models.GenderMale, models.GenderFemale, 30, 20, 40),
		idleUser("b", models.GenderFemale, models.GenderMale, 30, 20, 40),
	)
	matches := newFakeMatchStore()
	matches.insertErr = errors.New("connectivity lost")
	engine := newEngine(users, matches)

	err := engine.ResolveMatches(context.Background(), []Edge{{UserA: "a", UserB: "b", Weight: 1}})
	require.Error(t, err)
	// Nothing was committed; both users stay idle for the next run.
	assert.Equal(t, 0, matches.activeCount())
	assert.Equal(t, models.StateIdle, users.state("a"))
	assert.Equal(t, models.StateIdle, users.state("b"))
}

// ---------- ExpireStaleMatches ----------

func TestExpireStaleMatches(t *testing.T) {
	a := idleUser("a", models.GenderMale, models.GenderFemale, 30, 20, 40)
	b := idleUser("b", models.GenderFemale, models.GenderMale, 30, 20, 40)
	c := idleUser("c", models.GenderMale, models.GenderFemale, 30, 20, 40)
	d := idleUser("d", models.GenderFemale, models.GenderMale, 30, 20, 40)
	for _, u := range []*models.User{a, b, c, d} {
		u.State = models.StateMatched
	}
	users := newFakeUserStore(a, b, c, d)

	now := time.Now()
	matches := newFakeMatchStore()
	matches.matches["old"] = models.Match{
		MatchID: "old", UserID1: "a", UserID2: "b",
		CreatedAt: now.Add(-40 * time.Hour).Unix(), Active: true,
	}
	matches.matches["fresh"] = models.Match{
		MatchID: "fresh", UserID1: "c", UserID2: "d",
		CreatedAt: now.Add(-10 * time.Hour).Unix(), Active: true,
	}

	engine := newEngine(users, matches)
	engine.Now = func() time.Time { return now }

	require.NoError(t, engine.ExpireStaleMatches(context.Background()))

	// Only the 40h match expired; both its users are idle again and carry
	// no active match.
	assert.Nil(t, matches.activeMatchFor("a"))
	assert.Nil(t, matches.activeMatchFor("b"))
	assert.Equal(t, models.StateIdle, users.state("a"))
	assert.Equal(t, models.StateIdle, users.state("b"))

	assert.NotNil(t, matches.activeMatchFor("c"))
	assert.Equal(t, models.StateMatched, users.state("c"))

	// A second sweep does not touch anything further.
	require.NoError(t, engine.ExpireStaleMatches(context.Background()))
	assert.Equal(t, 1, matches.activeCount())
}

func TestExpireStaleMatchesKeepsMatchAtBoundary(t *testing.T) {
	a := idleUser("a", models.GenderMale, models.GenderFemale, 30, 20, 40)
	b := idleUser("b", models.GenderFemale, models.GenderMale, 30, 20, 40)
	a.State, b.State = models.StateMatched, models.StateMatched
	users := newFakeUserStore(a, b)

	// Whole seconds: CreatedAt is stored as Unix seconds, so a sub-second
	// remainder in now would push the age strictly past the TTL.
	now := time.Now().Truncate(time.Second)
	matches := newFakeMatchStore()
	matches.matches["edge"] = models.Match{
		MatchID: "edge", UserID1: "a", UserID2: "b",
		CreatedAt: now.Add(-36 * time.Hour).Unix(), Active: true,
	}

	engine := newEngine(users, matches)
	engine.Now = func() time.Time { return now }

	// Exactly TTL old is not strictly older than TTL.
	require.NoError(t, engine.ExpireStaleMatches(context.Background()))
	assert.Equal(t, 1, matches.activeCount())
}

// ---------- RunMatchingPass ----------

func TestRunMatchingPassSameGenderScenario(t *testing.T) {
	// A-B compatible; C's range excludes both and both exclude C.
	users := newFakeUserStore(
		idleUser("A", models.GenderMale, models.GenderMale, 25, 20, 30),
		idleUser("B", models.GenderMale, models.GenderMale, 28, 22, 35),
		idleUser("C", models.GenderMale, models.GenderMale, 40, 35, 45),
	)
	matches := newFakeMatchStore()
	engine := newEngine(users, matches)

	require.NoError(t, engine.RunMatchingPass(context.Background()))

	assert.Equal(t, 1, matches.activeCount())
	match := matches.activeMatchFor("A")
	require.NotNil(t, match)
	assert.True(t, match.Involves("B"))
	assert.Equal(t, models.StateMatched, users.state("A"))
	assert.Equal(t, models.StateMatched, users.state("B"))
	assert.Equal(t, models.StateIdle, users.state("C"))
}

func TestRunMatchingPassBipartiteCohort(t *testing.T) {
	users := newFakeUserStore(
		idleUser("m", models.GenderMale, models.GenderFemale, 30, 20, 40),
		idleUser("f", models.GenderFemale, models.GenderMale, 30, 20, 40),
		// Seeking their own gender; must not leak into the MF cohort.
		idleUser("mm", models.GenderMale, models.GenderMale, 30, 20, 40),
	)
	matches := newFakeMatchStore()
	engine := newEngine(users, matches)

	require.NoError(t, engine.RunMatchingPass(context.Background()))

	assert.Equal(t, 1, matches.activeCount())
	assert.NotNil(t, matches.activeMatchFor("m"))
	assert.NotNil(t, matches.activeMatchFor("f"))
	assert.Equal(t, models.StateIdle, users.state("mm"))
}

func TestRunMatchingPassExpiryFeedsSelection(t *testing.T) {
	// a and b sit in an expired match; the pass must free them and
	// immediately re-match them (they are each other's only candidates).
	a := idleUser("a", models.GenderMale, models.GenderFemale, 30, 20, 40)
	b := idleUser("b", models.GenderFemale, models.GenderMale, 30, 20, 40)
	a.State, b.State = models.StateMatched, models.StateMatched
	users := newFakeUserStore(a, b)

	now := time.Now()
	matches := newFakeMatchStore()
	matches.matches["stale"] = models.Match{
		MatchID: "stale", UserID1: "a", UserID2: "b",
		CreatedAt: now.Add(-48 * time.Hour).Unix(), Active: true,
	}

	engine := newEngine(users, matches)
	engine.Now = func() time.Time { return now }

	require.NoError(t, engine.RunMatchingPass(context.Background()))

	fresh := matches.activeMatchFor("a")
	require.NotNil(t, fresh)
	assert.NotEqual(t, "stale", fresh.MatchID)
	assert.Equal(t, models.StateMatched, users.state("a"))
}

func TestRunMatchingPassSingleFlight(t *testing.T) {
	users := newFakeUserStore()
	users.listGate = make(chan struct{})
	matches := newFakeMatchStore()
	engine := newEngine(users, matches)

	done := make(chan error, 1)
	go func() {
		done <- engine.RunMatchingPass(context.Background())
	}()

	// Wait for the first pass to block inside cohort selection.
	require.Eventually(t, func() bool {
		return engine.running.Load()
	}, time.Second, time.Millisecond)

	err := engine.RunMatchingPass(context.Background())
	assert.ErrorIs(t, err, ErrPassInProgress)

	close(users.listGate)
	require.NoError(t, <-done)

	// The guard is released afterwards.
	require.NoError(t, engine.RunMatchingPass(context.Background()))
}

func TestRunMatchingPassIsolatesCohortFailures(t *testing.T) {
	users := newFakeUserStore(
		idleUser("f1", models.GenderFemale, models.GenderFemale, 30, 20, 40),
		idleUser("f2", models.GenderFemale, models.GenderFemale, 30, 20, 40),
	)
	users.listErr = map[[2]models.Gender]error{
		{models.GenderMale, models.GenderMale}: errors.New("users table unavailable"),
	}
	matches := newFakeMatchStore()
	engine := newEngine(users, matches)

	err := engine.RunMatchingPass(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cohort MM")

	// The FF cohort still ran to completion.
	assert.Equal(t, 1, matches.activeCount())
	assert.Equal(t, models.StateMatched, users.state("f1"))
	assert.Equal(t, models.StateMatched, users.state("f2"))
}
