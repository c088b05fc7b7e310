package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"datee_server/models"

	"github.com/google/uuid"
)

// ErrPassInProgress is returned when a matching pass is requested while
// another one is still running. Passes are single-flight.
var ErrPassInProgress = errors.New("a matching pass is already in progress")

// UserStore is the slice of the user store the engine needs.
type UserStore interface {
	ListIdleUsersByGenderPair(ctx context.Context, gender, desiredGender models.Gender) ([]models.User, error)
	GetUser(ctx context.Context, uid string) (*models.User, error)
	SetUserState(ctx context.Context, uid string, state models.UserState) error
}

// MatchStore is the slice of the match store the engine needs.
type MatchStore interface {
	InsertMatch(ctx context.Context, match models.Match) error
	FindActiveMatches(ctx context.Context) ([]models.Match, error)
	DeactivateMatch(ctx context.Context, matchID string) error
}

// Notifier is told about freshly created matches. May be nil.
type Notifier interface {
	NotifyMatched(matchID, uid1, uid2 string)
}

// Edge is an ephemeral candidate pairing with its compatibility weight.
// Edges live only inside one matching pass and are never persisted.
type Edge struct {
	UserA  string
	UserB  string
	Weight float64
}

// MatchEngine periodically pairs Idle users. One pass expires stale matches,
// splits the idle pool into gender/preference cohorts, builds a weighted
// compatibility graph per cohort and resolves it greedily.
type MatchEngine struct {
	Users    UserStore
	Matches  MatchStore
	Notifier Notifier

	// TTL after which an active match expires.
	TTL time.Duration
	// StoreTimeout bounds each store call during a pass. Zero means no bound.
	StoreTimeout time.Duration
	// Now is the clock; overridable in tests. Nil means time.Now.
	Now func() time.Time

	running atomic.Bool
}

func (e *MatchEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *MatchEngine) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.StoreTimeout)
}

// RunMatchingPass executes one full matching pass: expiry sweep, then the
// MM, FF and MF cohorts. Cohort failures are isolated; every error is
// collected and returned together. Only one pass may run at a time.
func (e *MatchEngine) RunMatchingPass(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrPassInProgress
	}
	defer e.running.Store(false)

	log.Println("Matching pass started")
	var errs []error

	if err := e.ExpireStaleMatches(ctx); err != nil {
		errs = append(errs, fmt.Errorf("expiry sweep: %w", err))
	}

	if err := e.runSameCohort(ctx, models.GenderMale); err != nil {
		errs = append(errs, fmt.Errorf("cohort MM: %w", err))
	}
	if err := e.runSameCohort(ctx, models.GenderFemale); err != nil {
		errs = append(errs, fmt.Errorf("cohort FF: %w", err))
	}
	if err := e.runBipartiteCohort(ctx); err != nil {
		errs = append(errs, fmt.Errorf("cohort MF: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	log.Println("Matching pass finished")
	return nil
}

// runSameCohort matches users seeking their own gender (MM or FF).
func (e *MatchEngine) runSameCohort(ctx context.Context, gender models.Gender) error {
	group, err := e.selectIdleCohort(ctx, gender, gender)
	if err != nil {
		return err
	}
	edges := BuildGraph(group, group)
	return e.ResolveMatches(ctx, edges)
}

// runBipartiteCohort matches male-seeking-female against female-seeking-male.
func (e *MatchEngine) runBipartiteCohort(ctx context.Context) error {
	males, err := e.selectIdleCohort(ctx, models.GenderMale, models.GenderFemale)
	if err != nil {
		return err
	}
	females, err := e.selectIdleCohort(ctx, models.GenderFemale, models.GenderMale)
	if err != nil {
		return err
	}
	edges := BuildGraph(males, females)
	return e.ResolveMatches(ctx, edges)
}

func (e *MatchEngine) selectIdleCohort(ctx context.Context, gender, desiredGender models.Gender) ([]models.User, error) {
	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	return e.Users.ListIdleUsersByGenderPair(opCtx, gender, desiredGender)
}

// ageCompatible applies the symmetric age gate: each user's age must fall
// inside the other's preferred range.
func ageCompatible(u, v models.User) bool {
	return u.MatchingPref.MinAge <= v.Age && v.Age <= u.MatchingPref.MaxAge &&
		v.MatchingPref.MinAge <= u.Age && u.Age <= v.MatchingPref.MaxAge
}

// traitDistance is the 6-dimensional Euclidean distance combining how well
// u's self-assessment satisfies v's stated preference and vice versa.
// Lower is a mutually better fit.
func traitDistance(u, v models.User) float64 {
	d := 0.0
	for _, pair := range [][2]int{
		{u.SelfAssessment.Openness, v.MatchingPref.Openness},
		{u.SelfAssessment.Romance, v.MatchingPref.Romance},
		{u.SelfAssessment.Warmheartedness, v.MatchingPref.Warmheartedness},
		{v.SelfAssessment.Openness, u.MatchingPref.Openness},
		{v.SelfAssessment.Romance, u.MatchingPref.Romance},
		{v.SelfAssessment.Warmheartedness, u.MatchingPref.Warmheartedness},
	} {
		diff := float64(pair[0] - pair[1])
		d += diff * diff
	}
	return math.Sqrt(d)
}

// BuildGraph computes the weighted compatibility graph between two cohorts
// and returns its edges sorted ascending by weight. When both arguments are
// the same slice (MM/FF) each unordered pair is considered exactly once.
// Users without an assessment or preference can never form an edge.
func BuildGraph(groupA, groupB []models.User) []Edge {
	same := len(groupA) == len(groupB) && len(groupA) > 0 && &groupA[0] == &groupB[0]

	var edges []Edge
	for i, u := range groupA {
		if u.SelfAssessment == nil || u.MatchingPref == nil {
			continue
		}
		start := 0
		if same {
			start = i + 1
		}
		for _, v := range groupB[start:] {
			if v.SelfAssessment == nil || v.MatchingPref == nil {
				continue
			}
			if u.UID == v.UID {
				continue
			}
			if !ageCompatible(u, v) {
				continue
			}
			edges = append(edges, Edge{
				UserA:  u.UID,
				UserB:  v.UID,
				Weight: traitDistance(u, v),
			})
		}
	}

	// Stable so equal weights keep insertion order and passes stay
	// deterministic.
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Weight < edges[j].Weight
	})
	return edges
}

// ResolveMatches consumes a sorted edge list greedily: commit the best edge
// as a match, take both users out of the pool and drop every edge touching
// them, until nothing is left. No augmenting paths; the result is not a
// maximum matching.
//
// A user found to be no longer Idle at commit time (matched by a concurrent
// writer) is skipped silently. A storage failure aborts the remaining edges
// of this cohort; matches already committed stay committed and the next pass
// reconciles naturally.
func (e *MatchEngine) ResolveMatches(ctx context.Context, edges []Edge) error {
	for len(edges) > 0 {
		best := edges[0]
		edges = edges[1:]

		// Re-validate both endpoints right before committing. Cohort
		// selection is point-in-time; statuses may have moved since.
		idleA, err := e.userIsIdle(ctx, best.UserA)
		if err != nil {
			return err
		}
		if !idleA {
			edges = dropEdgesTouching(edges, best.UserA)
			continue
		}
		idleB, err := e.userIsIdle(ctx, best.UserB)
		if err != nil {
			return err
		}
		if !idleB {
			edges = dropEdgesTouching(edges, best.UserB)
			continue
		}

		match := models.Match{
			MatchID:   uuid.NewString(),
			UserID1:   best.UserA,
			UserID2:   best.UserB,
			CreatedAt: e.now().Unix(),
			Active:    true,
		}
		if err := e.insertMatch(ctx, match); err != nil {
			return fmt.Errorf("failed to persist match %s/%s: %w", best.UserA, best.UserB, err)
		}
		if err := e.setState(ctx, best.UserA, models.StateMatched); err != nil {
			return err
		}
		if err := e.setState(ctx, best.UserB, models.StateMatched); err != nil {
			return err
		}
		log.Printf("Matched %s with %s (distance %.3f)", best.UserA, best.UserB, best.Weight)
		if e.Notifier != nil {
			e.Notifier.NotifyMatched(match.MatchID, best.UserA, best.UserB)
		}

		edges = dropEdgesTouching(edges, best.UserA, best.UserB)
	}
	return nil
}

// dropEdgesTouching rebuilds the edge list without edges referencing any of
// the given users. The backing array is reused.
func dropEdgesTouching(edges []Edge, uids ...string) []Edge {
	kept := edges[:0]
	for _, edge := range edges {
		touched := false
		for _, uid := range uids {
			if edge.UserA == uid || edge.UserB == uid {
				touched = true
				break
			}
		}
		if !touched {
			kept = append(kept, edge)
		}
	}
	return kept
}

func (e *MatchEngine) userIsIdle(ctx context.Context, uid string) (bool, error) {
	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	user, err := e.Users.GetUser(opCtx, uid)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.State == models.StateIdle, nil
}

func (e *MatchEngine) insertMatch(ctx context.Context, match models.Match) error {
	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	return e.Matches.InsertMatch(opCtx, match)
}

func (e *MatchEngine) setState(ctx context.Context, uid string, state models.UserState) error {
	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	return e.Users.SetUserState(opCtx, uid, state)
}

// ExpireStaleMatches deactivates every active match older than the TTL and
// returns both users to the idle pool, making them eligible again in the
// same pass.
func (e *MatchEngine) ExpireStaleMatches(ctx context.Context) error {
	opCtx, cancel := e.opCtx(ctx)
	matches, err := e.Matches.FindActiveMatches(opCtx)
	cancel()
	if err != nil {
		return err
	}

	now := e.now()
	for _, match := range matches {
		if now.Sub(time.Unix(match.CreatedAt, 0)) <= e.TTL {
			continue
		}
		opCtx, cancel := e.opCtx(ctx)
		err := e.Matches.DeactivateMatch(opCtx, match.MatchID)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to deactivate match %s: %w", match.MatchID, err)
		}
		if err := e.setState(ctx, match.UserID1, models.StateIdle); err != nil {
			return err
		}
		if err := e.setState(ctx, match.UserID2, models.StateIdle); err != nil {
			return err
		}
		log.Printf("Match %s expired after %s", match.MatchID, e.TTL)
	}
	return nil
}
