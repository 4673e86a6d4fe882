package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trailhead-app/backend/internal/domain"
	"github.com/trailhead-app/backend/internal/geo"
	"github.com/trailhead-app/backend/internal/repo"
)

// Matching thresholds. Items saved near home are common and noisy (the tenth
// coffee shop bookmark), so they get the strict limits; items saved while
// traveling are rare and usually trip-relevant, so they get the loose ones.
const (
	// Maximum days since a trip ended for it to still be a candidate.
	maxTripAgeDaysHome   = 14
	maxTripAgeDaysTravel = 30

	// Slack around the trip's date range the item's date may fall into.
	dateSlackDaysHome   = 1
	dateSlackDaysTravel = 7

	// Per-trip distance caps for the location proximity check.
	defaultMaxDistanceKm = 100
	travelTripDistanceKm = 200
	localTripDistanceKm  = 20

	// A trip whose items average farther than this from home is treated as a
	// travel trip even when the new item itself is near home.
	travelTripMeanFromHomeKm = 50

	// At most this many named trips are offered when several candidates match.
	maxPromptedTrips = 2
)

// TripGateway is the mutation boundary the matcher calls once a decision is
// made. Implemented by TripService.AddItem; defining the interface here (in
// the consumer package) lets matcher tests inject a recording fake.
type TripGateway interface {
	AddItem(ctx context.Context, tripID uuid.UUID, item domain.CandidateItem) (domain.TripItem, error)
}

// Matcher decides whether a freshly saved activity or location should be
// filed into one of the user's existing trips, which trip wins when several
// qualify, and remembers "don't add" answers so the user is never re-asked.
//
// All mutations are delegated: trip appends go through the TripGateway,
// rejection writes through the RejectionRepo. The matcher itself only decides
// what to call and when, and calls the gateway at most once per decision.
type Matcher struct {
	trips      repo.TripRepo
	home       repo.HomeProfileRepo
	rejections repo.RejectionRepo
	gateway    TripGateway
	chooser    Chooser
	log        *slog.Logger
}

// NewMatcher constructs a Matcher. The chooser is the user-prompt channel;
// pass a scripted ChooserFunc in tests.
func NewMatcher(trips repo.TripRepo, home repo.HomeProfileRepo, rejections repo.RejectionRepo, gateway TripGateway, chooser Chooser, log *slog.Logger) *Matcher {
	if log == nil {
		log = slog.Default()
	}
	return &Matcher{trips: trips, home: home, rejections: rejections, gateway: gateway, chooser: chooser, log: log}
}

// Resolve runs the full auto-matching decision for one item and returns the
// trip it was filed into, or nil when no trip was assigned.
//
// When prompt is false the top-ranked candidate is added silently. When
// prompt is true the user confirms a single candidate or picks between the
// top candidates, and a decline is persisted as rejection records so the same
// proposal is never made again. Any prior rejection for the item — for any
// trip — suppresses prompting entirely.
//
// Trips and the home profile are snapshot at entry and not re-read; a trip
// deleted mid-prompt surfaces as an error from the gateway call, which
// propagates to the caller. Failures reading the home profile or the
// rejection store degrade to the most permissive behavior instead of
// blocking the save flow.
func (m *Matcher) Resolve(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, now time.Time, prompt bool) (*domain.Trip, error) {
	if prompt && m.hasRejection(ctx, userID, item) {
		return nil, nil
	}

	profile := m.homeProfile(ctx, userID)
	nearHome := isNearHome(item.Location, profile)

	trips, err := m.trips.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.Matcher.Resolve: %w", err)
	}

	candidates := rankCandidates(filterCandidates(item, trips, now, nearHome, profile), now)
	if len(candidates) == 0 {
		return nil, nil
	}

	if len(candidates) > 1 && prompt {
		return m.resolveMulti(ctx, userID, item, candidates)
	}
	return m.resolveSingle(ctx, userID, item, candidates[0], prompt)
}

// Candidates returns the ranked candidate trips for an item without mutating
// anything — the entry point for clients that render the choice themselves.
// An existing rejection for the item suppresses all candidates, exactly as it
// suppresses prompting in Resolve.
func (m *Matcher) Candidates(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, now time.Time) ([]domain.Trip, error) {
	if m.hasRejection(ctx, userID, item) {
		return []domain.Trip{}, nil
	}

	profile := m.homeProfile(ctx, userID)
	nearHome := isNearHome(item.Location, profile)

	trips, err := m.trips.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.Matcher.Candidates: %w", err)
	}

	candidates := rankCandidates(filterCandidates(item, trips, now, nearHome, profile), now)
	if candidates == nil {
		candidates = []domain.Trip{}
	}
	return candidates, nil
}

// RecordDecline persists one rejection record per trip for the item, used by
// clients that presented the choice themselves and got a "don't add" answer.
// Persistence failures are logged and swallowed — a lost rejection only means
// the user may be asked once more.
func (m *Matcher) RecordDecline(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, tripIDs []uuid.UUID) {
	for _, tripID := range tripIDs {
		m.reject(ctx, userID, item, tripID)
	}
}

// ClearRejections deletes all rejection records for the item, allowing the
// matcher to propose it again.
func (m *Matcher) ClearRejections(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, itemType domain.ItemType) error {
	if err := m.rejections.DeleteByItem(ctx, userID, itemID, itemType); err != nil {
		return fmt.Errorf("service.Matcher.ClearRejections: %w", err)
	}
	return nil
}

// ForceAddToTrip files the item into the given trip unconditionally — the
// explicit "add anyway" action. Prior rejections for the item are cleared
// first so the item is back in normal rotation; a failed clear is logged and
// does not block the add.
func (m *Matcher) ForceAddToTrip(ctx context.Context, userID, tripID uuid.UUID, item domain.CandidateItem) (domain.TripItem, error) {
	if err := m.rejections.DeleteByItem(ctx, userID, item.ID, item.ItemType); err != nil {
		m.log.WarnContext(ctx, "clearing rejections before force add failed",
			"item_id", item.ID, "error", err)
	}
	member, err := m.gateway.AddItem(ctx, tripID, item)
	if err != nil {
		return domain.TripItem{}, fmt.Errorf("service.Matcher.ForceAddToTrip: %w", err)
	}
	return member, nil
}

// resolveMulti offers the top-ranked candidates plus a "don't add" option.
// Declining — or dismissing the prompt — records a rejection for every
// candidate, not just the ones shown.
func (m *Matcher) resolveMulti(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, candidates []domain.Trip) (*domain.Trip, error) {
	shown := candidates
	if len(shown) > maxPromptedTrips {
		shown = shown[:maxPromptedTrips]
	}

	options := make([]string, 0, len(shown)+1)
	for _, c := range shown {
		options = append(options, c.Name)
	}
	options = append(options, "Don't add to trips")
	declineIdx := len(options) - 1

	choice, err := m.chooser.PresentChoice(ctx,
		fmt.Sprintf("Add %q to a trip?", item.Name), options)
	if err != nil || choice < 0 || choice >= declineIdx {
		if err != nil && !errors.Is(err, ErrDismissed) {
			m.log.WarnContext(ctx, "trip choice prompt failed, treating as decline", "error", err)
		}
		for _, c := range candidates {
			m.reject(ctx, userID, item, c.ID)
		}
		return nil, nil
	}

	target := shown[choice]
	if _, err := m.gateway.AddItem(ctx, target.ID, item); err != nil {
		return nil, fmt.Errorf("service.Matcher.Resolve: %w", err)
	}
	return &target, nil
}

// resolveSingle handles the one-candidate path: idempotency check, then
// either a silent add or a binary confirm/decline prompt.
func (m *Matcher) resolveSingle(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, target domain.Trip, prompt bool) (*domain.Trip, error) {
	// Already a member: recognized by identity, no second gateway call.
	if target.ContainsItem(item.ID, item.ItemType) {
		return &target, nil
	}

	if !prompt {
		if _, err := m.gateway.AddItem(ctx, target.ID, item); err != nil {
			return nil, fmt.Errorf("service.Matcher.Resolve: %w", err)
		}
		return &target, nil
	}

	choice, err := m.chooser.PresentChoice(ctx,
		fmt.Sprintf("Add %q to trip %q?", item.Name, target.Name),
		[]string{"Add", "Don't add"})
	if err != nil || choice != 0 {
		if err != nil && !errors.Is(err, ErrDismissed) {
			m.log.WarnContext(ctx, "trip confirm prompt failed, treating as decline", "error", err)
		}
		m.reject(ctx, userID, item, target.ID)
		return nil, nil
	}

	if _, err := m.gateway.AddItem(ctx, target.ID, item); err != nil {
		return nil, fmt.Errorf("service.Matcher.Resolve: %w", err)
	}
	return &target, nil
}

// hasRejection reports whether any rejection record exists for the item,
// regardless of trip. One decline anywhere silences all future prompts for
// the item until the records are cleared. Read failures count as "no prior
// rejections" so a flaky store never blocks the save flow.
func (m *Matcher) hasRejection(ctx context.Context, userID uuid.UUID, item domain.CandidateItem) bool {
	recs, err := m.rejections.ListByItem(ctx, userID, item.ID, item.ItemType)
	if err != nil {
		m.log.WarnContext(ctx, "rejection lookup failed, proceeding without",
			"item_id", item.ID, "error", err)
		return false
	}
	return len(recs) > 0
}

// homeProfile loads the user's home region, degrading to an empty profile
// (no home configured) when the user has none or the read fails.
func (m *Matcher) homeProfile(ctx context.Context, userID uuid.UUID) domain.HomeProfile {
	profile, err := m.home.GetByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			m.log.WarnContext(ctx, "home profile lookup failed, treating as unset",
				"user_id", userID, "error", err)
		}
		return domain.HomeProfile{UserID: userID}
	}
	return profile
}

// reject persists a single rejection record, logging and swallowing failures.
func (m *Matcher) reject(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, tripID uuid.UUID) {
	rec := domain.RejectionRecord{
		UserID:   userID,
		ItemID:   item.ID,
		ItemType: item.ItemType,
		TripID:   tripID,
	}
	if err := m.rejections.Create(ctx, rec); err != nil {
		m.log.WarnContext(ctx, "persisting trip rejection failed",
			"item_id", item.ID, "trip_id", tripID, "error", err)
	}
}

// isNearHome reports whether the point falls within the user's home radius.
// Always false when no home location is configured.
func isNearHome(p geo.Point, profile domain.HomeProfile) bool {
	if profile.HomeLocation == nil {
		return false
	}
	return geo.DistanceKm(p, *profile.HomeLocation) <= profile.RadiusKm()
}

// filterCandidates returns the trips that plausibly match the item, applying
// the stricter home rules or the looser travel rules. A trip is excluded as
// soon as one check fails; order of the result is not meaningful.
func filterCandidates(item domain.CandidateItem, trips []domain.Trip, now time.Time, nearHome bool, profile domain.HomeProfile) []domain.Trip {
	var out []domain.Trip
	for _, trip := range trips {
		if !withinRecencyBound(trip, now, nearHome) {
			continue
		}
		if !matchesDateWindow(item, trip, now, nearHome) {
			continue
		}
		if !matchesLocation(item, trip, nearHome, profile) {
			continue
		}
		out = append(out, trip)
	}
	return out
}

// withinRecencyBound excludes trips that ended too long ago: 14 days for
// near-home items, 30 for travel items. Trips ending today or in the future
// always pass.
func withinRecencyBound(trip domain.Trip, now time.Time, nearHome bool) bool {
	maxAge := maxTripAgeDaysTravel
	if nearHome {
		maxAge = maxTripAgeDaysHome
	}
	daysSinceEnd := int(math.Floor(now.Sub(trip.EndDate).Hours() / 24))
	return daysSinceEnd <= maxAge
}

// matchesDateWindow checks the item's date against the trip's range.
// Near home the window is tight (±1 day) but a currently active trip always
// matches — same-day activity near home during an ongoing trip. Traveling,
// the window widens to ±7 days because travel entries are commonly logged
// late or just outside the nominal trip boundary.
func matchesDateWindow(item domain.CandidateItem, trip domain.Trip, now time.Time, nearHome bool) bool {
	slack := dateSlackDaysTravel
	if nearHome {
		if trip.ActiveAt(now) {
			return true
		}
		slack = dateSlackDaysHome
	}
	day := item.Date.UTC().Truncate(24 * time.Hour)
	from := trip.StartDate.AddDate(0, 0, -slack)
	to := trip.EndDate.AddDate(0, 0, slack)
	return !day.Before(from) && !day.After(to)
}

// matchesLocation checks the item's coordinate against the trip's existing
// members. Empty trips pass unconditionally — with no anchor points there is
// nothing to validate against. A member without a coordinate cannot
// disqualify the trip and counts as a match.
//
// The per-trip cap defaults to 100 km. For a near-home item with a home
// configured, the cap depends on what kind of trip this is: members averaging
// more than 50 km from home mark a travel trip (cap 200 km), anything closer
// is a local trip and stays strict (cap 20 km).
func matchesLocation(item domain.CandidateItem, trip domain.Trip, nearHome bool, profile domain.HomeProfile) bool {
	if len(trip.Items) == 0 {
		return true
	}

	maxKm := float64(defaultMaxDistanceKm)
	if nearHome && profile.HomeLocation != nil {
		if mean, ok := meanDistanceFromHome(trip, *profile.HomeLocation); ok && mean > travelTripMeanFromHomeKm {
			maxKm = travelTripDistanceKm
		} else {
			maxKm = localTripDistanceKm
		}
	}

	for _, member := range trip.Items {
		if member.Location == nil {
			return true
		}
		if geo.DistanceKm(item.Location, *member.Location) <= maxKm {
			return true
		}
	}
	return false
}

// meanDistanceFromHome averages the distance from home across the trip's
// members that carry a coordinate. ok is false when no member does.
func meanDistanceFromHome(trip domain.Trip, home geo.Point) (mean float64, ok bool) {
	var sum float64
	var n int
	for _, member := range trip.Items {
		if member.Location == nil {
			continue
		}
		sum += geo.DistanceKm(*member.Location, home)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// rankCandidates orders candidates by user intent: a currently active trip is
// almost always the right target, failing that the most recently ended trip
// is the one still top of mind.
func rankCandidates(candidates []domain.Trip, now time.Time) []domain.Trip {
	sort.SliceStable(candidates, func(i, j int) bool {
		ai, aj := candidates[i].ActiveAt(now), candidates[j].ActiveAt(now)
		if ai != aj {
			return ai
		}
		return candidates[i].EndDate.After(candidates[j].EndDate)
	})
	return candidates
}
