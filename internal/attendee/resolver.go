// Package attendee resolves human names into verified email addresses by
// merging and ranking candidates from the directory, personal contacts, and
// prior calendar co-attendees.
package attendee

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sarankoundinya2000/alfie/internal/models"
)

// historyWindow bounds how far back the calendar history scan reaches.
const historyWindow = 365 * 24 * time.Hour

// historyMaxEvents caps the number of past events scanned per query.
const historyMaxEvents = 2000

// maxCandidates caps the ranked list presented for disambiguation.
const maxCandidates = 10

// Directory is the contacts lookup capability the resolver consumes.
type Directory interface {
	SearchDirectory(ctx context.Context, query string) ([]models.ContactCandidate, error)
	ListConnections(ctx context.Context) ([]models.ContactCandidate, error)
}

// EventSource is the calendar read capability used for the history scan.
type EventSource interface {
	ListEvents(ctx context.Context, min, max time.Time, maxResults int64) ([]models.SourceEvent, error)
}

// Resolver builds ranked contact candidates for a person name.
type Resolver struct {
	directory Directory
	calendar  EventSource
	logger    *slog.Logger
	now       func() time.Time
}

// NewResolver creates a Resolver over the given contact and calendar sources.
func NewResolver(directory Directory, calendar EventSource, logger *slog.Logger) *Resolver {
	return &Resolver{
		directory: directory,
		calendar:  calendar,
		logger:    logger,
		now:       time.Now,
	}
}

// Resolve commits to a single email for a name when exactly one candidate
// exists. More than one candidate is an AmbiguousAttendeeError carrying the
// ranked list; the resolver never silently guesses among plausible people.
// Zero candidates is an AttendeeNotFoundError: the caller must obtain an
// email from the user, never fabricate one.
func (r *Resolver) Resolve(ctx context.Context, name string) (*models.ContactCandidate, error) {
	candidates, err := r.Candidates(ctx, name)
	if err != nil {
		return nil, err
	}

	switch len(candidates) {
	case 0:
		return nil, &models.AttendeeNotFoundError{Name: name}
	case 1:
		r.logger.Info("Auto-resolved attendee", "name", name, "email", candidates[0].Email)
		return &candidates[0], nil
	default:
		return nil, &models.AmbiguousAttendeeError{Name: name, Candidates: candidates}
	}
}

// Candidates queries all three sources, merges with explicit-contact sources
// first, deduplicates by email keeping the first occurrence, and ranks.
func (r *Resolver) Candidates(ctx context.Context, name string) ([]models.ContactCandidate, error) {
	directory, err := r.directory.SearchDirectory(ctx, name)
	if err != nil {
		return nil, &models.ExternalServiceError{Service: "directory", Err: err}
	}

	connections, err := r.directory.ListConnections(ctx)
	if err != nil {
		return nil, &models.ExternalServiceError{Service: "contacts", Err: err}
	}

	history, err := r.historyCandidates(ctx, name)
	if err != nil {
		return nil, &models.ExternalServiceError{Service: "calendar", Err: err}
	}

	// Merge order is a stated design choice: explicit-contact sources come
	// before calendar history so that dedup keeps the verified entry.
	merged := append([]models.ContactCandidate{}, directory...)
	for _, c := range connections {
		if nameMatches(name, c.Name) {
			merged = append(merged, c)
		}
	}
	merged = append(merged, history...)

	candidates := dedupByEmail(merged)
	rank(candidates, name)

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	r.logger.Debug("Built attendee candidates", "name", name,
		"directory", len(directory), "history", len(history), "total", len(candidates))
	return candidates, nil
}

// historyCandidates scans roughly the last year of calendar events and
// aggregates every attendee whose display name matches, counting matching
// events and tracking the most recent one.
func (r *Resolver) historyCandidates(ctx context.Context, name string) ([]models.ContactCandidate, error) {
	now := r.now().UTC()
	events, err := r.calendar.ListEvents(ctx, now.Add(-historyWindow), now, historyMaxEvents)
	if err != nil {
		return nil, err
	}

	byEmail := make(map[string]*models.ContactCandidate)
	var order []string

	for _, ev := range events {
		for _, a := range ev.Attendees {
			if a.Email == "" {
				continue
			}
			displayName := a.Name
			if displayName == "" {
				displayName = strings.SplitN(a.Email, "@", 2)[0]
			}
			if !nameMatches(name, displayName) {
				continue
			}

			c, seen := byEmail[a.Email]
			if !seen {
				byEmail[a.Email] = &models.ContactCandidate{
					Name:         displayName,
					Email:        a.Email,
					Source:       models.SourceCalendarHistory,
					MeetingCount: 1,
					LastSeen:     ev.Start,
				}
				order = append(order, a.Email)
				continue
			}
			c.MeetingCount++
			if ev.Start.After(c.LastSeen) {
				c.LastSeen = ev.Start
			}
		}
	}

	candidates := make([]models.ContactCandidate, 0, len(order))
	for _, email := range order {
		candidates = append(candidates, *byEmail[email])
	}
	return candidates, nil
}

// dedupByEmail keeps the first occurrence of each email in merge order.
func dedupByEmail(candidates []models.ContactCandidate) []models.ContactCandidate {
	seen := make(map[string]bool, len(candidates))
	var unique []models.ContactCandidate
	for _, c := range candidates {
		if seen[c.Email] {
			continue
		}
		seen[c.Email] = true
		unique = append(unique, c)
	}
	return unique
}

// rank orders candidates for presentation: explicit-contact candidates come
// first, sorted by match quality (exact, then prefix, then substring, ties
// alphabetical); calendar-history candidates follow, sorted by descending
// meeting count and recency.
func rank(candidates []models.ContactCandidate, query string) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		aHist := a.Source == models.SourceCalendarHistory
		bHist := b.Source == models.SourceCalendarHistory
		if aHist != bHist {
			return bHist
		}

		if aHist {
			if a.MeetingCount != b.MeetingCount {
				return a.MeetingCount > b.MeetingCount
			}
			return a.LastSeen.After(b.LastSeen)
		}

		ra, rb := matchRank(query, a.Name), matchRank(query, b.Name)
		if ra != rb {
			return ra < rb
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

// matchRank scores how well a display name matches the query: 0 exact,
// 1 prefix, 2 substring.
func matchRank(query, name string) int {
	q := strings.ToLower(query)
	n := strings.ToLower(name)
	switch {
	case n == q:
		return 0
	case strings.HasPrefix(n, q):
		return 1
	default:
		return 2
	}
}

func nameMatches(query, name string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(query))
}
