package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"

	"github.com/sarankoundinya2000/alfie/internal/models"
)

const contactFields = "names,emailAddresses"

// PeopleClient looks up contacts in the workspace directory and in the
// user's personal connections.
type PeopleClient struct {
	service *people.Service
	logger  *slog.Logger
}

// NewPeopleClient creates a People API client from an authenticated HTTP client.
func NewPeopleClient(ctx context.Context, logger *slog.Logger, client *http.Client) (*PeopleClient, error) {
	service, err := people.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create people service: %w", err)
	}
	return &PeopleClient{service: service, logger: logger}, nil
}

// SearchDirectory searches domain profiles and domain contacts for the query.
// The server filters by query; results are additionally restricted to
// display names containing the query, case-insensitive.
func (p *PeopleClient) SearchDirectory(ctx context.Context, query string) ([]models.ContactCandidate, error) {
	results, err := p.service.People.SearchDirectoryPeople().
		Query(query).
		ReadMask(contactFields).
		Sources("DIRECTORY_SOURCE_TYPE_DOMAIN_PROFILE", "DIRECTORY_SOURCE_TYPE_DOMAIN_CONTACT").
		PageSize(10).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search directory: %w", err)
	}

	var candidates []models.ContactCandidate
	for _, person := range results.People {
		name, email, ok := primaryNameEmail(person)
		if !ok || !strings.Contains(strings.ToLower(name), strings.ToLower(query)) {
			continue
		}
		candidates = append(candidates, models.ContactCandidate{
			Name:   name,
			Email:  email,
			Source: models.SourceDirectory,
		})
	}

	p.logger.Debug("Directory search finished", "query", query, "count", len(candidates))
	return candidates, nil
}

// ListConnections returns the user's personal contacts, most recently
// modified first. No filtering is applied; callers filter client-side.
func (p *PeopleClient) ListConnections(ctx context.Context) ([]models.ContactCandidate, error) {
	results, err := p.service.People.Connections.List("people/me").
		PageSize(100).
		PersonFields(contactFields).
		SortOrder("LAST_MODIFIED_DESCENDING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	var candidates []models.ContactCandidate
	for _, person := range results.Connections {
		name, email, ok := primaryNameEmail(person)
		if !ok {
			continue
		}
		candidates = append(candidates, models.ContactCandidate{
			Name:   name,
			Email:  email,
			Source: models.SourcePersonalContact,
		})
	}
	return candidates, nil
}

// primaryNameEmail extracts the first display name and email address from a
// person record. Both must be present for the record to be usable.
func primaryNameEmail(person *people.Person) (string, string, bool) {
	if person == nil || len(person.Names) == 0 || len(person.EmailAddresses) == 0 {
		return "", "", false
	}
	name := person.Names[0].DisplayName
	email := person.EmailAddresses[0].Value
	if name == "" || email == "" {
		return "", "", false
	}
	return name, email, true
}
