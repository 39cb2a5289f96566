package resolver

import (
	"context"
	"strings"
	"sync"

	"github.com/upb/skillboard/backend/models"
	"github.com/upb/skillboard/backend/repositories"
	"github.com/upb/skillboard/backend/services"
	"go.uber.org/zap"
)

// minSubstringMatchLen is the shortest dash-stripped fragment the
// containment rung will consider. A stripped UUID is 32 chars; fragments
// under a quarter of that collide across entities.
const minSubstringMatchLen = 8

// Service resolves (kind, id) pairs to display references against cached
// reference collections. Resolution never fails: an unmatched id yields a
// synthetic "Unknown <Kind>" reference.
type Service struct {
	people repositories.PersonRepository
	orgs   repositories.OrganizationRepository
	skills repositories.SkillRepository
	logger *zap.Logger

	cache *ReferenceCache

	mu        sync.RWMutex
	snapshots map[models.EntityKind][]models.EntityReference
}

// NewService creates a new resolver service
func NewService(
	people repositories.PersonRepository,
	orgs repositories.OrganizationRepository,
	skills repositories.SkillRepository,
	cache *ReferenceCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		people:    people,
		orgs:      orgs,
		skills:    skills,
		logger:    logger,
		cache:     cache,
		snapshots: make(map[models.EntityKind][]models.EntityReference),
	}
}

// Refresh re-fetches all reference collections. Each kind is refreshed
// independently and swapped in whole, so a failed fetch leaves the previous
// snapshot intact (stale-but-consistent, never torn).
func (s *Service) Refresh(ctx context.Context) error {
	var firstErr error

	if refs, err := s.fetchPeople(ctx); err != nil {
		firstErr = err
	} else {
		s.swapSnapshot(models.KindUser, refs)
	}

	if refs, err := s.fetchOrganizations(ctx); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else {
		s.swapSnapshot(models.KindOrganization, refs)
	}

	if refs, err := s.fetchSkills(ctx); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else {
		s.swapSnapshot(models.KindSkill, refs)
	}

	if firstErr != nil {
		return services.WrapError(services.ErrorTypeExternal, "reference data refresh failed", firstErr)
	}

	s.logger.Debug("reference snapshots refreshed")
	return nil
}

// Resolve resolves a raw id to a display reference. The ladder tries exact
// match, case-insensitive match, dash-stripped match, then substring
// containment in either direction before falling back.
func (s *Service) Resolve(kind models.EntityKind, id string) models.EntityReference {
	id = strings.TrimSpace(id)
	if id == "" {
		return fallbackReference(kind)
	}

	key := CacheKey{Kind: kind, ID: id}
	if ref, ok := s.cache.Get(key); ok {
		return ref
	}

	ref := s.resolveUncached(kind, id)
	s.cache.Set(key, ref)
	return ref
}

// ResolveByName resolves a recovered display name to a reference, matching
// case-insensitively against snapshot names. Used when classification only
// recovered a name from free text.
func (s *Service) ResolveByName(kind models.EntityKind, name string) models.EntityReference {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallbackReference(kind)
	}

	s.mu.RLock()
	refs := s.snapshots[kind]
	s.mu.RUnlock()

	lower := strings.ToLower(name)
	for _, ref := range refs {
		if strings.ToLower(ref.Name) == lower {
			return ref
		}
	}

	// A recovered name is still displayable without an id
	return models.EntityReference{Kind: kind, Name: name}
}

// Stats returns resolve cache statistics
func (s *Service) Stats() CacheStats {
	return s.cache.Stats()
}

func (s *Service) resolveUncached(kind models.EntityKind, id string) models.EntityReference {
	s.mu.RLock()
	refs := s.snapshots[kind]
	s.mu.RUnlock()

	// Exact match
	for _, ref := range refs {
		if ref.ID == id {
			return ref
		}
	}

	// Case-insensitive match
	lower := strings.ToLower(id)
	for _, ref := range refs {
		if strings.ToLower(ref.ID) == lower {
			return ref
		}
	}

	// Dash-stripped match for UUID-like ids logged without separators
	stripped := strings.ReplaceAll(lower, "-", "")
	if stripped != "" {
		for _, ref := range refs {
			if strings.ReplaceAll(strings.ToLower(ref.ID), "-", "") == stripped {
				return ref
			}
		}
	}

	// Substring containment in either direction handles truncated ids.
	// Short fragments match too eagerly, so require a minimum length.
	if len(stripped) >= minSubstringMatchLen {
		for _, ref := range refs {
			refStripped := strings.ReplaceAll(strings.ToLower(ref.ID), "-", "")
			if strings.Contains(refStripped, stripped) || strings.Contains(stripped, refStripped) {
				return ref
			}
		}
	}

	return fallbackReference(kind)
}

func (s *Service) swapSnapshot(kind models.EntityKind, refs []models.EntityReference) {
	s.mu.Lock()
	s.snapshots[kind] = refs
	s.mu.Unlock()

	s.cache.InvalidateKind(kind)
}

func (s *Service) fetchPeople(ctx context.Context) ([]models.EntityReference, error) {
	people, err := s.people.List(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]models.EntityReference, 0, len(people))
	for _, p := range people {
		refs = append(refs, models.EntityReference{
			Kind: models.KindUser,
			ID:   p.ID.String(),
			Name: p.Name,
		})
	}
	return refs, nil
}

func (s *Service) fetchOrganizations(ctx context.Context) ([]models.EntityReference, error) {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]models.EntityReference, 0, len(orgs))
	for _, o := range orgs {
		refs = append(refs, models.EntityReference{
			Kind: models.KindOrganization,
			ID:   o.ID.String(),
			Name: o.Name,
		})
	}
	return refs, nil
}

func (s *Service) fetchSkills(ctx context.Context) ([]models.EntityReference, error) {
	skills, err := s.skills.List(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]models.EntityReference, 0, len(skills))
	for _, sk := range skills {
		refs = append(refs, models.EntityReference{
			Kind: models.KindSkill,
			ID:   sk.ID.String(),
			Name: sk.Name,
		})
	}
	return refs, nil
}

// fallbackReference builds the synthetic "Unknown <Kind>" reference
func fallbackReference(kind models.EntityKind) models.EntityReference {
	label := "Entity"
	switch kind {
	case models.KindUser:
		label = "User"
	case models.KindOrganization:
		label = "Organization"
	case models.KindSkill:
		label = "Skill"
	}
	return models.EntityReference{Kind: kind, Name: "Unknown " + label}
}
