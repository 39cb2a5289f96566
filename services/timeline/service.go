package timeline

import (
	"context"
	"sync"

	"github.com/upb/skillboard/backend/config"
	"github.com/upb/skillboard/backend/models"
	"github.com/upb/skillboard/backend/repositories"
	"github.com/upb/skillboard/backend/services"
	"github.com/upb/skillboard/backend/services/format"
	"github.com/upb/skillboard/backend/services/resolver"
	"go.uber.org/zap"
)

// Service is the pipeline controller. It fetches a change-log window, runs
// filter -> group -> format, and publishes the result as the current feed
// snapshot. Recomputes run concurrently; publication is last-write-wins by
// generation so a stale run can never clobber a fresher snapshot.
type Service struct {
	changeLog repositories.ChangeLogRepository
	resolver  *resolver.Service
	grouper   *Grouper
	formatter *format.Formatter
	cfg       config.TimelineConfig
	logger    *zap.Logger

	genMu      sync.Mutex
	generation uint64

	pubMu       sync.RWMutex
	feed        []models.DisplayEvent
	feedGen     uint64
	subscribers map[chan []models.DisplayEvent]bool
}

// NewService creates a new timeline service
func NewService(
	changeLog repositories.ChangeLogRepository,
	resolverSvc *resolver.Service,
	grouper *Grouper,
	formatter *format.Formatter,
	cfg config.TimelineConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		changeLog:   changeLog,
		resolver:    resolverSvc,
		grouper:     grouper,
		formatter:   formatter,
		cfg:         cfg,
		logger:      logger,
		subscribers: make(map[chan []models.DisplayEvent]bool),
	}
}

// nextGeneration stamps a recompute run. Stamps are taken before fetching so
// overlapping runs publish in fetch order, not completion order.
func (s *Service) nextGeneration() uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.generation++
	return s.generation
}

// Recompute rebuilds the global feed from the most recent change-log window
// and publishes it. On fetch failure the previously published snapshot is
// left intact and the error is returned.
func (s *Service) Recompute(ctx context.Context) ([]models.DisplayEvent, error) {
	gen := s.nextGeneration()

	raw, err := s.changeLog.GetRecent(ctx, s.cfg.WindowLimit)
	if err != nil {
		s.logger.Warn("change-log fetch failed, keeping previous feed", zap.Error(err))
		return nil, services.WrapError(services.ErrorTypeExternal, "change log unavailable", err)
	}

	feed := s.process(raw)
	s.publish(gen, feed)
	return feed, nil
}

// RecomputeForEntity builds a feed scoped to one entity's rows. Scoped feeds
// are computed on demand and never published as the global snapshot.
func (s *Service) RecomputeForEntity(ctx context.Context, entityType, entityID string) ([]models.DisplayEvent, error) {
	raw, err := s.changeLog.GetByEntity(ctx, entityType, entityID, s.cfg.WindowLimit)
	if err != nil {
		return nil, services.WrapError(services.ErrorTypeExternal, "change log unavailable", err)
	}
	return s.process(raw), nil
}

// Feed returns the last published snapshot. Never nil.
func (s *Service) Feed() []models.DisplayEvent {
	s.pubMu.RLock()
	defer s.pubMu.RUnlock()
	if s.feed == nil {
		return []models.DisplayEvent{}
	}
	return s.feed
}

// Subscribe registers a channel that receives every newly published feed.
// Slow subscribers miss intermediate snapshots rather than block publication.
func (s *Service) Subscribe() chan []models.DisplayEvent {
	ch := make(chan []models.DisplayEvent, 1)
	s.pubMu.Lock()
	s.subscribers[ch] = true
	s.pubMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel
func (s *Service) Unsubscribe(ch chan []models.DisplayEvent) {
	s.pubMu.Lock()
	if s.subscribers[ch] {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.pubMu.Unlock()
}

// Run drives the live pipeline: refresh references, compute the initial
// feed, then recompute on every change signal until the context ends.
// Notification payloads are advisory only; every signal triggers a full
// re-fetch of the window.
func (s *Service) Run(ctx context.Context, listener repositories.ChangeListener) error {
	if err := s.resolver.Refresh(ctx); err != nil {
		s.logger.Warn("initial reference refresh failed", zap.Error(err))
	}
	if _, err := s.Recompute(ctx); err != nil {
		s.logger.Warn("initial feed computation failed", zap.Error(err))
	}

	if err := listener.Start(ctx); err != nil {
		return services.WrapError(services.ErrorTypeExternal, "change subscription unavailable", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case notification, ok := <-listener.Notifications():
			if !ok {
				return services.NewDomainError(services.ErrorTypeExternal, "change subscription closed", nil)
			}
			s.logger.Debug("change signal received",
				zap.String("entity_type", notification.EntityType),
				zap.String("entity_id", notification.EntityID))

			if err := s.resolver.Refresh(ctx); err != nil {
				s.logger.Warn("reference refresh failed", zap.Error(err))
			}
			if _, err := s.Recompute(ctx); err != nil {
				s.logger.Warn("feed recompute failed", zap.Error(err))
			}
		}
	}
}

// process runs the in-memory stages on a raw window
func (s *Service) process(raw []*models.ChangeEvent) []models.DisplayEvent {
	filtered := s.grouper.filter.Apply(raw)
	consolidated := s.grouper.Group(filtered)
	feed := s.formatter.Format(consolidated)

	s.logger.Debug("pipeline run complete",
		zap.Int("raw", len(raw)),
		zap.Int("filtered", len(filtered)),
		zap.Int("consolidated", len(consolidated)))
	return feed
}

// publish installs a snapshot unless a later generation already landed
func (s *Service) publish(gen uint64, feed []models.DisplayEvent) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	if gen < s.feedGen {
		s.logger.Debug("stale recompute discarded",
			zap.Uint64("generation", gen),
			zap.Uint64("published", s.feedGen))
		return
	}
	s.feed = feed
	s.feedGen = gen

	for ch := range s.subscribers {
		select {
		case ch <- feed:
		default:
			// Drain the stale snapshot so the latest one lands
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- feed:
			default:
			}
		}
	}
}
