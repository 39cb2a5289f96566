package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/upb/skillboard/backend/repositories"
	"go.uber.org/zap"
)

// ChangeListener implements repositories.ChangeListener on postgres
// LISTEN/NOTIFY. Payloads are advisory; a nil notification after a dropped
// connection is forwarded as an empty signal so subscribers re-fetch.
type ChangeListener struct {
	listener *pq.Listener
	channel  string
	logger   *zap.Logger

	notifications chan repositories.ChangeNotification
	started       bool
	mu            sync.Mutex
	done          chan struct{}
}

// NewChangeListener creates a listener on the given NOTIFY channel
func NewChangeListener(dsn, channel string, logger *zap.Logger) *ChangeListener {
	cl := &ChangeListener{
		channel:       channel,
		logger:        logger,
		notifications: make(chan repositories.ChangeNotification, 64),
		done:          make(chan struct{}),
	}

	cl.listener = pq.NewListener(dsn, 10*time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("change listener connection event",
				zap.Int("event", int(event)),
				zap.Error(err))
		}
	})

	return cl
}

// Start begins listening; safe to call once
func (cl *ChangeListener) Start(ctx context.Context) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.started {
		return fmt.Errorf("change listener already started")
	}

	if err := cl.listener.Listen(cl.channel); err != nil {
		return fmt.Errorf("failed to listen on channel %s: %w", cl.channel, err)
	}

	cl.started = true
	go cl.forward(ctx)

	cl.logger.Info("change listener started", zap.String("channel", cl.channel))
	return nil
}

// Notifications returns the channel change signals are delivered on
func (cl *ChangeListener) Notifications() <-chan repositories.ChangeNotification {
	return cl.notifications
}

// Close stops the listener and releases its connection
func (cl *ChangeListener) Close() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if !cl.started {
		return nil
	}

	close(cl.done)
	cl.started = false
	return cl.listener.Close()
}

// forward pumps pq notifications into the typed channel until the context or
// listener shuts down
func (cl *ChangeListener) forward(ctx context.Context) {
	defer close(cl.notifications)

	for {
		select {
		case <-ctx.Done():
			return
		case <-cl.done:
			return
		case n, ok := <-cl.listener.Notify:
			if !ok {
				return
			}

			notification := repositories.ChangeNotification{}
			if n != nil && n.Extra != "" {
				// Best-effort decode; an unparseable payload still signals
				if err := json.Unmarshal([]byte(n.Extra), &notification); err != nil {
					cl.logger.Debug("undecodable change notification payload",
						zap.String("payload", n.Extra))
					notification = repositories.ChangeNotification{}
				}
			}

			select {
			case cl.notifications <- notification:
			default:
				// Subscriber is behind; dropping is safe because each signal
				// triggers a full re-fetch anyway
				cl.logger.Debug("change notification dropped, subscriber busy")
			}
		}
	}
}
