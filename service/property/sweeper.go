package propertysvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Rizwanwaseer11/homerental/mail"
	"github.com/Rizwanwaseer11/homerental/model"
)

const (
	// Listings pending longer than this are approved automatically.
	autoApproveAfter = time.Hour
	sweepInterval    = 10 * time.Minute
)

type SweepRepo interface {
	FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]model.Property, error)
	UpdateStatusIf(ctx context.Context, id int64, expected, next model.PropertyStatus) (bool, error)
}

type SweepUsers interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Notifier interface {
	Emit(ctx context.Context, receiverID int64, propertyID, bookingID *int64, message string) error
}

// Sweeper force-approves listings that stayed pending past the threshold,
// emitting the same notification and email an admin approval would. It runs
// on its own ticker, decoupled from request handling.
type Sweeper struct {
	mu sync.Mutex

	repo     SweepRepo
	users    SweepUsers
	notifier Notifier
	mailer   mail.Sender
	log      *slog.Logger

	interval time.Duration
	running  bool
	done     chan struct{}
}

func NewSweeper(r SweepRepo, u SweepUsers, n Notifier, m mail.Sender, log *slog.Logger) *Sweeper {
	return &Sweeper{
		repo:     r,
		users:    u,
		notifier: n,
		mailer:   m,
		log:      log,
		interval: sweepInterval,
	}
}

// Start launches the background loop. Stop (or ctx cancellation) ends it.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	go s.loop(ctx)
	s.log.Info("auto-approval sweeper started", "interval", s.interval)
}

func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.done)
	s.log.Info("auto-approval sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx, time.Now().UTC()); err != nil {
				s.log.Error("sweep failed", "err", err)
			}
		}
	}
}

// SweepOnce approves every listing pending since before now-threshold and
// returns how many it approved. A failure on one listing is logged and the
// sweep moves on; only the initial query can fail the whole pass.
func (s *Sweeper) SweepOnce(ctx context.Context, now time.Time) (int, error) {
	pending, err := s.repo.FindPendingOlderThan(ctx, now.Add(-autoApproveAfter))
	if err != nil {
		return 0, err
	}

	approved := 0
	var errs []error
	for _, prop := range pending {
		ok, err := s.repo.UpdateStatusIf(ctx, prop.ID, model.PropertyPending, model.PropertyAvailable)
		if err != nil {
			errs = append(errs, fmt.Errorf("property %d: %w", prop.ID, err))
			continue
		}
		if !ok {
			// An admin got there first; nothing to announce.
			continue
		}
		approved++

		if err := s.notifier.Emit(ctx, prop.OwnerID, &prop.ID, nil,
			fmt.Sprintf("Your house (ID: %d) is now listed on the site.", prop.ID)); err != nil {
			errs = append(errs, fmt.Errorf("notify owner %d: %w", prop.OwnerID, err))
		}

		// Email must not stall the sweep.
		go s.emailOwner(ctx, prop)
	}

	if len(errs) > 0 {
		s.log.Warn("sweep finished with errors", "approved", approved, "err", errors.Join(errs...))
	} else if approved > 0 {
		s.log.Info("sweep approved pending properties", "approved", approved)
	}
	return approved, nil
}

func (s *Sweeper) emailOwner(ctx context.Context, prop model.Property) {
	owner, err := s.users.ByID(ctx, prop.OwnerID)
	if err != nil || owner.Email == "" {
		return
	}
	body := fmt.Sprintf(
		"<h3>Hello %s,</h3><p>Your property <strong>%s</strong> has been automatically approved because it remained pending for over an hour.</p><p><strong>Property ID:</strong> %d</p><p>Your property is now visible to renters on the platform.</p><p>— Home Rental Team</p>",
		owner.Name, prop.Title, prop.ID)
	if err := s.mailer.Send(owner.Email, "Property Automatically Approved", body); err != nil {
		s.log.Warn("auto-approval email failed", "to", owner.Email, "err", err)
	}
}
