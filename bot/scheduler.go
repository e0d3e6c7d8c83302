package bot

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"modix/model"
)

// Sweeper is what the scheduler runs periodically.
type Sweeper interface {
	ExpireDueInfractions(ctx context.Context) ([]model.Infraction, error)
	Reconcile(ctx context.Context) (int, error)
}

// Scheduler manages the background sweeps.
type Scheduler struct {
	sweeper           Sweeper
	expiryInterval    time.Duration
	reconcileInterval time.Duration
	log               *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	wg      sync.WaitGroup
	started bool
	stopped bool
	mu      sync.Mutex
}

func NewScheduler(sweeper Sweeper, expiryInterval, reconcileInterval time.Duration, log *zap.Logger) *Scheduler {
	if expiryInterval <= 0 {
		expiryInterval = time.Minute
	}
	if reconcileInterval <= 0 {
		reconcileInterval = 5 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		sweeper:           sweeper,
		expiryInterval:    expiryInterval,
		reconcileInterval: reconcileInterval,
		log:               log.With(zap.String("service", "scheduler")),
		ctx:               ctx,
		cancel:            cancel,
		done:              make(chan struct{}),
	}
}

// Start runs both sweeps once and then on their intervals. Calling Start
// twice has no effect.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true

	s.wg.Add(2)
	go s.loop(s.expiryInterval, s.expire)
	go s.loop(s.reconcileInterval, s.reconcile)
}

// Stop terminates the sweeps and waits for a running one to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.log.Info("Stopping scheduler...")
	s.cancel()
	close(s.done)
	s.wg.Wait()
	s.log.Info("Scheduler stopped.")
}

func (s *Scheduler) loop(interval time.Duration, job func()) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	job()
	for {
		select {
		case <-ticker.C:
			job()
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) expire() {
	expired, err := s.sweeper.ExpireDueInfractions(s.ctx)
	if err != nil {
		s.log.Error("expiry sweep failed", zap.Error(err))
	}
	if len(expired) > 0 {
		s.log.Info("expired infractions", zap.Int("count", len(expired)))
	}
}

func (s *Scheduler) reconcile() {
	n, err := s.sweeper.Reconcile(s.ctx)
	if err != nil {
		s.log.Error("reconcile failed", zap.Error(err))
	}
	if n > 0 {
		s.log.Info("reconciled pending effects", zap.Int("count", n))
	}
}
