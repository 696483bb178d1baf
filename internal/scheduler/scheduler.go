package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"IndexHarvester/internal/model"
	"IndexHarvester/internal/notifier"
)

// Runner executes one harvest.
type Runner interface {
	Run(ctx context.Context) (*model.RunReport, error)
}

// Scheduler reruns the pipeline on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Notifier *notifier.TelegramNotifier
	Ctx      context.Context

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// NewScheduler creates a new Scheduler. The notifier may be nil.
func NewScheduler(ctx context.Context, runner Runner, tn *notifier.TelegramNotifier) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Notifier: tn,
		Ctx:      ctx,
	}
}

// Register adds the harvest task for a six-field cron expression.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.harvestTask() }); err != nil {
		return fmt.Errorf("register harvest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running harvests, including
// one started by RunAsync, to return.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.wg.Wait()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the harvest task immediately. It returns false when a run
// was already in progress and nothing was started.
func (s *Scheduler) RunNow() bool {
	return s.harvestTask()
}

// RunAsync starts RunNow in the background. Stop waits for it.
func (s *Scheduler) RunAsync() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunNow()
	}()
}

func (s *Scheduler) harvestTask() bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Println("[WARN] previous harvest still running, skipping")
		return false
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	log.Println("[INFO] running harvest task")
	report, err := s.Runner.Run(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] harvest: %v", err)
	}
	if report != nil {
		s.trySend(notifier.FormatRunReport(report, err))
	}
	return true
}

func (s *Scheduler) trySend(text string) {
	if !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
