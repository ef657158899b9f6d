package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler repeats a briefing run on a cron spec. Runs never overlap: a tick
// that fires while a run is still in flight is skipped and logged.
type Scheduler struct {
	cron *cron.Cron
	job  func()
	mu   sync.Mutex
}

func New(spec string, job func()) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron: c,
		job:  job,
	}

	if _, err := c.AddFunc(spec, func() { s.RunOnce() }); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// Short delay before the first run so startup logging settles and any
	// co-hosted server binds its port first.
	const startupDelay = 2 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.RunOnce()
	})
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunOnce executes the job unless another run is already in flight; it
// reports whether the job actually ran.
func (s *Scheduler) RunOnce() bool {
	if !s.mu.TryLock() {
		log.Println("scheduler: previous run still in flight, skipping tick")
		return false
	}
	defer s.mu.Unlock()

	s.job()
	return true
}
