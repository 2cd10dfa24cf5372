// Package worker runs the periodic housekeeping that keeps the database tidy
// between requests.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
	"github.com/EliasObeid9-02/library-system/pkg/config"
	"github.com/EliasObeid9-02/library-system/pkg/lending"
	"github.com/EliasObeid9-02/library-system/pkg/mail"
	"github.com/EliasObeid9-02/library-system/pkg/passwordreset"
	"github.com/EliasObeid9-02/library-system/pkg/users"
)

const (
	TaskPurgeAuthTokens  = "purge_auth_tokens"
	TaskPurgeResetTokens = "purge_reset_tokens"
	TaskOverdueLoans     = "overdue_loans"
)

type task struct {
	name string
	// run returns how many rows the task touched or found.
	run func(ctx context.Context) (int, error)
}

type Worker struct {
	interval time.Duration
	log      logger.Logger
	tasks    []task

	startOnce sync.Once
	started   bool
	shutdown  chan struct{}
	done      chan struct{}
}

func New(cfg *config.Config, db *bun.DB, mailer mail.Mailer) *Worker {
	authService := auth.NewService(db, cfg.TokenTTL)
	resetService := passwordreset.NewService(db, users.NewService(db), mailer, cfg.ResetTokenTTL, cfg.PasswordResetURL)
	lendingService := lending.NewService(db, cfg.LoanPeriod)

	w := &Worker{
		interval: cfg.MaintenanceInterval,
		log:      logger.New(),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	w.tasks = []task{
		{TaskPurgeAuthTokens, authService.PurgeExpiredTokens},
		{TaskPurgeResetTokens, resetService.PurgeExpired},
		{TaskOverdueLoans, func(ctx context.Context) (int, error) {
			overdue, err := lendingService.ListOverdue(ctx)
			if err != nil {
				return 0, err
			}
			log := logger.FromContext(ctx)
			for _, bi := range overdue {
				log.Warn("loan overdue", logger.Data{
					"book_instance_id": bi.ID,
					"book_id":          bi.BookID,
					"borrower_id":      bi.BorrowerID,
					"due_date":         bi.DueDate,
				})
			}
			return len(overdue), nil
		}},
	}

	return w
}

// Start runs every task once per interval in the background. A zero interval
// disables the worker.
func (w *Worker) Start() {
	if w.interval <= 0 {
		return
	}
	w.startOnce.Do(func() {
		w.started = true
		go w.loop()
	})
}

func (w *Worker) loop() {
	defer close(w.done)

	timer := time.NewTimer(w.interval)
	defer timer.Stop()

	for {
		select {
		case <-w.shutdown:
			return
		case <-timer.C:
			w.RunOnce(context.Background())
			timer.Reset(w.interval)
		}
	}
}

// RunOnce runs every task and returns the count reported by each one that
// succeeded. Failures are logged and don't stop the remaining tasks.
func (w *Worker) RunOnce(ctx context.Context) map[string]int {
	results := map[string]int{}

	for _, t := range w.tasks {
		id, err := uuid.NewRandom()
		if err != nil {
			w.log.Err(err).Error("new uuid error")
			continue
		}
		log := w.log.ID(id.String()).Root(logger.Data{"task": t.name})
		taskCtx := log.WithContext(ctx)

		start := time.Now()
		n, err := t.run(taskCtx)
		if err != nil {
			log.Err(err).Error("task error")
			continue
		}
		results[t.name] = n
		log.Info("task finished", logger.Data{"count": n, "duration_ms": time.Since(start).Milliseconds()})
	}

	return results
}

// Shutdown stops the loop and waits for a running pass to finish.
func (w *Worker) Shutdown() {
	if !w.started {
		return
	}
	close(w.shutdown)
	<-w.done
}
