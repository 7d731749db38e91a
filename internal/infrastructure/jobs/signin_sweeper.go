package jobs

import (
	"context"
	"log"
	"time"
)

// AttemptSweeper is the slice of the sign-in flow the job needs
type AttemptSweeper interface {
	Sweep(now time.Time) int
}

// SigninSweeperJob evicts expired relay sign-in attempts so abandoned QR
// scans do not accumulate in memory
type SigninSweeperJob struct {
	signin   AttemptSweeper
	interval time.Duration
	stop     chan struct{}
}

func NewSigninSweeperJob(signin AttemptSweeper) *SigninSweeperJob {
	return &SigninSweeperJob{
		signin:   signin,
		interval: 1 * time.Minute,
		stop:     make(chan struct{}),
	}
}

func (j *SigninSweeperJob) Start(ctx context.Context) {
	log.Println("🕐 Starting sign-in attempt sweeper job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Sign-in attempt sweeper stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Sign-in attempt sweeper stopped")
			return
		case <-ticker.C:
			if removed := j.signin.Sweep(time.Now()); removed > 0 {
				log.Printf("🧹 Evicted %d expired sign-in attempts", removed)
			}
		}
	}
}

func (j *SigninSweeperJob) Stop() {
	close(j.stop)
}
