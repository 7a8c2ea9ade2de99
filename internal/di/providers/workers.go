package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/recipebox/recipe-api/internal/logger"
)

// SessionGCJob periodically reclaims session store disk space. Expired
// sessions vanish through their TTL; this compacts what they leave behind.
type SessionGCJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (j *SessionGCJob) Shutdown() error {
	j.cancel()
	<-j.done
	return nil
}

// ProvideSessionGCJob provides the periodic session store GC job.
func ProvideSessionGCJob(i do.Injector) (*SessionGCJob, error) {
	sessions := do.MustInvoke[*SessionStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(sessionGCInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if rewritten, err := sessions.RunGC(sessionGCDiscardRatio); err != nil {
					log.Warn("Session store GC failed", "error", err)
				} else if rewritten > 0 {
					log.Info("Session store GC completed", "files_rewritten", rewritten)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session store GC job started", "interval", sessionGCInterval)

	return &SessionGCJob{cancel: cancel, done: done}, nil
}
