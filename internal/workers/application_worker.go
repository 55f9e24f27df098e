package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"jobboard_backend/internal/logger"
	repoChat "jobboard_backend/internal/repositories/chat"
)

// ApplicationWorker зачищает хвосты откликов: приглашения на
// интервью, оставшиеся в PENDING после отзыва или отклонения
// отклика, переводятся в DECLINED; треды удаленных откликов
// удаляются вместе с сообщениями.
type ApplicationWorker struct {
	db       *gorm.DB
	threads  *repoChat.ThreadRepository
	interval time.Duration
}

func NewApplicationWorker(db *gorm.DB, interval time.Duration) *ApplicationWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ApplicationWorker{
		db:       db,
		threads:  repoChat.NewThreadRepository(),
		interval: interval,
	}
}

// Start запускает фоновые задачи по откликам
func (w *ApplicationWorker) Start(ctx context.Context) {
	go w.sweepLoop(ctx)
}

func (w *ApplicationWorker) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Application worker stopped")
			return
		case <-ticker.C:
			w.declineOrphanedProposals()
			w.dropOrphanedThreads()
		}
	}
}

// declineOrphanedProposals переводит в DECLINED все PENDING-приглашения
// в тредах, чей отклик отозван или отклонен. Принять интервью по
// мертвому отклику нельзя.
func (w *ApplicationWorker) declineOrphanedProposals() {
	result := w.db.Exec(`
		UPDATE chat.messages m
		SET interview = jsonb_set(m.interview, '{status}', '"DECLINED"')
		FROM chat.threads t
		JOIN job_applications a ON a.id = t.application_id
		WHERE m.thread_id = t.id
		AND m.kind = 'INTERVIEW_REQUEST'
		AND m.interview->>'status' = 'PENDING'
		AND a.status IN ('withdrawn', 'rejected')
	`)
	if result.Error != nil {
		logger.WorkerLog("application", "decline_orphaned_proposals", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		logger.Info("Declined orphaned interview proposals", "count", result.RowsAffected)
	}
}

// dropOrphanedThreads удаляет треды, чей отклик удален из БД.
// Тред живет ровно столько, сколько живет его отклик.
func (w *ApplicationWorker) dropOrphanedThreads() {
	var threadIDs []string
	err := w.db.Raw(`
		SELECT t.id FROM chat.threads t
		LEFT JOIN job_applications a ON a.id = t.application_id
		WHERE a.id IS NULL
	`).Scan(&threadIDs).Error
	if err != nil {
		logger.WorkerLog("application", "drop_orphaned_threads", err)
		return
	}

	for _, id := range threadIDs {
		if err := w.threads.Delete(w.db, id); err != nil {
			logger.WorkerLog("application", "drop_orphaned_threads", err)
		}
	}
	if len(threadIDs) > 0 {
		logger.Info("Dropped orphaned chat threads", "count", len(threadIDs))
	}
}
