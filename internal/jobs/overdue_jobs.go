package jobs

import (
	"context"
	"time"

	"lendlocal-backend/internal/logger"
)

const overdueReminderTimeout = 5 * time.Minute

// SendOverdueReminders is the cron entry point for the overdue reminder job
func (jr *JobRunner) SendOverdueReminders() {
	_ = jr.RunOverdueReminders()
}

// RunOverdueReminders e-mails the borrower of every overdue loan
func (jr *JobRunner) RunOverdueReminders() error {
	return jr.runWithRecovery("SendOverdueReminders", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), overdueReminderTimeout)
		defer cancel()

		sent, err := jr.services.Lending.SendOverdueReminders(ctx)
		if err != nil {
			return err
		}
		logger.Info("Sent overdue reminders", "count", sent)
		return nil
	})
}
