package receipts

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SchedulePrune registers a job that prunes every seller's recent receipts.
func SchedulePrune(c *cron.Cron, schedule string, recent *Recent, log logrus.FieldLogger) (cron.EntryID, error) {
	return c.AddFunc(schedule, func() {
		dropped, err := recent.PruneAll(context.Background())
		if err != nil {
			log.WithError(err).Error("pruning recent receipts failed")
			return
		}
		log.WithField("dropped", dropped).Info("recent receipts pruned")
	})
}
