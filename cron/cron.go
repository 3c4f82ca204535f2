package cron

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/lncalendar/lncalendar/payments"
)

// StartCronJobs initializes the scheduler for the minute purge sweep and
// returns it so the caller can Stop() it on shutdown. One failed sweep is
// logged and the next tick runs regardless.
func StartCronJobs(svc *payments.Service) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("* * * * *", func() {
		if err := svc.Purge(context.Background(), ""); err != nil {
			log.Printf("Error purging stale appointments: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}
	c.Start()
	log.Println("Cron job scheduler started for appointment purging")
	return c
}
