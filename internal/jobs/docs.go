// Package jobs provides scheduled background tasks for the marketplace.
//
// Jobs are cron based (github.com/robfig/cron/v3, six field expressions with seconds).
//
// # Available Jobs
//
// DeliveryAssignmentJob runs the delivery dispatcher: every Shipped container that has no
// delivery partner, or whose partner declined, is offered to the least loaded partner
// with free capacity.
//
// # Usage
//
//	job := jobs.NewDeliveryAssignmentJob(autoAssignHandler, "*/10 * * * * *", 50, logger)
//	manager := jobs.NewJobManager(logger, job)
//	if err := manager.StartAll(); err != nil {
//		return err
//	}
//	defer manager.StopAll()
//
// # Error Handling
//
// Finding no work or running out of partners is expected and not logged as an error.
// A run never overlaps the previous one.
package jobs
