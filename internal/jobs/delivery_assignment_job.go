package jobs

import (
	"context"
	"time"

	"marketplace/internal/core/application/usecases/commands"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// AutoAssigner runs one pass of the delivery dispatcher.
type AutoAssigner interface {
	Handle(ctx context.Context, cmd commands.AutoAssignDeliveriesCommand) (int, error)
}

// DeliveryAssignmentJob periodically hands Shipped containers without a delivery
// partner to the least loaded partner with free capacity.
type DeliveryAssignmentJob struct {
	handler AutoAssigner
	cron    *cron.Cron
	spec    string
	batch   int
	timeout time.Duration
	logger  *zap.Logger
}

// NewDeliveryAssignmentJob creates the job. spec is a cron expression with a seconds field,
// for example "*/10 * * * * *".
func NewDeliveryAssignmentJob(
	handler AutoAssigner,
	spec string,
	batch int,
	logger *zap.Logger,
) *DeliveryAssignmentJob {
	return &DeliveryAssignmentJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:    spec,
		batch:   batch,
		timeout: 30 * time.Second,
		logger:  logger.With(zap.String("component", "delivery_assignment_job")),
	}
}

// Start schedules the job.
func (j *DeliveryAssignmentJob) Start() error {
	cmd, err := commands.NewAutoAssignDeliveriesCommand(j.batch)
	if err != nil {
		return errors.Wrap(err, "build auto assign command")
	}

	if _, err := j.cron.AddFunc(j.spec, func() { j.run(cmd) }); err != nil {
		return errors.Wrapf(err, "schedule %q", j.spec)
	}

	j.cron.Start()
	j.logger.Info("Delivery assignment job started", zap.String("schedule", j.spec), zap.Int("batch", j.batch))
	return nil
}

// RunOnce performs a single pass immediately and reports how many containers were assigned.
func (j *DeliveryAssignmentJob) RunOnce(ctx context.Context) (int, error) {
	cmd, err := commands.NewAutoAssignDeliveriesCommand(j.batch)
	if err != nil {
		return 0, err
	}
	return j.handler.Handle(zctx.Base(ctx, j.logger), cmd)
}

func (j *DeliveryAssignmentJob) run(cmd commands.AutoAssignDeliveriesCommand) {
	ctx, cancel := context.WithTimeout(zctx.Base(context.Background(), j.logger), j.timeout)
	defer cancel()

	assigned, err := j.handler.Handle(ctx, cmd)
	switch {
	case err == nil:
		j.logger.Info("Deliveries assigned", zap.Int("assigned", assigned))
	case commands.IsNothingToDispatch(err):
		// Expected when nothing ships or every partner is busy.
		if assigned > 0 {
			j.logger.Info("Deliveries assigned, partners exhausted", zap.Int("assigned", assigned))
		}
	default:
		j.logger.Error("Delivery assignment job failed", zap.Error(err))
	}
}

// Stop unschedules the job and waits for a running pass to finish.
func (j *DeliveryAssignmentJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Delivery assignment job stopped")
}
