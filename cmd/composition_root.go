package cmd

import (
	"net/http"
	"time"

	"marketplace/internal/adapters/out/catalog"
	"marketplace/internal/adapters/out/notify"
	"marketplace/internal/adapters/out/postgres"
	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
	"marketplace/internal/jobs"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg           Config
	gormDB        *gorm.DB
	uowFactory    postgres.GormUnitOfWorkFactory
	collaborators commands.Collaborators
	catalog       ports.Catalog
	logger        *zap.Logger
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *zap.Logger) (CompositionRoot, error) {
	root := CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		collaborators: commands.Collaborators{
			Stock:    notify.NewLedgerStock(logger),
			Notifier: notify.NewLogNotifier(logger),
		},
		logger: logger,
	}

	if cfg.Catalog.URL != "" {
		client, err := catalog.NewHTTPClient(cfg.Catalog.URL, &http.Client{
			Timeout:   cfg.Catalog.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		})
		if err != nil {
			return CompositionRoot{}, errors.Wrap(err, "catalog client")
		}
		root.catalog = catalog.NewCachedLookup(client, cfg.Catalog.CacheTTL)
	}

	return root, nil
}

func (c *CompositionRoot) now() time.Time {
	return time.Now().UTC()
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) partnerUoWFactory() commands.PartnerUoWFactory {
	return FuncPartnerUoWFactory(func() commands.PartnerUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) uoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) transitionAuthority() services.TransitionAuthority {
	return services.NewTransitionAuthority(c.now)
}

func (c *CompositionRoot) refundReconciler() services.RefundReconciler {
	return services.NewRefundReconciler(services.RefundPolicy{
		TwoStepVendorFlow: c.cfg.Refunds.TwoStepVendorFlow,
	}, c.now)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.collaborators)
}

func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() commands.UpdateOrderStatusCommandHandler {
	return commands.NewUpdateOrderStatusCommandHandler(
		c.uoWFactory(), c.transitionAuthority(), c.collaborators, c.cfg.ConflictAttempts)
}

func (c *CompositionRoot) CreateRequestRefundCommandHandler() commands.RequestRefundCommandHandler {
	return commands.NewRequestRefundCommandHandler(
		c.orderUoWFactory(), c.refundReconciler(), c.collaborators, c.cfg.ConflictAttempts)
}

func (c *CompositionRoot) CreateResolveRefundCommandHandler() commands.ResolveRefundCommandHandler {
	return commands.NewResolveRefundCommandHandler(
		c.orderUoWFactory(), c.refundReconciler(), c.collaborators, c.cfg.ConflictAttempts)
}

func (c *CompositionRoot) CreateAssignDeliveryCommandHandler() commands.AssignDeliveryCommandHandler {
	return commands.NewAssignDeliveryCommandHandler(
		c.uoWFactory(), c.transitionAuthority(), c.collaborators, c.cfg.ConflictAttempts)
}

func (c *CompositionRoot) CreateUpdateDeliveryAssignmentCommandHandler() commands.UpdateDeliveryAssignmentCommandHandler {
	return commands.NewUpdateDeliveryAssignmentCommandHandler(
		c.uoWFactory(), c.transitionAuthority(), c.collaborators, c.cfg.ConflictAttempts)
}

func (c *CompositionRoot) CreateAutoAssignDeliveriesCommandHandler() commands.AutoAssignDeliveriesCommandHandler {
	return commands.NewAutoAssignDeliveriesCommandHandler(
		c.uoWFactory(), services.NewDeliveryDispatcher(c.transitionAuthority()), c.collaborators, c.cfg.ConflictAttempts)
}

func (c *CompositionRoot) CreateCreateDeliveryPartnerCommandHandler() commands.CreateDeliveryPartnerCommandHandler {
	return commands.NewCreateDeliveryPartnerCommandHandler(c.partnerUoWFactory(), c.collaborators)
}

func (c *CompositionRoot) CreateGetOrderViewQueryHandler() queries.GetOrderViewQueryHandler {
	// Outside Begin the repository reads through the pool.
	return queries.NewGetOrderViewQueryHandler(
		c.uowFactory.Create().OrderRepository(), services.NewStatusAggregator(), c.catalog)
}

func (c *CompositionRoot) CreateGetDeliveryPartnersQueryHandler() queries.GetDeliveryPartnersQueryHandler {
	return queries.NewGetDeliveryPartnersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveDeliveriesQueryHandler() queries.GetActiveDeliveriesQueryHandler {
	return queries.NewGetActiveDeliveriesQueryHandler(c.gormDB)
}

// CreateJobManager returns the background jobs enabled by the configuration.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	var scheduled []jobs.Job
	if c.cfg.Dispatch.Enabled {
		scheduled = append(scheduled, jobs.NewDeliveryAssignmentJob(
			c.CreateAutoAssignDeliveriesCommandHandler(),
			c.cfg.Dispatch.Schedule,
			c.cfg.Dispatch.Batch,
			c.logger,
		))
	}
	return jobs.NewJobManager(c.logger.Named("jobs"), scheduled...)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncPartnerUoWFactory func() commands.PartnerUoW

func (f FuncPartnerUoWFactory) Create() commands.PartnerUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
