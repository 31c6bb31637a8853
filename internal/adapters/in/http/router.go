package http

import (
	"net/http"
	"time"

	"marketplace/api"

	"github.com/NYTimes/gziphandler"
	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures the router.
type Options struct {
	// JWTSecret signs the bearer tokens naming the actor.
	JWTSecret []byte
	// RateLimit is the sustained number of requests per second allowed per client IP.
	// Zero disables rate limiting.
	RateLimit float64
	RateBurst int
	Logger    *zap.Logger
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

const rateLimitIdleExpiry = 3 * time.Minute

// NewRouter builds the echo instance serving the API, the OpenAPI document and its UI.
func NewRouter(s *Server, opts Options) (*echo.Echo, error) {
	if len(opts.JWTSecret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	lg := opts.Logger
	if lg == nil {
		lg = zap.NewNop()
	}

	validate, err := ValidateRequests(api.Spec)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.OFF)
	e.JSONSerializer = jsonSerializer{}
	e.HTTPErrorHandler = ErrorHandler()

	e.Use(middleware.RequestID())
	e.Use(LogRequests(lg.Named("http")))
	e.Use(middleware.Recover())
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = int(opts.RateLimit) + 1
		}
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(opts.RateLimit),
				Burst:     burst,
				ExpiresIn: rateLimitIdleExpiry,
			},
		)))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/openapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", api.Spec)
	})
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("/openapi.yaml")))

	v1 := e.Group("/api/v1", Authenticate(opts.JWTSecret), validate)
	v1.POST("/orders", s.PlaceOrder)
	v1.GET("/orders/:orderId", s.GetOrderView)
	v1.PUT("/orders/:orderId/containers/:containerId/status", s.UpdateOrderStatus)
	v1.POST("/orders/:orderId/refunds", s.RequestRefund)
	v1.PUT("/orders/:orderId/containers/:containerId/refunds/:index", s.ResolveRefund)
	v1.PUT("/orders/:orderId/containers/:containerId/delivery", s.AssignDelivery)
	v1.PATCH("/orders/:orderId/delivery", s.UpdateDeliveryAssignment)
	v1.GET("/delivery-partners", s.ListDeliveryPartners)
	v1.POST("/delivery-partners", s.RegisterDeliveryPartner)
	v1.GET("/delivery-partners/:partnerId/deliveries", s.ListActiveDeliveries)
	v1.POST("/deliveries/dispatch", s.DispatchDeliveries)

	return e, nil
}

// Handler wraps the router with tracing and response compression.
func Handler(e *echo.Echo, opts Options) http.Handler {
	var otelOpts []otelhttp.Option
	if opts.TracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(opts.TracerProvider))
	}
	return gziphandler.GzipHandler(otelhttp.NewHandler(e, "marketplace", otelOpts...))
}
