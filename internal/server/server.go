package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostline/hostline/internal/catalog"
	"github.com/hostline/hostline/internal/config"
	"github.com/hostline/hostline/internal/coupon"
	coupondomain "github.com/hostline/hostline/internal/coupon/domain"
	"github.com/hostline/hostline/internal/gateway"
	"github.com/hostline/hostline/internal/observability"
	obsmetrics "github.com/hostline/hostline/internal/observability/metrics"
	"github.com/hostline/hostline/internal/order"
	orderdomain "github.com/hostline/hostline/internal/order/domain"
	"github.com/hostline/hostline/internal/pricing"
	pricingdomain "github.com/hostline/hostline/internal/pricing/domain"
	"github.com/hostline/hostline/internal/provisioning"
	"github.com/hostline/hostline/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	observability.Module,
	ratelimit.Module,
	catalog.Module,
	coupon.Module,
	pricing.Module,
	provisioning.Module,
	gateway.Module,
	order.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	pricingSvc      pricingdomain.Service
	couponSvc       coupondomain.Service
	orderSvc        orderdomain.Service
	checkoutLimiter *ratelimit.CheckoutLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	PricingSvc      pricingdomain.Service
	CouponSvc       coupondomain.Service
	OrderSvc        orderdomain.Service
	CheckoutLimiter *ratelimit.CheckoutLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		pricingSvc:      p.PricingSvc,
		couponSvc:       p.CouponSvc,
		orderSvc:        p.OrderSvc,
		checkoutLimiter: p.CheckoutLimiter,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	checkout := s.engine.Group("/checkout")
	checkout.Use(s.RequireUser())
	checkout.Use(s.CheckoutRateLimit())
	{
		checkout.POST("/validate-coupon", s.ValidateCoupon)
		checkout.POST("/calculate", s.CalculateCart)
		checkout.POST("/order", s.CreateOrder)
		checkout.POST("/confirm-payment", s.ConfirmPayment)
		checkout.GET("/orders/:order_number", s.GetOrder)
		checkout.POST("/orders/:order_number/cancel", s.CancelOrder)
	}

	admin := s.engine.Group("/admin")
	admin.Use(s.RequireAdmin())
	{
		admin.POST("/orders/:order_number/refund", s.RefundOrder)
	}
}
