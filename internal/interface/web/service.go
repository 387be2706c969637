package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/flowpayhq/flowpay/internal/core/application"
	"github.com/flowpayhq/flowpay/internal/interface/web/types"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port           uint32
	WithSentry     bool
	EnableFeedback bool
	ShowBranding   bool
	SupportContact string
}

// Service is the HTTP surface for both UIs: the checkout widget under
// /api/checkout/v1 and the merchant console under /api/console/v1.
type Service struct {
	cfg Config

	checkoutSvc   *application.CheckoutService
	consoleSvc    *application.ConsoleService
	withdrawalSvc *application.WithdrawalService

	qrCodes   *qrCache
	icons     *iconRegistry
	menuItems []types.MenuItem
	server    *http.Server
}

func NewService(
	cfg Config,
	checkoutSvc *application.CheckoutService,
	consoleSvc *application.ConsoleService,
	withdrawalSvc *application.WithdrawalService,
) (*Service, error) {
	qrCodes, err := newQRCache(qrCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to init qr cache: %w", err)
	}
	icons, err := newIconRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to init icon registry: %w", err)
	}

	svc := &Service{
		cfg:           cfg,
		checkoutSvc:   checkoutSvc,
		consoleSvc:    consoleSvc,
		withdrawalSvc: withdrawalSvc,
		qrCodes:       qrCodes,
		icons:         icons,
		menuItems:     buildMenu(cfg),
	}

	svc.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		Handler:      svc.router(),
	}
	return svc, nil
}

func (s *Service) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(), ErrorMiddleware())
	if s.cfg.WithSentry {
		router.Use(SentryMiddleware())
	}

	checkout := router.Group("/api/checkout/v1")
	{
		checkout.GET("/meta", s.checkoutMeta)
		checkout.GET("/payment/:id", s.loadPayment)
		checkout.GET("/payment/:id/state", s.paymentState)
		checkout.PUT("/payment/:id/method", s.selectMethod)
		checkout.PUT("/payment/:id/customer", s.setCustomer)
		checkout.PUT("/payment/:id/confirm", s.confirmPayment)
		checkout.GET("/payment/:id/qr", s.paymentQR)
		checkout.GET("/icon/:ticker", s.methodIcon)
		checkout.GET("/payment-link/:id", s.loadPaymentLink)
		checkout.POST("/payment-link/:id/payment", s.spawnPayment)
	}

	console := router.Group("/api/console/v1")
	{
		console.POST("/auth/login", s.login)
		console.POST("/auth/logout", s.logout)
		console.GET("/auth/me", s.currentUser)
		console.GET("/auth/providers", s.authProviders)

		console.GET("/menu", s.menu)

		console.GET("/merchants", s.listMerchants)
		console.POST("/merchants", s.createMerchant)
		console.PUT("/merchants/:id", s.updateMerchant)
		console.DELETE("/merchants/:id", s.deleteMerchant)
		console.POST("/merchant/select", s.selectMerchant)
		console.GET("/merchant", s.currentMerchant)
		console.PUT("/merchant/webhook", s.updateWebhook)
		console.PUT("/merchant/payment-methods", s.updateMethods)
		console.POST("/merchant/support", s.sendSupportMessage)

		console.GET("/payments", s.listPayments)
		console.GET("/payments/:id", s.getPayment)
		console.POST("/payments", s.createPayment)

		console.GET("/balances", s.listBalances)

		console.GET("/withdrawals", s.listWithdrawals)
		console.POST("/withdrawals/form/:balanceId", s.openWithdrawForm)
		console.GET("/withdrawals/form/:balanceId", s.withdrawFormState)
		console.GET("/withdrawals/form/:balanceId/addresses", s.withdrawAddresses)
		console.PUT("/withdrawals/form/:balanceId/amount", s.setWithdrawAmount)
		console.POST("/withdrawals/form/:balanceId/submit", s.submitWithdrawal)

		console.GET("/addresses", s.listAddresses)
		console.POST("/addresses", s.createAddress)
		console.PUT("/addresses/:id", s.updateAddress)
		console.DELETE("/addresses/:id", s.deleteAddress)

		console.GET("/tokens", s.listTokens)
		console.POST("/tokens", s.createToken)
		console.DELETE("/tokens/:id", s.deleteToken)

		console.GET("/customers", s.listCustomers)
		console.GET("/customers/:id", s.getCustomer)

		console.GET("/payment-links", s.listPaymentLinks)
		console.POST("/payment-links", s.createPaymentLink)
		console.DELETE("/payment-links/:id", s.deletePaymentLink)
	}

	return router
}

func (s *Service) Start() error {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server exited")
		}
	}()
	log.Infof("http server listening on %s", s.server.Addr)
	return nil
}

func (s *Service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// nolint:errcheck
	s.server.Shutdown(ctx)
	log.Info("http server stopped")
}

func (s *Service) checkoutMeta(c *gin.Context) {
	c.JSON(http.StatusOK, types.CheckoutMeta{
		ShowBranding:   s.cfg.ShowBranding,
		SupportContact: s.cfg.SupportContact,
	})
}
