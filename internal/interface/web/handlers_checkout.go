package web

import (
	"net/http"

	"github.com/flowpayhq/flowpay/internal/core/application"
	"github.com/flowpayhq/flowpay/internal/interface/web/types"
	"github.com/gin-gonic/gin"
)

// checkoutView decorates the snapshot with the failure document so the
// widget can render the terminal screen with a support contact.
func (s *Service) checkoutView(snap *application.CheckoutSnapshot) types.CheckoutView {
	view := types.NewCheckoutView(snap)
	if snap.State == application.StateFailed {
		view.Failure = &types.FailureView{
			Message:        "this payment can no longer be completed",
			SupportContact: s.cfg.SupportContact,
		}
	}
	return view
}

func (s *Service) loadPayment(c *gin.Context) {
	snap, err := s.checkoutSvc.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, s.checkoutView(snap))
}

func (s *Service) paymentState(c *gin.Context) {
	snap := s.checkoutSvc.Snapshot(c.Param("id"))
	c.JSON(http.StatusOK, s.checkoutView(snap))
}

func (s *Service) selectMethod(c *gin.Context) {
	var req types.SetMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "validation_error", "message": "ticker is required"})
		return
	}
	snap, err := s.checkoutSvc.SelectMethod(c.Request.Context(), c.Param("id"), req.Ticker)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, s.checkoutView(snap))
}

func (s *Service) setCustomer(c *gin.Context) {
	var req types.SetCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "validation_error", "message": "email is required"})
		return
	}
	if err := s.checkoutSvc.SetCustomer(c.Request.Context(), c.Param("id"), req.Email); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, s.checkoutView(s.checkoutSvc.Snapshot(c.Param("id"))))
}

func (s *Service) confirmPayment(c *gin.Context) {
	snap, err := s.checkoutSvc.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, s.checkoutView(snap))
}

// paymentQR renders the payment URI as a PNG. Only available once the
// payment is locked and an address has been allocated.
func (s *Service) paymentQR(c *gin.Context) {
	snap := s.checkoutSvc.Snapshot(c.Param("id"))
	if snap.Payment == nil || snap.Payment.PaymentInfo == nil || snap.Payment.PaymentInfo.PaymentLink == "" {
		c.JSON(http.StatusNotFound, gin.H{"status": "not_found", "message": "no payment address allocated"})
		return
	}
	png, err := s.qrCodes.PNG(snap.Payment.PaymentInfo.PaymentLink)
	if err != nil {
		abort(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Service) methodIcon(c *gin.Context) {
	c.Data(http.StatusOK, "image/svg+xml", s.icons.SVG(c.Param("ticker")))
}

func (s *Service) loadPaymentLink(c *gin.Context) {
	link, err := s.checkoutSvc.LoadPaymentLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (s *Service) spawnPayment(c *gin.Context) {
	paymentID, err := s.checkoutSvc.SpawnPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": paymentID})
}
