package web

import (
	"fmt"
	"net/http"

	"github.com/flowpayhq/flowpay/internal/core/application"
	"github.com/flowpayhq/flowpay/internal/core/domain"
	"github.com/flowpayhq/flowpay/internal/interface/web/types"
	"github.com/gin-gonic/gin"
)

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  domain.StatusValidationError,
		"message": err.Error(),
	})
}

// --- auth ---

func (s *Service) login(c *gin.Context) {
	var creds domain.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		bindError(c, err)
		return
	}
	if err := s.consoleSvc.Login(c.Request.Context(), creds); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) logout(c *gin.Context) {
	if err := s.consoleSvc.Logout(c.Request.Context()); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) currentUser(c *gin.Context) {
	user, err := s.consoleSvc.CurrentUser(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Service) authProviders(c *gin.Context) {
	providers, err := s.consoleSvc.AuthProviders(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, providers)
}

// --- menu ---

// buildMenu assembles the console navigation once at startup from the
// feature toggles.
func buildMenu(cfg Config) []types.MenuItem {
	items := []types.MenuItem{
		{Name: "Dashboard", Path: "/dashboard", Icon: "home"},
		{Name: "Payments", Path: "/payments", Icon: "receipt"},
		{Name: "Withdrawals", Path: "/withdrawals", Icon: "arrow-up"},
		{Name: "Balances", Path: "/balances", Icon: "wallet"},
		{Name: "Customers", Path: "/customers", Icon: "users"},
		{Name: "Payment links", Path: "/payment-links", Icon: "link"},
		{Name: "Addresses", Path: "/addresses", Icon: "book"},
		{Name: "API keys", Path: "/tokens", Icon: "key"},
		{Name: "Settings", Path: "/settings", Icon: "gear"},
	}
	if cfg.EnableFeedback {
		items = append(items, types.MenuItem{Name: "Support", Path: "/support", Icon: "chat"})
	}
	return items
}

func (s *Service) menu(c *gin.Context) {
	c.JSON(http.StatusOK, s.menuItems)
}

// --- merchants ---

func (s *Service) listMerchants(c *gin.Context) {
	merchants, err := s.consoleSvc.ListMerchants(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, merchants)
}

func (s *Service) createMerchant(c *gin.Context) {
	var params domain.MerchantParams
	if err := c.ShouldBindJSON(&params); err != nil {
		bindError(c, err)
		return
	}
	merchant, err := s.consoleSvc.CreateMerchant(c.Request.Context(), params)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, merchant)
}

func (s *Service) updateMerchant(c *gin.Context) {
	var params domain.MerchantParams
	if err := c.ShouldBindJSON(&params); err != nil {
		bindError(c, err)
		return
	}
	merchant, err := s.consoleSvc.UpdateMerchant(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, merchant)
}

func (s *Service) deleteMerchant(c *gin.Context) {
	if err := s.consoleSvc.DeleteMerchant(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) selectMerchant(c *gin.Context) {
	var req types.SelectMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := s.consoleSvc.SelectMerchant(c.Request.Context(), req.MerchantID); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) currentMerchant(c *gin.Context) {
	merchant, err := s.consoleSvc.CurrentMerchant(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, merchant)
}

func (s *Service) updateWebhook(c *gin.Context) {
	var settings domain.WebhookSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		bindError(c, err)
		return
	}
	if err := s.consoleSvc.UpdateWebhookSettings(c.Request.Context(), settings); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) updateMethods(c *gin.Context) {
	var req types.UpdateMethodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := s.consoleSvc.UpdateSupportedMethods(c.Request.Context(), req.Tickers); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) sendSupportMessage(c *gin.Context) {
	var msg domain.SupportMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		bindError(c, err)
		return
	}
	if err := s.consoleSvc.SendSupportMessage(c.Request.Context(), msg); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- payments ---

func (s *Service) listPayments(c *gin.Context) {
	payments, hasMore, err := s.consoleSvc.NextPayments(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, types.PagedResult[domain.MerchantPayment]{Results: payments, HasMore: hasMore})
}

func (s *Service) getPayment(c *gin.Context) {
	payment, err := s.consoleSvc.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (s *Service) createPayment(c *gin.Context) {
	var params domain.CreatePaymentParams
	if err := c.ShouldBindJSON(&params); err != nil {
		bindError(c, err)
		return
	}
	payment, err := s.consoleSvc.CreatePayment(c.Request.Context(), params)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// --- balances ---

func (s *Service) listBalances(c *gin.Context) {
	balances, err := s.consoleSvc.ListBalances(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

// --- withdrawals ---

func (s *Service) listWithdrawals(c *gin.Context) {
	withdrawals, hasMore, err := s.consoleSvc.NextWithdrawals(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, types.PagedResult[domain.MerchantPayment]{Results: withdrawals, HasMore: hasMore})
}

func (s *Service) openWithdrawForm(c *gin.Context) {
	merchantID, balance, err := s.findBalance(c)
	if err != nil {
		abort(c, err)
		return
	}
	state, err := s.withdrawalSvc.OpenForm(c.Request.Context(), merchantID, *balance)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Service) withdrawFormState(c *gin.Context) {
	state, err := s.withdrawalSvc.FormState(c.Param("balanceId"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Service) withdrawAddresses(c *gin.Context) {
	_, balance, err := s.findBalance(c)
	if err != nil {
		abort(c, err)
		return
	}
	addresses, err := s.consoleSvc.ListAddresses(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, application.FilterAddresses(addresses, balance.Blockchain))
}

func (s *Service) setWithdrawAmount(c *gin.Context) {
	var req types.SetAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	state, err := s.withdrawalSvc.SetAmount(c.Request.Context(), c.Param("balanceId"), req.Amount)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Service) submitWithdrawal(c *gin.Context) {
	var req types.SubmitWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := s.withdrawalSvc.Submit(c.Request.Context(), c.Param("balanceId"), req.AddressID); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) findBalance(c *gin.Context) (string, *domain.MerchantBalance, error) {
	merchantID, ok := s.consoleSvc.SelectedMerchantID()
	if !ok {
		return "", nil, application.ErrNoMerchantSelected
	}
	balances, err := s.consoleSvc.ListBalances(c.Request.Context())
	if err != nil {
		return "", nil, err
	}
	balanceID := c.Param("balanceId")
	for i := range balances {
		if balances[i].ID == balanceID {
			return merchantID, &balances[i], nil
		}
	}
	return "", nil, fmt.Errorf("unknown balance %s", balanceID)
}

// --- addresses ---

func (s *Service) listAddresses(c *gin.Context) {
	addresses, err := s.consoleSvc.ListAddresses(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

func (s *Service) createAddress(c *gin.Context) {
	var params domain.MerchantAddressParams
	if err := c.ShouldBindJSON(&params); err != nil {
		bindError(c, err)
		return
	}
	address, err := s.consoleSvc.CreateAddress(c.Request.Context(), params)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

func (s *Service) updateAddress(c *gin.Context) {
	var req types.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := s.consoleSvc.UpdateAddress(c.Request.Context(), c.Param("id"), req.Name); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) deleteAddress(c *gin.Context) {
	if err := s.consoleSvc.DeleteAddress(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- tokens ---

func (s *Service) listTokens(c *gin.Context) {
	tokens, err := s.consoleSvc.ListTokens(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (s *Service) createToken(c *gin.Context) {
	var req types.CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	token, err := s.consoleSvc.CreateToken(c.Request.Context(), req.Name)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

func (s *Service) deleteToken(c *gin.Context) {
	if err := s.consoleSvc.DeleteToken(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- customers ---

func (s *Service) listCustomers(c *gin.Context) {
	customers, hasMore, err := s.consoleSvc.NextCustomers(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, types.PagedResult[domain.Customer]{Results: customers, HasMore: hasMore})
}

func (s *Service) getCustomer(c *gin.Context) {
	customer, err := s.consoleSvc.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// --- payment links ---

func (s *Service) listPaymentLinks(c *gin.Context) {
	links, err := s.consoleSvc.ListPaymentLinks(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, links)
}

func (s *Service) createPaymentLink(c *gin.Context) {
	var params domain.PaymentLinkParams
	if err := c.ShouldBindJSON(&params); err != nil {
		bindError(c, err)
		return
	}
	link, err := s.consoleSvc.CreatePaymentLink(c.Request.Context(), params)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (s *Service) deletePaymentLink(c *gin.Context) {
	if err := s.consoleSvc.DeletePaymentLink(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
