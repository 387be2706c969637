package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/flowpayhq/flowpay/internal/core/domain"
	"github.com/flowpayhq/flowpay/internal/core/ports"
	"github.com/flowpayhq/flowpay/internal/infrastructure/cache"
	log "github.com/sirupsen/logrus"
)

// ErrNoMerchantSelected is returned by merchant-scoped reads when no
// merchant id is persisted; the console routes to merchant management.
var ErrNoMerchantSelected = errors.New("no merchant selected")

const defaultPageSize = 50

// ConsoleService backs the merchant console. It owns the persisted
// "selected merchant" state shared by every view, and funnels all
// merchant-scoped reads through the query cache.
type ConsoleService struct {
	api          ports.MerchantAPI
	auth         ports.AuthAPI
	repoManager  ports.RepoManager
	queryCache   *cache.Cache
	settleDelay  time.Duration
	pageSize     int

	mu         sync.RWMutex
	merchantID string
	merchant   *domain.Merchant
}

func NewConsoleService(
	api ports.MerchantAPI,
	auth ports.AuthAPI,
	repoManager ports.RepoManager,
	queryCache *cache.Cache,
	settleDelay time.Duration,
) (*ConsoleService, error) {
	svc := &ConsoleService{
		api:         api,
		auth:        auth,
		repoManager: repoManager,
		queryCache:  queryCache,
		settleDelay: settleDelay,
		pageSize:    defaultPageSize,
	}

	ctx := context.Background()
	settings, err := svc.repoManager.Settings().GetSettings(ctx)
	if err != nil {
		if err := svc.repoManager.Settings().AddDefaultSettings(ctx); err != nil {
			return nil, fmt.Errorf("failed to init settings: %w", err)
		}
		return svc, nil
	}
	svc.merchantID = settings.SelectedMerchantID
	return svc, nil
}

// SelectedMerchantID returns the persisted merchant id, or false when
// none is selected.
func (s *ConsoleService) SelectedMerchantID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.merchantID, s.merchantID != ""
}

// SelectMerchant persists the selection and drops every cached query,
// since all list and detail queries are scoped by merchant.
func (s *ConsoleService) SelectMerchant(ctx context.Context, merchantID string) error {
	merchant, err := s.api.GetMerchant(ctx, merchantID)
	if err != nil {
		return s.observe(err)
	}

	if err := s.repoManager.Settings().UpdateSettings(ctx, domain.Settings{
		SelectedMerchantID: merchantID,
	}); err != nil {
		return fmt.Errorf("failed to persist merchant selection: %w", err)
	}

	s.mu.Lock()
	s.merchantID = merchantID
	s.merchant = merchant
	s.mu.Unlock()

	s.queryCache.DropAll()
	return nil
}

// CurrentMerchant returns the loaded merchant object, fetching it once
// per selection.
func (s *ConsoleService) CurrentMerchant(ctx context.Context) (*domain.Merchant, error) {
	s.mu.RLock()
	merchantID, merchant := s.merchantID, s.merchant
	s.mu.RUnlock()

	if merchantID == "" {
		return nil, ErrNoMerchantSelected
	}
	if merchant != nil && merchant.ID == merchantID {
		return merchant, nil
	}

	loaded, err := s.api.GetMerchant(ctx, merchantID)
	if err != nil {
		return nil, s.observe(err)
	}

	s.mu.Lock()
	s.merchant = loaded
	s.mu.Unlock()
	return loaded, nil
}

func (s *ConsoleService) requireMerchant() (string, error) {
	id, ok := s.SelectedMerchantID()
	if !ok {
		return "", ErrNoMerchantSelected
	}
	return id, nil
}

// observe applies the session policy to an API error: a 401 clears the
// persisted merchant selection and the cache, so the next navigation
// lands on the login view with no stale tenant state.
func (s *ConsoleService) observe(err error) error {
	if !errors.Is(err, domain.ErrUnauthenticated) {
		return err
	}

	s.mu.Lock()
	s.merchantID = ""
	s.merchant = nil
	s.mu.Unlock()

	s.queryCache.DropAll()
	if updErr := s.repoManager.Settings().UpdateSettings(context.Background(), domain.Settings{}); updErr != nil {
		log.WithError(updErr).Warn("failed to clear merchant selection")
	}
	return err
}

// --- merchants ---

func (s *ConsoleService) ListMerchants(ctx context.Context) ([]domain.Merchant, error) {
	merchants, err := cache.Resolve(ctx, s.queryCache, cache.Key{"listMerchants"},
		func(ctx context.Context) ([]domain.Merchant, error) {
			return s.api.ListMerchants(ctx)
		})
	if err != nil {
		return nil, s.observe(err)
	}
	return merchants, nil
}

func (s *ConsoleService) CreateMerchant(ctx context.Context, params domain.MerchantParams) (*domain.Merchant, error) {
	merchant, err := s.api.CreateMerchant(ctx, params)
	if err != nil {
		return nil, s.observe(err)
	}
	s.queryCache.Invalidate(s.settleDelay, cache.Key{"listMerchants"})
	return merchant, nil
}

func (s *ConsoleService) UpdateMerchant(ctx context.Context, merchantID string, params domain.MerchantParams) (*domain.Merchant, error) {
	merchant, err := s.api.UpdateMerchant(ctx, merchantID, params)
	if err != nil {
		return nil, s.observe(err)
	}

	s.mu.Lock()
	if s.merchantID == merchantID {
		s.merchant = merchant
	}
	s.mu.Unlock()

	s.queryCache.Invalidate(s.settleDelay, cache.Key{"listMerchants"})
	return merchant, nil
}

func (s *ConsoleService) DeleteMerchant(ctx context.Context, merchantID string) error {
	if err := s.api.DeleteMerchant(ctx, merchantID); err != nil {
		return s.observe(err)
	}

	s.mu.Lock()
	dropped := s.merchantID == merchantID
	if dropped {
		s.merchantID = ""
		s.merchant = nil
	}
	s.mu.Unlock()

	if dropped {
		if err := s.repoManager.Settings().UpdateSettings(ctx, domain.Settings{}); err != nil {
			log.WithError(err).Warn("failed to clear merchant selection")
		}
	}
	s.queryCache.Invalidate(s.settleDelay, cache.Key{"listMerchants"})
	return nil
}

func (s *ConsoleService) UpdateWebhookSettings(ctx context.Context, settings domain.WebhookSettings) error {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return err
	}
	if err := s.api.UpdateWebhookSettings(ctx, merchantID, settings); err != nil {
		return s.observe(err)
	}

	s.mu.Lock()
	s.merchant = nil // force reload of the merchant object
	s.mu.Unlock()
	return nil
}

func (s *ConsoleService) UpdateSupportedMethods(ctx context.Context, tickers []string) error {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return err
	}
	if err := s.api.UpdateSupportedMethods(ctx, merchantID, tickers); err != nil {
		return s.observe(err)
	}

	s.mu.Lock()
	s.merchant = nil
	s.mu.Unlock()
	return nil
}

func (s *ConsoleService) SendSupportMessage(ctx context.Context, msg domain.SupportMessage) error {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return err
	}
	if err := s.api.SendSupportMessage(ctx, merchantID, msg); err != nil {
		return s.observe(err)
	}
	return nil
}

// --- payments & withdrawals ---

func (s *ConsoleService) NextPayments(ctx context.Context) ([]domain.MerchantPayment, bool, error) {
	return s.nextPaymentsOfType(ctx, "listPayments", domain.PaymentTypePayment)
}

func (s *ConsoleService) NextWithdrawals(ctx context.Context) ([]domain.MerchantPayment, bool, error) {
	return s.nextPaymentsOfType(ctx, "listWithdrawal", domain.PaymentTypeWithdrawal)
}

func (s *ConsoleService) nextPaymentsOfType(ctx context.Context, queryName string, t domain.PaymentType) ([]domain.MerchantPayment, bool, error) {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return nil, false, err
	}

	pages, hasMore, err := cache.NextPage(ctx, s.queryCache, cache.Key{queryName, merchantID},
		func(ctx context.Context, cursor string) (*domain.PaymentsPage, string, error) {
			page, err := s.api.ListPayments(ctx, merchantID, domain.ListPaymentsParams{
				Limit:        s.pageSize,
				Cursor:       cursor,
				ReverseOrder: true,
				Type:         t,
			})
			if err != nil {
				return nil, "", err
			}
			return page, page.Cursor, nil
		})
	if err != nil {
		return nil, hasMore, s.observe(err)
	}

	var results []domain.MerchantPayment
	for _, page := range pages {
		results = append(results, page.Results...)
	}
	return results, hasMore, nil
}

func (s *ConsoleService) GetPayment(ctx context.Context, paymentID string) (*domain.MerchantPayment, error) {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return nil, err
	}
	payment, err := s.api.GetPayment(ctx, merchantID, paymentID)
	if err != nil {
		return nil, s.observe(err)
	}
	return payment, nil
}

func (s *ConsoleService) CreatePayment(ctx context.Context, params domain.CreatePaymentParams) (*domain.MerchantPayment, error) {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return nil, err
	}
	payment, err := s.api.CreatePayment(ctx, merchantID, params)
	if err != nil {
		return nil, s.observe(err)
	}
	s.queryCache.Invalidate(s.settleDelay, cache.Key{"listPayments", merchantID})
	return payment, nil
}

// --- balances ---

func (s *ConsoleService) ListBalances(ctx context.Context) ([]domain.MerchantBalance, error) {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return nil, err
	}
	balances, err := cache.Resolve(ctx, s.queryCache, cache.Key{"listBalances", merchantID},
		func(ctx context.Context) ([]domain.MerchantBalance, error) {
			return s.api.ListBalances(ctx, merchantID)
		})
	if err != nil {
		return nil, s.observe(err)
	}
	return balances, nil
}

// --- addresses ---

func (s *ConsoleService) ListAddresses(ctx context.Context) ([]domain.MerchantAddress, error) {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return nil, err
	}
	addresses, err := cache.Resolve(ctx, s.queryCache, cache.Key{"listAddresses", merchantID},
		func(ctx context.Context) ([]domain.MerchantAddress, error) {
			return s.api.ListAddresses(ctx, merchantID)
		})
	if err != nil {
		return nil, s.observe(err)
	}
	return addresses, nil
}

func (s *ConsoleService) CreateAddress(ctx context.Context, params domain.MerchantAddressParams) (*domain.MerchantAddress, error) {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return nil, err
	}
	address, err := s.api.CreateAddress(ctx, merchantID, params)
	if err != nil {
		return nil, s.observe(err)
	}
	s.queryCache.Invalidate(s.settleDelay, cache.Key{"listAddresses", merchantID})
	return address, nil
}

func (s *ConsoleService) UpdateAddress(ctx context.Context, addressID, name string) error {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return err
	}
	if err := s.api.UpdateAddress(ctx, merchantID, addressID, name); err != nil {
		return s.observe(err)
	}
	s.queryCache.Invalidate(s.settleDelay, cache.Key{"listAddresses", merchantID})
	return nil
}

func (s *ConsoleService) DeleteAddress(ctx context.Context, addressID string) error {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return err
	}
	if err := s.api.DeleteAddress(ctx, merchantID, addressID); err != nil {
		return s.observe(err)
	}
	s.queryCache.Invalidate(s.settleDelay, cache.Key{"listAddresses", merchantID})
	return nil
}

// --- tokens ---

func (s *ConsoleService) ListTokens(ctx context.Context) ([]domain.MerchantToken, error) {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return nil, err
	}
	tokens, err := cache.Resolve(ctx, s.queryCache, cache.Key{"listTokens", merchantID},
		func(ctx context.Context) ([]domain.MerchantToken, error) {
			return s.api.ListTokens(ctx, merchantID)
		})
	if err != nil {
		return nil, s.observe(err)
	}
	return tokens, nil
}

func (s *ConsoleService) CreateToken(ctx context.Context, name string) (*domain.MerchantToken, error) {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return nil, err
	}
	token, err := s.api.CreateToken(ctx, merchantID, name)
	if err != nil {
		return nil, s.observe(err)
	}
	s.queryCache.Invalidate(s.settleDelay, cache.Key{"listTokens", merchantID})
	return token, nil
}

func (s *ConsoleService) DeleteToken(ctx context.Context, tokenID string) error {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return err
	}
	if err := s.api.DeleteToken(ctx, merchantID, tokenID); err != nil {
		return s.observe(err)
	}
	s.queryCache.Invalidate(s.settleDelay, cache.Key{"listTokens", merchantID})
	return nil
}

// --- customers ---

func (s *ConsoleService) NextCustomers(ctx context.Context) ([]domain.Customer, bool, error) {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return nil, false, err
	}

	pages, hasMore, err := cache.NextPage(ctx, s.queryCache, cache.Key{"listCustomers", merchantID},
		func(ctx context.Context, cursor string) (*domain.CustomersPage, string, error) {
			page, err := s.api.ListCustomers(ctx, merchantID, domain.ListCustomersParams{
				Limit:  s.pageSize,
				Cursor: cursor,
			})
			if err != nil {
				return nil, "", err
			}
			return page, page.Cursor, nil
		})
	if err != nil {
		return nil, hasMore, s.observe(err)
	}

	var results []domain.Customer
	for _, page := range pages {
		results = append(results, page.Results...)
	}
	return results, hasMore, nil
}

func (s *ConsoleService) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return nil, err
	}
	customer, err := s.api.GetCustomer(ctx, merchantID, customerID)
	if err != nil {
		return nil, s.observe(err)
	}
	return customer, nil
}

// --- payment links ---

func (s *ConsoleService) ListPaymentLinks(ctx context.Context) ([]domain.PaymentLink, error) {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return nil, err
	}
	links, err := cache.Resolve(ctx, s.queryCache, cache.Key{"listPaymentLinks", merchantID},
		func(ctx context.Context) ([]domain.PaymentLink, error) {
			return s.api.ListPaymentLinks(ctx, merchantID)
		})
	if err != nil {
		return nil, s.observe(err)
	}
	return links, nil
}

func (s *ConsoleService) CreatePaymentLink(ctx context.Context, params domain.PaymentLinkParams) (*domain.PaymentLink, error) {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return nil, err
	}
	link, err := s.api.CreatePaymentLink(ctx, merchantID, params)
	if err != nil {
		return nil, s.observe(err)
	}
	s.queryCache.Invalidate(s.settleDelay, cache.Key{"listPaymentLinks", merchantID})
	return link, nil
}

func (s *ConsoleService) DeletePaymentLink(ctx context.Context, linkID string) error {
	merchantID, err := s.requireMerchant()
	if err != nil {
		return err
	}
	if err := s.api.DeletePaymentLink(ctx, merchantID, linkID); err != nil {
		return s.observe(err)
	}
	s.queryCache.Invalidate(s.settleDelay, cache.Key{"listPaymentLinks", merchantID})
	return nil
}

// --- auth ---

func (s *ConsoleService) Login(ctx context.Context, creds domain.Credentials) error {
	if err := s.auth.RefreshCSRF(ctx); err != nil {
		return fmt.Errorf("failed to obtain csrf cookie: %w", err)
	}
	if err := s.auth.Login(ctx, creds); err != nil {
		return err
	}
	return nil
}

func (s *ConsoleService) CurrentUser(ctx context.Context) (*domain.User, error) {
	user, err := s.auth.GetMe(ctx)
	if err != nil {
		return nil, s.observe(err)
	}
	return user, nil
}

func (s *ConsoleService) AuthProviders(ctx context.Context) ([]domain.AuthProvider, error) {
	return s.auth.ListProviders(ctx)
}

// Logout ends the backend session and clears all local tenant state.
func (s *ConsoleService) Logout(ctx context.Context) error {
	err := s.auth.Logout(ctx)

	s.mu.Lock()
	s.merchantID = ""
	s.merchant = nil
	s.mu.Unlock()

	s.queryCache.DropAll()
	if updErr := s.repoManager.Settings().UpdateSettings(ctx, domain.Settings{}); updErr != nil {
		log.WithError(updErr).Warn("failed to clear merchant selection")
	}
	return err
}
