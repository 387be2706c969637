package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flowpayhq/flowpay/internal/core/domain"
	"github.com/flowpayhq/flowpay/internal/core/ports"
	"github.com/flowpayhq/flowpay/internal/infrastructure/cache"
	"github.com/flowpayhq/flowpay/pkg/money"
	log "github.com/sirupsen/logrus"
)

// WithdrawalService owns the withdraw-form flow: amount validation and
// clamping, fee quotes, currency-converted previews and the one-shot
// withdrawal submission. All arithmetic is exact decimal; floats never
// touch an amount.
type WithdrawalService struct {
	api         ports.MerchantAPI
	queryCache  *cache.Cache
	settleDelay time.Duration

	mu    sync.Mutex
	forms map[string]*withdrawForm
}

type withdrawForm struct {
	mu sync.Mutex

	merchantID string
	balance    domain.MerchantBalance

	amount       string
	amountValid  bool
	fee          *domain.ServiceFee
	convertedUSD string
	availableUSD string
	convertSeq   uint64
}

// WithdrawFormState is the rendered form: every USD field already has
// the test-instrument zero policy applied.
type WithdrawFormState struct {
	BalanceID    string `json:"balanceId"`
	Amount       string `json:"amount"`
	AmountValid  bool   `json:"amountValid"`
	FeeLoaded    bool   `json:"feeLoaded"`
	CurrencyFee  string `json:"currencyFee,omitempty"`
	TotalAmount  string `json:"totalAmount,omitempty"`
	AmountUSD    string `json:"amountUsd,omitempty"`
	TotalUSD     string `json:"totalUsd,omitempty"`
	AvailableUSD string `json:"availableUsd,omitempty"`
	CanSubmit    bool   `json:"canSubmit"`
}

func NewWithdrawalService(api ports.MerchantAPI, queryCache *cache.Cache, settleDelay time.Duration) *WithdrawalService {
	return &WithdrawalService{
		api:         api,
		queryCache:  queryCache,
		settleDelay: settleDelay,
		forms:       make(map[string]*withdrawForm),
	}
}

// OpenForm starts (or resets) the withdraw form for one balance,
// loading the fee quote and the USD preview of the available amount.
func (s *WithdrawalService) OpenForm(ctx context.Context, merchantID string, balance domain.MerchantBalance) (*WithdrawFormState, error) {
	form := &withdrawForm{merchantID: merchantID, balance: balance}

	s.mu.Lock()
	s.forms[balance.ID] = form
	s.mu.Unlock()

	fee, err := s.api.GetWithdrawalFee(ctx, merchantID, balance.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load withdrawal fee: %w", err)
	}

	form.mu.Lock()
	form.fee = fee
	form.mu.Unlock()

	if err := s.loadAvailableUSD(ctx, form); err != nil {
		log.WithError(err).Warn("failed to load available balance preview")
	}

	return s.formState(form), nil
}

func (s *WithdrawalService) loadAvailableUSD(ctx context.Context, form *withdrawForm) error {
	result, err := s.api.CurrencyConvert(ctx, form.merchantID, domain.ConvertParams{
		From:   form.balance.Ticker,
		To:     "USD",
		Amount: form.balance.Amount,
	})
	if err != nil {
		return err
	}

	form.mu.Lock()
	form.availableUSD = result.ConvertedAmount
	form.mu.Unlock()
	return nil
}

// SetAmount validates and clamps the entered amount, then refreshes the
// USD preview. Preview requests are sequence-stamped so a slow response
// for an older amount can never overwrite a newer one.
func (s *WithdrawalService) SetAmount(ctx context.Context, balanceID, amount string) (*WithdrawFormState, error) {
	form, err := s.form(balanceID)
	if err != nil {
		return nil, err
	}

	if !money.ValidAmount(amount) {
		form.mu.Lock()
		form.amount = amount
		form.amountValid = false
		form.convertedUSD = ""
		form.mu.Unlock()
		return s.formState(form), nil
	}

	clamped, err := money.Clamp(amount, form.balance.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to clamp amount: %w", err)
	}

	form.mu.Lock()
	form.amount = clamped
	form.amountValid = true
	form.convertedUSD = ""
	form.convertSeq++
	seq := form.convertSeq
	form.mu.Unlock()

	result, err := s.api.CurrencyConvert(ctx, form.merchantID, domain.ConvertParams{
		From:   form.balance.Ticker,
		To:     "USD",
		Amount: clamped,
	})
	if err != nil {
		// the preview stays empty; the form remains usable
		log.WithError(err).Warn("failed to load conversion preview")
		return s.formState(form), nil
	}

	form.mu.Lock()
	if seq == form.convertSeq {
		form.convertedUSD = result.ConvertedAmount
	}
	form.mu.Unlock()
	return s.formState(form), nil
}

// Submit sends the withdrawal once and schedules invalidation of the
// balances and withdrawals queries after the settle delay.
func (s *WithdrawalService) Submit(ctx context.Context, balanceID, addressID string) error {
	form, err := s.form(balanceID)
	if err != nil {
		return err
	}

	form.mu.Lock()
	canSubmit := form.amountValid && form.fee != nil
	w := domain.Withdrawal{
		AddressID: addressID,
		BalanceID: form.balance.ID,
		Amount:    form.amount,
	}
	merchantID := form.merchantID
	form.mu.Unlock()

	if !canSubmit {
		return fmt.Errorf("withdrawal is not ready to submit")
	}

	if err := s.api.CreateWithdrawal(ctx, merchantID, w); err != nil {
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}

	s.queryCache.Invalidate(s.settleDelay,
		cache.Key{"listWithdrawal", merchantID},
		cache.Key{"listBalances", merchantID},
	)
	return nil
}

// FormState returns the current rendered form.
func (s *WithdrawalService) FormState(balanceID string) (*WithdrawFormState, error) {
	form, err := s.form(balanceID)
	if err != nil {
		return nil, err
	}
	return s.formState(form), nil
}

// FilterAddresses keeps only the destinations on the balance's
// blockchain.
func FilterAddresses(addresses []domain.MerchantAddress, blockchain string) []domain.MerchantAddress {
	out := make([]domain.MerchantAddress, 0, len(addresses))
	for _, a := range addresses {
		if a.Blockchain == blockchain {
			out = append(out, a)
		}
	}
	return out
}

func (s *WithdrawalService) form(balanceID string) (*withdrawForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	form, ok := s.forms[balanceID]
	if !ok {
		return nil, fmt.Errorf("no withdraw form open for balance %s", balanceID)
	}
	return form, nil
}

func (s *WithdrawalService) formState(form *withdrawForm) *WithdrawFormState {
	form.mu.Lock()
	defer form.mu.Unlock()

	state := &WithdrawFormState{
		BalanceID:   form.balance.ID,
		Amount:      form.amount,
		AmountValid: form.amountValid,
		FeeLoaded:   form.fee != nil,
		CanSubmit:   form.amountValid && form.fee != nil,
	}
	isTest := form.balance.IsTest || (form.fee != nil && form.fee.IsTest)

	state.AvailableUSD = usdPreview(form.availableUSD, isTest)

	if form.fee != nil {
		state.CurrencyFee = form.fee.CurrencyFee
	}

	if form.amountValid && form.fee != nil {
		total, err := money.Total(form.amount, form.fee.CurrencyFee)
		if err == nil {
			state.TotalAmount = total
		} else {
			log.WithError(err).Warn("failed to compute withdrawal total")
		}
	}

	if form.convertedUSD != "" {
		state.AmountUSD = usdPreview(form.convertedUSD, isTest)

		if form.fee != nil {
			if isTest {
				state.TotalUSD = "0"
			} else if totalUSD, err := money.Add(form.convertedUSD, form.fee.UsdFee); err == nil {
				state.TotalUSD = totalUSD
			}
		}
	}
	return state
}

// usdPreview applies the test-instrument policy: a USD estimate for
// sandbox funds always renders as "0".
func usdPreview(amount string, isTest bool) string {
	if amount == "" {
		return ""
	}
	if isTest {
		return "0"
	}
	return amount
}
