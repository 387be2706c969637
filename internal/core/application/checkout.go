package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flowpayhq/flowpay/internal/core/domain"
	"github.com/flowpayhq/flowpay/internal/core/ports"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// CheckoutState is the widget-side lifecycle of one payment:
// Unloaded -> Selecting -> LockedPending -> Succeeded | Failed.
// Transitions are driven by server-reported status, observed on load,
// on confirm and by polling while the payment stays pending.
type CheckoutState string

const (
	StateUnloaded      CheckoutState = "unloaded"
	StateSelecting     CheckoutState = "selecting"
	StateLockedPending CheckoutState = "lockedPending"
	StateSucceeded     CheckoutState = "succeeded"
	StateFailed        CheckoutState = "failed"
)

var validate = validator.New()

type checkoutSession struct {
	mu sync.Mutex

	paymentID string
	state     CheckoutState
	payment   *domain.CheckoutPayment

	availableMethods []domain.PaymentMethod
	selectedMethod   *domain.PaymentMethod
	methodRegistered bool
	convertResult    *domain.CheckoutConvertResult
	convertSeq       uint64
	customerEmail    string

	pollError bool
	task      ports.PollTask
}

// Countdown is the derived, purely presentational expiry timer. It
// never feeds state transitions.
type Countdown struct {
	Remaining time.Duration `json:"remainingSec"`
	Total     time.Duration `json:"totalSec"`
	Fraction  float64       `json:"fraction"`
}

// CheckoutSnapshot is an immutable view of a session handed to the
// interface layer.
type CheckoutSnapshot struct {
	PaymentID        string
	State            CheckoutState
	Payment          *domain.CheckoutPayment
	AvailableMethods []domain.PaymentMethod
	SelectedMethod   *domain.PaymentMethod
	ConvertResult    *domain.CheckoutConvertResult
	CustomerEmail    string
	CanConfirm       bool
	PollError        bool
	Countdown        *Countdown
}

// CheckoutService drives payments through the checkout lifecycle. One
// session exists per payment id; polling runs on the shared scheduler
// and is cancelled as soon as a non-pending status is observed or the
// service shuts down.
type CheckoutService struct {
	api          ports.CheckoutAPI
	schedulerSvc ports.SchedulerService
	pollInterval time.Duration
	pollTimeout  time.Duration

	mu       sync.Mutex
	sessions map[string]*checkoutSession
}

func NewCheckoutService(
	api ports.CheckoutAPI, schedulerSvc ports.SchedulerService, pollInterval time.Duration,
) *CheckoutService {
	return &CheckoutService{
		api:          api,
		schedulerSvc: schedulerSvc,
		pollInterval: pollInterval,
		pollTimeout:  pollInterval * 2,
		sessions:     make(map[string]*checkoutSession),
	}
}

func (s *CheckoutService) session(paymentID string) *checkoutSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[paymentID]
	if !ok {
		sess = &checkoutSession{paymentID: paymentID, state: StateUnloaded}
		s.sessions[paymentID] = sess
	}
	return sess
}

// Load fetches the payment and derives the session state from the
// server-reported status. It is idempotent and safe to call on every
// page view.
func (s *CheckoutService) Load(ctx context.Context, paymentID string) (*CheckoutSnapshot, error) {
	sess := s.session(paymentID)

	payment, err := s.api.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment %s: %w", paymentID, err)
	}

	sess.mu.Lock()
	sess.payment = payment
	s.deriveStateLocked(sess)
	needMethods := sess.state == StateSelecting && len(sess.availableMethods) == 0
	sess.mu.Unlock()

	if needMethods {
		if err := s.loadSelectingContext(ctx, sess, payment); err != nil {
			// the session stays in Selecting; the widget shows an
			// error message without regressing to Unloaded
			log.WithError(err).Warn("failed to load payment methods")
			sess.mu.Lock()
			sess.pollError = true
			sess.mu.Unlock()
		}
	}

	return s.Snapshot(paymentID), nil
}

// loadSelectingContext populates the method list and adopts any method
// or customer already attached to the payment server-side.
func (s *CheckoutService) loadSelectingContext(ctx context.Context, sess *checkoutSession, payment *domain.CheckoutPayment) error {
	if payment.PaymentMethod != nil {
		sess.mu.Lock()
		method := *payment.PaymentMethod
		sess.selectedMethod = &method
		sess.methodRegistered = true
		sess.mu.Unlock()

		if err := s.refreshConvertPreview(ctx, sess, payment, payment.PaymentMethod.Ticker); err != nil {
			log.WithError(err).Warn("failed to refresh conversion preview")
		}
	}
	if payment.Customer != nil {
		sess.mu.Lock()
		sess.customerEmail = payment.Customer.Email
		sess.mu.Unlock()
	}

	methods, err := s.api.GetSupportedMethods(ctx, sess.paymentID)
	if err != nil {
		return fmt.Errorf("failed to fetch supported methods: %w", err)
	}

	sess.mu.Lock()
	sess.availableMethods = methods
	sess.mu.Unlock()
	return nil
}

// SelectMethod registers the chosen payment method server-side and
// fetches a fresh conversion preview. A failed registration keeps the
// session in Selecting with the method marked unconfirmed.
func (s *CheckoutService) SelectMethod(ctx context.Context, paymentID, ticker string) (*CheckoutSnapshot, error) {
	sess := s.session(paymentID)

	sess.mu.Lock()
	if sess.state != StateSelecting {
		sess.mu.Unlock()
		return nil, fmt.Errorf("payment %s is not selecting a method", paymentID)
	}
	if sess.selectedMethod != nil && sess.selectedMethod.Ticker == ticker && sess.methodRegistered {
		sess.mu.Unlock()
		return s.Snapshot(paymentID), nil
	}

	var method *domain.PaymentMethod
	for i := range sess.availableMethods {
		if sess.availableMethods[i].Ticker == ticker {
			m := sess.availableMethods[i]
			method = &m
			break
		}
	}
	if method == nil {
		sess.mu.Unlock()
		return nil, fmt.Errorf("payment method %s is not available", ticker)
	}
	sess.selectedMethod = method
	sess.methodRegistered = false
	payment := sess.payment
	sess.mu.Unlock()

	if err := s.refreshConvertPreview(ctx, sess, payment, ticker); err != nil {
		log.WithError(err).Warn("failed to refresh conversion preview")
	}

	if _, err := s.api.SetPaymentMethod(ctx, paymentID, ticker); err != nil {
		return nil, fmt.Errorf("failed to register payment method: %w", err)
	}

	sess.mu.Lock()
	sess.methodRegistered = true
	sess.mu.Unlock()
	return s.Snapshot(paymentID), nil
}

// refreshConvertPreview requests the crypto preview for the payment's
// fiat price. Requests are sequence-stamped; a response that arrives
// after a newer request started is dropped, so the preview always
// reflects the latest selection.
func (s *CheckoutService) refreshConvertPreview(ctx context.Context, sess *checkoutSession, payment *domain.CheckoutPayment, ticker string) error {
	sess.mu.Lock()
	sess.convertSeq++
	seq := sess.convertSeq
	sess.convertResult = nil
	fiatCurrency := payment.Currency
	fiatAmount := fmt.Sprintf("%v", payment.Price)
	sess.mu.Unlock()

	result, err := s.api.CurrencyConvert(ctx, fiatCurrency, fiatAmount, ticker)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if seq == sess.convertSeq {
		sess.convertResult = result
	}
	sess.mu.Unlock()
	return nil
}

// SetCustomer validates the email and attaches the customer to the
// payment.
func (s *CheckoutService) SetCustomer(ctx context.Context, paymentID, email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return &domain.APIError{
			Status:  domain.StatusValidationError,
			Message: "invalid email",
			Errors:  []domain.APIErrorField{{Field: "email", Message: "please fill a valid email"}},
		}
	}

	customer, err := s.api.SetCustomer(ctx, paymentID, email)
	if err != nil {
		return fmt.Errorf("failed to attach customer: %w", err)
	}

	sess := s.session(paymentID)
	sess.mu.Lock()
	sess.customerEmail = customer.Email
	sess.mu.Unlock()
	return nil
}

// Confirm locks the payment. The backend allocates a blockchain address
// and the session moves to LockedPending, where polling takes over.
func (s *CheckoutService) Confirm(ctx context.Context, paymentID string) (*CheckoutSnapshot, error) {
	sess := s.session(paymentID)

	sess.mu.Lock()
	ok := canConfirmLocked(sess)
	sess.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("payment %s is not ready to confirm", paymentID)
	}

	if _, err := s.api.ConfirmPayment(ctx, paymentID); err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	return s.Load(ctx, paymentID)
}

func canConfirmLocked(sess *checkoutSession) bool {
	return sess.state == StateSelecting &&
		sess.selectedMethod != nil &&
		sess.methodRegistered &&
		sess.convertResult != nil &&
		sess.customerEmail != ""
}

// deriveStateLocked maps the server-reported payment snapshot onto the
// session state and starts or stops polling accordingly.
func (s *CheckoutService) deriveStateLocked(sess *checkoutSession) {
	payment := sess.payment
	status := payment.Status()

	switch {
	case status == domain.PaymentStatusFailed:
		sess.state = StateFailed
		s.stopPollingLocked(sess)
	case payment.IsLocked && status == domain.PaymentStatusPending:
		sess.state = StateLockedPending
		s.startPollingLocked(sess)
	case payment.IsLocked &&
		(status == domain.PaymentStatusSuccess || status == domain.PaymentStatusInProgress):
		sess.state = StateSucceeded
		s.stopPollingLocked(sess)
	default:
		sess.state = StateSelecting
	}
}

func (s *CheckoutService) startPollingLocked(sess *checkoutSession) {
	if sess.task != nil {
		return
	}
	paymentID := sess.paymentID
	task, err := s.schedulerSvc.SchedulePoll(s.pollInterval, func() {
		s.poll(paymentID)
	})
	if err != nil {
		log.WithError(err).Warn("failed to schedule payment poll")
		return
	}
	sess.task = task
}

func (s *CheckoutService) stopPollingLocked(sess *checkoutSession) {
	if sess.task != nil {
		sess.task.Cancel()
		sess.task = nil
	}
}

// poll re-fetches the payment while it stays pending. A fetch failure
// raises the session error flag and polling continues at the fixed
// interval; there is deliberately no backoff and no retry cap.
func (s *CheckoutService) poll(paymentID string) {
	ctx, cancelFn := context.WithTimeout(context.Background(), s.pollTimeout)
	defer cancelFn()

	sess := s.session(paymentID)

	payment, err := s.api.GetPayment(ctx, paymentID)
	if err != nil {
		log.WithError(err).Warnf("failed to poll payment %s", paymentID)
		sess.mu.Lock()
		sess.pollError = true
		sess.mu.Unlock()
		return
	}

	sess.mu.Lock()
	sess.pollError = false
	sess.payment = payment
	s.deriveStateLocked(sess)
	sess.mu.Unlock()
}

// Snapshot returns a copy of the session state. An unknown payment id
// yields an Unloaded snapshot.
func (s *CheckoutService) Snapshot(paymentID string) *CheckoutSnapshot {
	sess := s.session(paymentID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	snap := &CheckoutSnapshot{
		PaymentID:        sess.paymentID,
		State:            sess.state,
		Payment:          sess.payment,
		AvailableMethods: append([]domain.PaymentMethod(nil), sess.availableMethods...),
		SelectedMethod:   sess.selectedMethod,
		ConvertResult:    sess.convertResult,
		CustomerEmail:    sess.customerEmail,
		CanConfirm:       canConfirmLocked(sess),
		PollError:        sess.pollError,
	}
	if sess.payment != nil && sess.payment.PaymentInfo != nil {
		snap.Countdown = countdown(sess.payment.PaymentInfo, time.Now())
	}
	return snap
}

// LoadPaymentLink returns the public landing view of a payment link.
func (s *CheckoutService) LoadPaymentLink(ctx context.Context, linkID string) (*domain.CheckoutPaymentLink, error) {
	link, err := s.api.GetPaymentLink(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment link %s: %w", linkID, err)
	}
	return link, nil
}

// SpawnPayment creates a fresh payment from a link and returns its id.
func (s *CheckoutService) SpawnPayment(ctx context.Context, linkID string) (string, error) {
	paymentID, err := s.api.CreatePaymentFromLink(ctx, linkID)
	if err != nil {
		return "", fmt.Errorf("failed to create payment from link %s: %w", linkID, err)
	}
	return paymentID, nil
}

// Close cancels every live poll task.
func (s *CheckoutService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		sess.mu.Lock()
		s.stopPollingLocked(sess)
		sess.mu.Unlock()
	}
}

func countdown(info *domain.PaymentInfo, now time.Time) *Countdown {
	expiresAt, err := time.Parse(time.RFC3339, info.ExpiresAt)
	if err != nil {
		return nil
	}

	total := time.Duration(info.ExpirationDurationMin) * time.Minute
	remaining := expiresAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	if total > 0 && remaining > total {
		remaining = total
	}

	fraction := 0.0
	if total > 0 {
		fraction = float64(remaining) / float64(total)
	}
	return &Countdown{Remaining: remaining, Total: total, Fraction: fraction}
}
