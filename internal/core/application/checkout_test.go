package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/flowpayhq/flowpay/internal/core/application"
	"github.com/flowpayhq/flowpay/internal/core/domain"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

var ethMethod = domain.PaymentMethod{
	Blockchain:     "ETH",
	BlockchainName: "Ethereum",
	DisplayName:    "Ether",
	Name:           "ETH",
	Ticker:         "ETH",
}

var tronMethod = domain.PaymentMethod{
	Blockchain:     "TRON",
	BlockchainName: "Tron",
	DisplayName:    "Tron",
	Name:           "TRON",
	Ticker:         "TRON",
}

func newCheckout(api *fakeCheckoutAPI) (*application.CheckoutService, *fakeScheduler) {
	scheduler := &fakeScheduler{}
	svc := application.NewCheckoutService(api, scheduler, 2*time.Second)
	return svc, scheduler
}

func unlockedPayment() domain.CheckoutPayment {
	return domain.CheckoutPayment{
		ID:           "p-1",
		MerchantName: "shop",
		Currency:     "USD",
		Price:        10,
	}
}

func TestLoadUnlockedPaymentEntersSelecting(t *testing.T) {
	api := &fakeCheckoutAPI{payment: unlockedPayment(), methods: []domain.PaymentMethod{ethMethod, tronMethod}}
	svc, scheduler := newCheckout(api)
	defer svc.Close()

	snap, err := svc.Load(ctx, "p-1")
	require.NoError(t, err)
	require.Equal(t, application.StateSelecting, snap.State)
	require.Len(t, snap.AvailableMethods, 2)
	require.False(t, snap.CanConfirm)
	require.Equal(t, 0, scheduler.liveTasks())
}

func TestFullLifecycleToSuccess(t *testing.T) {
	api := &fakeCheckoutAPI{payment: unlockedPayment(), methods: []domain.PaymentMethod{ethMethod}}
	svc, scheduler := newCheckout(api)
	defer svc.Close()

	_, err := svc.Load(ctx, "p-1")
	require.NoError(t, err)

	snap, err := svc.SelectMethod(ctx, "p-1", "ETH")
	require.NoError(t, err)
	require.Equal(t, "ETH", snap.SelectedMethod.Ticker)
	require.NotNil(t, snap.ConvertResult)
	require.False(t, snap.CanConfirm) // email still missing

	require.NoError(t, svc.SetCustomer(ctx, "p-1", "buyer@example.com"))
	require.True(t, svc.Snapshot("p-1").CanConfirm)

	snap, err = svc.Confirm(ctx, "p-1")
	require.NoError(t, err)
	require.Equal(t, application.StateLockedPending, snap.State)
	require.NotNil(t, snap.Payment.PaymentInfo)
	require.NotNil(t, snap.Countdown)
	require.Equal(t, 1, scheduler.liveTasks())

	// still pending after one poll
	scheduler.tick()
	require.Equal(t, application.StateLockedPending, svc.Snapshot("p-1").State)

	// server reports success: polling stops, snapshot is retained
	p := api.payment
	p.PaymentInfo.Status = domain.PaymentStatusSuccess
	api.setPayment(p)
	scheduler.tick()

	snap = svc.Snapshot("p-1")
	require.Equal(t, application.StateSucceeded, snap.State)
	require.Equal(t, domain.PaymentStatusSuccess, snap.Payment.Status())
	require.Equal(t, 0, scheduler.liveTasks())
}

func TestFailedStatusStopsPollingAndKeepsSnapshot(t *testing.T) {
	api := &fakeCheckoutAPI{payment: unlockedPayment(), methods: []domain.PaymentMethod{ethMethod}}
	svc, scheduler := newCheckout(api)
	defer svc.Close()

	_, err := svc.Load(ctx, "p-1")
	require.NoError(t, err)
	_, err = svc.SelectMethod(ctx, "p-1", "ETH")
	require.NoError(t, err)
	require.NoError(t, svc.SetCustomer(ctx, "p-1", "buyer@example.com"))
	_, err = svc.Confirm(ctx, "p-1")
	require.NoError(t, err)

	p := api.payment
	p.PaymentInfo.Status = domain.PaymentStatusFailed
	api.setPayment(p)
	scheduler.tick()

	snap := svc.Snapshot("p-1")
	require.Equal(t, application.StateFailed, snap.State)
	require.NotNil(t, snap.Payment)
	require.Equal(t, "0xabc", snap.Payment.PaymentInfo.RecipientAddress)
	require.Equal(t, 0, scheduler.liveTasks())

	// later ticks issue no further fetches
	before := api.getCalls
	scheduler.tick()
	require.Equal(t, before, api.getCalls)
}

func TestPollFailureRaisesErrorFlagAndContinues(t *testing.T) {
	api := &fakeCheckoutAPI{payment: unlockedPayment(), methods: []domain.PaymentMethod{ethMethod}}
	svc, scheduler := newCheckout(api)
	defer svc.Close()

	_, err := svc.Load(ctx, "p-1")
	require.NoError(t, err)
	_, err = svc.SelectMethod(ctx, "p-1", "ETH")
	require.NoError(t, err)
	require.NoError(t, svc.SetCustomer(ctx, "p-1", "buyer@example.com"))
	_, err = svc.Confirm(ctx, "p-1")
	require.NoError(t, err)

	api.mu.Lock()
	api.getErr = &domain.APIError{Status: "internal_error", Message: "boom", HTTPCode: 500}
	api.mu.Unlock()
	scheduler.tick()

	snap := svc.Snapshot("p-1")
	require.True(t, snap.PollError)
	require.Equal(t, application.StateLockedPending, snap.State)
	require.Equal(t, 1, scheduler.liveTasks())

	// recovery clears the flag
	api.mu.Lock()
	api.getErr = nil
	api.mu.Unlock()
	scheduler.tick()
	require.False(t, svc.Snapshot("p-1").PollError)
}

func TestConfirmRequiresMethodAndEmail(t *testing.T) {
	api := &fakeCheckoutAPI{payment: unlockedPayment(), methods: []domain.PaymentMethod{ethMethod}}
	svc, _ := newCheckout(api)
	defer svc.Close()

	_, err := svc.Load(ctx, "p-1")
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, "p-1")
	require.Error(t, err)

	_, err = svc.SelectMethod(ctx, "p-1", "ETH")
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, "p-1")
	require.Error(t, err)
}

func TestSetCustomerRejectsInvalidEmail(t *testing.T) {
	api := &fakeCheckoutAPI{payment: unlockedPayment(), methods: []domain.PaymentMethod{ethMethod}}
	svc, _ := newCheckout(api)
	defer svc.Close()

	_, err := svc.Load(ctx, "p-1")
	require.NoError(t, err)

	err = svc.SetCustomer(ctx, "p-1", "not-an-email")
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	require.True(t, apiErr.IsValidation())
}

func TestSelectMethodUnknownTicker(t *testing.T) {
	api := &fakeCheckoutAPI{payment: unlockedPayment(), methods: []domain.PaymentMethod{ethMethod}}
	svc, _ := newCheckout(api)
	defer svc.Close()

	_, err := svc.Load(ctx, "p-1")
	require.NoError(t, err)

	_, err = svc.SelectMethod(ctx, "p-1", "DOGE")
	require.Error(t, err)
}

func TestStaleConvertPreviewIsDropped(t *testing.T) {
	api := &fakeCheckoutAPI{payment: unlockedPayment(), methods: []domain.PaymentMethod{ethMethod, tronMethod}}
	svc, _ := newCheckout(api)
	defer svc.Close()

	_, err := svc.Load(ctx, "p-1")
	require.NoError(t, err)

	// the first preview request stalls until the second finished
	release := make(chan struct{})
	api.mu.Lock()
	api.convertBlock = release
	api.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.SelectMethod(ctx, "p-1", "ETH")
	}()

	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.convertCalls == 1
	}, time.Second, 5*time.Millisecond)

	_, err = svc.SelectMethod(ctx, "p-1", "TRON")
	require.NoError(t, err)

	close(release)
	<-done

	// the late ETH response must not overwrite the TRON preview
	snap := svc.Snapshot("p-1")
	require.NotNil(t, snap.ConvertResult)
	require.Equal(t, "TRON", snap.ConvertResult.CryptoCurrency)
}

func TestLoadAdoptsPresetMethodAndCustomer(t *testing.T) {
	payment := unlockedPayment()
	payment.PaymentMethod = &ethMethod
	payment.Customer = &domain.Customer{ID: "c-1", Email: "buyer@example.com"}

	api := &fakeCheckoutAPI{payment: payment, methods: []domain.PaymentMethod{ethMethod, tronMethod}}
	svc, _ := newCheckout(api)
	defer svc.Close()

	snap, err := svc.Load(ctx, "p-1")
	require.NoError(t, err)
	require.Equal(t, application.StateSelecting, snap.State)
	require.Equal(t, "ETH", snap.SelectedMethod.Ticker)
	require.Equal(t, "buyer@example.com", snap.CustomerEmail)
	require.True(t, snap.CanConfirm)
}

func TestSpawnPaymentFromLink(t *testing.T) {
	api := &fakeCheckoutAPI{}
	svc, _ := newCheckout(api)
	defer svc.Close()

	link, err := svc.LoadPaymentLink(ctx, "l-1")
	require.NoError(t, err)
	require.Equal(t, "shop", link.MerchantName)

	id, err := svc.SpawnPayment(ctx, "l-1")
	require.NoError(t, err)
	require.Equal(t, "p-from-link", id)
}
