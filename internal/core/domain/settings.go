package domain

import "context"

// Settings is the locally persisted console state. It survives restarts
// and scopes every merchant-level query.
type Settings struct {
	SelectedMerchantID string
}

type SettingsRepository interface {
	AddDefaultSettings(ctx context.Context) error
	GetSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	CleanSettings(ctx context.Context) error
	Close()
}
