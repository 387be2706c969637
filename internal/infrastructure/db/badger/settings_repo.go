package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/flowpayhq/flowpay/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const (
	settingsDir = "settings"
	settingsKey = "settings"
)

type settingsRepository struct {
	store *badgerhold.Store
}

// NewSettingsRepository opens the console settings store. An empty
// baseDir opens an in-memory store, used in tests.
func NewSettingsRepository(baseDir string, logger badger.Logger) (domain.SettingsRepository, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, settingsDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %s", err)
	}
	return &settingsRepository{store}, nil
}

func (r *settingsRepository) AddDefaultSettings(ctx context.Context) error {
	return r.addSettings(domain.Settings{})
}

func (r *settingsRepository) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var settings domain.Settings
	if err := r.store.Get(settingsKey, &settings); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("settings not found")
		}
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) UpdateSettings(ctx context.Context, settings domain.Settings) error {
	return r.store.Upsert(settingsKey, &settings)
}

func (r *settingsRepository) CleanSettings(ctx context.Context) error {
	if err := r.store.Delete(settingsKey, &domain.Settings{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("settings not found")
		}
		return err
	}
	return nil
}

func (r *settingsRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *settingsRepository) addSettings(settings domain.Settings) error {
	if err := r.store.Insert(settingsKey, &settings); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("settings already exist")
		}
		return err
	}
	return nil
}
