package db

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/flowpayhq/flowpay/internal/core/domain"
	"github.com/flowpayhq/flowpay/internal/core/ports"
	badgerdb "github.com/flowpayhq/flowpay/internal/infrastructure/db/badger"
)

type badgerLogger = badger.Logger

type ServiceConfig struct {
	DbType   string
	DbConfig []any
}

type service struct {
	settingsRepo domain.SettingsRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	var (
		settingsRepo domain.SettingsRepository
		err          error
	)

	switch config.DbType {
	case "badger":
		if len(config.DbConfig) != 2 {
			return nil, fmt.Errorf("badger db config must have 2 elements, got %d", len(config.DbConfig))
		}
		baseDir, ok := config.DbConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory")
		}
		var logger badgerLogger
		if config.DbConfig[1] != nil {
			logger, ok = config.DbConfig[1].(badgerLogger)
			if !ok {
				return nil, fmt.Errorf("invalid logger")
			}
		}
		settingsRepo, err = badgerdb.NewSettingsRepository(baseDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open settings repository: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported db type %s, supported types: badger", config.DbType)
	}

	return &service{settingsRepo}, nil
}

func (s *service) Settings() domain.SettingsRepository {
	return s.settingsRepo
}

func (s *service) Close() {
	s.settingsRepo.Close()
}
