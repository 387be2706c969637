package ports

import "github.com/flowpayhq/flowpay/internal/core/domain"

type RepoManager interface {
	Settings() domain.SettingsRepository
	Close()
}
