package repository

import (
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
)

// ConfigRepository defines the interface for loading and checking the run configuration.
type ConfigRepository interface {
	LoadConfigFile(filePath string) (*types.Config, error)
	ApplyEnvironment(cfg *types.Config) error
	Validate(cfg *types.Config) error
}
