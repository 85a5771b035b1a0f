package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/SpinVault_Go/internal/config"
	"github.com/osse101/SpinVault_Go/internal/reward"
	"github.com/osse101/SpinVault_Go/internal/validation"
)

// LoadWheelCatalog opens the wheel catalogue and validates it once so a
// broken file fails startup rather than the first spin
func LoadWheelCatalog(ctx context.Context, cfg *config.Config) (*reward.FileCatalog, error) {
	catalog, err := reward.NewFileCatalog(cfg.WheelsPath, validation.NewSchemaValidator())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadCatalog, err)
	}

	wheels, err := catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadCatalog, err)
	}

	slog.Info(LogMsgCatalogLoaded, "path", cfg.WheelsPath, "wheels", len(wheels))
	return catalog, nil
}
