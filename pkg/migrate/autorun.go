package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/autoparts-storefront/pkg/config"
	"github.com/angelmondragon/autoparts-storefront/pkg/db"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
)

// MaybeRunDev brings the cart_snapshots schema up to date on boot. It only runs
// in dev with AUTOPARTS_AUTO_MIGRATE set; other environments use cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.App.AutoMigrate {
		return nil
	}
	if client == nil {
		return fmt.Errorf("auto-migrate needs a sql client")
	}

	dialect := db.Dialect(cfg.DB)
	ctx = logg.WithField(ctx, "dialect", dialect)
	if err := Run(ctx, client.SQL(), dialect, "up"); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	logg.Info(ctx, "migrations applied on boot")
	return nil
}
