package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"xpilot-copilot/internal/common/businesscentral"
	"xpilot-copilot/internal/common/config"
	"xpilot-copilot/internal/common/database"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/copilot/command"
	"xpilot-copilot/internal/copilot/mapper"
	"xpilot-copilot/internal/models"
	"xpilot-copilot/internal/store/odata"
	"xpilot-copilot/internal/store/postgres"
)

// registerEntityRoutes binds Customer and CopilotEntity to the configured store driver.
// The returned func releases the store's connections.
func registerEntityRoutes(ctx context.Context, cfg *config.Config, d *command.Dispatcher, log logger.Logger, zapLog *zap.Logger) (func(), error) {
	switch cfg.EntityStore.Driver {
	case "odata":
		bc := businesscentral.NewClient(businesscentral.Config{
			BaseURL:  cfg.EntityStore.OData.BaseURL,
			Username: cfg.EntityStore.OData.Username,
			Password: cfg.EntityStore.OData.Password,
			Timeout:  config.GetDuration(cfg.EntityStore.OData.Timeout),
		})
		customers, err := odata.NewCustomerStore(bc, cfg.EntityStore.OData.CustomerEntitySet, log)
		if err != nil {
			return nil, err
		}
		entities, err := odata.NewCopilotEntityStore(bc, cfg.EntityStore.OData.CopilotEntitySet, log)
		if err != nil {
			return nil, err
		}
		register(d, customers, entities)
		return func() {}, nil

	case "postgres":
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pg.DB); err != nil {
			pg.Close()
			return nil, err
		}
		register(d, postgres.NewCustomerStore(pg.DB, log), postgres.NewCopilotEntityStore(pg.DB, log))
		return func() { pg.Close() }, nil

	default:
		return nil, fmt.Errorf("entity store driver %q is not supported", cfg.EntityStore.Driver)
	}
}

func register(d *command.Dispatcher, customers command.Operations[models.Customer], entities command.Operations[models.CopilotEntity]) {
	d.Register(models.EntityCustomer, command.NewEntityRoute[models.Customer](mapper.CustomerIDField, mapper.Customer, customers))
	d.Register(models.EntityCopilotEntity, command.NewEntityRoute[models.CopilotEntity](mapper.EntityIDField, mapper.CopilotEntity, entities))
}
