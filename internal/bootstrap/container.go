package bootstrap

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gridspace-io/gridspace/internal/config"
	"github.com/gridspace-io/gridspace/internal/infra/blob"
	"github.com/gridspace-io/gridspace/internal/infra/cache"
	"github.com/gridspace-io/gridspace/internal/infra/db"
	"github.com/gridspace-io/gridspace/internal/infra/logger"
	"github.com/gridspace-io/gridspace/internal/infra/payments"
	"github.com/gridspace-io/gridspace/internal/infra/queue"
	"github.com/gridspace-io/gridspace/internal/infra/session"
	"github.com/gridspace-io/gridspace/internal/modules/handler"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/modules/repo"
	"github.com/gridspace-io/gridspace/internal/modules/service"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(d); err != nil {
				return nil, fmt.Errorf("auto migrate: %w", err)
			}
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cache.New(cfg), nil
	})
	do.Provide(inj, func(i *do.Injector) (session.Store, error) {
		return session.NewRedisStore(do.MustInvoke[*redis.Client](i)), nil
	})

	// RabbitMQ: events are dropped when no broker is configured
	do.Provide(inj, func(i *do.Injector) (service.EventPublisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		if cfg.RabbitMQ.URL == "" {
			log.Sugar().Infow("rabbitmq not configured, domain events are discarded")
			return queue.Nop{}, nil
		}
		conn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, fmt.Errorf("dial rabbitmq: %w", err)
		}
		pub, err := queue.NewPublisher(conn, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return pub, nil
	})

	// S3: uploads are not archived when no bucket is configured
	do.Provide(inj, func(i *do.Injector) (service.Archiver, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.S3.Bucket == "" {
			return nil, nil
		}
		deps, err := blob.NewS3(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		return blob.NewImportArchive(deps), nil
	})

	// Stripe
	do.Provide(inj, func(i *do.Injector) (payments.Provider, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return payments.NewStripeProvider(cfg.Stripe.SecretKey), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.WorkspaceRepo, error) {
		return repo.NewWorkspaceRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.TableRepo, error) {
		return repo.NewTableRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.RowRepo, error) {
		return repo.NewRowRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.SubscriptionRepo, error) {
		return repo.NewSubscriptionRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.Guard, error) {
		return service.NewGuard(do.MustInvoke[repo.WorkspaceRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.Limits, error) {
		return service.NewLimits(
			do.MustInvoke[repo.SubscriptionRepo](i),
			do.MustInvoke[*config.Config](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.WorkspaceService, error) {
		return service.NewWorkspaceService(
			do.MustInvoke[repo.WorkspaceRepo](i),
			do.MustInvoke[service.Guard](i),
			do.MustInvoke[service.Limits](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.TableService, error) {
		return service.NewTableService(
			do.MustInvoke[repo.TableRepo](i),
			do.MustInvoke[repo.WorkspaceRepo](i),
			do.MustInvoke[service.Guard](i),
			do.MustInvoke[service.Limits](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.RowService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewRowService(
			do.MustInvoke[repo.RowRepo](i),
			do.MustInvoke[repo.TableRepo](i),
			do.MustInvoke[repo.WorkspaceRepo](i),
			do.MustInvoke[service.Guard](i),
			do.MustInvoke[service.Limits](i),
			service.RowOptions{
				Policy:          model.ParseCellTypePolicy(cfg.Tables.CellTypePolicy),
				DefaultPageSize: cfg.Tables.DefaultPageSize,
				MaxPageSize:     cfg.Tables.MaxPageSize,
			},
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ImportService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewImportService(
			do.MustInvoke[repo.RowRepo](i),
			do.MustInvoke[repo.TableRepo](i),
			do.MustInvoke[repo.WorkspaceRepo](i),
			do.MustInvoke[service.Guard](i),
			do.MustInvoke[service.Limits](i),
			do.MustInvoke[service.Archiver](i),
			do.MustInvoke[service.EventPublisher](i),
			service.ImportOptions{
				Policy:   model.ParseCellTypePolicy(cfg.Tables.CellTypePolicy),
				MaxBytes: cfg.Tables.MaxImportBytes,
			},
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.BillingService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewBillingService(
			do.MustInvoke[repo.SubscriptionRepo](i),
			do.MustInvoke[payments.Provider](i),
			do.MustInvoke[service.Limits](i),
			do.MustInvoke[service.EventPublisher](i),
			service.BillingOptions{
				WebhookSecret: cfg.Stripe.WebhookSecret,
				PriceIDBasic:  cfg.Stripe.PriceIDBasic,
				PriceIDPro:    cfg.Stripe.PriceIDPro,
				PublicURL:     cfg.App.PublicURL,
			},
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.WorkspaceHandler, error) {
		return handler.NewWorkspaceHandler(do.MustInvoke[service.WorkspaceService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.TableHandler, error) {
		return handler.NewTableHandler(do.MustInvoke[service.TableService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.RowHandler, error) {
		return handler.NewRowHandler(do.MustInvoke[service.RowService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ImportHandler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return handler.NewImportHandler(do.MustInvoke[service.ImportService](i), cfg.Tables.MaxImportBytes), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.BillingHandler, error) {
		return handler.NewBillingHandler(do.MustInvoke[service.BillingService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.SessionHandler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return handler.NewSessionHandler(do.MustInvoke[session.Store](i), cfg.Session.CookieName), nil
	})

	return inj
}
