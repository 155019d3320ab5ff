package app

import (
	"context"
	"database/sql"

	"github.com/sellerops/ozon-supply-connector/internal/app/config"
	"github.com/sellerops/ozon-supply-connector/internal/app/notify"
	"github.com/sellerops/ozon-supply-connector/internal/app/ozon"
	"github.com/sellerops/ozon-supply-connector/internal/app/supply"
	"github.com/sellerops/ozon-supply-connector/internal/handler/web"
	"github.com/sellerops/ozon-supply-connector/internal/infra/sqlite"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func New() *fx.App {
	var logger *zap.Logger

	app := fx.New(
		fx.Provide(
			configureLogger,
			config.Load,
			newDatabase,
			web.ConfigureHTTPServers,
			notify.NewNotifier,
			fx.Annotate(sqlite.NewTaskRepository, fx.As(new(supply.TaskStore))),
			fx.Annotate(ozon.NewClientServices, fx.As(new(ozon.ClientServices))),
			supply.NewPipeline,
			supply.NewWorker,
			fx.Annotate(supply.NewService, fx.As(new(supply.Service))),
			fx.Annotate(supply.NewManagementService, fx.As(new(web.SupplyService))),
		),
		fx.Invoke(
			supply.RegisterWorker,
			web.RegisterHandlers,
		),
		fx.Populate(&logger),
	)

	logger.Info("Ozon supply connector starting")

	return app
}

func newDatabase(lifecycle fx.Lifecycle, cfg *config.Config) (*sql.DB, error) {
	db, err := sqlite.InitDB(context.Background(), cfg.DBPath())
	if err != nil {
		return nil, err
	}
	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})
	return db, nil
}

func configureLogger() (*zap.Logger, error) {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	loggerConfig.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	loggerConfig.EncoderConfig.TimeKey = "time"
	loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	loggerConfig.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(logger)
	zap.RedirectStdLog(zap.L())
	return zap.L(), nil
}
