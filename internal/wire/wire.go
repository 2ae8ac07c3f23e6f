// Package wire provides dependency injection for the mwo application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	cliadapter "github.com/example/mwo/internal/adapters/cli"
	"github.com/example/mwo/internal/adapters/sqlite"
	"github.com/example/mwo/internal/app"
	"github.com/example/mwo/internal/config"
	"github.com/example/mwo/internal/db"
	"github.com/example/mwo/internal/logging"
	"github.com/example/mwo/internal/ports/primary"
)

var (
	cfg          *config.Config
	logger       *zap.Logger
	database     *sql.DB
	orderService primary.OrderService
	slaService   primary.SLAService
	once         sync.Once
)

// Config returns the resolved configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the process-wide logger.
func Logger() *zap.Logger {
	once.Do(initServices)
	return logger
}

// OrderService returns the singleton OrderService instance.
func OrderService() primary.OrderService {
	once.Do(initServices)
	return orderService
}

// SLAService returns the singleton SLAService instance.
func SLAService() primary.SLAService {
	once.Do(initServices)
	return slaService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Resolve()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err = logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	// Migrations log through the global logger.
	zap.ReplaceGlobals(logger)

	database, err = db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Repository adapters (secondary ports) share the one connection pool
	tx := sqlite.NewTransactor(database)
	orders := sqlite.NewOrderRepository(database)
	slas := sqlite.NewSLAConfigRepository(database)

	orderService = app.NewOrderService(app.OrderServiceDeps{
		Transactor: tx,
		Orders:     orders,
		History:    sqlite.NewHistoryRepository(database),
		SpareParts: sqlite.NewSparePartRepository(database),
		Ledger:     sqlite.NewLedgerRepository(database),
		Comments:   sqlite.NewCommentRepository(database),
		References: sqlite.NewReferenceLookup(database),
		SLAConfigs: slas,
		Sequence:   sqlite.NewOrderNumberSequence(database),
		Logger:     logger,
		Clock:      time.Now,
	})
	slaService = app.NewSLAService(tx, orders, slas, logger)
}

// Close flushes the logger and closes the database if they were opened.
func Close() {
	if logger != nil {
		_ = logger.Sync()
	}
	if database != nil {
		_ = database.Close()
	}
}

// OrderAdapter returns a new OrderAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func OrderAdapter() *cliadapter.OrderAdapter {
	return OrderAdapterWithOutput(os.Stdout)
}

// OrderAdapterWithOutput returns a new OrderAdapter writing to the given output.
func OrderAdapterWithOutput(out io.Writer) *cliadapter.OrderAdapter {
	once.Do(initServices)
	return cliadapter.NewOrderAdapter(orderService, out)
}

// SLAAdapter returns a new SLAAdapter writing to stdout.
func SLAAdapter() *cliadapter.SLAAdapter {
	return SLAAdapterWithOutput(os.Stdout)
}

// SLAAdapterWithOutput returns a new SLAAdapter writing to the given output.
func SLAAdapterWithOutput(out io.Writer) *cliadapter.SLAAdapter {
	once.Do(initServices)
	return cliadapter.NewSLAAdapter(slaService, out)
}
