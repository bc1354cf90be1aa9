package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ogurasousui/hr-records/internal/adapters/repository/memory"
	mongorepo "github.com/ogurasousui/hr-records/internal/adapters/repository/mongodb"
	pgrepo "github.com/ogurasousui/hr-records/internal/adapters/repository/postgres"
	sqliterepo "github.com/ogurasousui/hr-records/internal/adapters/repository/sqlite"
	"github.com/ogurasousui/hr-records/internal/core/assignment"
	"github.com/ogurasousui/hr-records/internal/core/employee"
	"github.com/ogurasousui/hr-records/internal/core/hr"
	"github.com/ogurasousui/hr-records/internal/core/project"
	"github.com/ogurasousui/hr-records/internal/core/report"
	"github.com/ogurasousui/hr-records/internal/core/review"
	"github.com/ogurasousui/hr-records/internal/platform/config"
	"github.com/ogurasousui/hr-records/internal/platform/db/mongodb"
	pgdb "github.com/ogurasousui/hr-records/internal/platform/db/postgres"
	sqlitedb "github.com/ogurasousui/hr-records/internal/platform/db/sqlite"
)

const disconnectTimeout = 5 * time.Second

// TransactionManager はリレーショナルストアのトランザクション境界です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// Stores はアプリケーションが利用するストア一式です。
type Stores struct {
	Employees   employee.Repository
	Projects    project.Repository
	Assignments assignment.Repository
	Reviews     review.Repository
	Tx          TransactionManager
	// RelationalPing はリレーショナルストアの疎通確認です。nil の場合は常に成功とみなします。
	RelationalPing func(context.Context) error
	// ReviewsDegraded はドキュメントストアがインメモリで代替されていることを示します。
	ReviewsDegraded bool
}

// App はプロセス開始時に一度だけ構築され、全サービスとストアを保持します。
type App struct {
	Employees   *employee.Service
	Projects    *project.Service
	Assignments *assignment.Service
	Reviews     *review.Service
	HR          *hr.Service
	Reports     *report.Service

	stores Stores
	driver string
	logger *slog.Logger
	closer []func() error
}

// New は与えられたストアからサービスを組み立てます。
func New(stores Stores, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	return &App{
		Employees:   employee.NewService(stores.Employees, nil, stores.Tx),
		Projects:    project.NewService(stores.Projects, stores.Tx),
		Assignments: assignment.NewService(stores.Assignments, stores.Employees, stores.Projects, nil, stores.Tx),
		Reviews:     review.NewService(stores.Reviews),
		HR: hr.NewService(hr.Stores{
			Employees:       stores.Employees,
			Projects:        stores.Projects,
			Assignments:     stores.Assignments,
			Reviews:         stores.Reviews,
			ReviewsDegraded: stores.ReviewsDegraded,
		}, stores.Tx, logger.With(slog.String("component", "hr"))),
		Reports: report.NewService(report.Readers{
			Employees:   stores.Employees,
			Projects:    stores.Projects,
			Assignments: stores.Assignments,
			Reviews:     stores.Reviews,
		}, stores.Tx, logger.With(slog.String("component", "report"))),
		stores: stores,
		logger: logger,
	}
}

// Open は設定に従って両ストアへ接続し App を構築します。
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var (
		stores Stores
		closer []func() error
	)

	relClose, err := openRelational(ctx, cfg.Relational, &stores)
	if err != nil {
		return nil, err
	}
	closer = append(closer, relClose)

	reviewClose, err := openReviews(ctx, cfg.Documents, &stores, logger)
	if err != nil {
		_ = relClose()
		return nil, err
	}
	if reviewClose != nil {
		closer = append(closer, reviewClose)
	}

	a := New(stores, logger)
	a.driver = cfg.Relational.Driver
	a.closer = closer

	logger.InfoContext(ctx, "stores opened",
		slog.String("relational", cfg.Relational.Driver),
		slog.Bool("reviews_degraded", stores.ReviewsDegraded),
	)
	return a, nil
}

func openRelational(ctx context.Context, cfg config.RelationalConfig, stores *Stores) (func() error, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := pgdb.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("app: open relational store: %w", err)
		}
		stores.Employees = pgrepo.NewEmployeeRepository(pool)
		stores.Projects = pgrepo.NewProjectRepository(pool)
		stores.Assignments = pgrepo.NewAssignmentRepository(pool)
		stores.Tx = pgdb.NewTransactionManager(pool, cfg.OperationTimeout)
		stores.RelationalPing = pool.Ping
		return func() error {
			pool.Close()
			return nil
		}, nil
	default:
		db, err := sqlitedb.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("app: open relational store: %w", err)
		}
		stores.Employees = sqliterepo.NewEmployeeRepository(db)
		stores.Projects = sqliterepo.NewProjectRepository(db)
		stores.Assignments = sqliterepo.NewAssignmentRepository(db)
		stores.Tx = sqlitedb.NewTransactionManager(db, cfg.OperationTimeout)
		stores.RelationalPing = db.PingContext
		return db.Close, nil
	}
}

func openReviews(ctx context.Context, cfg config.DocumentsConfig, stores *Stores, logger *slog.Logger) (func() error, error) {
	client, err := mongodb.Connect(ctx, cfg)
	if err != nil {
		if cfg.Fallback != config.FallbackMemory {
			return nil, fmt.Errorf("app: open review store: %w: %w", review.ErrUnavailable, err)
		}
		logger.WarnContext(ctx, "review store unavailable, using in-memory fallback", slog.Any("error", err))
		stores.Reviews = memory.NewReviewRepository()
		stores.ReviewsDegraded = true
		return nil, nil
	}

	coll := mongodb.Collection(client, cfg)
	if err := mongodb.EnsureIndexes(ctx, coll); err != nil {
		logger.WarnContext(ctx, "could not create review indexes", slog.Any("error", err))
	}

	stores.Reviews = mongorepo.NewReviewRepository(coll, cfg.Timeout, logger.With(slog.String("component", "reviews")))
	return func() error {
		return mongodb.Disconnect(client, disconnectTimeout)
	}, nil
}

// Close は保持しているストアをすべて解放します。
func (a *App) Close() error {
	var errs []error
	for i := len(a.closer) - 1; i >= 0; i-- {
		if err := a.closer[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closer = nil
	return errors.Join(errs...)
}

// ReviewsDegraded はドキュメントストアが縮退運転中かを返します。
func (a *App) ReviewsDegraded() bool {
	return a.stores.ReviewsDegraded
}
