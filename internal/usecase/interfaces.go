package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/cryptotax/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// ErrPersistenceUnavailable is returned when a run asks to be saved but no repository is configured.
var ErrPersistenceUnavailable = errors.New("report persistence is not configured")

// ReportRepository defines data access for run reports.
type ReportRepository interface {
	Save(ctx context.Context, tx Transaction, report *domain.Report) error
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	// List returns report headers, newest first, without years or consistency entries.
	List(ctx context.Context, limit, offset int) ([]*domain.Report, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore remembers responses to requests carrying an idempotency key.
type IdempotencyStore interface {
	// CheckAndSet returns the stored response when key exists. Otherwise it stores
	// response, or a processing placeholder when response is nil.
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claim so the request can be retried.
	Release(ctx context.Context, key string) error
}

// MetricsRecorder receives ledger run measurements.
type MetricsRecorder interface {
	RecordOperation(kind string)
	RecordConsistencyEntry(severity, kind string)
	RecordRun(status string, duration time.Duration)
	RecordReportPersisted()
}
