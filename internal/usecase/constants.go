package usecase

import (
	"math"
	"time"
)

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	DefaultTransactionTimeout = 10 * time.Second

	// ReportCacheTTL is how long report JSON stays in the cache
	ReportCacheTTL = time.Hour

	// DefaultListLimit and MaxListLimit bound report listings
	DefaultListLimit = 20
	MaxListLimit     = 100
	// MaxListOffset keeps offsets within the database's 32-bit range
	MaxListOffset = math.MaxInt32

	reportCachePrefix = "report:"

	runStatusOK     = "ok"
	runStatusFailed = "failed"
)

func reportCacheKey(id string) string {
	return reportCachePrefix + id
}
