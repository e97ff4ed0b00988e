package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	adaptershttp "github.com/iho/cryptotax/internal/adapter/http"
	"github.com/iho/cryptotax/internal/adapter/http/dto"
	"github.com/iho/cryptotax/internal/adapter/http/handler"
	"github.com/iho/cryptotax/internal/adapter/http/middleware"
	"github.com/iho/cryptotax/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/cryptotax/internal/adapter/repository/redis"
	"github.com/iho/cryptotax/internal/domain"
	"github.com/iho/cryptotax/internal/ledger"
	"github.com/iho/cryptotax/internal/usecase"
	"github.com/iho/cryptotax/tests/testutil"
)

const operationLog = `kind,timestamp,incoming_asset,incoming_amount,outgoing_asset,outgoing_amount,rate,fee,capital
receive,2021-08-01T10:00:00+10:00,SMTH,10,,,,,100
trade,2021-09-01T10:00:00+10:00,AUD,150,SMTH,10,15,0,150
`

func newTestRouter(t *testing.T) (http.Handler, *testutil.TestDB) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(context.Background())

	redisClient := testutil.NewTestRedis(t)

	pool := testDB.Pool
	logger := zerolog.Nop()
	cfg := ledger.DefaultConfig()

	reportRepo := postgres.NewReportRepository(pool)
	cache := redisrepo.NewCache(redisClient)

	taxUC := usecase.NewTaxUseCase(
		postgres.NewTxManager(pool),
		reportRepo,
		cache,
		postgres.NewRetrier(logger),
		postgres.NewULIDGenerator(),
		nil,
		logger,
		cfg,
	)
	reportUC := usecase.NewReportUseCase(reportRepo, cache, logger)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		ReportHandler:    handler.NewReportHandler(taxUC, reportUC, cfg, handler.DefaultMaxBodyBytes),
		HealthHandler:    handler.NewHealthHandler(handler.Dependency{Name: "postgres", Ping: pool.Ping}),
		IdempotencyStore: redisrepo.NewIdempotencyStore(redisClient),
		Logger:           logger,
	})

	return router, testDB
}

func TestReportLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	router, _ := newTestRouter(t)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/reports?persist=true", strings.NewReader(operationLog))
	r.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var created dto.ReportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected persisted report to have an id")
	}
	if got := w.Header().Get("Location"); got != "/api/v1/reports/"+created.ID {
		t.Errorf("unexpected location %q", got)
	}

	t.Run("get report", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+created.ID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.ReportResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.OperationCount != 2 || len(resp.Years) != 1 {
			t.Fatalf("unexpected report %+v", resp)
		}
		if resp.Years[0].Year != 2022 || resp.Years[0].NetGain != "50.00" {
			t.Errorf("unexpected year %+v", resp.Years[0])
		}
	})

	t.Run("get year", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+created.ID+"/years/2022", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.YearResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.TotalGain != "50.00" {
			t.Errorf("expected total gain 50.00, got %s", resp.TotalGain)
		}
	})

	t.Run("missing year", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+created.ID+"/years/2019", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})

	t.Run("list reports", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/reports?limit=5", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.ReportListResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if len(resp.Reports) != 1 || resp.Reports[0].ID != created.ID {
			t.Errorf("unexpected listing %+v", resp.Reports)
		}
	})
}

func TestReportIdempotentSubmission(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	router, _ := newTestRouter(t)

	ops := []domain.OperationRecord{
		{Kind: "receive", Timestamp: "2021-08-01T10:00:00+10:00", IncomingAsset: "SMTH", IncomingAmount: "10", Capital: "100"},
		{Kind: "trade", Timestamp: "2021-09-01T10:00:00+10:00", IncomingAsset: "AUD", IncomingAmount: "150",
			OutgoingAsset: "SMTH", OutgoingAmount: "10", Rate: "15", Capital: "150"},
	}
	body, _ := json.Marshal(dto.CalculateRequest{Operations: ops, Persist: true})
	key := "report-" + ulid.Make().String()

	submit := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/reports", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set(middleware.IdempotencyKeyHeader, key)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		return w
	}

	first := submit()
	if first.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, first.Code, first.Body.String())
	}

	second := submit()
	if second.Code != http.StatusOK {
		t.Fatalf("expected replayed status %d, got %d", http.StatusOK, second.Code)
	}
	if second.Header().Get(middleware.IdempotencyReplayHeader) == "" {
		t.Error("expected replay header on second submission")
	}
	if second.Body.String() != first.Body.String() {
		t.Error("expected identical replayed body")
	}
}
