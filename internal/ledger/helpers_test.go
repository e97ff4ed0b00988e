package ledger

import (
	"testing"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cryptotax/internal/domain"
)

var (
	smth = domain.ResolveAsset("SMTH")
	anyc = domain.ResolveAsset("ANY")
)

func newTestAccount(strict bool) *Account {
	cfg := DefaultConfig()
	cfg.Strict = strict
	return NewAccount(cfg, zerolog.Nop())
}

func trade(t *testing.T, ts, in, inAmount, out, outAmount, rate, fee, capital string) domain.TradeLog {
	t.Helper()
	op, err := domain.ParseTradeLog(ts, in, inAmount, out, outAmount, rate, fee, capital)
	require.NoError(t, err)
	return op
}

func receive(t *testing.T, ts, asset, amount, capital string) domain.ReceiveLog {
	t.Helper()
	op, err := domain.ParseReceiveLog(ts, asset, amount, capital)
	require.NoError(t, err)
	return op
}

func send(t *testing.T, ts, asset, amount, capital string) domain.SendLog {
	t.Helper()
	op, err := domain.ParseSendLog(ts, asset, amount, capital)
	require.NoError(t, err)
	return op
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "expected %s, got %s", want, got.String())
}
