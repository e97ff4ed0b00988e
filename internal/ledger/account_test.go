package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cryptotax/internal/domain"
)

const sydney = "+10:00[Australia/Sydney]"

func TestAccountRejectsOutOfOrderOperations(t *testing.T) {
	account := newTestAccount(false)

	require.NoError(t, account.Register(trade(t, "2021-10-10T10:00:00"+sydney, "SMTH", "1", "AUD", "1", "1", "1", "1")))
	require.NoError(t, account.Register(trade(t, "2021-10-20T10:00:00"+sydney, "SMTH", "1", "AUD", "1", "1", "1", "1")))

	before := account.Report("before", account.LastTimestamp())
	lastBefore := account.LastTimestamp()

	err := account.Register(trade(t, "2021-10-05T10:00:00"+sydney, "SMTH", "1", "AUD", "1", "1", "1", "1"))
	require.ErrorIs(t, err, domain.ErrOutOfOrder)

	var opErr *domain.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, domain.OperationKindTrade, opErr.Op.Kind())

	assert.Equal(t, before, account.Report("before", lastBefore))
	assert.Equal(t, lastBefore, account.LastTimestamp())
	assert.Equal(t, 2, account.Registered())
}

func TestAccountAcceptsEqualTimestamps(t *testing.T) {
	account := newTestAccount(false)

	op := receive(t, "2021-10-10T10:00:00"+sydney, "SMTH", "1", "1")
	require.NoError(t, account.Register(op))
	require.NoError(t, account.Register(op))

	assertDecimal(t, "2", account.Balances(2022)["SMTH"])
}

func TestAccountNegativeBalance(t *testing.T) {
	setup := func(t *testing.T, strict bool) *Account {
		account := newTestAccount(strict)
		require.NoError(t, account.Register(trade(t, "2021-10-10T10:00:00"+sydney, "SMTH", "5", "AUD", "10", "2", "0.1", "10")))

		assert.Equal(t, []int{2022}, account.Years())
		assert.Empty(t, account.Gain(2022))
		assert.Empty(t, account.Loss(2022))
		assert.Empty(t, account.GainDiscounted(2022))
		assert.Len(t, account.Balances(2022), 1)
		assertDecimal(t, "5", account.Balances(2022)["SMTH"])
		return account
	}

	swap := func(t *testing.T) domain.TradeLog {
		return trade(t, "2021-10-10T10:10:00"+sydney, "ANY", "5", "SMTH", "10", "2", "0.1", "10")
	}

	t.Run("strict mode fails before lots are consumed", func(t *testing.T) {
		account := setup(t, true)

		err := account.Register(swap(t))
		require.ErrorIs(t, err, domain.ErrNegativeBalance)

		// no rollback: the balance change stays
		assertDecimal(t, "-5", account.Balances(2022)["SMTH"])
		assertDecimal(t, "5", account.Balances(2022)["ANY"])
		assert.Empty(t, account.Gain(2022))
		assert.Empty(t, account.Loss(2022))
		assert.Empty(t, account.GainDiscounted(2022))

		lots := account.Lots(smth)
		require.Len(t, lots, 1)
		assertDecimal(t, "5", lots[0].Amount)

		log := account.ConsistencyLog()
		require.Len(t, log, 1)
		assert.Equal(t, domain.SeverityError, log[0].Severity)
		assert.Equal(t, domain.ConsistencyNegativeBalance, log[0].Kind)
		assert.Equal(t, "SMTH", log[0].Asset)
		assert.Equal(t, 2022, log[0].Year)
		assert.Equal(t, 1, log[0].Seq)
		assert.NotEmpty(t, log[0].OperationRef)
	})

	t.Run("lenient mode logs and fails on exhausted inventory", func(t *testing.T) {
		account := setup(t, false)

		err := account.Register(swap(t))
		require.ErrorIs(t, err, domain.ErrInsufficientBalance)
		require.NotErrorIs(t, err, domain.ErrNegativeBalance)

		assertDecimal(t, "-5", account.Balances(2022)["SMTH"])
		assert.Empty(t, account.Lots(smth))
		assert.Empty(t, account.Gain(2022))
		assert.Empty(t, account.GainDiscounted(2022))
		// 5 of 10 SMTH covered by a lot bought for 10 and sold for 5
		assertDecimal(t, "-5", account.LossTotal(2022))

		log := account.ConsistencyLog()
		require.Len(t, log, 2)
		assert.Equal(t, domain.ConsistencyNegativeBalance, log[0].Kind)
		assert.Equal(t, domain.SeverityError, log[0].Severity)
		assert.Equal(t, domain.ConsistencyCapitalMismatch, log[1].Kind)
		assert.Equal(t, domain.SeverityError, log[1].Severity)
		assertDecimal(t, "-5", log[1].Discrepancy)
		assert.Equal(t, 2, log[1].Seq)
	})
}

func TestAccountToleratedNegativeBalance(t *testing.T) {
	for _, strict := range []bool{false, true} {
		account := newTestAccount(strict)
		require.NoError(t, account.Register(receive(t, "2021-10-10T10:00:00"+sydney, "SMTH", "1", "1")))
		require.NoError(t, account.Register(trade(t, "2021-10-11T10:00:00"+sydney, "AUD", "1", "SMTH", "1.000000001", "1", "0", "1")))

		assertDecimal(t, "-0.000000001", account.Balances(2022)["SMTH"])

		log := account.ConsistencyLog()
		require.Len(t, log, 1)
		assert.Equal(t, domain.SeverityWarning, log[0].Severity)
		assert.Equal(t, domain.ConsistencyNegativeBalance, log[0].Kind)
	}
}

func TestAccountBuyAndSellWithinAYear(t *testing.T) {
	account := newTestAccount(true)

	require.NoError(t, account.Register(trade(t, "2021-01-10T10:00:00"+sydney, "SMTH", "5", "AUD", "10", "2", "0.1", "10")))
	require.NoError(t, account.Register(trade(t, "2021-01-10T10:10:00"+sydney, "SMTH", "5", "AUD", "5", "1", "0.1", "5")))

	assert.Equal(t, []int{2021}, account.Years())
	assert.Len(t, account.Balances(2021), 1)
	assertDecimal(t, "10", account.Balances(2021)["SMTH"])
	assert.Empty(t, account.Gain(2021))

	require.NoError(t, account.Register(trade(t, "2021-01-10T10:20:00"+sydney, "ANY", "8", "AUD", "8", "1", "0.1", "5")))

	assert.Len(t, account.Balances(2021), 2)
	assertDecimal(t, "8", account.Balances(2021)["ANY"])

	require.NoError(t, account.Register(trade(t, "2021-01-10T10:30:00"+sydney, "AUD", "15", "SMTH", "5", "3", "0.1", "15")))

	assert.Equal(t, []int{2021}, account.Years())
	assert.Empty(t, account.Loss(2021))
	assert.Empty(t, account.GainDiscounted(2021))
	assertDecimal(t, "5", account.Balances(2021)["SMTH"])
	assertDecimal(t, "8", account.Balances(2021)["ANY"])
	assertDecimal(t, "5", account.GainTotal(2021))
	assertDecimal(t, "5", account.Gain(2021)["SMTH"])
	assert.NotContains(t, account.Gain(2021), "ANY")
	assert.Empty(t, account.ConsistencyLog())
}

func TestAccountBuyAndSellAfterAYear(t *testing.T) {
	account := newTestAccount(true)

	require.NoError(t, account.Register(trade(t, "2021-01-10T10:00:00"+sydney, "SMTH", "5", "AUD", "10", "2", "0.1", "10")))
	require.NoError(t, account.Register(trade(t, "2021-02-11T10:10:00"+sydney, "SMTH", "5", "AUD", "5", "1", "0.1", "5")))
	require.NoError(t, account.Register(trade(t, "2021-03-12T10:20:00"+sydney, "ANY", "8", "AUD", "5", "0.625", "0.1", "5")))

	assert.Equal(t, []int{2021}, account.Years())
	assertDecimal(t, "10", account.Balances(2021)["SMTH"])
	assertDecimal(t, "8", account.Balances(2021)["ANY"])

	require.NoError(t, account.Register(trade(t, "2022-01-11T10:30:00"+sydney, "AUD", "21", "SMTH", "7", "3", "0.1", "21")))

	assert.Equal(t, []int{2021, 2022}, account.Years())
	assert.Empty(t, account.Loss(2021))
	assertDecimal(t, "10", account.Balances(2021)["SMTH"])
	assertDecimal(t, "8", account.Balances(2021)["ANY"])
	assertDecimal(t, "3", account.Balances(2022)["SMTH"])
	assertDecimal(t, "8", account.Balances(2022)["ANY"])
	assertDecimal(t, "4", account.GainTotal(2022))
	assertDecimal(t, "5", account.GainDiscountedTotal(2022))

	lots := account.Lots(smth)
	require.Len(t, lots, 1)
	assertDecimal(t, "3", lots[0].Amount)
	assertDecimal(t, "3", lots[0].Capital)
	assertDecimal(t, "1", lots[0].Rate(domain.DefaultScale))

	require.NoError(t, account.Register(trade(t, "2022-03-12T10:20:00"+sydney, "AUD", "1", "ANY", "4", "4", "0.1", "1")))

	assert.Equal(t, []int{2021, 2022}, account.Years())
	assertDecimal(t, "10", account.Balances(2021)["SMTH"])
	assertDecimal(t, "8", account.Balances(2021)["ANY"])
	assertDecimal(t, "3", account.Balances(2022)["SMTH"])
	assertDecimal(t, "4", account.Balances(2022)["ANY"])
	assertDecimal(t, "4", account.GainTotal(2022))
	assertDecimal(t, "5", account.GainDiscountedTotal(2022))
	assertDecimal(t, "-1.5", account.LossTotal(2022))
	assertDecimal(t, "-1.5", account.Loss(2022)["ANY"])
	assert.Empty(t, account.ConsistencyLog())
}

func TestAccountReceive(t *testing.T) {
	account := newTestAccount(true)

	require.NoError(t, account.Register(receive(t, "2021-01-10T10:00:00"+sydney, "SMTH", "5", "10")))
	assert.Equal(t, []int{2021}, account.Years())
	assertDecimal(t, "5", account.Balances(2021)["SMTH"])

	require.NoError(t, account.Register(receive(t, "2021-01-20T10:00:00"+sydney, "SMTH", "7", "21")))
	assertDecimal(t, "12", account.Balances(2021)["SMTH"])

	require.NoError(t, account.Register(receive(t, "2022-01-30T10:00:00"+sydney, "ANY", "7", "21")))

	assert.Equal(t, []int{2021, 2022}, account.Years())
	assert.Len(t, account.Balances(2021), 1)
	assert.Len(t, account.Balances(2022), 2)
	assertDecimal(t, "12", account.Balances(2021)["SMTH"])
	assertDecimal(t, "12", account.Balances(2022)["SMTH"])
	assertDecimal(t, "7", account.Balances(2022)["ANY"])
	assert.Empty(t, account.Gain(2021))
	assert.Empty(t, account.Loss(2021))
	assert.Empty(t, account.GainDiscounted(2021))
}

func TestAccountSend(t *testing.T) {
	account := newTestAccount(true)

	err := account.Register(send(t, "2021-01-10T10:00:00"+sydney, "SMTH", "5", "10"))
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Empty(t, account.Years())

	require.NoError(t, account.Register(receive(t, "2021-01-10T10:00:00"+sydney, "SMTH", "5", "10")))
	require.NoError(t, account.Register(receive(t, "2021-01-20T10:00:00"+sydney, "SMTH", "7", "21")))
	require.NoError(t, account.Register(receive(t, "2022-01-10T10:00:00"+sydney, "ANY", "7", "21")))

	require.NoError(t, account.Register(send(t, "2022-01-20T10:00:00"+sydney, "ANY", "5", "21")))

	assertDecimal(t, "12", account.Balances(2021)["SMTH"])
	assertDecimal(t, "12", account.Balances(2022)["SMTH"])
	assertDecimal(t, "2", account.Balances(2022)["ANY"])

	lots := account.Lots(anyc)
	require.Len(t, lots, 1)
	assertDecimal(t, "2", lots[0].Amount)
	assertDecimal(t, "6", lots[0].Capital)

	require.NoError(t, account.Register(send(t, "2022-01-30T10:00:00"+sydney, "SMTH", "12", "12")))

	assert.Equal(t, []int{2021, 2022}, account.Years())
	assert.Len(t, account.Balances(2021), 1)
	assert.Len(t, account.Balances(2022), 2)
	assertDecimal(t, "12", account.Balances(2021)["SMTH"])
	assertDecimal(t, "0", account.Balances(2022)["SMTH"])
	assertDecimal(t, "2", account.Balances(2022)["ANY"])
	assert.Empty(t, account.Lots(smth))

	for _, y := range []int{2021, 2022} {
		assert.Empty(t, account.Gain(y))
		assert.Empty(t, account.GainDiscounted(y))
		assert.Empty(t, account.Loss(y))
	}
	assert.Empty(t, account.ConsistencyLog())
}

func TestAccountSendKeepsRemainingCostShare(t *testing.T) {
	account := newTestAccount(true)

	require.NoError(t, account.Register(receive(t, "2021-01-10T10:00:00"+sydney, "SMTH", "3", "10")))
	require.NoError(t, account.Register(send(t, "2021-01-11T10:00:00"+sydney, "SMTH", "1", "0")))

	lots := account.Lots(smth)
	require.Len(t, lots, 1)
	assertDecimal(t, "2", lots[0].Amount)
	assertDecimal(t, "6.6666666666666667", lots[0].Capital)
}

func TestAccountScenarios(t *testing.T) {
	t.Run("same-year round trip", func(t *testing.T) {
		account := newTestAccount(true)
		require.NoError(t, account.Register(trade(t, "2021-08-01T10:00:00"+sydney, "X", "5", "AUD", "10", "2", "0", "10")))
		require.NoError(t, account.Register(trade(t, "2021-09-01T10:00:00"+sydney, "AUD", "5", "X", "5", "1", "0", "5")))

		assertDecimal(t, "-5", account.LossTotal(2022))
		assertDecimal(t, "0", account.Balances(2022)["X"])
		assert.Empty(t, account.Gain(2022))
	})

	t.Run("swap", func(t *testing.T) {
		account := newTestAccount(true)
		require.NoError(t, account.Register(trade(t, "2021-08-01T10:00:00"+sydney, "X", "5", "AUD", "10", "2", "0", "10")))
		require.NoError(t, account.Register(trade(t, "2021-08-02T10:00:00"+sydney, "Y", "8", "AUD", "8", "1", "0", "8")))

		assert.Empty(t, account.ConsistencyLog())
		assert.NotContains(t, account.Balances(2022), "AUD")

		require.NoError(t, account.Register(trade(t, "2021-08-03T10:00:00"+sydney, "AUD", "12", "X", "5", "2.4", "0", "12")))
		assertDecimal(t, "2", account.Gain(2022)["X"])
		assertDecimal(t, "8", account.Balances(2022)["Y"])
		require.Len(t, account.Lots(domain.ResolveAsset("Y")), 1)
	})

	t.Run("coin for coin swap acquires and disposes", func(t *testing.T) {
		account := newTestAccount(true)
		require.NoError(t, account.Register(trade(t, "2021-08-01T10:00:00"+sydney, "X", "5", "AUD", "10", "2", "0", "10")))
		require.NoError(t, account.Register(trade(t, "2021-08-02T10:00:00"+sydney, "Y", "3", "X", "5", "0.6", "0", "15")))

		assertDecimal(t, "0", account.Balances(2022)["X"])
		assertDecimal(t, "3", account.Balances(2022)["Y"])
		assertDecimal(t, "5", account.Gain(2022)["X"])

		lots := account.Lots(domain.ResolveAsset("Y"))
		require.Len(t, lots, 1)
		assertDecimal(t, "15", lots[0].Capital)
	})

	t.Run("discounted gain", func(t *testing.T) {
		account := newTestAccount(true)
		require.NoError(t, account.Register(trade(t, "2020-03-01T10:00:00"+sydney, "X", "7", "AUD", "21", "3", "0", "21")))
		require.NoError(t, account.Register(trade(t, "2021-03-03T10:00:00"+sydney, "AUD", "28", "X", "7", "4", "0", "28")))

		assertDecimal(t, "7", account.GainDiscountedTotal(2021))
		assertDecimal(t, "7", account.GainDiscounted(2021)["X"])
		assert.Empty(t, account.Gain(2021))
		assert.True(t, account.GainTotal(2021).IsZero())
	})

	t.Run("send with no gain", func(t *testing.T) {
		account := newTestAccount(true)
		require.NoError(t, account.Register(receive(t, "2021-08-01T10:00:00"+sydney, "X", "5", "10")))
		require.NoError(t, account.Register(receive(t, "2021-08-02T10:00:00"+sydney, "X", "7", "21")))
		require.NoError(t, account.Register(send(t, "2021-08-03T10:00:00"+sydney, "X", "12", "40")))

		assertDecimal(t, "0", account.Balances(2022)["X"])
		assert.Empty(t, account.Gain(2022))
		assert.Empty(t, account.GainDiscounted(2022))
		assert.Empty(t, account.Loss(2022))
	})
}

func TestAccountDiscountBoundary(t *testing.T) {
	tests := []struct {
		name           string
		acquired       string
		wantDiscounted bool
	}{
		{"exactly one year is ordinary", "2021-01-11T10:00:00" + sydney, false},
		{"one day more is discounted", "2021-01-10T10:00:00" + sydney, true},
		{"one day less is ordinary", "2021-01-12T10:00:00" + sydney, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := newTestAccount(true)
			require.NoError(t, account.Register(trade(t, tt.acquired, "X", "1", "AUD", "1", "1", "0", "1")))
			require.NoError(t, account.Register(trade(t, "2022-01-11T10:00:00"+sydney, "AUD", "3", "X", "1", "3", "0", "3")))

			if tt.wantDiscounted {
				assertDecimal(t, "2", account.GainDiscountedTotal(2022))
				assert.Empty(t, account.Gain(2022))
			} else {
				assertDecimal(t, "2", account.GainTotal(2022))
				assert.Empty(t, account.GainDiscounted(2022))
			}
		})
	}
}

func TestAccountFinancialYearBoundary(t *testing.T) {
	account := newTestAccount(true)

	require.NoError(t, account.Register(receive(t, "2021-06-30T23:00:00"+sydney, "X", "1", "1")))
	require.NoError(t, account.Register(receive(t, "2021-07-01T00:30:00"+sydney, "X", "1", "1")))

	assert.Equal(t, []int{2021, 2022}, account.Years())
	assertDecimal(t, "1", account.Balances(2021)["X"])
	assertDecimal(t, "2", account.Balances(2022)["X"])
}

func TestAccountMixedOffsetsAroundYearEnd(t *testing.T) {
	account := newTestAccount(true)

	// 14:30 UTC on 30 June, already 1 July in Sydney
	require.NoError(t, account.Register(receive(t, "2021-07-01T00:30:00+10:00", "MIX", "10", "10")))
	// a later instant written in UTC, still 30 June there
	require.NoError(t, account.Register(send(t, "2021-06-30T15:00:00Z", "MIX", "5", "5")))

	assert.Empty(t, account.ConsistencyLog())
	assert.Equal(t, []int{2022}, account.Years())
	assertDecimal(t, "5", account.Balances(2022)["MIX"])

	lots := account.Lots(domain.ResolveAsset("MIX"))
	require.Len(t, lots, 1)
	assert.Equal(t, "2021-07-01", lots[0].AcquiredOn.String())
}

func TestAccountDatesFollowConfiguredZone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Location = time.UTC
	account := NewAccount(cfg, zerolog.Nop())

	require.NoError(t, account.Register(receive(t, "2021-07-01T00:30:00"+sydney, "X", "1", "1")))

	assert.Equal(t, []int{2021}, account.Years())
	assertDecimal(t, "1", account.Balances(2021)["X"])
}

func TestAccountNormalisesOffScaleValues(t *testing.T) {
	account := newTestAccount(true)
	prb := domain.ResolveAsset("PRB")

	require.NoError(t, account.Register(receive(t, "2021-08-01T10:00:00"+sydney, "PRB", "3", "3")))
	require.NoError(t, account.Register(receive(t, "2021-08-02T10:00:00"+sydney, "PRB", "2", "2")))

	ts, err := domain.ParseTimestamp("2021-08-03T10:00:00" + sydney)
	require.NoError(t, err)
	op := domain.TradeLog{
		OccurredAt:     ts,
		Incoming:       domain.AUD,
		IncomingAmount: decimal.New(1, -16),
		Outgoing:       prb,
		OutgoingAmount: decimal.NewFromInt(5),
		Rate:           decimal.NewFromInt(1),
		Capital:        decimal.New(9, -17),
	}

	require.NotPanics(t, func() {
		require.NoError(t, account.Register(op))
	})
	assert.Empty(t, account.Lots(prb))
	assertDecimal(t, "0", account.Balances(2022)["PRB"])
}

func TestAccountRoundsToConfiguredScale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scale = 2
	account := NewAccount(cfg, zerolog.Nop())

	require.NoError(t, account.Register(receive(t, "2021-08-01T10:00:00"+sydney, "X", "1.005", "10.125")))

	lots := account.Lots(domain.ResolveAsset("X"))
	require.Len(t, lots, 1)
	assertDecimal(t, "1", lots[0].Amount)
	assertDecimal(t, "10.12", lots[0].Capital)
	assertDecimal(t, "1", account.Balances(2022)["X"])

	err := account.Register(receive(t, "2021-08-02T10:00:00"+sydney, "X", "0.001", "1"))
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestAccountZeroSumAcrossLots(t *testing.T) {
	account := newTestAccount(true)

	require.NoError(t, account.Register(receive(t, "2021-08-01T10:00:00"+sydney, "X", "3", "1")))
	require.NoError(t, account.Register(receive(t, "2021-08-02T10:00:00"+sydney, "X", "3", "1")))
	require.NoError(t, account.Register(receive(t, "2021-08-03T10:00:00"+sydney, "X", "3", "1")))
	require.NoError(t, account.Register(trade(t, "2021-08-04T10:00:00"+sydney, "AUD", "10", "X", "7", "1.4285714285714286", "0", "10")))

	assert.Empty(t, account.ConsistencyLog())

	realised := account.GainTotal(2022).Add(account.LossTotal(2022))
	// proceeds 10 against cost 1 + 1 + 1/3
	assertDecimal(t, "7.6666666666666667", realised)

	lots := account.Lots(domain.ResolveAsset("X"))
	require.Len(t, lots, 1)
	assertDecimal(t, "2", lots[0].Amount)
}

func TestAccountQuantityConservation(t *testing.T) {
	account := newTestAccount(true)
	x := domain.ResolveAsset("X")

	ops := []domain.Operation{
		receive(t, "2021-08-01T10:00:00"+sydney, "X", "1.5", "3"),
		trade(t, "2021-08-02T10:00:00"+sydney, "X", "2.25", "AUD", "5", "2.2", "0", "5"),
		trade(t, "2021-09-02T10:00:00"+sydney, "AUD", "4", "X", "1.75", "2.3", "0", "4"),
		send(t, "2022-01-02T10:00:00"+sydney, "X", "0.5", "0"),
		receive(t, "2022-08-01T10:00:00"+sydney, "X", "0.125", "1"),
	}
	n, err := account.RegisterAll(ops)
	require.NoError(t, err)
	assert.Equal(t, len(ops), n)

	var total decimal.Decimal
	for _, lot := range account.Lots(x) {
		total = total.Add(lot.Amount)
	}
	assertDecimal(t, "1.625", total)
	assertDecimal(t, "1.625", account.Balances(2023)["X"])
}

func TestAccountAcceptsPointerOperations(t *testing.T) {
	account := newTestAccount(true)

	op := receive(t, "2021-08-01T10:00:00"+sydney, "X", "1", "1")
	require.NoError(t, account.Register(&op))
	assertDecimal(t, "1", account.Balances(2022)["X"])
}

func TestAccountRejectsInvalidOperations(t *testing.T) {
	account := newTestAccount(true)

	err := account.Register(domain.ReceiveLog{})
	require.ErrorIs(t, err, domain.ErrInvalidTimestamp)

	err = account.Register(nil)
	require.ErrorIs(t, err, domain.ErrUnknownOperation)

	var nilTrade *domain.TradeLog
	err = account.Register(nilTrade)
	require.ErrorIs(t, err, domain.ErrUnknownOperation)

	assert.Empty(t, account.Years())
	assert.Equal(t, 0, account.Registered())
}

func TestAccountRegisterAllStopsAtFirstError(t *testing.T) {
	account := newTestAccount(true)

	ops := []domain.Operation{
		receive(t, "2021-08-01T10:00:00"+sydney, "X", "1", "1"),
		receive(t, "2021-07-01T10:00:00"+sydney, "X", "1", "1"),
		receive(t, "2021-09-01T10:00:00"+sydney, "X", "1", "1"),
	}

	n, err := account.RegisterAll(ops)
	require.ErrorIs(t, err, domain.ErrOutOfOrder)
	assert.Equal(t, 1, n)
	assert.Contains(t, err.Error(), "operation 1")
}

func TestAccountCustomConfig(t *testing.T) {
	cfg := Config{FinancialYearStart: 1, Epsilon: dec("0.1")}
	account := NewAccount(cfg, zerolog.Nop())

	require.NoError(t, account.Register(receive(t, "2021-12-31T10:00:00"+sydney, "X", "1", "1")))
	require.NoError(t, account.Register(trade(t, "2022-01-01T10:00:00"+sydney, "AUD", "1", "X", "1.05", "1", "0", "1")))

	assert.Equal(t, []int{2021, 2022}, account.Years())
	assert.Equal(t, domain.AUD, account.Config().Settlement)
	assert.Equal(t, domain.DefaultScale, account.Config().Scale)

	log := account.ConsistencyLog()
	require.Len(t, log, 1)
	assert.Equal(t, domain.SeverityWarning, log[0].Severity)
}

func TestAccountReport(t *testing.T) {
	account := newTestAccount(true)

	require.NoError(t, account.Register(trade(t, "2021-01-10T10:00:00"+sydney, "SMTH", "5", "AUD", "10", "2", "0.1", "10")))
	require.NoError(t, account.Register(trade(t, "2022-01-11T10:30:00"+sydney, "AUD", "21", "SMTH", "5", "4.2", "0.1", "21")))

	report := account.Report("run-1", account.LastTimestamp())

	assert.Equal(t, "run-1", report.ID)
	assert.Equal(t, "AUD", report.Settlement)
	assert.Equal(t, 2, report.OperationCount)
	require.Len(t, report.Years, 2)

	y2022, err := report.Year(2022)
	require.NoError(t, err)
	assertDecimal(t, "11", y2022.TotalGainDiscounted)
	assertDecimal(t, "11", y2022.NetGain())
	assertDecimal(t, "0", y2022.Balances["SMTH"])
	assert.Equal(t, []string{"SMTH"}, y2022.Assets())

	_, err = report.Year(2030)
	require.ErrorIs(t, err, domain.ErrYearNotFound)
	assert.False(t, report.HasErrors())
}
