package coinspot

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cryptotax/internal/domain"
)

func newSydneyConverter(t *testing.T) *Converter {
	t.Helper()
	c, err := NewConverter(nil)
	require.NoError(t, err)
	return c
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return ts
}

func poeBuy(t *testing.T) TradeOperation {
	return TradeOperation{
		Coin:        "POE",
		Rate:        decimal.RequireFromString("0.149904"),
		Market:      "POE/AUD",
		Amount:      decimal.RequireFromString("297.32362045"),
		Type:        OrderTypeInstant,
		SoldDate:    mustTime(t, "2018-01-18T15:14:33.780Z"),
		Total:       decimal.RequireFromString("44.57"),
		AudFeeExGst: decimal.RequireFromString("1.18014122"),
		AudGst:      decimal.RequireFromString("0.11801412"),
		AudTotal:    decimal.RequireFromString("44.57"),
	}
}

func loomSell(t *testing.T) TradeOperation {
	return TradeOperation{
		Coin:        "LOOM",
		Rate:        decimal.RequireFromString("0.099455"),
		Market:      "LOOM/AUD",
		Amount:      decimal.RequireFromString("492.18160892"),
		Type:        OrderTypeMarket,
		SoldDate:    mustTime(t, "2023-09-20T12:20:43.619Z"),
		Total:       decimal.RequireFromString("48.949921915138596"),
		AudFeeExGst: decimal.RequireFromString("0.45"),
		AudGst:      decimal.RequireFromString("0.045"),
		AudTotal:    decimal.RequireFromString("48.95"),
	}
}

func TestBuyLogFrom(t *testing.T) {
	c := newSydneyConverter(t)
	buy := poeBuy(t)

	log, err := c.BuyLogFrom(buy)
	require.NoError(t, err)

	assert.Equal(t, "2018-01-19", log.Date().String())
	assert.Equal(t, "POE", log.Incoming.Code)
	assert.Equal(t, domain.AUD, log.Outgoing)
	assert.True(t, log.IncomingAmount.Equal(buy.Amount))
	assert.True(t, log.OutgoingAmount.Equal(buy.Total))
	assert.True(t, log.Fee.Equal(decimal.RequireFromString("1.29815534")))
	assert.True(t, log.Capital.Equal(decimal.RequireFromString("44.57")))
	assert.True(t, log.Capital.Equal(domain.ToCurrency(buy.Rate.Mul(buy.Amount))),
		"capital %s should match rate times amount", log.Capital)
}

func TestSellLogFrom(t *testing.T) {
	c := newSydneyConverter(t)
	sell := loomSell(t)

	log, err := c.SellLogFrom(sell)
	require.NoError(t, err)

	assert.Equal(t, "2023-09-20", log.Date().String())
	assert.Equal(t, domain.AUD, log.Incoming)
	assert.Equal(t, "LOOM", log.Outgoing.Code)
	assert.True(t, log.OutgoingAmount.Equal(sell.Amount))
	assert.True(t, log.Capital.Equal(decimal.RequireFromString("48.95")))
	assert.True(t, log.Capital.Equal(domain.ToCurrency(log.IncomingAmount)))
	assert.True(t, log.Rate.Equal(domain.Quo(decimal.NewFromInt(1), sell.Rate, domain.DefaultScale)))
	assert.True(t, log.Rate.GreaterThan(decimal.NewFromInt(10)))
}

func TestSellLogFromZeroRate(t *testing.T) {
	c := newSydneyConverter(t)
	sell := loomSell(t)
	sell.Rate = decimal.Zero

	_, err := c.SellLogFrom(sell)
	assert.ErrorIs(t, err, domain.ErrInvalidRate)
}

func TestTransferLogs(t *testing.T) {
	c := newSydneyConverter(t)
	transfer := TransferOperation{
		Timestamp: mustTime(t, "2021-06-30T14:30:00Z"),
		Coin:      "xlm",
		Amount:    decimal.RequireFromString("150.5"),
		Aud:       decimal.RequireFromString("61.005"),
	}

	send, err := c.SendLogFrom(transfer)
	require.NoError(t, err)
	assert.Equal(t, domain.XLM, send.Asset)
	assert.Equal(t, "2021-07-01", send.Date().String())
	assert.True(t, send.Capital.Equal(decimal.RequireFromString("61")))

	receive, err := c.ReceiveLogFrom(transfer)
	require.NoError(t, err)
	assert.Equal(t, domain.XLM, receive.Asset)
	assert.True(t, receive.Amount.Equal(decimal.RequireFromString("150.5")))
}

func TestConvertOrdersChronologically(t *testing.T) {
	c := newSydneyConverter(t)

	orders := &OrderHistory{
		Status:     "ok",
		BuyOrders:  []TradeOperation{poeBuy(t)},
		SellOrders: []TradeOperation{loomSell(t)},
	}
	transfers := &TransferHistory{
		Status: "ok",
		Receives: []TransferOperation{{
			Timestamp: mustTime(t, "2017-12-01T00:00:00Z"),
			Coin:      "LOOM",
			Amount:    decimal.RequireFromString("492.18160892"),
			Aud:       decimal.RequireFromString("20"),
		}},
	}

	ops, err := c.Convert(orders, transfers)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	assert.Equal(t, domain.OperationKindReceive, ops[0].Kind())
	assert.Equal(t, domain.OperationKindTrade, ops[1].Kind())
	assert.Equal(t, domain.OperationKindTrade, ops[2].Kind())
	assert.Equal(t, "2023-09-20", ops[2].Date().String())
}

func TestConvertReportsFailingRecord(t *testing.T) {
	c := newSydneyConverter(t)
	bad := poeBuy(t)
	bad.Amount = decimal.Zero

	_, err := c.Convert(&OrderHistory{BuyOrders: []TradeOperation{bad}}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Contains(t, err.Error(), "buy order 0")
}

func TestMarketAsset(t *testing.T) {
	assert.Equal(t, domain.AUD, marketAsset("BTC/AUD"))
	assert.Equal(t, domain.AUD, marketAsset("aud"))
}

func TestDecodeOrderHistory(t *testing.T) {
	payload := `{
		"status": "ok",
		"buyorders": [{
			"coin": "POE", "rate": 0.149904, "market": "POE/AUD", "amount": 297.32362045,
			"type": "instant", "solddate": "2018-01-18T15:14:33.780Z", "total": 44.57,
			"audfeeExGst": 1.18014122, "audGst": 0.11801412, "audtotal": 44.57
		}],
		"sellorders": []
	}`

	history, err := DecodeOrderHistory(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, history.BuyOrders, 1)

	buy := history.BuyOrders[0]
	assert.Equal(t, "POE", buy.Coin)
	assert.Equal(t, OrderTypeInstant, buy.Type)
	assert.True(t, buy.AudFeeExGst.Equal(decimal.RequireFromString("1.18014122")))
	assert.True(t, buy.SoldDate.Equal(mustTime(t, "2018-01-18T15:14:33.780Z")))
}

func TestDecodeTransferHistory(t *testing.T) {
	payload := `{"status":"ok","sendtransactions":[{"timestamp":"2021-01-02T03:04:05Z","coin":"BTC","amount":"0.5","aud":"25000.10","address":"bc1q"}],"receivetransactions":[]}`

	history, err := DecodeTransferHistory(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, history.Sends, 1)
	assert.Equal(t, "bc1q", history.Sends[0].Address)
	assert.True(t, history.Sends[0].Aud.Equal(decimal.RequireFromString("25000.1")))
}

func TestDecodeRejectsErrorStatus(t *testing.T) {
	_, err := DecodeOrderHistory(strings.NewReader(`{"status":"error","message":"invalid key"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid key")

	_, err = DecodeTransferHistory(strings.NewReader(`{`))
	assert.Error(t, err)
}
