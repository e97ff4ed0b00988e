package coinspot

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// OrderType is the Coinspot order kind. It does not affect tax treatment.
type OrderType string

const (
	OrderTypeInstant    OrderType = "instant"
	OrderTypeMarket     OrderType = "market"
	OrderTypeLimit      OrderType = "limit"
	OrderTypeTakeProfit OrderType = "take profit"
	OrderTypeStopLoss   OrderType = "stop loss"
)

// TradeOperation is one completed order.
type TradeOperation struct {
	Coin   string          `json:"coin"`
	Rate   decimal.Decimal `json:"rate"`
	Market string          `json:"market"`
	// Amount is the coin quantity.
	Amount   decimal.Decimal `json:"amount"`
	Type     OrderType       `json:"type"`
	SoldDate time.Time       `json:"solddate"`
	// Total is the market-currency quantity.
	Total       decimal.Decimal `json:"total"`
	AudFeeExGst decimal.Decimal `json:"audfeeExGst"`
	AudGst      decimal.Decimal `json:"audGst"`
	AudTotal    decimal.Decimal `json:"audtotal"`
}

// OrderHistory is the completed orders response.
type OrderHistory struct {
	Status     string           `json:"status"`
	Message    string           `json:"message,omitempty"`
	BuyOrders  []TradeOperation `json:"buyorders"`
	SellOrders []TradeOperation `json:"sellorders"`
}

// TransferOperation is one coin send or receive.
type TransferOperation struct {
	Timestamp time.Time       `json:"timestamp"`
	Coin      string          `json:"coin"`
	Amount    decimal.Decimal `json:"amount"`
	// Aud is the AUD value at the time of transfer.
	Aud     decimal.Decimal `json:"aud"`
	Address string          `json:"address,omitempty"`
}

// TransferHistory is the send/receive history response.
type TransferHistory struct {
	Status   string              `json:"status"`
	Message  string              `json:"message,omitempty"`
	Sends    []TransferOperation `json:"sendtransactions"`
	Receives []TransferOperation `json:"receivetransactions"`
}

// DecodeOrderHistory reads an order history response.
func DecodeOrderHistory(r io.Reader) (*OrderHistory, error) {
	var h OrderHistory
	if err := json.NewDecoder(r).Decode(&h); err != nil {
		return nil, fmt.Errorf("decode order history: %w", err)
	}
	if err := checkStatus(h.Status, h.Message); err != nil {
		return nil, err
	}
	return &h, nil
}

// DecodeTransferHistory reads a send/receive history response.
func DecodeTransferHistory(r io.Reader) (*TransferHistory, error) {
	var h TransferHistory
	if err := json.NewDecoder(r).Decode(&h); err != nil {
		return nil, fmt.Errorf("decode transfer history: %w", err)
	}
	if err := checkStatus(h.Status, h.Message); err != nil {
		return nil, err
	}
	return &h, nil
}

func checkStatus(status, message string) error {
	if status != "" && status != "ok" {
		return fmt.Errorf("coinspot status %q: %s", status, message)
	}
	return nil
}
