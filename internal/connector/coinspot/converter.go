// Package coinspot converts Coinspot order and transfer history into ledger operations.
package coinspot

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cryptotax/internal/domain"
)

// DefaultTimezone is the zone Coinspot timestamps are converted to.
const DefaultTimezone = "Australia/Sydney"

// Converter maps Coinspot records to operations in a fixed zone.
type Converter struct {
	loc *time.Location
}

// NewConverter creates a Converter. A nil loc means Australia/Sydney.
func NewConverter(loc *time.Location) (*Converter, error) {
	if loc == nil {
		var err error
		if loc, err = time.LoadLocation(DefaultTimezone); err != nil {
			return nil, fmt.Errorf("load %s: %w", DefaultTimezone, err)
		}
	}
	return &Converter{loc: loc}, nil
}

// BuyLogFrom converts a buy order: the coin comes in, the market currency goes out.
func (c *Converter) BuyLogFrom(op TradeOperation) (domain.TradeLog, error) {
	return domain.NewTradeLog(
		op.SoldDate.In(c.loc),
		domain.ResolveAsset(op.Coin), op.Amount,
		marketAsset(op.Market), op.Total,
		op.Rate,
		op.AudFeeExGst.Add(op.AudGst),
		domain.ToCurrency(op.AudTotal),
	)
}

// SellLogFrom converts a sell order. The market currency comes in, so the
// rate is inverted to stay incoming per outgoing.
func (c *Converter) SellLogFrom(op TradeOperation) (domain.TradeLog, error) {
	return domain.NewTradeLog(
		op.SoldDate.In(c.loc),
		marketAsset(op.Market), op.Total,
		domain.ResolveAsset(op.Coin), op.Amount,
		domain.Quo(decimal.NewFromInt(1), op.Rate, domain.DefaultScale),
		op.AudFeeExGst.Add(op.AudGst),
		domain.ToCurrency(op.AudTotal),
	)
}

// SendLogFrom converts an outbound transfer.
func (c *Converter) SendLogFrom(op TransferOperation) (domain.SendLog, error) {
	return domain.NewSendLog(op.Timestamp.In(c.loc), domain.ResolveAsset(op.Coin), op.Amount, domain.ToCurrency(op.Aud))
}

// ReceiveLogFrom converts an inbound transfer.
func (c *Converter) ReceiveLogFrom(op TransferOperation) (domain.ReceiveLog, error) {
	return domain.NewReceiveLog(op.Timestamp.In(c.loc), domain.ResolveAsset(op.Coin), op.Amount, domain.ToCurrency(op.Aud))
}

// Convert merges both histories into one stream ordered by timestamp.
// Records with equal timestamps keep the order buys, sells, sends, receives.
func (c *Converter) Convert(orders *OrderHistory, transfers *TransferHistory) ([]domain.Operation, error) {
	var ops []domain.Operation

	if orders != nil {
		for i, o := range orders.BuyOrders {
			op, err := c.BuyLogFrom(o)
			if err != nil {
				return nil, fmt.Errorf("buy order %d (%s %s): %w", i, o.Coin, o.SoldDate.Format(time.RFC3339), err)
			}
			ops = append(ops, op)
		}
		for i, o := range orders.SellOrders {
			op, err := c.SellLogFrom(o)
			if err != nil {
				return nil, fmt.Errorf("sell order %d (%s %s): %w", i, o.Coin, o.SoldDate.Format(time.RFC3339), err)
			}
			ops = append(ops, op)
		}
	}

	if transfers != nil {
		for i, t := range transfers.Sends {
			op, err := c.SendLogFrom(t)
			if err != nil {
				return nil, fmt.Errorf("send %d (%s %s): %w", i, t.Coin, t.Timestamp.Format(time.RFC3339), err)
			}
			ops = append(ops, op)
		}
		for i, t := range transfers.Receives {
			op, err := c.ReceiveLogFrom(t)
			if err != nil {
				return nil, fmt.Errorf("receive %d (%s %s): %w", i, t.Coin, t.Timestamp.Format(time.RFC3339), err)
			}
			ops = append(ops, op)
		}
	}

	slices.SortStableFunc(ops, func(a, b domain.Operation) int {
		return a.Timestamp().Compare(b.Timestamp())
	})

	return ops, nil
}

// marketAsset returns the quote side of a market such as "POE/AUD".
// A market without a slash is taken as the quote currency itself.
func marketAsset(market string) *domain.AssetType {
	if i := strings.LastIndexByte(market, '/'); i >= 0 {
		return domain.ResolveAsset(market[i+1:])
	}
	return domain.ResolveAsset(market)
}
