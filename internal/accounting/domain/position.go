package domain

import (
	"github.com/shopspring/decimal"
)

// Position is the read-only snapshot supplied by the position service for
// realized pnl calculation against an open position.
type Position struct {
	ID           string          `json:"id"`
	InstrumentID string          `json:"instrument_id"`
	Side         PositionSide    `json:"side"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgPxOpen    decimal.Decimal `json:"avg_px_open"`
}

// Fill carries the executed leg of an order as reported by the venue.
type Fill struct {
	TradeID      string          `json:"trade_id"`
	InstrumentID string          `json:"instrument_id"`
	Side         OrderSide       `json:"side"`
	LastQty      decimal.Decimal `json:"last_qty"`
	LastPx       decimal.Decimal `json:"last_px"`
	Liquidity    LiquiditySide   `json:"liquidity"`
}
