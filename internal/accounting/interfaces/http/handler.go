package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/accountingengine/internal/accounting/application"
	"github.com/wyfcoding/accountingengine/internal/accounting/domain"
	"github.com/wyfcoding/pkg/logging"
)

// AccountingHandler exposes balance queries and calculation commands over
// HTTP for portfolio and risk consumers.
type AccountingHandler struct {
	service *application.AccountingService
}

func NewAccountingHandler(service *application.AccountingService) *AccountingHandler {
	return &AccountingHandler{service: service}
}

func (h *AccountingHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1")
	{
		api.GET("/accounts/:id", h.GetAccount)
		api.POST("/accounts/state", h.ApplyAccountState)
		api.PUT("/accounts/:id/leverage", h.SetLeverage)
		api.POST("/accounts/:id/margin/initial", h.CalculateInitialMargin)
		api.POST("/accounts/:id/margin/maintenance", h.CalculateMaintMargin)
		api.POST("/accounts/:id/commission", h.CalculateCommission)
		api.POST("/accounts/:id/pnl", h.CalculatePnLs)
	}
}

// InstrumentInput is the wire form of a venue instrument specification.
type InstrumentInput struct {
	ID            string `json:"id" binding:"required"`
	BaseCurrency  string `json:"base_currency"`
	QuoteCurrency string `json:"quote_currency" binding:"required"`
	Multiplier    string `json:"multiplier"`
	IsInverse     bool   `json:"is_inverse"`
	MarginInit    string `json:"margin_init"`
	MarginMaint   string `json:"margin_maint"`
	MakerFee      string `json:"maker_fee"`
	TakerFee      string `json:"taker_fee"`
}

func (in *InstrumentInput) toDomain() (domain.Instrument, error) {
	quote, err := domain.CurrencyFromCode(in.QuoteCurrency)
	if err != nil {
		return domain.Instrument{}, err
	}

	var base domain.Currency
	if in.BaseCurrency != "" {
		base, err = domain.CurrencyFromCode(in.BaseCurrency)
		if err != nil {
			return domain.Instrument{}, err
		}
	}

	multiplier := decimal.NewFromInt(1)
	if in.Multiplier != "" {
		multiplier, err = decimal.NewFromString(in.Multiplier)
		if err != nil {
			return domain.Instrument{}, err
		}
	}

	parseRate := func(s string) (decimal.Decimal, error) {
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(s)
	}
	marginInit, err := parseRate(in.MarginInit)
	if err != nil {
		return domain.Instrument{}, err
	}
	marginMaint, err := parseRate(in.MarginMaint)
	if err != nil {
		return domain.Instrument{}, err
	}
	makerFee, err := parseRate(in.MakerFee)
	if err != nil {
		return domain.Instrument{}, err
	}
	takerFee, err := parseRate(in.TakerFee)
	if err != nil {
		return domain.Instrument{}, err
	}

	return domain.Instrument{
		ID:            in.ID,
		BaseCurrency:  base,
		QuoteCurrency: quote,
		Multiplier:    multiplier,
		IsInverse:     in.IsInverse,
		MarginInit:    marginInit,
		MarginMaint:   marginMaint,
		MakerFee:      makerFee,
		TakerFee:      takerFee,
	}, nil
}

func (h *AccountingHandler) GetAccount(c *gin.Context) {
	account, err := h.service.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountingHandler) ApplyAccountState(c *gin.Context) {
	var input application.AccountStateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := input.ToDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ApplyAccountState(c.Request.Context(), event); err != nil {
		logging.Error(c.Request.Context(), "Failed to apply account state",
			"account_id", input.AccountID, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "applied"})
}

type setLeverageRequest struct {
	InstrumentID string `json:"instrument_id" binding:"required"`
	Leverage     string `json:"leverage" binding:"required"`
}

func (h *AccountingHandler) SetLeverage(c *gin.Context) {
	var req setLeverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	leverage, err := decimal.NewFromString(req.Leverage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid leverage"})
		return
	}

	if err := h.service.SetLeverage(c.Request.Context(), c.Param("id"), req.InstrumentID, leverage); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type initialMarginRequest struct {
	Instrument     InstrumentInput `json:"instrument" binding:"required"`
	Quantity       string          `json:"quantity" binding:"required"`
	Price          string          `json:"price" binding:"required"`
	InverseAsQuote bool            `json:"inverse_as_quote"`
}

func (h *AccountingHandler) CalculateInitialMargin(c *gin.Context) {
	var req initialMarginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instrument, quantity, price, ok := h.parseCalcInputs(c, req.Instrument, req.Quantity, req.Price)
	if !ok {
		return
	}

	margin, err := h.service.CalculateInitialMargin(
		c.Request.Context(), c.Param("id"), instrument, quantity, price, req.InverseAsQuote,
	)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, margin)
}

type maintMarginRequest struct {
	Instrument InstrumentInput `json:"instrument" binding:"required"`
	Side       string          `json:"side" binding:"required"`
	Quantity   string          `json:"quantity" binding:"required"`
	Last       string          `json:"last" binding:"required"`
}

func (h *AccountingHandler) CalculateMaintMargin(c *gin.Context) {
	var req maintMarginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instrument, quantity, last, ok := h.parseCalcInputs(c, req.Instrument, req.Quantity, req.Last)
	if !ok {
		return
	}

	margin, err := h.service.CalculateMaintMargin(
		c.Request.Context(), c.Param("id"), instrument,
		domain.PositionSide(req.Side), quantity, last,
	)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, margin)
}

type commissionRequest struct {
	Instrument     InstrumentInput `json:"instrument" binding:"required"`
	LastQty        string          `json:"last_qty" binding:"required"`
	LastPx         string          `json:"last_px" binding:"required"`
	LiquiditySide  string          `json:"liquidity_side" binding:"required"`
	InverseAsQuote bool            `json:"inverse_as_quote"`
}

func (h *AccountingHandler) CalculateCommission(c *gin.Context) {
	var req commissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instrument, lastQty, lastPx, ok := h.parseCalcInputs(c, req.Instrument, req.LastQty, req.LastPx)
	if !ok {
		return
	}

	commission, err := h.service.CalculateCommission(
		c.Request.Context(), c.Param("id"), instrument,
		lastQty, lastPx, domain.LiquiditySide(req.LiquiditySide), req.InverseAsQuote,
	)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, commission)
}

type pnlRequest struct {
	Instrument InstrumentInput `json:"instrument" binding:"required"`
	Side       string          `json:"side" binding:"required"`
	LastQty    string          `json:"last_qty" binding:"required"`
	LastPx     string          `json:"last_px" binding:"required"`
}

func (h *AccountingHandler) CalculatePnLs(c *gin.Context) {
	var req pnlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instrument, lastQty, lastPx, ok := h.parseCalcInputs(c, req.Instrument, req.LastQty, req.LastPx)
	if !ok {
		return
	}

	fill := domain.Fill{
		InstrumentID: instrument.ID,
		Side:         domain.OrderSide(req.Side),
		LastQty:      lastQty,
		LastPx:       lastPx,
	}
	position := domain.Position{
		InstrumentID: instrument.ID,
		Quantity:     lastQty,
		AvgPxOpen:    lastPx,
	}

	pnls, err := h.service.CalculatePnLs(c.Request.Context(), c.Param("id"), instrument, position, fill)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pnls": pnls})
}

func (h *AccountingHandler) parseCalcInputs(
	c *gin.Context,
	instrumentInput InstrumentInput,
	qtyStr, pxStr string,
) (domain.Instrument, decimal.Decimal, decimal.Decimal, bool) {
	instrument, err := instrumentInput.toDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return domain.Instrument{}, decimal.Zero, decimal.Zero, false
	}
	qty, err := decimal.NewFromString(qtyStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quantity"})
		return domain.Instrument{}, decimal.Zero, decimal.Zero, false
	}
	px, err := decimal.NewFromString(pxStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return domain.Instrument{}, decimal.Zero, decimal.Zero, false
	}
	return instrument, qty, px, true
}
