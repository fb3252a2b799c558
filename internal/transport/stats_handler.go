// Package transport serves stored block and day statistics over HTTP.
package transport

import (
	"math"
	"net/http"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	defaultBlocksLimit = 1000
	maxBlocksLimit     = 10_000
)

type blockJSON struct {
	Height          uint64  `json:"height"`
	Timestamp       int64   `json:"timestamp"`
	NumTransactions uint64  `json:"num_transactions"`
	Size            uint64  `json:"size"`
	MintedValue     uint64  `json:"minted_value"`
	OutputValue     uint64  `json:"output_value"`
	Difficulty      float64 `json:"difficulty"`
}

type cursorJSON struct {
	FromTS     int64  `json:"from_ts"`
	FromHeight uint64 `json:"from_height"`
}

type blocksResponse struct {
	Blocks []blockJSON `json:"blocks"`
	Next   *cursorJSON `json:"next,omitempty"`
}

type dayJSON struct {
	Date            uint32  `json:"date"`
	NumTransactions uint64  `json:"num_transactions"`
	Size            uint64  `json:"size"`
	MintedValue     uint64  `json:"minted_value"`
	OutputValue     uint64  `json:"output_value"`
	PriceUSD        int64   `json:"priceusd"`
	Difficulty      float64 `json:"difficulty"`
}

type daysResponse struct {
	Days []dayJSON `json:"days"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// StatsHandler answers read-only queries against the statistics store.
type StatsHandler struct {
	repo   Repository
	logger *zap.Logger
}

// NewStatsHandler returns a StatsHandler instance.
func NewStatsHandler(repo Repository, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{repo: repo, logger: logger.Named("statsHandler")}
}

// Register mounts the handler routes on e.
func (h *StatsHandler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/api/blocks", h.Blocks)
	e.GET("/api/days", h.Days)
}

// Health reports server health.
func (h *StatsHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// Blocks returns block statistics ordered by timestamp then height.
// Query: from_ts, from_height, to_ts (inclusive), limit.
func (h *StatsHandler) Blocks(c echo.Context) error {
	var (
		fromTS     int64
		fromHeight uint64
		toTS       int64 = math.MaxInt64
		limit            = defaultBlocksLimit
	)
	err := echo.QueryParamsBinder(c).
		Int64("from_ts", &fromTS).
		Uint64("from_height", &fromHeight).
		Int64("to_ts", &toTS).
		Int("limit", &limit).
		BindError()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	if limit <= 0 || limit > maxBlocksLimit {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be between 1 and 10000"})
	}

	cursor := model.BlockCursor{Timestamp: fromTS, Height: fromHeight}
	blocks, err := h.repo.BlockStatsPage(c.Request().Context(), cursor, toTS, limit)
	if err != nil {
		h.logger.Error("BlockStatsPage", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to read blocks"})
	}

	resp := blocksResponse{Blocks: make([]blockJSON, 0, len(blocks))}
	for _, b := range blocks {
		resp.Blocks = append(resp.Blocks, blockJSON{
			Height:          b.Height,
			Timestamp:       b.Timestamp.Unix(),
			NumTransactions: b.NumTransactions,
			Size:            b.Size,
			MintedValue:     b.MintedValue,
			OutputValue:     b.OutputValue,
			Difficulty:      b.Difficulty,
		})
	}
	if len(blocks) == limit {
		next := cursor.Next(blocks[len(blocks)-1])
		resp.Next = &cursorJSON{FromTS: next.Timestamp, FromHeight: next.Height}
	}
	return c.JSON(http.StatusOK, resp)
}

// Days returns day statistics between the from and to dates (YYYY-MM-DD, inclusive).
func (h *StatsHandler) Days(c echo.Context) error {
	from, to := model.Date(0), model.Date(math.MaxUint32)
	for name, dst := range map[string]*model.Date{"from": &from, "to": &to} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		date, err := model.ParseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: name + ": " + err.Error()})
		}
		*dst = date
	}

	days, err := h.repo.DayStats(c.Request().Context(), from, to)
	if err != nil {
		h.logger.Error("DayStats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to read days"})
	}

	resp := daysResponse{Days: make([]dayJSON, 0, len(days))}
	for _, d := range days {
		resp.Days = append(resp.Days, dayJSON{
			Date:            uint32(d.Date),
			NumTransactions: d.NumTransactions,
			Size:            d.Size,
			MintedValue:     d.MintedValue,
			OutputValue:     d.OutputValue,
			PriceUSD:        d.PriceUSD,
			Difficulty:      d.Difficulty,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
