package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"colprofile/adapters/excel"
	"colprofile/app"
	"colprofile/domain/core"
	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
	"colprofile/internal"
	"colprofile/internal/errors"
)

// Handler serves the statistics endpoints
type Handler struct {
	profiles *app.ProfileService
	bulk     *app.BulkUpdateService
	reader   *excel.DataReader
	logger   *internal.Logger
	started  time.Time
}

// NewHandler creates the HTTP handler set
func NewHandler(profiles *app.ProfileService, bulk *app.BulkUpdateService, reader *excel.DataReader, logger *internal.Logger) *Handler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if reader == nil {
		reader = excel.NewDataReader(excel.DefaultReaderConfig(), logger)
	}
	return &Handler{
		profiles: profiles,
		bulk:     bulk,
		reader:   reader,
		logger:   logger.With("api"),
		started:  time.Now(),
	}
}

// NewRouter builds a gin engine with the handler's routes
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger())
	h.Register(router)
	return router
}

// Register mounts the routes on r
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.handleHealth)
	r.POST("/data_stats", h.handleDataStats)
	r.POST("/data_stats/upload", h.handleUpload)
	r.POST("/bulk_fill", h.handleBulkFill)
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Debug("%s %s -> %d in %.2fms", c.Request.Method, c.FullPath(), c.Writer.Status(),
			float64(time.Since(start).Nanoseconds())/1e6)
	}
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
		"cache":  h.profiles.CacheStats(),
	})
}

func (h *Handler) handleDataStats(c *gin.Context) {
	var req DataStatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.InvalidInput(fmt.Sprintf("invalid request body: %v", err)))
		return
	}
	ds, err := datasetFromRows(req.Rows)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondProfile(c, ds, req.Columns)
}

func (h *Handler) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		h.fail(c, errors.InvalidInput("multipart field \"file\" is required"))
		return
	}
	format, err := excel.FormatFromPath(header.Filename)
	if err != nil {
		h.fail(c, err)
		return
	}
	file, err := header.Open()
	if err != nil {
		h.fail(c, errors.Wrap(err, "failed to open upload"))
		return
	}
	defer file.Close()

	ds, err := h.reader.Read(file, format)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondProfile(c, ds, c.QueryArray("column"))
}

func (h *Handler) respondProfile(c *gin.Context, ds *dataset.Dataset, columns []string) {
	profile, err := h.profiles.Profile(c.Request.Context(), ds, columns)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newDataStatsResponse(profile))
}

func (h *Handler) handleBulkFill(c *gin.Context) {
	var req BulkFillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.InvalidInput(fmt.Sprintf("invalid request body: %v", err)))
		return
	}
	kind, err := profiling.ParseStatKind(req.Stat)
	if err != nil {
		h.fail(c, err)
		return
	}
	ds, err := datasetFromRows(req.Rows)
	if err != nil {
		h.fail(c, err)
		return
	}

	if req.All {
		filled, total, err := h.bulk.ApplyAll(c.Request.Context(), ds, kind)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, BulkFillResponse{Rows: filled.Rows, UpdatedFields: total, Message: fillMessage(total)})
		return
	}

	result, err := h.bulk.FillRow(c.Request.Context(), ds, req.Row, kind)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, BulkFillResponse{Row: result.After, UpdatedFields: result.Updated, Message: fillMessage(result.Updated)})
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: errors.GetCode(err)})
}

func datasetFromRows(rows []dataset.Row) (*dataset.Dataset, error) {
	if len(rows) == 0 {
		return nil, errors.Wrap(core.ErrEmptyDataset, "rows are required")
	}
	return dataset.New(nil, rows), nil
}

func fillMessage(n int) string {
	if n == 1 {
		return "Updated 1 field"
	}
	return fmt.Sprintf("Updated %d fields", n)
}
