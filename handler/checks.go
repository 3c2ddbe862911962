package handler

import (
	"errors"
	"net/http"

	"github.com/chungty/companylens/pkg/logger"
	"github.com/chungty/companylens/service"
	"github.com/gin-gonic/gin"
)

// ChecksHandler exposes the smoke-test suite and the workspace schema dump
// over the debug API.
type ChecksHandler struct {
	runner     *service.CheckRunner
	workspace  *service.WorkspaceClient
	store      *service.ReportStore
	archive    *service.ArchiveService // nil when archiving is disabled
	databaseID string
}

func NewChecksHandler(runner *service.CheckRunner, workspace *service.WorkspaceClient, store *service.ReportStore, archive *service.ArchiveService, databaseID string) *ChecksHandler {
	return &ChecksHandler{
		runner:     runner,
		workspace:  workspace,
		store:      store,
		archive:    archive,
		databaseID: databaseID,
	}
}

// Run executes the smoke suite, stores the report and, when an archive is
// configured, uploads it.
func (h *ChecksHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()

	report := h.runner.Run(ctx)

	if h.archive != nil {
		objectName, err := h.archive.StoreReport(ctx, report)
		if err != nil {
			// Archiving is best effort; the report is still returned.
			logger.Warn(ctx, "failed to archive report", "run_id", report.ID, "error", err)
		} else if url, err := h.archive.ReportURL(ctx, objectName); err == nil {
			report.ArchiveURL = url
		}
	}

	h.store.Save(report)

	status := http.StatusOK
	if !report.Passed {
		status = http.StatusBadGateway
	}
	c.JSON(status, report)
}

// List returns stored reports, newest first
func (h *ChecksHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reports": h.store.List()})
}

// Get returns one stored report by run id
func (h *ChecksHandler) Get(c *gin.Context) {
	report := h.store.Get(c.Param("id"))
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Schema dumps the configured workspace database schema
func (h *ChecksHandler) Schema(c *gin.Context) {
	schema, err := h.workspace.GetDatabaseSchema(c.Request.Context(), h.databaseID)
	if err != nil {
		var upstreamErr *service.UpstreamError
		if errors.As(err, &upstreamErr) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":  "workspace vendor unavailable",
				"status": upstreamErr.Status,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"schema":      schema,
		"type_counts": schema.TypeCounts(),
	})
}
