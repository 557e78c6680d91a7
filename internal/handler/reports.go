package handler

import (
	"net/http"

	"github.com/DataGusIT/EstacaoDoces/internal/dto"
	"github.com/DataGusIT/EstacaoDoces/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports service.ReportService
}

func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Period returns the aggregated summary for a date range.
func (h *ReportHandler) Period(c *gin.Context) {
	var filter dto.PeriodFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.reports.PeriodSummary(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
