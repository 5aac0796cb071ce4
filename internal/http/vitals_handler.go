package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"vitalwatch/internal/dashboard"
	"vitalwatch/internal/export"
	"vitalwatch/internal/models"

	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HistoryRefresher 按需重新拉取历史日志（由 dashboard.Adapter 实现）
type HistoryRefresher interface {
	RefreshHistory(ctx context.Context) ([]models.HistoricalRecord, error)
}

// VitalsHandler 仪表盘视图状态的只读接口 + 历史刷新/导出
type VitalsHandler struct {
	state   *dashboard.State
	history HistoryRefresher
	now     func() time.Time
	logger  *zap.Logger
}

func NewVitalsHandler(state *dashboard.State, history HistoryRefresher, logger *zap.Logger) *VitalsHandler {
	return &VitalsHandler{state: state, history: history, now: time.Now, logger: logger}
}

// LogsResponse 历史日志列表
type LogsResponse struct {
	Count     int                       `json:"count"`
	FetchedAt int64                     `json:"fetched_at,omitempty"`
	Items     []models.HistoricalRecord `json:"items"`
}

// GET /api/v1/vitals/current
func (h *VitalsHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.state.Current()))
}

// GET /api/v1/vitals/chart
func (h *VitalsHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.state.Chart()))
}

// GET /api/v1/vitals/logs
// params:
// - refresh? bool  先重新拉取再返回
func (h *VitalsHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	if parseBool(r.URL.Query().Get("refresh"), false) {
		if _, err := h.history.RefreshHistory(r.Context()); err != nil {
			// 拉取失败时仍返回上一次的历史
			h.logger.Warn("RefreshHistory failed, serving previous history", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, Ok(h.logsResponse()))
}

// POST /api/v1/vitals/logs/refresh
func (h *VitalsHandler) RefreshLogs(w http.ResponseWriter, r *http.Request) {
	if _, err := h.history.RefreshHistory(r.Context()); err != nil {
		h.logger.Error("RefreshHistory failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to refresh logs: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(h.logsResponse()))
}

// GET /api/v1/vitals/logs/export.csv
func (h *VitalsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	data, ok, err := export.CSV(h.state.History())
	h.writeExport(w, "text/csv; charset=utf-8", "csv", data, ok, err)
}

// GET /api/v1/vitals/logs/export.xlsx
func (h *VitalsHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, ok, err := export.XLSX(h.state.History())
	h.writeExport(w, xlsxContentType, "xlsx", data, ok, err)
}

func (h *VitalsHandler) writeExport(w http.ResponseWriter, contentType, ext string, data []byte, ok bool, err error) {
	if err != nil {
		h.logger.Error("Export failed", zap.String("format", ext), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to generate export: %v", err)))
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeAttachment(w, contentType, export.Filename(h.now(), ext), data)
}

func (h *VitalsHandler) logsResponse() LogsResponse {
	items := h.state.History()
	if items == nil {
		items = []models.HistoricalRecord{}
	}
	resp := LogsResponse{Count: len(items), Items: items}
	if at := h.state.HistoryFetchedAt(); !at.IsZero() {
		resp.FetchedAt = at.UnixMilli()
	}
	return resp
}
