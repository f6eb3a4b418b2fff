package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/server/publish"
	"github.com/iudanet/taskkeeper/pkg/api"
)

// CalendarExporter строит .ics по задачам владельца
type CalendarExporter interface {
	Export(ctx context.Context, ownerID string, filter models.TaskFilter) ([]byte, error)
}

// CalendarPublisher выкладывает календарь и возвращает ссылку на него
type CalendarPublisher interface {
	Publish(ctx context.Context, ownerID string, calendar []byte) (*publish.Link, error)
}

// ExportHandler отдает задачи в формате iCalendar
type ExportHandler struct {
	responder
	exporter  CalendarExporter
	publisher CalendarPublisher
}

// NewExportHandler создает handler экспорта. publisher может быть nil,
// тогда PublishICS не регистрируется.
func NewExportHandler(logger *slog.Logger, exporter CalendarExporter, publisher CalendarPublisher, timeout time.Duration) *ExportHandler {
	return &ExportHandler{
		responder: responder{logger: logger, timeout: timeout},
		exporter:  exporter,
		publisher: publisher,
	}
}

// CanPublish сообщает, настроена ли публикация ссылок
func (h *ExportHandler) CanPublish() bool {
	return h.publisher != nil
}

// ICS обрабатывает GET /api/tasks/export/ics
func (h *ExportHandler) ICS(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	data, err := h.exporter.Export(ctx, ownerID, filterFromQuery(r.URL.Query()))
	if err != nil {
		h.writeServiceError(ctx, w, err, "export calendar")
		return
	}

	w.Header().Set("Content-Type", publish.CalendarContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.ics"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(ctx, "failed to write calendar", slog.Any("error", err))
	}
}

// PublishICS обрабатывает POST /api/tasks/export/ics/link
func (h *ExportHandler) PublishICS(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	data, err := h.exporter.Export(ctx, ownerID, filterFromQuery(r.URL.Query()))
	if err != nil {
		h.writeServiceError(ctx, w, err, "export calendar")
		return
	}

	link, err := h.publisher.Publish(ctx, ownerID, data)
	if err != nil {
		h.writeServiceError(ctx, w, err, "publish calendar")
		return
	}

	h.logger.InfoContext(ctx, "calendar published", slog.String("user_id", ownerID))
	h.sendJSON(w, api.CalendarLinkResponse{URL: link.URL, ExpiresAt: link.ExpiresAt}, http.StatusCreated)
}
