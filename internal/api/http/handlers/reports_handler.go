package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmedabdul/staff-portal/internal/api/dto"
	"github.com/ahmedabdul/staff-portal/internal/domain"
	"github.com/ahmedabdul/staff-portal/internal/ledger"
	"github.com/ahmedabdul/staff-portal/internal/service"
	apperrors "github.com/ahmedabdul/staff-portal/pkg/util/errorutil"
)

// ReportsHandler exposes report endpoints.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// List handles GET /api/reports with optional q, status and window filters.
func (h *ReportsHandler) List(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	status := domain.ReportStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))
	if status == "all" {
		status = ""
	}
	if status != "" && !status.Valid() {
		return apperrors.NewValidationError("invalid status filter", map[string]interface{}{"status": string(status)})
	}

	reports, err := h.reports.ListForViewer(store.Session(), service.ReportFilters{
		Search: c.Query("q"),
		Status: status,
		Window: ledger.ParseWindow(c.Query("window")),
	})
	if err != nil {
		return err
	}
	out := make([]dto.ReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, reportResponse(r, store.StaffName))
	}
	return data(c, http.StatusOK, out)
}

// Stats handles GET /api/reports/stats.
func (h *ReportsHandler) Stats(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	stats, err := h.reports.Stats(store.Session())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, stats)
}

// Get handles GET /api/reports/:id.
func (h *ReportsHandler) Get(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	report, err := h.reports.Get(store.Session(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, reportResponse(report, store.StaffName))
}

// Create handles multipart POST /api/reports.
func (h *ReportsHandler) Create(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	input := service.SubmitInput{
		Title:       c.FormValue("title"),
		Client:      c.FormValue("client"),
		Description: c.FormValue("description"),
		AssignedTo:  c.FormValue("assignedTo"),
	}
	var file multipart.File
	if fh, ferr := c.FormFile("file"); ferr == nil {
		if file, err = fh.Open(); err != nil {
			return fiber.NewError(http.StatusBadRequest, "unreadable file")
		}
		defer file.Close()
		input.FileName = fh.Filename
		input.ContentType = fh.Header.Get(fiber.HeaderContentType)
		input.Body = file
	}

	report, err := h.reports.Submit(c.UserContext(), store.Session(), input)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, reportResponse(report, store.StaffName))
}

// Approve handles POST /api/reports/:id/approve.
func (h *ReportsHandler) Approve(c *fiber.Ctx) error {
	return h.review(c, h.reports.Approve)
}

// Reject handles POST /api/reports/:id/reject.
func (h *ReportsHandler) Reject(c *fiber.Ctx) error {
	return h.review(c, h.reports.Reject)
}

func (h *ReportsHandler) review(c *fiber.Ctx, apply func(context.Context, domain.Session, string) (domain.Report, error)) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	report, err := apply(c.UserContext(), store.Session(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, reportResponse(report, store.StaffName))
}

// AddComment handles POST /api/reports/:id/comments.
func (h *ReportsHandler) AddComment(c *fiber.Ctx) error {
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	comment, err := h.reports.Comment(c.UserContext(), store.Session(), c.Params("id"), req.Comment)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, commentResponse(comment))
}

// Download handles GET /api/reports/:id/file.
func (h *ReportsHandler) Download(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	att, err := h.reports.Download(c.UserContext(), store.Session(), c.Params("id"))
	if err != nil {
		return err
	}
	c.Attachment(att.FileName)
	c.Set(fiber.HeaderContentType, att.ContentType)
	if att.Size > 0 {
		return c.SendStream(att.Body, int(att.Size))
	}
	defer att.Body.Close()
	body, err := io.ReadAll(att.Body)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Send(body)
}
