package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmedabdul/staff-portal/internal/api/dto"
	"github.com/ahmedabdul/staff-portal/internal/auth"
	"github.com/ahmedabdul/staff-portal/internal/domain"
	"github.com/ahmedabdul/staff-portal/internal/routing"
	"github.com/ahmedabdul/staff-portal/internal/session"
	apperrors "github.com/ahmedabdul/staff-portal/pkg/util/errorutil"
)

func storeFrom(c *fiber.Ctx) (*session.Store, error) {
	s, ok := auth.StoreFromContext(c)
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	store, ok := s.(*session.Store)
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	return store, nil
}

func data(c *fiber.Ctx, status int, payload interface{}) error {
	return c.Status(status).JSON(fiber.Map{"data": payload})
}

func staffResponse(m domain.StaffMember) dto.StaffResponse {
	return dto.StaffResponse{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		Role:         string(m.Role),
		DateAssigned: m.DateAssigned,
	}
}

func staffList(members []domain.StaffMember) []dto.StaffResponse {
	out := make([]dto.StaffResponse, 0, len(members))
	for _, m := range members {
		out = append(out, staffResponse(m))
	}
	return out
}

func sessionResponse(s domain.Session) dto.SessionResponse {
	resp := dto.SessionResponse{
		Authenticated: s.Authenticated,
		IsAdmin:       s.IsAdmin,
		IsPartner:     s.IsPartner,
	}
	if s.Authenticated && s.CurrentUser != nil {
		u := staffResponse(*s.CurrentUser)
		resp.CurrentUser = &u
		resp.Landing = routing.Landing(s)
	}
	return resp
}

func reportResponse(r domain.Report, name func(string) string) dto.ReportResponse {
	resp := dto.ReportResponse{
		ID:          r.ID,
		Title:       r.Title,
		Client:      r.Client,
		Description: r.Description,
		Date:        r.Date,
		Status:      string(r.Status),
		Author:      r.Author,
		AuthorName:  name(r.Author),
		AssignedTo:  r.AssignedTo,
		ReviewDate:  r.ReviewDate,
		FileURL:     "/api/reports/" + r.ID + "/file",
		Comments:    make([]dto.CommentResponse, 0, len(r.Comments)),
	}
	if r.AssignedTo != "" {
		resp.AssigneeName = name(r.AssignedTo)
	}
	for _, cm := range r.Comments {
		resp.Comments = append(resp.Comments, commentResponse(cm))
	}
	return resp
}

func commentResponse(cm domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        cm.ID,
		ReportID:  cm.ReportID,
		Comment:   cm.Comment,
		Timestamp: cm.Timestamp,
		Author:    cm.Author,
	}
}
