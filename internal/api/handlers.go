package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/scid-pd-engine/internal/domain"
	"github.com/scid-pd-engine/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AdministerRequest carries one module's responses keyed by question id.
type AdministerRequest struct {
	Responses domain.Responses `json:"responses" binding:"required"`
}

// NotesRequest replaces the clinician notes of an active assessment.
type NotesRequest struct {
	Notes string `json:"notes"`
}

// ProfileList is one page of stored profiles.
type ProfileList struct {
	Profiles []*domain.Profile `json:"profiles"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

func isUnavailable(err error) bool {
	return errors.Is(err, storage.ErrUnavailable)
}

func (s *Server) handleListModules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"modules": s.deps.Catalog.Summaries()})
}

func (s *Server) handleGetModule(c *gin.Context) {
	module, err := s.deps.Catalog.Module(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, module)
}

func (s *Server) handleStartAssessment(c *gin.Context) {
	snap, err := s.deps.Sessions.Start()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Location", "/api/v1/assessments/"+snap.ID)
	c.JSON(http.StatusCreated, snap)
}

func (s *Server) handleGetAssessment(c *gin.Context) {
	snap, err := s.deps.Sessions.Get(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleSetNotes(c *gin.Context) {
	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := s.deps.Sessions.SetNotes(c.Param("id"), req.Notes); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAdministerModule(c *gin.Context) {
	var req AdministerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := s.deps.Sessions.Administer(c.Param("id"), c.Param("module_id"), req.Responses)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCompleteAssessment(c *gin.Context) {
	profile, err := s.deps.Sessions.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleDiscardAssessment(c *gin.Context) {
	if !s.deps.Sessions.Remove(c.Param("id")) {
		s.respondError(c, domain.ErrNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListProfiles(c *gin.Context) {
	limit, err := cast.ToIntE(c.DefaultQuery("limit", cast.ToString(defaultPageSize)))
	if err != nil || limit <= 0 {
		badRequest(c, "limit must be a positive integer")
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err := cast.ToIntE(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		badRequest(c, "offset must be a non-negative integer")
		return
	}

	ctx := c.Request.Context()
	profiles, err := s.deps.Profiles.ListProfiles(ctx, limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	total, err := s.deps.Profiles.CountProfiles(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProfileList{Profiles: profiles, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	profile, err := s.deps.Profiles.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleGetReport(c *gin.Context) {
	profile, err := s.deps.Profiles.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.String(http.StatusOK, s.deps.Reports.Render(profile))
}

func (s *Server) handleDeleteProfile(c *gin.Context) {
	if err := s.deps.Profiles.DeleteProfile(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
