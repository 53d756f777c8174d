package server

import (
	"errors"
	"net/http"

	"degreeplan/advisor/internal/advisor"
	"degreeplan/advisor/internal/domain"
	"degreeplan/advisor/internal/domain/task"
	"degreeplan/advisor/internal/state"
	"degreeplan/advisor/internal/transcript"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type majorResponse struct {
	Name   string   `json:"name"`
	Slug   string   `json:"slug"`
	Tracks []string `json:"tracks,omitempty"`
}

// AdviseRequest is the body of POST /v1/recommendations and POST /v1/requests.
type AdviseRequest struct {
	StudentID      string `json:"student_id"`
	Transcript     string `json:"transcript" binding:"required"`
	EnrollmentHTML string `json:"enrollment_html"`
	Major          string `json:"major"`
}

type requestStatusResponse struct {
	*state.Status
	Report *domain.AdvisingReport `json:"report,omitempty"`
}

// GET /v1/majors
func (s *Server) listMajors(c *gin.Context) {
	defs := s.majors.Majors()
	out := make([]majorResponse, 0, len(defs))
	for _, d := range defs {
		out = append(out, majorResponse{Name: d.Name, Slug: d.Slug, Tracks: d.Tracks})
	}
	c.JSON(http.StatusOK, gin.H{"majors": out})
}

// POST /v1/recommendations
func (s *Server) recommend(c *gin.Context) {
	var req AdviseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.advisor.Advise(advisor.Request{
		StudentID:  req.StudentID,
		Transcript: req.Transcript,
		Enrollment: []byte(req.EnrollmentHTML),
		Major:      req.Major,
	})
	if err != nil {
		if errors.Is(err, transcript.ErrMalformedExport) || errors.Is(err, transcript.ErrUnreadableTranscript) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		log.Errorf("❌ Failed to advise: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build recommendation"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// POST /v1/requests
func (s *Server) submit(c *gin.Context) {
	if s.requests == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "batch advising is not configured"})
		return
	}

	var req AdviseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := s.requests.Submit(c.Request.Context(), &task.AdviseTask{
		StudentID:      req.StudentID,
		Transcript:     req.Transcript,
		EnrollmentHTML: req.EnrollmentHTML,
		Major:          req.Major,
	})
	if err != nil {
		log.Errorf("❌ Failed to queue advising request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue request"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": id})
}

// GET /v1/requests/:id
func (s *Server) lookup(c *gin.Context) {
	if s.requests == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "batch advising is not configured"})
		return
	}

	st, report, err := s.requests.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}
		log.Errorf("❌ Failed to look up request %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up request"})
		return
	}

	c.JSON(http.StatusOK, requestStatusResponse{Status: st, Report: report})
}
