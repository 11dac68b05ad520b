// internal/api/handlers.go

// Package api exposes the pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	commonerrors "candidate-pipeline/internal/common/errors"
	"candidate-pipeline/internal/common/logger"
	"candidate-pipeline/internal/intake"
	"candidate-pipeline/internal/models"
	"candidate-pipeline/internal/search"
)

// maxResumeBytes bounds uploaded resume documents.
const maxResumeBytes = 10 << 20

// IntakeService accepts submissions.
type IntakeService interface {
	Submit(ctx context.Context, sub intake.Submission) (*intake.Result, error)
}

// EvaluationService triggers runs and deletes single results.
type EvaluationService interface {
	Evaluate(ctx context.Context, roleID string, applicantIDs []string) ([]models.EvaluationResult, error)
	DeleteResult(ctx context.Context, applicantID string) (int, error)
}

// AssessmentReader serves the assessment query.
type AssessmentReader interface {
	GetByApplicant(ctx context.Context, applicantID string) (*models.Assessment, error)
}

// NotificationReader serves the notification audit log query.
type NotificationReader interface {
	ListByApplicant(ctx context.Context, applicantID string) ([]models.NotificationRecord, error)
}

// ApplicantReader serves applicant lookups and lifecycle updates.
type ApplicantReader interface {
	Get(ctx context.Context, id string) (*models.Applicant, error)
	UpdateStatus(ctx context.Context, id, status string) (bool, error)
}

// RoleReader serves role profile lookups.
type RoleReader interface {
	Get(ctx context.Context, id string) (*models.RoleProfile, error)
}

// Searcher serves the staff applicant search; nil when search is disabled.
type Searcher interface {
	Search(ctx context.Context, query string, size int) ([]search.Hit, error)
}

// Handler holds the services behind the HTTP surface.
type Handler struct {
	intake        IntakeService
	evaluations   EvaluationService
	assessments   AssessmentReader
	notifications NotificationReader
	applicants    ApplicantReader
	roles         RoleReader
	searcher      Searcher
	logger        logger.Logger
}

func NewHandler(
	intakeSvc IntakeService,
	evaluations EvaluationService,
	assessments AssessmentReader,
	notifications NotificationReader,
	applicants ApplicantReader,
	roles RoleReader,
	searcher Searcher,
	log logger.Logger,
) *Handler {
	return &Handler{
		intake:        intakeSvc,
		evaluations:   evaluations,
		assessments:   assessments,
		notifications: notifications,
		applicants:    applicants,
		roles:         roles,
		searcher:      searcher,
		logger:        log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// SubmitApplication handles POST /applications: multipart identity fields
// plus an optional resume document.
func (h *Handler) SubmitApplication(c *gin.Context) {
	sub := intake.Submission{
		Name:       c.PostForm("name"),
		Email:      c.PostForm("email"),
		Phone:      c.PostForm("phone"),
		ProfileURL: c.PostForm("profile_url"),
		RoleID:     c.PostForm("role_id"),
	}

	if fileHeader, err := c.FormFile("resume"); err == nil {
		if fileHeader.Size > maxResumeBytes {
			h.writeError(c, commonerrors.NewValidationError("resume document exceeds size limit"))
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			h.writeError(c, commonerrors.NewValidationError("resume document could not be read"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxResumeBytes+1))
		if err != nil {
			h.writeError(c, commonerrors.NewValidationError("resume document could not be read"))
			return
		}
		sub.ResumeFilename = fileHeader.Filename
		sub.ResumeData = data
	}

	result, err := h.intake.Submit(c.Request.Context(), sub)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"applicationId": result.ApplicationID,
		"status":        result.Status,
	})
}

// GetAssessment handles GET /applicants/:id/assessment.
func (h *Handler) GetAssessment(c *gin.Context) {
	applicantID := strings.TrimSpace(c.Param("id"))

	assessment, err := h.assessments.GetByApplicant(c.Request.Context(), applicantID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if assessment == nil {
		c.JSON(http.StatusNotFound, gin.H{"kind": "NotFound", "message": "no assessment for applicant"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     assessment.Status,
		"overall":    assessment.Overall,
		"skills":     assessment.Skills,
		"experience": assessment.Experience,
		"education":  assessment.Education,
		"insights":   assessment.Insights,
	})
}

// RunEvaluation handles POST /evaluations.
func (h *Handler) RunEvaluation(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.writeError(c, commonerrors.NewValidationError("request body could not be read"))
		return
	}
	if err := validateAgainst(evaluationRequestLoader, body); err != nil {
		h.writeError(c, err)
		return
	}

	var req struct {
		RoleID       string   `json:"roleId"`
		ApplicantIDs []string `json:"applicantIds"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(c, commonerrors.NewValidationError("request body is not valid JSON"))
		return
	}

	results, err := h.evaluations.Evaluate(c.Request.Context(), req.RoleID, req.ApplicantIDs)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"roleId":  req.RoleID,
		"results": results,
	})
}

// DeleteEvaluationResult handles DELETE /evaluations/:applicantId.
func (h *Handler) DeleteEvaluationResult(c *gin.Context) {
	applicantID := strings.TrimSpace(c.Param("applicantId"))

	remaining, err := h.evaluations.DeleteResult(c.Request.Context(), applicantID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"remaining": remaining})
}

// ListNotifications handles GET /applicants/:id/notifications.
func (h *Handler) ListNotifications(c *gin.Context) {
	applicantID := strings.TrimSpace(c.Param("id"))

	records, err := h.notifications.ListByApplicant(c.Request.Context(), applicantID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, r := range records {
		out = append(out, gin.H{
			"subject":   r.Subject,
			"channel":   r.Channel,
			"outcome":   r.Outcome,
			"timestamp": r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}

// GetRole handles GET /roles/:id.
func (h *Handler) GetRole(c *gin.Context) {
	roleID := strings.TrimSpace(c.Param("id"))

	role, err := h.roles.Get(c.Request.Context(), roleID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if role == nil {
		h.writeError(c, commonerrors.NewRoleNotFoundError(roleID))
		return
	}
	c.JSON(http.StatusOK, role)
}

// UpdateApplicantStatus handles PATCH /applicants/:id/status.
func (h *Handler) UpdateApplicantStatus(c *gin.Context) {
	applicantID := strings.TrimSpace(c.Param("id"))

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.writeError(c, commonerrors.NewValidationError("request body could not be read"))
		return
	}
	if err := validateAgainst(statusUpdateLoader, body); err != nil {
		h.writeError(c, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(c, commonerrors.NewValidationError("request body is not valid JSON"))
		return
	}

	updated, err := h.applicants.UpdateStatus(c.Request.Context(), applicantID, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"kind": "NotFound", "message": "applicant not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": applicantID, "status": req.Status})
}

// SearchApplicants handles GET /applicants/search?q=.
func (h *Handler) SearchApplicants(c *gin.Context) {
	if h.searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"kind": "SearchDisabled", "message": "applicant search is not enabled"})
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		h.writeError(c, commonerrors.NewValidationError("query parameter q is required"))
		return
	}

	size := 20
	if s := c.Query("size"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			size = parsed
		}
	}

	hits, err := h.searcher.Search(c.Request.Context(), query, size)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": hits})
}

// writeError maps the error taxonomy onto HTTP statuses. The body carries the
// kind so clients can distinguish validation failures from conflicts.
func (h *Handler) writeError(c *gin.Context, err error) {
	var se *commonerrors.StandardError
	if !errors.As(err, &se) {
		h.logger.WithError(err).Error("unhandled error on request", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"kind": "Internal", "message": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch se.Code {
	case commonerrors.ErrCodeValidation:
		status = http.StatusBadRequest
	case commonerrors.ErrCodeDuplicateApplication:
		status = http.StatusConflict
	case commonerrors.ErrCodeEvaluationNotFound, commonerrors.ErrCodeRoleNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error("request failed", map[string]interface{}{
			"path": c.Request.URL.Path,
			"code": string(se.Code),
		})
	}

	msg := se.Message
	if se.Details != "" && status != http.StatusInternalServerError {
		msg = se.Message + ": " + se.Details
	}
	c.JSON(status, gin.H{"kind": string(se.Code), "message": msg})
}
