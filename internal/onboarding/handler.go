package onboarding

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/users"
)

// Handler exposes the onboarding workflows over HTTP
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	onboarding := rg.Group("/onboarding")
	{
		clients := onboarding.Group("/clients")
		{
			clients.POST("/:id/initialize", h.InitializeClient)
			clients.GET("/:id", h.GetClient)
			clients.PUT("/:id/steps/:step", h.UpdateClientStep)
			clients.POST("/:id/recommendations/services", h.RegenerateServiceRecommendations)
			clients.POST("/:id/recommendations/consultants", h.RegenerateConsultantRecommendations)
			clients.PUT("/:id/recommendations/consultants/:consultantId", h.UpdateRecommendationStatus)
			clients.POST("/:id/sessions", h.ScheduleSession)
			clients.POST("/:id/complete", h.CompleteClient)
			clients.PUT("/:id/assign", h.AssignClient)
			clients.POST("/:id/reminders", h.AddClientReminder)
		}

		consultants := onboarding.Group("/consultants")
		{
			consultants.POST("/:id/initialize", h.InitializeConsultant)
			consultants.GET("/:id", h.GetConsultant)
			consultants.PUT("/:id/steps/:step", h.UpdateConsultantStep)
			consultants.PUT("/:id/verification/:kind", h.UpdateVerification)
			consultants.POST("/:id/contracts/:type/sign", h.SignContract)
			consultants.POST("/:id/training/:type/complete", h.CompleteTraining)
			consultants.POST("/:id/submit-review", h.SubmitForReview)
			consultants.POST("/:id/review", h.Review)
			consultants.POST("/:id/complete", h.CompleteConsultant)
			consultants.POST("/:id/interviews", h.ScheduleInterview)
			consultants.PUT("/:id/interviews/:interviewId/feedback", h.RecordInterviewFeedback)
			consultants.PUT("/:id/assign", h.AssignConsultant)
			consultants.POST("/:id/reminders", h.AddConsultantReminder)
		}

		onboarding.GET("/statistics", h.GetStatistics)
	}
}

// =====================================================
// Client onboarding endpoints
// =====================================================

func (h *Handler) InitializeClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rec, err := h.service.Clients.Initialize(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	autoInit := c.Query("initialize") == "true"

	rec, err := h.service.GetClient(c.Request.Context(), id, autoInit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type stepUpdateRequest struct {
	Status StepStatus             `json:"status" binding:"required"`
	Data   map[string]interface{} `json:"data"`
}

func (h *Handler) UpdateClientStep(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step number"})
		return
	}

	var req stepUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.Clients.UpdateStep(c.Request.Context(), id, step, req.Status, req.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) RegenerateServiceRecommendations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rec, err := h.service.Clients.GenerateServiceRecommendations(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec.RecommendedServices)
}

func (h *Handler) RegenerateConsultantRecommendations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rec, err := h.service.Clients.GenerateConsultantRecommendations(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec.RecommendedConsultants)
}

func (h *Handler) UpdateRecommendationStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	consultantID, err := uuid.Parse(c.Param("consultantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid consultant id"})
		return
	}

	var req struct {
		Status RecommendationStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.Clients.UpdateRecommendationStatus(c.Request.Context(), id, consultantID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) ScheduleSession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.Clients.ScheduleSession(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) CompleteClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rec, err := h.service.Clients.Complete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type assignRequest struct {
	AssigneeID uuid.UUID `json:"assignee_id" binding:"required"`
}

func (h *Handler) AssignClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.AssignClient(c.Request.Context(), id, req.AssigneeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type reminderRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) AddClientReminder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sentBy, ok := currentUserID(c)
	if !ok {
		return
	}

	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.AddClientReminder(c.Request.Context(), id, sentBy, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// =====================================================
// Consultant onboarding endpoints
// =====================================================

func (h *Handler) InitializeConsultant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rec, err := h.service.Consultants.Initialize(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetConsultant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	autoInit := c.Query("initialize") == "true"

	rec, err := h.service.GetConsultant(c.Request.Context(), id, autoInit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) UpdateConsultantStep(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step number"})
		return
	}

	var req stepUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.Consultants.UpdateStep(c.Request.Context(), id, step, req.Status, req.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) UpdateVerification(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	kind := VerificationKind(c.Param("kind"))

	var req struct {
		Status      VerificationStatus `json:"status" binding:"required"`
		Notes       string             `json:"notes"`
		DocumentURL string             `json:"document_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.Consultants.UpdateVerification(c.Request.Context(), id, kind, req.Status, req.Notes, req.DocumentURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) SignContract(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	contractType := ContractType(c.Param("type"))

	var req struct {
		DocumentURL string `json:"document_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.Consultants.SignContract(c.Request.Context(), id, contractType, req.DocumentURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) CompleteTraining(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	trainingType := TrainingType(c.Param("type"))

	var req struct {
		Score *int `json:"score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.Consultants.CompleteTraining(c.Request.Context(), id, trainingType, req.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) SubmitForReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rec, err := h.service.Consultants.SubmitForReview(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) Review(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Decision ReviewDecision `json:"decision" binding:"required"`
		Notes    string         `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.Consultants.Review(c.Request.Context(), id, reviewerID, req.Decision, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) CompleteConsultant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rec, err := h.service.Consultants.Complete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) ScheduleInterview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req InterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.Consultants.ScheduleInterview(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) RecordInterviewFeedback(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	interviewID := c.Param("interviewId")

	var req struct {
		Feedback       string `json:"feedback" binding:"required"`
		Recommendation string `json:"recommendation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.Consultants.RecordInterviewFeedback(c.Request.Context(), id, interviewID, req.Feedback, req.Recommendation)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) AssignConsultant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.AssignConsultant(c.Request.Context(), id, req.AssigneeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) AddConsultantReminder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sentBy, ok := currentUserID(c)
	if !ok {
		return
	}

	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.AddConsultantReminder(c.Request.Context(), id, sentBy, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// =====================================================
// Statistics
// =====================================================

func (h *Handler) GetStatistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// =====================================================
// Helpers
// =====================================================

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// currentUserID reads the authenticated user id set by the JWT middleware
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw.(string))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id in token"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service sentinels onto HTTP status codes. Conflicts are
// state-dependent failures that a retry with the same payload cannot fix.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrOnboardingNotFound),
		errors.Is(err, ErrStepNotFound),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrRecommendationNotFound),
		errors.Is(err, users.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrIncompleteRequiredSteps),
		errors.Is(err, ErrNotUnderReview),
		errors.Is(err, ErrNotApproved),
		errors.Is(err, ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotAClient),
		errors.Is(err, ErrNotAConsultant),
		errors.Is(err, ErrInvalidStepStatus),
		errors.Is(err, ErrInvalidContractType),
		errors.Is(err, ErrInvalidTrainingType),
		errors.Is(err, ErrInvalidVerificationKind),
		errors.Is(err, ErrRejectionNoteRequired),
		errors.Is(err, ErrInvalidReviewDecision),
		errors.Is(err, ErrInvalidAssignee):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
