package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/crimson-sun/airs/internal/engine"
	"github.com/crimson-sun/airs/internal/engine/classifier"
	"github.com/crimson-sun/airs/internal/model"
)

// Analyzer is the classification surface the HTTP layer depends on.
// *engine.Engine satisfies it.
type Analyzer interface {
	Analyze(message, selector string) (model.AnalysisResult, error)
	Models() []classifier.Kind
	Labels() []string
}

// Handler serves the analysis endpoints.
type Handler struct {
	svc          Analyzer
	defaultModel string
	logger       *zap.Logger
}

// NewHandler creates a Handler. An empty defaultModel falls back to "rf".
func NewHandler(svc Analyzer, defaultModel string, logger *zap.Logger) *Handler {
	if defaultModel == "" {
		defaultModel = classifier.KindRF.String()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, defaultModel: defaultModel, logger: logger}
}

// Register mounts the handler's routes on rg.
func (h *Handler) Register(rg gin.IRoutes) {
	rg.POST("/analyze", h.Analyze)
	rg.GET("/models", h.Models)
}

// Analyze classifies a single incident message.
// POST /analyze
func (h *Handler) Analyze(c *gin.Context) {
	req := model.IncidentRequest{Model: h.defaultModel}
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "request body too large"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	res, err := h.svc.Analyze(*req.Message, req.Model)
	if err != nil {
		h.writeError(c, req.Model, err)
		return
	}

	analysesTotal.WithLabelValues(res.ModelUsed, string(res.Severity)).Inc()
	c.JSON(http.StatusOK, res)
}

func (h *Handler) writeError(c *gin.Context, selector string, err error) {
	if errors.Is(err, engine.ErrInvalidModel) {
		analysisErrorsTotal.WithLabelValues("invalid_model").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid model"})
		return
	}

	stage := "unknown"
	var se *engine.StageError
	if errors.As(err, &se) {
		stage = string(se.Stage)
	}
	analysisErrorsTotal.WithLabelValues(stage).Inc()
	h.logger.Error("analysis failed",
		zap.String("model", selector),
		zap.String("stage", stage),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}

type modelsResponse struct {
	Models  []string `json:"models"`
	Default string   `json:"default"`
	Labels  []string `json:"labels"`
}

// Models lists the loaded classifier selectors and the label classes.
// GET /models
func (h *Handler) Models(c *gin.Context) {
	kinds := h.svc.Models()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	labels := h.svc.Labels()
	if labels == nil {
		labels = []string{}
	}
	c.JSON(http.StatusOK, modelsResponse{Models: names, Default: h.defaultModel, Labels: labels})
}
