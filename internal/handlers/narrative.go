package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storyarc/narrative-backend/internal/discovery"
	"github.com/storyarc/narrative-backend/internal/requestdata"
	"github.com/storyarc/narrative-backend/internal/services"
	"github.com/storyarc/narrative-backend/internal/types"
)

type NarrativeHandler struct {
	narrativeService services.NarrativeService
}

func NewNarrativeHandler(narrativeService services.NarrativeService) *NarrativeHandler {
	return &NarrativeHandler{narrativeService: narrativeService}
}

// Prompts exposes the questionnaire and the closed enumerations so clients
// render from server truth instead of duplicating them.
func (nh *NarrativeHandler) Prompts(c *gin.Context) {
	prompts := discovery.Prompts()
	out := make([]gin.H, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, gin.H{"id": p.ID, "label": p.Label, "placeholder": p.Placeholder})
	}
	c.JSON(http.StatusOK, gin.H{
		"prompts": out,
		"formats": types.OutputFormats(),
		"tones":   types.RefinementTones(),
	})
}

type generateRequest struct {
	Answers types.AnswerSet    `json:"answers"`
	Format  types.OutputFormat `json:"format"`
}

func (nh *NarrativeHandler) Generate(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, user, err := nh.narrativeService.Generate(c.Request.Context(), rd.UserID, req.Answers, req.Format)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "user": user})
}

type refineRequest struct {
	Answers types.AnswerSet      `json:"answers"`
	Format  types.OutputFormat   `json:"format"`
	Tone    types.RefinementTone `json:"tone"`
}

func (nh *NarrativeHandler) Refine(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req refineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := nh.narrativeService.Refine(c.Request.Context(), rd.UserID, req.Answers, req.Format, req.Tone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}
