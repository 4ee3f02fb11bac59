package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"quizclash/models"
	"quizclash/services"
)

// QuestionHandler is the bank maintenance surface used by content tooling.
type QuestionHandler struct {
	questions *services.QuestionService
	log       zerolog.Logger
}

func NewQuestionHandler(questions *services.QuestionService, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{questions: questions, log: log}
}

type CreateQuestionRequest struct {
	Language     string `json:"language" binding:"required"`
	Text         string `json:"text" binding:"required"`
	Answer       string `json:"answer" binding:"required"`
	WrongAnswer1 string `json:"wrong_answer1" binding:"required"`
	WrongAnswer2 string `json:"wrong_answer2" binding:"required"`
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	question := &models.Question{
		Language:     req.Language,
		Text:         req.Text,
		Answer:       req.Answer,
		WrongAnswer1: req.WrongAnswer1,
		WrongAnswer2: req.WrongAnswer2,
	}
	if err := h.questions.CreateQuestion(c.Request.Context(), question); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// CountQuestions reports the bank size for a language; tooling uses it to
// verify imports.
func (h *QuestionHandler) CountQuestions(c *gin.Context) {
	language := c.Query("language")
	if language == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "language query parameter is required"})
		return
	}

	count, err := h.questions.CountQuestions(c.Request.Context(), language)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": language, "count": count})
}
