package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ragnotes/models"
	"ragnotes/services"
)

// defaultQuestion is answered when GET / is called without a text
// query parameter.
const defaultQuestion = "What is the square root of 9?"

// RAGController handles the HTTP requests for the note store. All the
// orchestration lives in the injected services; the controller only
// parses requests, maps error kinds to status codes and shapes replies.
type RAGController struct {
	ingest    *services.IngestService
	retrieval *services.RetrievalService
	answers   *services.AnswerService
	notes     services.NoteStore
	topK      int
	logger    *zap.Logger
}

func NewRAGController(ingest *services.IngestService, retrieval *services.RetrievalService, answers *services.AnswerService, notes services.NoteStore, topK int, logger *zap.Logger) *RAGController {
	if topK <= 0 {
		topK = 1
	}
	return &RAGController{
		ingest:    ingest,
		retrieval: retrieval,
		answers:   answers,
		notes:     notes,
		topK:      topK,
		logger:    logger,
	}
}

// AskQuestion is the handler for GET /. It runs the full read path:
// retrieve context for the question, then generate an answer. The model
// that served the request is reported in the X-Model-Used header.
func (c *RAGController) AskQuestion(ctx *gin.Context) {
	question := ctx.Query("text")
	if question == "" {
		question = defaultQuestion
	}

	retrieved, err := c.retrieval.Retrieve(ctx.Request.Context(), question, c.topK)
	if err != nil {
		c.fail(ctx, err, "failed to retrieve context")
		return
	}

	answer, err := c.answers.Generate(ctx.Request.Context(), question, retrieved.Texts)
	if err != nil {
		c.fail(ctx, err, "failed to generate answer")
		return
	}

	ctx.Header("X-Model-Used", answer.Model)
	ctx.String(http.StatusOK, answer.Text)
}

// Query is the JSON alternative to GET /, for callers that want the
// matched note ids and model name in the body.
func (c *RAGController) Query(ctx *gin.Context) {
	var req models.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing query"})
		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = c.topK
	}

	retrieved, err := c.retrieval.Retrieve(ctx.Request.Context(), req.Query, topK)
	if err != nil {
		c.fail(ctx, err, "failed to retrieve context")
		return
	}

	answer, err := c.answers.Generate(ctx.Request.Context(), req.Query, retrieved.Texts)
	if err != nil {
		c.fail(ctx, err, "failed to generate answer")
		return
	}

	ctx.JSON(http.StatusOK, models.QueryResponse{
		Answer:     answer.Text,
		MatchedIDs: retrieved.MatchedIDs,
		Model:      answer.Model,
	})
}

// CreateNote is the handler for POST /api/v1/notes. The text is
// chunked and each chunk stored as its own note row and vector entry.
func (c *RAGController) CreateNote(ctx *gin.Context) {
	var req models.CreateNoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Text == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing text"})
		return
	}

	result, err := c.ingest.Ingest(ctx.Request.Context(), req.Text, "")
	if err != nil {
		c.logger.Error("ingestion failed",
			zap.Int("chunks_ingested", len(result.NoteIDs)),
			zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":    "Failed to index note",
			"note_ids": result.NoteIDs,
			"warnings": result.Warnings,
		})
		return
	}

	resp := models.CreateNoteResponse{
		Text:     req.Text,
		Indexed:  len(result.NoteIDs) > 0,
		NoteIDs:  result.NoteIDs,
		Warnings: result.Warnings,
	}
	if len(result.NoteIDs) > 0 {
		resp.ID = result.NoteIDs[0]
	}
	ctx.JSON(http.StatusCreated, resp)
}

// DeleteNote is the handler for DELETE /api/v1/notes/:id. Deletion is
// idempotent: a missing note still yields 204.
func (c *RAGController) DeleteNote(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note id"})
		return
	}

	if err := c.ingest.Delete(ctx.Request.Context(), uint(id)); err != nil {
		c.fail(ctx, err, "failed to delete note")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListNotes is the handler for GET /api/v1/notes.
func (c *RAGController) ListNotes(ctx *gin.Context) {
	notes, err := c.notes.List(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, err, "failed to list notes")
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	ctx.JSON(http.StatusOK, models.ListNotesResponse{Count: len(notes), Notes: notes})
}

// fail maps an error to its HTTP status by taxonomy kind and logs the
// detail server-side; clients get a generic message.
func (c *RAGController) fail(ctx *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	if errors.Is(err, services.ErrInput) {
		status = http.StatusBadRequest
	}
	c.logger.Error(msg, zap.Error(err))
	ctx.JSON(status, gin.H{"error": msg})
}
