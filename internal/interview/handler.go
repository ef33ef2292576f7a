package interview

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/G26karthik/AI-Interview-Assistant/internal/extract"
	"github.com/G26karthik/AI-Interview-Assistant/internal/llm"
	"github.com/G26karthik/AI-Interview-Assistant/internal/shared/server/respond"
	"github.com/G26karthik/AI-Interview-Assistant/internal/shared/storage/object"
)

const maxUploadSize = 10 << 20 // 10MB

// timeNow is swapped out by handler tests that need a fixed clock.
var timeNow = time.Now

// Handler wires HTTP handlers to the candidate store and interview service.
type Handler struct {
	Store   *Store
	Svc     *Service
	Objects object.ObjectStore
}

// NewHandler constructs a Handler.
func NewHandler(store *Store, svc *Service, objects object.ObjectStore) *Handler {
	return &Handler{Store: store, Svc: svc, Objects: objects}
}

// RegisterRoutes attaches candidate and interview routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/candidates", h.create)
	rg.GET("/candidates", h.list)
	rg.GET("/candidates/current", h.current)
	rg.DELETE("/candidates", h.clear)
	rg.GET("/candidates/:id", h.get)
	rg.POST("/candidates/:id/info", h.captureInfo)
	rg.POST("/candidates/:id/start", h.start)
	rg.GET("/candidates/:id/question", h.question)
	rg.POST("/candidates/:id/answers", h.answer)
	rg.POST("/candidates/:id/pause", h.pause)
	rg.POST("/candidates/:id/resume", h.resume)
	rg.POST("/candidates/:id/finish", h.finish)
}

func (h *Handler) create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	var text string
	if h.Objects != nil {
		// Persist the upload first, then extract from the stored copy so a
		// derived .extracted.txt lands next to it.
		key, _, _, err := h.Objects.Save(c.Request.Context(), "resumes", fileHeader.Filename, bytes.NewReader(data))
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store resume", nil)
			return
		}
		text, err = extract.ExtractText(c.Request.Context(), h.Objects, key, mimeType, fileHeader.Filename)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", fmt.Sprintf("unable to extract resume text: %v", err), nil)
			return
		}
	} else {
		text, err = extract.ExtractTextFromBytes(c.Request.Context(), data, mimeType, fileHeader.Filename)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", fmt.Sprintf("unable to extract resume text: %v", err), nil)
			return
		}
	}

	fields := extract.SniffFields(text)
	candidate := h.Store.Add(c.Request.Context(), Seed{
		Name:       fields.Name,
		Email:      fields.Email,
		Phone:      fields.Phone,
		ResumeText: text,
	})
	c.Set("candidateId", candidate.ID)

	respond.Created(c, candidate)
}

func (h *Handler) list(c *gin.Context) {
	respond.OK(c, h.Store.List())
}

func (h *Handler) current(c *gin.Context) {
	candidate, ok := h.Store.Current()
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "no candidates yet", nil)
		return
	}
	respond.OK(c, candidate)
}

func (h *Handler) clear(c *gin.Context) {
	h.Store.Clear(c.Request.Context())
	respond.OK(c, gin.H{"ok": true})
}

func (h *Handler) get(c *gin.Context) {
	candidate, ok := h.Store.Get(c.Param("id"))
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
		return
	}
	respond.OK(c, candidate)
}

type captureInfoRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *Handler) captureInfo(c *gin.Context) {
	id := c.Param("id")
	candidate, ok := h.Store.Get(id)
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
		return
	}

	var req captureInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	field := strings.TrimSpace(req.Field)
	if field == "" {
		field = candidate.Session.CurrentInfoField
	}
	if field == "" {
		respond.Error(c, http.StatusConflict, "invalid_state", "no field is being collected", nil)
		return
	}

	h.Store.CaptureInfo(c.Request.Context(), id, field, req.Value)
	c.Set("candidateId", id)

	updated, _ := h.Store.Get(id)
	respond.OK(c, updated)
}

func (h *Handler) start(c *gin.Context) {
	id := c.Param("id")
	candidate, ok := h.Store.Get(id)
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
		return
	}
	if h.Svc.Availability() != llm.ModeLive {
		respond.Error(c, http.StatusServiceUnavailable, "ai_unavailable", "AI is not configured; interviews cannot start", nil)
		return
	}

	before := candidate.Session.Stage
	h.Store.StartInterview(c.Request.Context(), id, timeNow())
	updated, _ := h.Store.Get(id)
	c.Set("candidateId", id)
	if updated.Session.Stage != before {
		c.Set("stageTransition", fmt.Sprintf("%s->%s", before, updated.Session.Stage))
	}

	respond.OK(c, updated)
}

// question streams the current question over server-sent events.
func (h *Handler) question(c *gin.Context) {
	id := c.Param("id")
	c.Set("candidateId", id)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "streaming unsupported", nil)
		return
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")

	wrote := false
	question, err := h.Svc.NextQuestion(c.Request.Context(), id, func(token string) {
		fmt.Fprintf(c.Writer, "event: token\ndata: %s\n\n", encodeSSEData(token))
		flusher.Flush()
		wrote = true
	})
	if err != nil {
		if !wrote {
			switch {
			case errors.Is(err, ErrNotFound):
				respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
			case errors.Is(err, ErrUnavailable):
				respond.Error(c, http.StatusServiceUnavailable, "ai_unavailable", "AI is not configured", nil)
			default:
				respond.Error(c, http.StatusBadGateway, "generation_failed", err.Error(), nil)
			}
			return
		}
		fmt.Fprintf(c.Writer, "event: error\ndata: %s\n\n", encodeSSEData(err.Error()))
		flusher.Flush()
		return
	}

	fmt.Fprintf(c.Writer, "event: done\ndata: %s\n\n", encodeSSEData(question))
	flusher.Flush()
}

// encodeSSEData keeps multi-line payloads valid by escaping newlines.
func encodeSSEData(s string) string {
	return strings.ReplaceAll(s, "\n", "\\n")
}

type answerRequest struct {
	Answer string `json:"answer"`
	Auto   bool   `json:"auto"`
}

func (h *Handler) answer(c *gin.Context) {
	id := c.Param("id")

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	candidate, err := h.Svc.SubmitAnswer(c.Request.Context(), id, req.Answer, req.Auto)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
		case errors.Is(err, ErrEmptyAnswer):
			respond.Error(c, http.StatusBadRequest, "validation_error", "answer is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to submit answer", nil)
		}
		return
	}
	c.Set("candidateId", id)

	respond.OK(c, candidate)
}

type pauseRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) pause(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.Store.Get(id); !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
		return
	}

	var req pauseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "manual"
	}

	h.Store.Pause(c.Request.Context(), id, reason, timeNow())
	c.Set("candidateId", id)

	updated, _ := h.Store.Get(id)
	respond.OK(c, updated)
}

func (h *Handler) resume(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.Store.Get(id); !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
		return
	}

	h.Store.Resume(c.Request.Context(), id, timeNow())
	c.Set("candidateId", id)

	updated, _ := h.Store.Get(id)
	respond.OK(c, updated)
}

func (h *Handler) finish(c *gin.Context) {
	id := c.Param("id")

	candidate, err := h.Svc.Finish(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to finish interview", nil)
		return
	}
	c.Set("candidateId", id)

	respond.OK(c, candidate)
}
