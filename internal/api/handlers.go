package api

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"supportchat/internal/chat"
	"supportchat/internal/models"
	"supportchat/internal/render"
	"supportchat/internal/session"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const indexTemplate = "index.html.tmpl"

// Handler wires HTTP routes to the chat service and the per-session transcripts.
type Handler struct {
	sessions *session.Manager
	chat     *chat.Service
	markdown *render.Markdown
	page     Page
	flowURL  string
	logger   zerolog.Logger
}

// NewHandler constructs a Handler instance.
func NewHandler(sessions *session.Manager, chatService *chat.Service, page Page, flowURL string, logger zerolog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		chat:     chatService,
		markdown: render.NewMarkdown(),
		page:     page,
		flowURL:  flowURL,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.tmpl")))
	router.GET("/healthz", h.health)

	web := router.Group("/")
	web.Use(h.sessionMiddleware())
	web.GET("", h.index)
	web.POST("chat", h.submitForm)
	web.POST("clear", h.clearForm)

	api := router.Group("/api")
	api.Use(h.sessionMiddleware())
	api.GET("/messages", h.listMessages)
	api.POST("/messages", h.postMessage)
	api.DELETE("/messages", h.clearMessages)
}

func (h *Handler) currentSession(c *gin.Context) (*session.State, bool) {
	st, ok := SessionFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return nil, false
	}
	return st, true
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"flow_url": h.flowURL,
		"sessions": h.sessions.Len(),
	})
}

type messageView struct {
	Role models.Role
	HTML template.HTML
}

type pageView struct {
	Page
	Messages []messageView
}

func (h *Handler) index(c *gin.Context) {
	st, ok := h.currentSession(c)
	if !ok {
		return
	}
	messages, err := h.chat.History(c.Request.Context(), st.Transcript)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	views := make([]messageView, 0, len(messages))
	for _, msg := range messages {
		views = append(views, messageView{Role: msg.Role, HTML: h.markdown.HTML(msg.Content)})
	}
	c.HTML(http.StatusOK, indexTemplate, pageView{Page: h.page, Messages: views})
}

// submitForm handles the chat input. Blank input is not submitted.
func (h *Handler) submitForm(c *gin.Context) {
	st, ok := h.currentSession(c)
	if !ok {
		return
	}
	prompt := c.PostForm("prompt")
	if strings.TrimSpace(prompt) != "" {
		if _, err := h.runTurn(c, st, prompt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) clearForm(c *gin.Context) {
	st, ok := h.currentSession(c)
	if !ok {
		return
	}
	if err := h.clear(c, st); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) listMessages(c *gin.Context) {
	st, ok := h.currentSession(c)
	if !ok {
		return
	}
	messages, err := h.chat.History(c.Request.Context(), st.Transcript)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":  st.Info(),
		"messages": messages,
	})
}

// User input interface
type inputRequest struct {
	Content *string `json:"content"`
}

func (h *Handler) postMessage(c *gin.Context) {
	st, ok := h.currentSession(c)
	if !ok {
		return
	}
	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	aiMessage, err := h.runTurn(c, st, *req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_message": models.Message{Role: models.RoleUser, Content: *req.Content},
		"ai_message":   aiMessage,
	})
}

func (h *Handler) clearMessages(c *gin.Context) {
	st, ok := h.currentSession(c)
	if !ok {
		return
	}
	if err := h.clear(c, st); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) runTurn(c *gin.Context, st *session.State, text string) (models.Message, error) {
	end := st.BeginTurn()
	defer end()
	msg, err := h.chat.Submit(c.Request.Context(), st.Transcript, text)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", st.ID).Msg("turn failed")
	}
	return msg, err
}

func (h *Handler) clear(c *gin.Context, st *session.State) error {
	end := st.BeginTurn()
	defer end()
	return h.chat.Clear(c.Request.Context(), st.Transcript)
}
