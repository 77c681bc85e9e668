package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/carbonintel/market-scout/internal/live"
	"github.com/carbonintel/market-scout/internal/provider"
)

const (
	defaultLimit = 20
	maxLimit     = 50

	chatContextItems = 5

	chatFailureReply = "Sorry, I couldn't process that right now. Please try again later."
)

// Aggregator is the request path of the scout service.
type Aggregator interface {
	Opportunities(ctx context.Context, topic, period string, skip, limit int, descending bool) []provider.Item
}

// ChatStore supplies recent cached items as chat context.
type ChatStore interface {
	Recent(ctx context.Context, topic string, n int) ([]provider.Item, error)
}

// Completer answers a free-form prompt via the language model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Server struct {
	agg       Aggregator
	chatStore ChatStore
	completer Completer
	registry  *live.Registry

	defaultTopic string
	aiUp         bool
	newsUp       bool

	upgrader websocket.Upgrader
}

func NewServer(agg Aggregator, chatStore ChatStore, completer Completer, registry *live.Registry, defaultTopic string, aiUp, newsUp bool) *Server {
	return &Server{
		agg:          agg,
		chatStore:    chatStore,
		completer:    completer,
		registry:     registry,
		defaultTopic: defaultTopic,
		aiUp:         aiUp,
		newsUp:       newsUp,
		upgrader: websocket.Upgrader{
			// Dashboard runs on a different origin in dev.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/opportunities", s.opportunities)
	r.POST("/chat", s.chat)
	r.GET("/ws/updates", s.wsUpdates)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"healthy": true,
		"AI":      s.aiUp,
		"News":    s.newsUp,
	})
}

func (s *Server) opportunities(c *gin.Context) {
	topic := strings.TrimSpace(c.Query("product"))
	if topic == "" {
		topic = s.defaultTopic
	}
	period := c.DefaultQuery("period", "all")

	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	descending := c.DefaultQuery("order", "desc") != "asc"

	items := s.agg.Opportunities(c.Request.Context(), topic, period, skip, limit, descending)
	if items == nil {
		items = []provider.Item{}
	}
	c.JSON(http.StatusOK, items)
}

type chatRequest struct {
	Message string `json:"message"`
	Product string `json:"product"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	topic := strings.TrimSpace(req.Product)
	if topic == "" {
		topic = s.defaultTopic
	}

	prompt := s.buildChatPrompt(c.Request.Context(), topic, req.Message)
	answer, err := s.completer.Complete(c.Request.Context(), prompt)
	if err != nil {
		log.Printf("chat: completion failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"response": chatFailureReply})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": answer})
}

func (s *Server) buildChatPrompt(ctx context.Context, topic, message string) string {
	var b strings.Builder
	b.WriteString("You are a market intelligence assistant. Recent items for ")
	b.WriteString(topic)
	b.WriteString(":\n")

	items, err := s.chatStore.Recent(ctx, topic, chatContextItems)
	if err != nil {
		log.Printf("chat: load context for %q: %v", topic, err)
	}
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, it.Title, it.Summary)
	}

	b.WriteString("\nUser question: ")
	b.WriteString(message)
	return b.String()
}

// wsUpdates upgrades to a websocket and registers the connection for
// broadcast pushes. The client sends nothing meaningful; the read loop
// just keeps the connection open and detects the close.
func (s *Server) wsUpdates(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade: %v", err)
		return
	}

	s.registry.Add(conn)
	log.Printf("ws: subscriber connected (%d active)", s.registry.Len())

	go func() {
		defer func() {
			s.registry.Remove(conn)
			_ = conn.Close()
			log.Printf("ws: subscriber disconnected (%d active)", s.registry.Len())
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
