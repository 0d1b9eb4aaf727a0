// Package gateway implements the forwarding gateway between the frontend and
// the LLM backend. It authenticates callers, optionally augments the
// conversation with retrieved context, dispatches the request upstream, and
// relays the backend's NDJSON stream back line by line without touching frame
// content.
package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/augment"
	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/upstream"
)

// Version reported by the root endpoint.
const Version = "1.0.0"

const contentTypeNDJSON = "application/x-ndjson"

// ChatStreamer is the upstream capability the gateway depends on. It is
// satisfied by *upstream.Client and by test doubles.
type ChatStreamer interface {
	StreamChat(ctx context.Context, messages []llm.Message, model string, extra map[string]any) (*upstream.Stream, error)
	CheckHealth(ctx context.Context) bool
}

// Gateway owns the request lifecycle: auth gate, augmentation hook, upstream
// dispatch, and stream passthrough. All state is set at construction and
// read-only afterwards, so a single Gateway serves concurrent requests
// without locking.
type Gateway struct {
	config    Config
	logger    *zap.Logger
	backend   ChatStreamer
	augmenter *augment.Pipeline
	metrics   *metrics
	server    *fiber.App
}

// New creates a Gateway with its routes registered. The backend client and
// augmentation pipeline are injected; the gateway never constructs its own
// collaborators.
func New(config Config, backend ChatStreamer, augmenter *augment.Pipeline, logger *zap.Logger) *Gateway {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		StreamRequestBody:     true,
	})

	app.Use(cors.New())

	g := &Gateway{
		config:    config,
		logger:    logger,
		backend:   backend,
		augmenter: augmenter,
		metrics:   newMetrics(),
		server:    app,
	}

	// The single authoritative route set.
	app.Get("/", g.handleRoot)
	app.Get("/health", g.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(g.metrics.handler()))
	app.Post("/v1/chat", g.requireAPIKey, g.handleChat)
	app.Get("/status", g.requireAPIKey, g.handleStatus)

	return g
}

// Run starts the gateway server on the configured listen address.
func (g *Gateway) Run() error {
	g.logger.Info("starting gateway server",
		zap.String("listen", g.config.Server.ListenAddr),
		zap.String("upstream", g.config.Upstream.BaseURL),
		zap.Bool("augmentation", g.config.Augmentation.Enabled),
	)

	return g.server.Listen(g.config.Server.ListenAddr)
}

// Shutdown gracefully stops the server.
func (g *Gateway) Shutdown() error {
	return g.server.Shutdown()
}

// handleChat forwards a chat request to the LLM backend and relays the
// response stream. Once the NDJSON stream has started, failures can only
// truncate the output; the committed status code never changes and no
// synthetic frames are injected.
func (g *Gateway) handleChat(c *fiber.Ctx) error {
	log := g.logger.With(zap.String("request_id", uuid.NewString()))

	var req llm.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		log.Debug("failed to parse request", zap.Error(err))
		return g.reject(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		log.Debug("invalid chat request", zap.Error(err))
		return g.reject(c, fiber.StatusBadRequest, err.Error())
	}

	log.Debug("received chat request",
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
	)

	// Fail-open: Apply returns the original messages on any search trouble.
	messages := g.augmenter.Apply(c.Context(), req.Messages)

	stream, err := g.backend.StreamChat(c.Context(), messages, req.Model, req.Metadata)
	if err != nil {
		return g.failChat(c, log, err)
	}

	c.Set(fiber.HeaderContentType, contentTypeNDJSON)
	c.Set(fiber.HeaderTransferEncoding, "chunked")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer stream.Close()

		var lines int
		for stream.Next() {
			w.Write(stream.Line())
			w.Write([]byte("\n"))
			if err := w.Flush(); err != nil {
				// Caller went away; the deferred Close cancels the upstream read.
				log.Debug("caller disconnected mid-stream",
					zap.Int("lines", lines),
					zap.Error(err),
				)
				return
			}
			lines++
			g.metrics.forwardedLines.Inc()
		}

		if err := stream.Err(); err != nil {
			// Status is already committed; the stream is truncated as-is.
			log.Warn("backend stream ended abnormally",
				zap.Int("lines", lines),
				zap.Error(err),
			)
			return
		}

		log.Debug("stream complete", zap.Int("lines", lines))
	}))

	g.metrics.requestsTotal.WithLabelValues("/v1/chat", "200").Inc()
	return nil
}

// failChat maps a pre-stream upstream failure to the caller-visible status.
func (g *Gateway) failChat(c *fiber.Ctx, log *zap.Logger, err error) error {
	var upErr *upstream.Error
	if !errors.As(err, &upErr) {
		log.Error("chat request failed", zap.Error(err))
		return g.reject(c, fiber.StatusBadGateway, "upstream request failed")
	}

	status := fiber.StatusBadGateway
	switch upErr.Kind {
	case upstream.KindTimeout:
		status = fiber.StatusGatewayTimeout
	case upstream.KindUnreachable:
		status = fiber.StatusServiceUnavailable
	}

	log.Error("upstream request failed",
		zap.String("kind", upErr.Kind.String()),
		zap.Int("status", status),
		zap.Error(err),
	)

	g.metrics.upstreamErrors.WithLabelValues(upErr.Kind.String()).Inc()
	return g.reject(c, status, upErr.Message)
}

// reject sends a structured JSON error body and records the request metric.
func (g *Gateway) reject(c *fiber.Ctx, status int, message string) error {
	g.metrics.requestsTotal.WithLabelValues(c.Path(), strconv.Itoa(status)).Inc()
	return c.Status(status).JSON(llm.ErrorResponse{Error: message})
}

// statusResponse reports the health of this service and the LLM backend.
type statusResponse struct {
	SystemLogicService string `json:"system_logic_service"`
	LLMService         string `json:"llm_service"`
	OverallStatus      string `json:"overall_status"`
}

// handleStatus composes overall health: this service is healthy by
// definition if it is answering, so overall status follows the backend.
func (g *Gateway) handleStatus(c *fiber.Ctx) error {
	resp := statusResponse{
		SystemLogicService: "healthy",
		LLMService:         "unhealthy",
		OverallStatus:      "degraded",
	}
	if g.backend.CheckHealth(c.Context()) {
		resp.LLMService = "healthy"
		resp.OverallStatus = "operational"
	}

	g.metrics.requestsTotal.WithLabelValues("/status", "200").Inc()
	return c.JSON(resp)
}

// handleRoot serves static service information, unauthenticated.
func (g *Gateway) handleRoot(c *fiber.Ctx) error {
	return c.JSON(map[string]string{
		"service": "relay gateway",
		"version": Version,
		"status":  "running",
	})
}

// handleHealth is the gateway's own liveness endpoint. It never touches the
// backend.
func (g *Gateway) handleHealth(c *fiber.Ctx) error {
	return c.JSON(map[string]string{
		"status":  "healthy",
		"service": "relay",
	})
}
