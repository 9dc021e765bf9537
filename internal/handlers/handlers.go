package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/okonenko/pharos/internal/format"
	"github.com/okonenko/pharos/internal/models"
	"github.com/okonenko/pharos/internal/telegram"
	"github.com/okonenko/pharos/pkg/cache"
	"github.com/okonenko/pharos/pkg/logger"
	"github.com/okonenko/pharos/pkg/validator"
)

type Handler struct {
	bot   *telegram.Client
	cache *cache.Cache
}

func NewHandler(bot *telegram.Client, cache *cache.Cache) *Handler {
	return &Handler{
		bot:   bot,
		cache: cache,
	}
}

// Report handles POST /. The body is a tagged union: a visitor record by
// default, or a typed freeform event. Both parse and forward failures answer
// 500; the collector treats any non-2xx identically and never retries, so
// finer-grained status codes would buy nothing.
func (h *Handler) Report(c *fiber.Ctx) error {
	requestID := uuid.New().String()
	log := logger.WithField("request_id", requestID)

	event, err := models.ParseEvent(c.Body())
	if err != nil {
		log.Warn("Failed to parse report body", map[string]any{
			"error": err.Error(),
		})
		return c.Status(fiber.StatusInternalServerError).SendString("Internal error")
	}

	var text, metric string
	switch ev := event.(type) {
	case *models.VisitorRecord:
		text = format.VisitorMessage(ev)
		metric = "visitor_reports"
	case *models.StorySubmission:
		if err := validator.ValidateStorySubmission(*ev); err != nil {
			log.Warn("Story submission rejected", map[string]any{
				"error": err.Error(),
			})
			return c.Status(fiber.StatusInternalServerError).SendString("Internal error")
		}
		text = format.StoryMessage(ev)
		metric = "story_submissions"
	}

	if err := h.bot.SendMessage(c.Context(), text); err != nil {
		_ = h.cache.IncrementMetric(c.Context(), "forward_failures")
		log.Error("Forward to Telegram failed", map[string]any{
			"error": err.Error(),
		})
		return c.Status(fiber.StatusInternalServerError).SendString("Internal error")
	}

	_ = h.cache.IncrementMetric(c.Context(), metric)

	log.Info("Report forwarded", map[string]any{"kind": metric})
	return c.SendString("OK")
}

// MethodNotAllowed answers any verb the relay does not serve.
func (h *Handler) MethodNotAllowed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusMethodNotAllowed).SendString("Method not allowed")
}

// Health handles GET /health.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "healthy",
		"service": "pharos-relay",
	})
}

// Metrics handles GET /metrics.
func (h *Handler) Metrics(c *fiber.Ctx) error {
	ctx := c.Context()

	visitorReports, _ := h.cache.GetMetric(ctx, "visitor_reports")
	storySubmissions, _ := h.cache.GetMetric(ctx, "story_submissions")
	forwardFailures, _ := h.cache.GetMetric(ctx, "forward_failures")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"visitor_reports":   visitorReports,
		"story_submissions": storySubmissions,
		"forward_failures":  forwardFailures,
	})
}
