package server

import (
	"github.com/ZaguanLabs/autotranslate"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Metadata serves translated field labels of registered entities.
type Metadata struct {
	tr      *autotranslate.Translator
	enabled bool
	log     logrus.FieldLogger
}

func InitRestMetadata(app fiber.Router, tr *autotranslate.Translator, enabled bool, log logrus.FieldLogger) Metadata {
	handler := Metadata{tr: tr, enabled: enabled, log: log}

	group := app.Group("/api/translate/metadata")
	group.Get("/entities", handler.Entities)
	group.Get("/health", handler.Health)
	group.Get("/:entity", handler.Entity)

	return handler
}

// Entity returns field name -> label for the entity in ?lang=, the content
// language when absent. An entity with no labels is a 404.
func (h *Metadata) Entity(c *fiber.Ctx) error {
	if !h.enabled {
		h.log.Warn("translation is disabled, returning empty metadata")
		return c.JSON(map[string]string{})
	}

	entity := c.Params("entity")
	lang := c.Query("lang", h.tr.ContentLang())

	labels := h.tr.MetadataFor(c.UserContext(), entity, lang)
	if len(labels) == 0 {
		h.log.WithField("entity", entity).Warn("no metadata for entity")
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.JSON(labels)
}

func (h *Metadata) Entities(c *fiber.Ctx) error {
	if !h.enabled {
		return c.JSON([]string{})
	}
	return c.JSON(h.tr.RegisteredEntities())
}

func (h *Metadata) Health(c *fiber.Ctx) error {
	entities := h.tr.RegisteredEntities()
	return c.JSON(HealthResponse{
		Enabled:        h.enabled,
		SourceLanguage: h.tr.ContentLang(),
		EntitiesCount:  len(entities),
		Entities:       entities,
		SharedCache:    h.tr.SharedStatus(c.UserContext()),
	})
}
