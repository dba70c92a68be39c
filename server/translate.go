package server

import (
	"strings"

	"github.com/ZaguanLabs/autotranslate"
	"github.com/ZaguanLabs/autotranslate/cache"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// maxBatchSize bounds the texts accepted by one batch request.
const maxBatchSize = 1000

// Translate serves direct translation requests.
type Translate struct {
	tr  *autotranslate.Translator
	log logrus.FieldLogger
}

func InitRestTranslate(app fiber.Router, tr *autotranslate.Translator, log logrus.FieldLogger) Translate {
	handler := Translate{tr: tr, log: log}

	group := app.Group("/api/translate")
	group.Post("/text", handler.Text)
	group.Post("/tree", handler.Tree)
	group.Post("/batch", handler.Batch)
	group.Get("/stats", handler.Stats)
	group.Get("/cache/export", handler.ExportCache)

	return handler
}

func (h *Translate) Text(c *fiber.Ctx) error {
	var req TextRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	target := h.target(c, req.Target)

	translated := h.tr.TranslateFrom(c.UserContext(), req.Text, req.Source, target)
	return c.JSON(ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Text translated",
		Results: map[string]string{
			"text":        req.Text,
			"translation": translated,
			"target":      target,
		},
	})
}

// Tree translates any JSON body. ?entity= applies that entity's schema.
func (h *Translate) Tree(c *fiber.Ctx) error {
	tree, err := autotranslate.DecodeTree(c.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "body is not valid JSON")
	}
	target := h.target(c, c.Query("lang"))

	return c.JSON(h.tr.TranslateEntityTree(c.UserContext(), tree, target, c.Query("entity")))
}

func (h *Translate) Batch(c *fiber.Ctx) error {
	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Texts) > maxBatchSize {
		return fiber.NewError(fiber.StatusBadRequest, "too many texts in batch")
	}
	target := h.target(c, req.Target)

	return c.JSON(ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Batch translated",
		Results: h.tr.TranslateAll(c.UserContext(), req.Texts, target, req.Concurrency),
	})
}

func (h *Translate) Stats(c *fiber.Ctx) error {
	return c.JSON(ResponseData{
		Status:  fiber.StatusOK,
		Code:    "SUCCESS",
		Message: "Translation statistics",
		Results: fiber.Map{
			"counters":     h.tr.Stats(),
			"local_size":   h.tr.LocalCache().Len(),
			"content_lang": h.tr.ContentLang(),
		},
	})
}

// ExportCache dumps the local tier in the cache import format.
func (h *Translate) ExportCache(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="translations.json"`)

	exporter := cache.NewExporter(h.tr.LocalCache())
	return exporter.Export(c.Response().BodyWriter(), map[string]string{
		"content_lang": h.tr.ContentLang(),
		"version":      autotranslate.Version,
	})
}

// target picks the explicit language, then the negotiated Accept-Language,
// then the content language.
func (h *Translate) target(c *fiber.Ctx, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	return h.tr.TargetFromHeader(c.Get(fiber.HeaderAcceptLanguage))
}
