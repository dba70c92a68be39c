// Package server exposes the engine over HTTP with fiber: the metadata
// endpoints consumed by front ends, direct translation endpoints and a
// middleware translating other handlers' responses.
package server

import (
	"errors"

	"github.com/ZaguanLabs/autotranslate"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Options configures the HTTP layer.
type Options struct {
	// Enabled switches translation on. When false the middleware passes
	// responses through and metadata endpoints return empty results.
	Enabled bool
	Logger  logrus.FieldLogger
}

// New builds the fiber application with every route registered.
func New(tr *autotranslate.Translator, opts Options) *fiber.App {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	app := fiber.New(fiber.Config{
		AppName:               autotranslate.Name,
		ServerHeader:          "Hidden",
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(RequestLogger(log))

	InitRestMetadata(app, tr, opts.Enabled, log)
	InitRestTranslate(app, tr, log)

	return app
}

func errorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Path()).Error("request failed")
		}
		return c.Status(code).JSON(ResponseData{
			Status:  code,
			Code:    codeFor(code),
			Message: err.Error(),
		})
	}
}

func codeFor(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	default:
		if status >= fiber.StatusInternalServerError {
			return "INTERNAL_SERVER_ERROR"
		}
		return "ERROR"
	}
}
