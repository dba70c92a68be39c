package server

import (
	"bytes"
	"strings"
	"time"

	"github.com/ZaguanLabs/autotranslate"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDKey is the fiber.Ctx local holding the request ID.
const RequestIDKey = "request_id"

// RequestLogger tags every request with an ID, reusing X-Request-ID when the
// caller sent one, and logs its outcome.
func RequestLogger(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.Locals(RequestIDKey, id)

		start := time.Now()
		err := c.Next()

		log.WithFields(logrus.Fields{
			RequestIDKey: id,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"elapsed":    time.Since(start),
		}).Debug("request handled")

		return err
	}
}

// Translated translates the responses of the handlers it wraps into the
// language of the request's Accept-Language header. JSON bodies are walked
// with entity's schema, plain text bodies are translated whole. Anything
// else, and any body that fails to decode, is sent unchanged.
func Translated(tr *autotranslate.Translator, enabled bool, entity string, log logrus.FieldLogger) fiber.Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		if !enabled {
			return nil
		}

		target := tr.TargetFromHeader(c.Get(fiber.HeaderAcceptLanguage))
		if tr.IsContentLang(target) {
			log.WithField("target", target).Trace("response already in content language")
			return nil
		}

		body := c.Response().Body()
		if len(bytes.TrimSpace(body)) == 0 {
			return nil
		}

		contentType := strings.ToLower(string(c.Response().Header.ContentType()))
		ctx := c.UserContext()

		switch {
		case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
			tree, err := autotranslate.DecodeTree(body)
			if err != nil {
				log.WithError(err).Warn("response is not valid JSON, sent untranslated")
				return nil
			}
			out, err := json.Marshal(tr.TranslateEntityTree(ctx, tree, target, entity))
			if err != nil {
				log.WithError(err).Error("translated response not encodable, sent untranslated")
				return nil
			}
			c.Response().SetBodyRaw(out)
		case strings.HasPrefix(contentType, fiber.MIMETextPlain):
			c.Response().SetBodyString(tr.Translate(ctx, string(body), target))
		default:
			return nil
		}

		c.Set(fiber.HeaderContentLanguage, target)
		return nil
	}
}
