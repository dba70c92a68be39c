package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZaguanLabs/autotranslate"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiddlewareApp(t *testing.T, tr *autotranslate.Translator, enabled bool) *fiber.App {
	t.Helper()
	log, _ := test.NewNullLogger()

	app := fiber.New()
	users := app.Group("/users", Translated(tr, enabled, "User", log))
	users.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"id":        "42",
			"firstName": "Jean",
			"bio":       "Passionné de technologie",
			"role":      "ADMIN",
		})
	})
	users.Get("/page", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"content":       []fiber.Map{{"bio": "Passionné de technologie"}},
			"totalElements": 1,
		})
	})
	users.Get("/greeting", func(c *fiber.Ctx) error {
		return c.SendString("Bonjour")
	})
	users.Get("/raw", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString("{broken")
	})
	users.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
	return app
}

func get(path, acceptLanguage string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if acceptLanguage != "" {
		req.Header.Set(fiber.HeaderAcceptLanguage, acceptLanguage)
	}
	return req
}

func TestTranslated_JSON(t *testing.T) {
	app := newMiddlewareApp(t, newTestTranslator(t), true)

	status, body, header := doRequest(t, app, get("/users/me", "en-US,en;q=0.9,fr;q=0.8"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "en", header.Get(fiber.HeaderContentLanguage))
	assert.JSONEq(t, `{
		"id": "42",
		"firstName": "Jean",
		"bio": "Technology enthusiast",
		"role": "ADMIN",
		"roleLabel": "Administrator"
	}`, string(body))
}

func TestTranslated_Page(t *testing.T) {
	app := newMiddlewareApp(t, newTestTranslator(t), true)

	_, body, _ := doRequest(t, app, get("/users/page", "en"))
	assert.JSONEq(t, `{"content":[{"bio":"Technology enthusiast"}],"totalElements":1}`, string(body))
}

func TestTranslated_PlainText(t *testing.T) {
	app := newMiddlewareApp(t, newTestTranslator(t), true)

	_, body, _ := doRequest(t, app, get("/users/greeting", "en"))
	assert.Equal(t, "Hello", string(body))
}

func TestTranslated_ContentLanguageSkipped(t *testing.T) {
	tests := []string{"", "fr", "fr-FR,en;q=0.5"}
	for _, header := range tests {
		t.Run(header, func(t *testing.T) {
			app := newMiddlewareApp(t, newTestTranslator(t), true)

			_, body, h := doRequest(t, app, get("/users/me", header))
			assert.Empty(t, h.Get(fiber.HeaderContentLanguage))
			assert.JSONEq(t, `{"id":"42","firstName":"Jean","bio":"Passionné de technologie","role":"ADMIN"}`, string(body))
		})
	}
}

func TestTranslated_Disabled(t *testing.T) {
	app := newMiddlewareApp(t, newTestTranslator(t), false)

	_, body, _ := doRequest(t, app, get("/users/greeting", "en"))
	assert.Equal(t, "Bonjour", string(body))
}

func TestTranslated_InvalidJSONSentUnchanged(t *testing.T) {
	app := newMiddlewareApp(t, newTestTranslator(t), true)

	_, body, _ := doRequest(t, app, get("/users/raw", "en"))
	assert.Equal(t, "{broken", string(body))
}

func TestTranslated_HandlerError(t *testing.T) {
	app := newMiddlewareApp(t, newTestTranslator(t), true)

	status, _, _ := doRequest(t, app, get("/users/missing", "en"))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTranslated_LanguageSelection(t *testing.T) {
	tests := []struct {
		name      string
		supported []string
		header    string
		wantLang  string
		wantBio   string
	}{
		{"first entry without a list", nil, "ja,en;q=0.5", "ja", "[ja] Passionné de technologie"},
		{"negotiated against the list", []string{"en", "de"}, "ja,en;q=0.5", "en", "Technology enthusiast"},
		{"no supported match keeps content language", []string{"en"}, "ja", "", "Passionné de technologie"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTranslator(t, autotranslate.WithSupportedLangs(tt.supported...))
			app := newMiddlewareApp(t, tr, true)

			status, body, header := doRequest(t, app, get("/users/me", tt.header))
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, tt.wantLang, header.Get(fiber.HeaderContentLanguage))

			var user map[string]any
			require.NoError(t, json.Unmarshal(body, &user))
			assert.Equal(t, tt.wantBio, user["bio"])
		})
	}
}
