// Package autotranslate translates structured API payloads on demand.
//
// Autotranslate walks generic key/value trees (decoded JSON), translates free
// text leaves through a slow remote backend (LibreTranslate, OpenAI, ...) and
// injects display labels next to enum-like values. Every translation goes
// through a two-tier cache: a bounded in-process LRU with single-flight
// loading, and a shared tier (Redis, Valkey, SQLite) visible to every process.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/autotranslate"
//	    "github.com/ZaguanLabs/autotranslate/cache"
//	    "github.com/ZaguanLabs/autotranslate/provider"
//	)
//
//	func main() {
//	    // Create backend
//	    p := provider.NewLibreTranslateProvider(provider.LibreTranslateConfig{
//	        BaseURL: "http://localhost:5000",
//	    })
//
//	    // Create translator
//	    t := autotranslate.NewTranslator(p,
//	        autotranslate.WithContentLang("fr"),
//	        autotranslate.WithIdentifierLang("en"),
//	        autotranslate.WithSharedCache(cache.NewMemoryCache(), 24*time.Hour),
//	    )
//
//	    // Translate a payload
//	    tree := map[string]any{"bio": "Passionné de technologie", "role": "ADMIN"}
//	    out := t.TranslateTree(context.Background(), tree, "en")
//	    fmt.Println(out) // map[bio:Technology enthusiast role:ADMIN roleLabel:Admin]
//	}
//
// None of the translation entry points return errors: on any failure the
// original text is returned untranslated.
package autotranslate
