// Package provider implements translation backends.
package provider

import "github.com/ZaguanLabs/autotranslate"

// Backend is an alias to the main package interface for convenience.
type Backend = autotranslate.Backend

// TranslateRequest is an alias to the main package type.
type TranslateRequest = autotranslate.TranslateRequest
