// Package processor provides rich-text handlers for string leaves whose
// markup must survive translation.
package processor

import "github.com/ZaguanLabs/autotranslate"

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = autotranslate.ContentProcessor

// TextNode is an alias to the main package type.
type TextNode = autotranslate.TextNode
