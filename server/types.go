package server

// ResponseData is the envelope of the translation endpoints.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// TextRequest is the body of POST /api/translate/text.
type TextRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"` // Defaults to the content language
	Target string `json:"target"`
}

// BatchRequest is the body of POST /api/translate/batch.
type BatchRequest struct {
	Texts       []string `json:"texts"`
	Target      string   `json:"target"`
	Concurrency int      `json:"concurrency,omitempty"`
}

// HealthResponse is returned by GET /api/translate/metadata/health.
type HealthResponse struct {
	Enabled        bool     `json:"enabled"`
	SourceLanguage string   `json:"sourceLanguage"`
	EntitiesCount  int      `json:"entitiesCount"`
	Entities       []string `json:"entities"`
	SharedCache    string   `json:"sharedCache"`
}
