package api

// TranslateResponse is returned by POST /api/translate
type TranslateResponse struct {
	Markdown string `json:"markdown"`
	Ctx      int    `json:"ctx"`
}

// StatusResponse is returned by GET /api/llama-status and GET /health
type StatusResponse struct {
	Status string `json:"status"`
}
