package llama

import (
	"encoding/base64"
)

// DefaultPrompt is used when the caller does not supply its own instruction.
const DefaultPrompt = "この画像全体を正確にOCRし、コードはそのまま出力し、" +
	"英語の文章は日本語に正確に翻訳してください。要約は禁止。"

// Generation parameters sent with every request.
const (
	MaxTokens         = 1600
	Temperature       = 0.1
	TopP              = 0.6
	MinP              = 0.05
	RepetitionPenalty = 1.05
)

// ChatPayload is the body of a chat-completions call.
type ChatPayload struct {
	Model            string             `json:"model"`
	Messages         []Message          `json:"messages"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	Stop             []string           `json:"stop"`
	Stream           bool               `json:"stream"`
	N                int                `json:"n"`
	PresencePenalty  float64            `json:"presence_penalty"`
	FrequencyPenalty float64            `json:"frequency_penalty"`
	LogitBias        map[string]float64 `json:"logit_bias"`
	ExtraBody        ExtraBody          `json:"extra_body"`
}

// Message is a chat message. Content is a string for the system message and
// a []ContentPart for the user message.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multimodal user message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an image as a data URI.
type ImageURL struct {
	URL string `json:"url"`
}

// ExtraBody holds the sampling controls and the context window hint.
type ExtraBody struct {
	TopP              float64 `json:"top_p"`
	MinP              float64 `json:"min_p"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	NCtx              int     `json:"n_ctx"`
}

// Request describes one translation call.
type Request struct {
	Model        string
	SystemPrompt string
	ImagePNG     []byte
	Prompt       string // empty means DefaultPrompt
	CtxSize      int
}

// BuildPayload assembles the chat payload: system message first, then a user
// message with exactly one text part and one image part.
func BuildPayload(req Request) ChatPayload {
	prompt := req.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}

	return ChatPayload{
		Model: req.Model,
		Messages: []Message{
			{Role: "system", Content: req.SystemPrompt},
			{
				Role: "user",
				Content: []ContentPart{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &ImageURL{URL: DataURI(req.ImagePNG)}},
				},
			},
		},
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
		Stream:      false,
		N:           1,
		LogitBias:   map[string]float64{},
		ExtraBody: ExtraBody{
			TopP:              TopP,
			MinP:              MinP,
			RepetitionPenalty: RepetitionPenalty,
			NCtx:              req.CtxSize,
		},
	}
}

// DataURI embeds PNG bytes as a base64 data URI.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
