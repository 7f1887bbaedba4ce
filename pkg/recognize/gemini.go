package recognize

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultRegion = "europe-west1"
	DefaultModel  = "gemini-2.5-flash"
)

// languageNames maps OCR-style language codes to prompt names.
var languageNames = map[string]string{
	"chi_tra": "Traditional Chinese",
	"chi_sim": "Simplified Chinese",
	"eng":     "English",
}

// Gemini recognizes text with a Gemini model on Vertex AI. The genai client
// holds no resources that need releasing.
type Gemini struct {
	client    *genai.Client
	modelName string
}

var _ Recognizer = (*Gemini)(nil)

// NewGemini creates a client using Application Default Credentials.
// Set GOOGLE_APPLICATION_CREDENTIALS to the service account key file path.
func NewGemini(ctx context.Context, projectID, region, model string) (*Gemini, error) {
	if projectID == "" {
		return nil, fmt.Errorf("gemini: project id is required")
	}
	if region == "" {
		region = DefaultRegion
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: region,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, modelName: model}, nil
}

// Recognize sends the image inline with a transcription prompt built from hints.
func (g *Gemini) Recognize(ctx context.Context, data []byte, mimeType string, hints []string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildPrompt(hints)},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "text/plain",
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResult
	}
	return text, nil
}

func buildPrompt(hints []string) string {
	if len(hints) == 0 {
		hints = DefaultLanguages
	}
	names := make([]string, 0, len(hints))
	for _, h := range hints {
		if n, ok := languageNames[h]; ok {
			names = append(names, n)
		} else {
			names = append(names, h)
		}
	}
	return "Transcribe all text visible in this image exactly as written. " +
		"The text may be in " + strings.Join(names, " and ") + ". " +
		"Keep characters in their original script, do not translate and do not add pinyin. " +
		"Reply ONLY with the transcribed text."
}
