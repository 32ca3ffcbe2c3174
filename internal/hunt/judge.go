package hunt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Judge scores a photo against a task prompt and returns the raw JSON payload
// produced by the model. Output is untrusted and must go through
// NormalizeJudgeResponse before persistence.
type Judge interface {
	Judge(ctx context.Context, image []byte, contentType, prompt string) ([]byte, error)
}

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

const defaultGeminiModel = "gemini-2.0-flash"

// JudgeTimeout bounds a single judge invocation end to end.
const JudgeTimeout = 30 * time.Second

// GeminiJudge calls the Gemini generateContent REST API with JSON-mode output.
type GeminiJudge struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
}

func NewGeminiJudge(apiKey string) *GeminiJudge {
	return &GeminiJudge{
		apiKey:   apiKey,
		endpoint: defaultGeminiEndpoint,
		model:    defaultGeminiModel,
		httpClient: &http.Client{
			Timeout: JudgeTimeout,
		},
	}
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"response_mime_type"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (j *GeminiJudge) Judge(ctx context.Context, image []byte, contentType, prompt string) ([]byte, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{
					MimeType: contentType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
		GenerationConfig: geminiGenerationConfig{ResponseMimeType: "application/json"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", j.endpoint, j.model, j.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := j.httpClient.Do(req)
	if err != nil {
		log.Printf("[judge] request error: %v", err)
		return nil, fmt.Errorf("judge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("judge status %d", resp.StatusCode)
		log.Printf("[judge] %v", err)
		return nil, err
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		log.Printf("[judge] decode error: %v", err)
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("judge returned no candidates")
	}

	log.Printf("[judge] response status=%d duration=%dms", resp.StatusCode, time.Since(start).Milliseconds())
	return []byte(gr.Candidates[0].Content.Parts[0].Text), nil
}

// BuildJudgePrompt renders the scoring instructions for a task. The output
// contract must line up with NormalizeJudgeResponse.
func BuildJudgePrompt(task Task) string {
	return fmt.Sprintf(`Role: You are a strict scavenger hunt judge.
Task: Verify if the image contains: %s

Instructions:
- Analyze the image carefully for the requested item
- Be strict but fair in your assessment
- Consider lighting, clarity, and prominence of the item
- Score accuracy out of 50, composition out of 25, vibe out of 25
- If the requested item is not present, accuracy must be 0
- Provide brief, helpful commentary

Output: Return JSON only with this exact format:
{
  "score": 0-100,
  "breakdown": { "accuracy": 0-50, "composition": 0-25, "vibe": 0-25 },
  "is_approved": true/false,
  "comment": "brief explanation"
}`, task.AIPrompt)
}
