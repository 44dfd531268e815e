package enrichment

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"aiPlanner/internal/config"
	"aiPlanner/internal/logger"
	"aiPlanner/internal/models/task"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	parseInstruction = `You turn the user's note into planner tasks.
Merge the input into ONE task unless it clearly lists unrelated tasks.
Plain text goes into description and the checklist stays empty.
Input that starts with "Mötesanteckningar" is meeting notes: every action item goes into checklist.
Keep company and person names in the title or description, and also list them in tags.
The current time is %s. A date without a time means 08:00 local time.
Answer in the language of the input.`

	enhanceInstruction = `The user created a task with the given title.
Write a short professional description of what the task involves
and a concrete checklist of 3-5 steps. Answer in Swedish.`

	scheduleInstruction = `Suggest a realistic deadline and an estimated duration (for example "15 min" or "1h") for the task.
The current time is %s. Start tomorrow at the earliest unless the task is urgent.
Put administrative work in the morning and meetings in the afternoon.`
)

// GeminiClient вызывает generateContent через genai с JSON-схемой ответа.
// Ответ модели дальше всё равно проходит Decode*, схеме запроса мы не доверяем
type GeminiClient struct {
	apiKey     string
	baseURL    string
	apiVersion string
	model      string
	httpClient *http.Client
	loc        *time.Location
}

func NewGeminiClient(cfg config.EnrichmentConfig, loc *time.Location) *GeminiClient {
	if loc == nil {
		loc = time.Local
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		apiVersion: cfg.APIVersion,
		model:      cfg.Model,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		loc: loc,
	}
}

func (c *GeminiClient) ParseText(ctx context.Context, text string, now time.Time) ([]Draft, error) {
	instruction := fmt.Sprintf(parseInstruction, now.In(c.loc).Format(time.RFC3339))
	payload, err := c.generate(ctx, instruction, text, draftsSchema)
	if err != nil {
		return nil, err
	}
	return DecodeDrafts(payload, c.loc)
}

func (c *GeminiClient) Enhance(ctx context.Context, title string) (*Enhancement, error) {
	payload, err := c.generate(ctx, enhanceInstruction, title, enhancementSchema)
	if err != nil {
		return nil, err
	}
	return DecodeEnhancement(payload)
}

func (c *GeminiClient) SuggestSchedule(ctx context.Context, t *task.Task, now time.Time) (*Schedule, error) {
	instruction := fmt.Sprintf(scheduleInstruction, now.In(c.loc).Format(time.RFC3339))
	content := "Uppgift: " + t.Title
	if t.Description != "" {
		content += "\n" + t.Description
	}
	payload, err := c.generate(ctx, instruction, content, scheduleSchema)
	if err != nil {
		return nil, err
	}
	return DecodeSchedule(payload, c.loc)
}

func (c *GeminiClient) newClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     c.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    c.baseURL,
			APIVersion: c.apiVersion,
		},
	})
}

// generate возвращает текст первого кандидата
func (c *GeminiClient) generate(ctx context.Context, instruction, content string, schema *genai.Schema) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := c.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	start := time.Now()

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(content), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if time.Since(start) > 10*time.Second {
		logger.Warn("Enrichment: Медленный ответ модели", zap.String("model", c.model), zap.Duration("ms", time.Since(start)))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("%w: нет кандидатов", ErrInvalidPayload)
	}
	return []byte(text), nil
}
