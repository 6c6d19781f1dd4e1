package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lilo-planner/internal/model"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

const parsePromptFormat = `You are a task parser. Analyze user messages and determine if they want to create a task.
If yes, extract the task details and return JSON in this format:
{
  "shouldCreateTask": true,
  "task": {
    "title": "Task title",
    "date": "YYYY-MM-DD",
    "time": "HH:mm",
    "notes": "Optional notes",
    "repeat": "one-time|daily|weekly|monthly|yearly",
    "priority": "low|medium|high"
  }
}

If no task should be created, return: {"shouldCreateTask": false}

Current date for reference: %s`

const chatPromptFormat = `You are Lilo, an AI scheduling assistant for a time management app.
You help users plan their schedules, create tasks, and organize their time.

The user has these current tasks:
%s

When users ask you to create tasks or schedules, provide clear, actionable suggestions.
Be friendly, concise, and helpful. Focus on productivity and time management advice.`

// TaskCandidate is the structured extraction returned by the model.
type TaskCandidate struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Notes    string `json:"notes,omitempty"`
	Repeat   string `json:"repeat,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// ParseResult is the classification outcome for one message.
type ParseResult struct {
	ShouldCreateTask bool           `json:"shouldCreateTask"`
	Task             *TaskCandidate `json:"task,omitempty"`
}

// Oracle is the language-understanding collaborator behind the bridge.
// Both calls report a missing credential as model.ErrOracleUnavailable
// and any other failure wrapped in model.ErrOracleFailure.
type Oracle interface {
	ClassifyAndExtract(ctx context.Context, message string) (ParseResult, error)
	Converse(ctx context.Context, message string, contextTasks []model.Task) (string, error)
}

// GeminiClient calls the Gemini REST API.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewGeminiClient(apiKey, modelName string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   modelName,
		baseURL: geminiBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ClassifyAndExtract asks the model whether the message describes a task
// and, if so, for its structured fields.
func (c *GeminiClient) ClassifyAndExtract(ctx context.Context, message string) (ParseResult, error) {
	system := fmt.Sprintf(parsePromptFormat, c.now().UTC().Format("2006-01-02"))
	raw, err := c.generate(ctx, system, message, true)
	if err != nil {
		return ParseResult{}, err
	}

	var result ParseResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &result); err != nil {
		return ParseResult{}, fmt.Errorf("%w: decode extraction: %v", model.ErrOracleFailure, err)
	}
	return result, nil
}

// Converse returns a free-form reply, with the caller's task list given
// to the model as context.
func (c *GeminiClient) Converse(ctx context.Context, message string, contextTasks []model.Task) (string, error) {
	taskJSON, err := json.MarshalIndent(contextTasks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encode context: %v", model.ErrOracleFailure, err)
	}

	reply, err := c.generate(ctx, fmt.Sprintf(chatPromptFormat, taskJSON), message, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (c *GeminiClient) generate(ctx context.Context, system, message string, jsonOutput bool) (string, error) {
	if c.apiKey == "" {
		return "", model.ErrOracleUnavailable
	}

	reqBody := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: system}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: message}}}},
	}
	if jsonOutput {
		reqBody.GenerationConfig = &geminiGenerationConfig{ResponseMIMEType: "application/json"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", model.ErrOracleFailure, err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrOracleFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrOracleFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", model.ErrOracleFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr geminiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("%w: %s (%s)", model.ErrOracleFailure, apiErr.Error.Message, apiErr.Error.Status)
		}
		return "", fmt.Errorf("%w: status %d", model.ErrOracleFailure, resp.StatusCode)
	}

	var out geminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", model.ErrOracleFailure, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", model.ErrOracleFailure)
	}

	return out.Candidates[0].Content.Parts[0].Text, nil
}
