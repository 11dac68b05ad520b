// internal/scoring/scorer.go

// Package scoring adapts the remote AI model into the pipeline's scoring
// contract. The model is an untrusted black box: every numeric output is
// clamped into [0,100] and malformed responses are scoring failures.
package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"candidate-pipeline/internal/common/logger"
	"candidate-pipeline/internal/common/metrics"
	"candidate-pipeline/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrScoringFailed  = errors.New("SCORING_FAILED")
	ErrScoringTimeout = errors.New("SCORING_TIMEOUT")
)

// Result is the normalized scoring output.
type Result struct {
	Overall    int      `json:"overall"`
	Skills     int      `json:"skills"`
	Experience int      `json:"experience"`
	Education  int      `json:"education"`
	Insights   []string `json:"insights"`
}

// ChatClient is the subset of the OpenAI client the scorer uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Config struct {
	Model          string
	Temperature    float64
	Timeout        time.Duration
	MaxRetries     int
	TargetInsights int
}

// Engine calls the scoring model and normalizes its output.
type Engine struct {
	config Config
	client ChatClient
	logger logger.Logger
}

func NewEngine(config Config, client ChatClient, log logger.Logger) *Engine {
	if config.TargetInsights <= 0 {
		config.TargetInsights = 3
	}
	return &Engine{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "scoring-engine"}),
	}
}

// Score evaluates resume text against a role. The call is bounded by the
// configured timeout; transient failures are retried with exponential backoff
// inside that bound.
func (e *Engine) Score(ctx context.Context, resumeText string, role *models.RoleProfile) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       e.config.Model,
		Temperature: float32(e.config.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: e.buildPrompt(resumeText, role),
			},
		},
	}

	var resp openai.ChatCompletionResponse
	var lastErr error
	for attempt := 0; attempt <= e.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				metrics.ScoringCalls.WithLabelValues("timeout").Inc()
				return nil, ErrScoringTimeout
			}
		}

		resp, lastErr = e.client.CreateChatCompletion(ctx, req)
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			metrics.ScoringCalls.WithLabelValues("timeout").Inc()
			return nil, ErrScoringTimeout
		}
		e.logger.Warn("scoring call failed, retrying", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		})
	}
	if lastErr != nil {
		metrics.ScoringCalls.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrScoringFailed, lastErr)
	}

	if len(resp.Choices) == 0 {
		metrics.ScoringCalls.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: model returned no choices", ErrScoringFailed)
	}

	result, err := parseResult(resp.Choices[0].Message.Content)
	if err != nil {
		metrics.ScoringCalls.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrScoringFailed, err)
	}

	metrics.ScoringCalls.WithLabelValues("success").Inc()
	e.logger.Info("scoring completed", map[string]interface{}{
		"roleId":   role.ID,
		"overall":  result.Overall,
		"insights": len(result.Insights),
	})
	return result, nil
}

const systemPrompt = `You are a recruitment assistant that scores resumes against role profiles. ` +
	`Respond with a single JSON object: {"overall": 0-100, "skills": 0-100, "experience": 0-100, ` +
	`"education": 0-100, "insights": ["..."]}. Scores reflect how well the resume matches the role.`

func (e *Engine) buildPrompt(resumeText string, role *models.RoleProfile) string {
	var sb strings.Builder
	sb.WriteString("Role: ")
	sb.WriteString(role.Title)
	sb.WriteString("\n")
	if role.Description != "" {
		sb.WriteString("Description: ")
		sb.WriteString(role.Description)
		sb.WriteString("\n")
	}
	if len(role.RequiredSkills) > 0 {
		sb.WriteString("Required skills: ")
		sb.WriteString(strings.Join(role.RequiredSkills, ", "))
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Provide %d short insights.\n\nResume:\n", e.config.TargetInsights)
	sb.WriteString(resumeText)
	return sb.String()
}

// rawResult tolerates fractional numbers from the model.
type rawResult struct {
	Overall    float64  `json:"overall"`
	Skills     float64  `json:"skills"`
	Experience float64  `json:"experience"`
	Education  float64  `json:"education"`
	Insights   []string `json:"insights"`
}

func parseResult(content string) (*Result, error) {
	// Some models wrap JSON in markdown fences despite instructions.
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw rawResult
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("malformed model output: %v", err)
	}

	insights := make([]string, 0, len(raw.Insights))
	for _, in := range raw.Insights {
		in = strings.TrimSpace(in)
		if in != "" {
			insights = append(insights, in)
		}
	}

	return &Result{
		Overall:    Clamp(raw.Overall),
		Skills:     Clamp(raw.Skills),
		Experience: Clamp(raw.Experience),
		Education:  Clamp(raw.Education),
		Insights:   insights,
	}, nil
}

// Clamp forces a model-reported score into [0,100].
func Clamp(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v + 0.5)
}
