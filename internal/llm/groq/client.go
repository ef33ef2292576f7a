package groq

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/G26karthik/AI-Interview-Assistant/internal/llm"
	"github.com/G26karthik/AI-Interview-Assistant/internal/shared/telemetry"
)

const (
	defaultAPIURL = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel  = "llama-3.1-8b-instant"

	maxQuestionLen = 300
	maxSummaryLen  = 800

	chatRetries    = 2
	retryBaseDelay = 500 * time.Millisecond
)

const degradedFeedback = "Scoring failed - please refine answer or retry."

// Client speaks the Groq OpenAI-compatible chat-completions API and
// implements the Generator, Scorer, and Summarizer capabilities.
type Client struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

// NewClient constructs a Groq client. An empty model falls back to the
// default instant model.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		apiURL: defaultAPIURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type chatOptions struct {
	temperature float32
	maxTokens   int
}

// chat performs a non-streaming completion with bounded fixed-backoff
// retries on transient failures.
func (c *Client) chat(ctx context.Context, messages []chatMessage, opts chatOptions) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= chatRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * retryBaseDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		content, err := c.chatOnce(ctx, messages, opts)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

func (c *Client) chatOnce(ctx context.Context, messages []chatMessage, opts chatOptions) (string, error) {
	resp, err := c.post(ctx, messages, opts, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("groq response parse: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("groq error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("groq response missing choices")
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("groq response empty content")
	}
	return content, nil
}

func (c *Client) post(ctx context.Context, messages []chatMessage, opts chatOptions, stream bool) (*http.Response, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.temperature,
		MaxTokens:   opts.maxTokens,
		Stream:      stream,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("groq http status %d", resp.StatusCode)
	}
	return resp, nil
}

var leadingNumbering = regexp.MustCompile(`^[\d\-\)\.\s]+`)

// Generate produces one interview question.
func (c *Client) Generate(ctx context.Context, level, role, promptContext string) (string, error) {
	prompt := buildQuestionPrompt(level, role, promptContext)
	content, err := c.chat(ctx, []chatMessage{{Role: "user", Content: prompt}}, chatOptions{
		temperature: 0.4,
		maxTokens:   256,
	})
	if err != nil {
		return "", err
	}
	content = leadingNumbering.ReplaceAllString(content, "")
	return truncate(content, maxQuestionLen), nil
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Stream delivers incremental question text to onToken, decoding the
// server-sent event lines until [DONE] or EOF.
func (c *Client) Stream(ctx context.Context, level, role, promptContext string, onToken func(string)) error {
	prompt := buildQuestionPrompt(level, role, promptContext)
	resp, err := c.post(ctx, []chatMessage{{Role: "user", Content: prompt}}, chatOptions{
		temperature: 0.35,
		maxTokens:   180,
	}, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimSpace(line[len("data: "):])
		if payload == "[DONE]" {
			return nil
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			onToken(chunk.Choices[0].Delta.Content)
		}
	}
	return scanner.Err()
}

var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// Score evaluates an answer. Failures never propagate: the result is a
// degraded zero score with explanatory feedback plus ErrScoreDegraded.
func (c *Client) Score(ctx context.Context, question, answer string) (llm.Score, error) {
	raw, err := c.chat(ctx, []chatMessage{
		{Role: "system", Content: scoreSystemPrompt},
		{Role: "user", Content: buildScoreUserPrompt(question, answer)},
	}, chatOptions{temperature: 0.15, maxTokens: 200})
	if err != nil {
		telemetry.Error("groq.score", map[string]any{"error": err.Error()})
		return llm.Score{Numeric: 0, Feedback: degradedFeedback}, llm.ErrScoreDegraded
	}
	if match := jsonBlock.FindString(raw); match != "" {
		// A block without a numeric value is not a score.
		var parsed struct {
			Numeric  *float64 `json:"numeric"`
			Feedback string   `json:"feedback"`
		}
		if err := json.Unmarshal([]byte(match), &parsed); err == nil && parsed.Numeric != nil {
			return llm.Score{Numeric: *parsed.Numeric, Feedback: parsed.Feedback}, nil
		}
	}
	telemetry.Error("groq.score", map[string]any{"error": "unparseable score payload"})
	return llm.Score{Numeric: 0, Feedback: degradedFeedback}, llm.ErrScoreDegraded
}

// Summarize writes the end-of-interview summary, falling back to a plain
// score statement when generation fails.
func (c *Client) Summarize(ctx context.Context, input llm.SummaryInput) (llm.SummaryResult, error) {
	content, err := c.chat(ctx, []chatMessage{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: buildSummaryUserPrompt(input)},
	}, chatOptions{temperature: 0.35, maxTokens: 320})
	if err != nil {
		telemetry.Error("groq.summary", map[string]any{"error": err.Error()})
		return llm.SummaryResult{
			Score:   input.WeightedScore,
			Summary: fmt.Sprintf("Candidate achieved weighted score %g.", input.WeightedScore),
		}, nil
	}
	return llm.SummaryResult{
		Score:   input.WeightedScore,
		Summary: truncate(content, maxSummaryLen),
	}, nil
}

var (
	_ llm.Generator  = (*Client)(nil)
	_ llm.Scorer     = (*Client)(nil)
	_ llm.Summarizer = (*Client)(nil)
)
