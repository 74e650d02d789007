package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"github.com/tabula/tabula/internal/service"
	"github.com/tabula/tabula/internal/tools"
)

const (
	defaultModel     = "claude-sonnet-4-6"
	defaultMaxTokens = 1024
	maxIterations    = 6
)

// ErrNoIntent is returned when the model finishes without producing an intent.
var ErrNoIntent = errors.New("model returned no intent")

// ToolCall represents a tool invocation request from the LLM
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// Config holds the agent's connection settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// IntentAgent translates questions into query intents with an Anthropic
// model that may inspect the catalog through tools before answering.
type IntentAgent struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	timeout   time.Duration
	table     string
	catalog   tools.Catalog
	tools     []tools.Tool
}

// NewIntentAgent creates an agent backed by Anthropic Claude or a compatible provider.
func NewIntentAgent(cfg Config, catalog tools.Catalog, table string) *IntentAgent {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &IntentAgent{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: defaultMaxTokens,
		timeout:   cfg.Timeout,
		table:     table,
		catalog:   catalog,
		tools:     append(tools.DatasetTools(catalog), tools.SubmitIntentTool()),
	}
}

// Translate runs the tool loop until the model submits an intent or replies
// with an intent as JSON text.
func (a *IntentAgent) Translate(ctx context.Context, question string) (service.QueryIntent, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	toolParams := make([]anthropic.ToolUnionUnionParam, len(a.tools))
	for i, t := range a.tools {
		toolParams[i] = anthropic.ToolParam{
			Name:        anthropic.String(t.Name),
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.F[interface{}](t.InputSchema),
		}
	}

	systemPrompt := a.systemPrompt()
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(question)),
	}

	for iter := 0; iter < maxIterations; iter++ {
		resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.F(anthropic.Model(a.model)),
			MaxTokens: anthropic.F(int64(a.maxTokens)),
			Messages:  anthropic.F(messages),
			Tools:     anthropic.F(toolParams),
			System: anthropic.F([]anthropic.TextBlockParam{
				anthropic.NewTextBlock(systemPrompt),
			}),
		})
		if err != nil {
			return service.QueryIntent{}, fmt.Errorf("LLM call failed: %w", err)
		}

		var textContent string
		var pendingToolCalls []ToolCall

		for _, block := range resp.Content {
			switch b := block.AsUnion().(type) {
			case anthropic.TextBlock:
				textContent += b.Text
			case anthropic.ToolUseBlock:
				var input map[string]interface{}
				if err := json.Unmarshal(b.Input, &input); err != nil {
					log.Warn().Err(err).Str("tool", b.Name).Msg("failed to parse tool input")
					input = map[string]interface{}{}
				}
				pendingToolCalls = append(pendingToolCalls, ToolCall{
					ID:    b.ID,
					Name:  b.Name,
					Input: input,
				})
			}
		}

		log.Debug().
			Int("iter", iter).
			Str("stop_reason", string(resp.StopReason)).
			Int("tool_calls", len(pendingToolCalls)).
			Msg("agent iteration")

		for _, tc := range pendingToolCalls {
			if tc.Name == tools.SubmitIntentName {
				return a.intentFromToolInput(tc.Input)
			}
		}

		if len(pendingToolCalls) == 0 {
			if strings.TrimSpace(textContent) == "" {
				return service.QueryIntent{}, ErrNoIntent
			}
			return parseIntentResponse(textContent, a.table)
		}

		messages = append(messages, resp.ToParam())

		var toolResults []anthropic.ContentBlockParamUnion
		for _, tc := range pendingToolCalls {
			result, execErr := executeTool(ctx, tc, a.tools)
			if execErr != nil {
				log.Warn().Err(execErr).Str("tool", tc.Name).Msg("tool execution error")
				result = fmt.Sprintf("error: %v", execErr)
			}
			toolResults = append(toolResults, anthropic.NewToolResultBlock(tc.ID, result, execErr != nil))
		}
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}

	return service.QueryIntent{}, fmt.Errorf("agent loop exceeded max iterations (%d)", maxIterations)
}

func (a *IntentAgent) intentFromToolInput(input map[string]interface{}) (service.QueryIntent, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return service.QueryIntent{}, fmt.Errorf("marshal intent input: %w", err)
	}
	return parseIntentResponse(string(raw), a.table)
}

func (a *IntentAgent) systemPrompt() string {
	var schema strings.Builder
	if info, err := a.catalog.Table(a.table); err == nil {
		for _, f := range info.Schema {
			fmt.Fprintf(&schema, "  - %s (%s)\n", f.Name, f.Type)
		}
	}
	return fmt.Sprintf(intentSystemPrompt, a.table, schema.String())
}

func executeTool(ctx context.Context, tc ToolCall, agentTools []tools.Tool) (string, error) {
	for _, t := range agentTools {
		if t.Name == tc.Name {
			return t.Execute(ctx, tc.Input)
		}
	}
	return "", fmt.Errorf("unknown tool: %s", tc.Name)
}

const intentSystemPrompt = `You translate questions about the %q table into a structured query intent.

Columns:
%s
Rules:
- operation is one of SELECT, COUNT, SUM, AVG. SUM and AVG apply to amount.
- regions is a list of lower-case region names. Leave it out when the question names no region.
- product is one lower-case product name: laptop, phone or tablet. Leave it out when none is named.
- Do not invent filters the question does not ask for.

When you know the answer call submit_query_intent. If you cannot call tools,
reply with only a JSON object such as {"operation":"COUNT","regions":["north"],"product":"laptop"}.`
