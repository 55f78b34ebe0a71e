// Package scriptgen rewrites the upcoming stream script with the LLM when a
// viewer event changes the direction of the show.
package scriptgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/streamforge/calliope/pkg/boson"
	"github.com/streamforge/calliope/pkg/catalog"
)

const systemPrompt = `You are the live writers' room for an AI streamer. You rewrite the upcoming lines of the stream script in real time, reacting to paid viewer events without breaking character.

Rules:
- Output only script lines, one per line, each formatted as [Speaker] text.
- Stay in the streamer's voice and keep the energy consistent with the recent history.
- React to the viewer event early in the rewrite, then steer back toward the remaining material.
- No stage directions, markdown, or commentary outside the bracketed lines.`

const rewriteTemplate = `The streamer is %s. Delivery style: %s

Recent speech history:
%s

Remaining scripted lines:
%s

Viewer event from %s: %s

Rewrite the remaining script so the streamer reacts naturally. Return only the new script lines in [Speaker] format.`

// Input carries the context for one script rewrite.
type Input struct {
	// History is the recent spoken lines, one "[persona] text" per line.
	History string

	// Trigger is the superchat message or the configured gift prompt.
	Trigger string

	// RemainingScript is the not-yet-spoken script, newline-joined.
	RemainingScript string

	// Sender is the persona that voiced the trigger; empty for gifts.
	Sender string
}

// Generator produces replacement scripts through the chat model.
type Generator struct {
	pool     *boson.Pool
	catalog  *catalog.Catalog
	model    string
	streamer string
}

// NewGenerator creates a new Generator. The streamer is the default persona
// whose voice the rewrite is written for.
func NewGenerator(pool *boson.Pool, cat *catalog.Catalog, model, streamer string) *Generator {
	if pool == nil {
		panic("NewGenerator: pool must not be nil")
	}
	if cat == nil {
		panic("NewGenerator: catalog must not be nil")
	}
	return &Generator{pool: pool, catalog: cat, model: model, streamer: streamer}
}

// Rewrite asks the model for a replacement script. The result is trimmed; an
// empty result means the model chose not to change the script and the caller
// should keep the current one.
func (g *Generator) Rewrite(ctx context.Context, input Input) (string, error) {
	sender := input.Sender
	if sender == "" {
		sender = "a viewer"
	}
	persona := g.catalog.Get(g.streamer)
	userPrompt := fmt.Sprintf(rewriteTemplate,
		persona.Key, persona.SceneDesc,
		input.History, input.RemainingScript,
		sender, input.Trigger)

	client := g.pool.Get()
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens:   param.NewOpt(int64(4096)),
		Temperature: param.NewOpt(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("script rewrite failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("script rewrite returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
