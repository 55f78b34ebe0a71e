// Package tts synthesizes speech through the Boson audio model. A synthesis
// call clones the persona's voice from its reference clip, optionally fans
// out to several candidates, and can score candidates by re-transcribing
// them and comparing against the requested text.
package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/sync/errgroup"

	"github.com/streamforge/calliope/pkg/boson"
	"github.com/streamforge/calliope/pkg/catalog"
)

// requestTimeout bounds a single synthesis attempt; retries get a fresh
// budget.
const requestTimeout = 30 * time.Second

const systemPromptFormat = "Generate audio following instruction. Speak consistently, naturally, and continuously.\n<|scene_desc_start|>\n%s\n<|scene_desc_end|>"

// stopTokens terminate generation at the model's end-of-audio markers.
var stopTokens = []string{"<|eot_id|>", "<|end_of_text|>", "<|audio_eos|>"}

// Params are the sampling settings for one synthesis call.
type Params struct {
	MaxCompletionTokens int64
	Temperature         float64
	TopP                float64
	TopK                int
	RASWinLen           int
	RAWWinMaxNumRepeat  int
}

// DefaultParams returns the sampling settings used on the live stream.
func DefaultParams() Params {
	return Params{
		MaxCompletionTokens: 1024,
		Temperature:         1.1,
		TopP:                0.95,
		TopK:                50,
	}
}

// Options configure a Generator.
type Options struct {
	// Model is the audio-generation model ID.
	Model string

	// STTModel transcribes candidates for valid-sampling scoring.
	STTModel string

	// Params defaults to DefaultParams when zero.
	Params Params

	// BestOf is the number of candidates per script line; values below 1
	// mean a single call.
	BestOf int

	// ValidSampling selects the candidate whose transcription best
	// matches the requested text instead of taking the first.
	ValidSampling bool

	// SaveWAV persists synthesized audio to OutputDir.
	SaveWAV bool

	// BestsDir holds hand-picked takes that bypass synthesis.
	BestsDir string

	// OutputDir receives saved WAV files.
	OutputDir string
}

// Generator turns script text into base64 audio chunks.
type Generator struct {
	pool          *boson.Pool
	catalog       *catalog.Catalog
	model         string
	sttModel      string
	params        Params
	bestOf        int
	validSampling bool
	saveWAV       bool
	bestsDir      string
	outputDir     string
}

// NewGenerator creates a new Generator.
func NewGenerator(pool *boson.Pool, cat *catalog.Catalog, opts Options) *Generator {
	if pool == nil {
		panic("NewGenerator: pool must not be nil")
	}
	if cat == nil {
		panic("NewGenerator: catalog must not be nil")
	}
	params := opts.Params
	if params == (Params{}) {
		params = DefaultParams()
	}
	bestOf := opts.BestOf
	if bestOf < 1 {
		bestOf = 1
	}
	return &Generator{
		pool:          pool,
		catalog:       cat,
		model:         opts.Model,
		sttModel:      opts.STTModel,
		params:        params,
		bestOf:        bestOf,
		validSampling: opts.ValidSampling,
		saveWAV:       opts.SaveWAV,
		bestsDir:      opts.BestsDir,
		outputDir:     opts.OutputDir,
	}
}

// Synthesize voices text as the given persona with a single candidate. Used
// for superchat callouts, which are not bound to a script line.
func (g *Generator) Synthesize(ctx context.Context, personaName, text string) (string, error) {
	persona := g.catalog.Get(personaName)
	audio, err := g.generateWithRetry(ctx, persona, text)
	if err != nil {
		return "", err
	}
	g.save(audio, persona.Key, -1)
	return audio, nil
}

// SynthesizeLine voices one script line. A hand-picked best take on disk
// wins outright; otherwise BestOf candidates are generated concurrently and
// one is selected.
func (g *Generator) SynthesizeLine(ctx context.Context, personaName, text string, lineIndex int) (string, error) {
	persona := g.catalog.Get(personaName)

	if audio, ok := g.cachedBest(persona.Key, lineIndex); ok {
		slog.Info("Using cached best audio", "persona", persona.Key, "line_index", lineIndex)
		return audio, nil
	}

	candidates, err := g.fanOut(ctx, persona, text, g.bestOf)
	if err != nil {
		return "", err
	}

	if g.validSampling && len(candidates) > 1 {
		audio, err := g.pickBest(ctx, candidates, text)
		if err != nil {
			return "", err
		}
		g.save(audio, persona.Key, lineIndex)
		return audio, nil
	}

	audio := candidates[0]
	for _, extra := range candidates[1:] {
		g.save(extra, persona.Key, lineIndex)
	}
	g.save(audio, persona.Key, lineIndex)
	return audio, nil
}

// fanOut issues n synthesis calls concurrently and returns all candidates.
func (g *Generator) fanOut(ctx context.Context, persona catalog.Persona, text string, n int) ([]string, error) {
	if n == 1 {
		audio, err := g.generateWithRetry(ctx, persona, text)
		if err != nil {
			return nil, err
		}
		return []string{audio}, nil
	}

	candidates := make([]string, n)
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range n {
		eg.Go(func() error {
			audio, err := g.generateWithRetry(egCtx, persona, text)
			if err != nil {
				return err
			}
			candidates[i] = audio
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

// pickBest transcribes every candidate concurrently and returns the one
// whose transcription is closest to the requested text.
func (g *Generator) pickBest(ctx context.Context, candidates []string, text string) (string, error) {
	scores := make([]float64, len(candidates))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, candidate := range candidates {
		eg.Go(func() error {
			score, err := g.ValidScore(egCtx, candidate, text)
			if err != nil {
				return err
			}
			scores[i] = score
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", fmt.Errorf("failed to score candidates: %w", err)
	}

	best := 0
	for i, score := range scores {
		if score > scores[best] {
			best = i
		}
	}
	slog.Info("Selected candidate by transcription score", "scores", scores, "winner", best)
	return candidates[best], nil
}

// generateWithRetry retries transient synthesis failures with exponential
// backoff, 1 s doubling up to 10 s between attempts, until the context is
// cancelled. Each attempt draws a fresh client from the pool so a throttled
// key does not pin the whole line.
func (g *Generator) generateWithRetry(ctx context.Context, persona catalog.Persona, text string) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 10 * time.Second
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0

	var audio string
	operation := func() error {
		var err error
		audio, err = g.generateOnce(ctx, persona, text)
		if err != nil {
			slog.Warn("TTS attempt failed, backing off",
				"persona", persona.Key, "error", err)
		}
		return err
	}
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	return audio, nil
}

// generateOnce performs a single voice-cloning chat completion.
func (g *Generator) generateOnce(ctx context.Context, persona catalog.Persona, text string) (string, error) {
	body := chatAudioRequest{
		Model:               g.model,
		Messages:            buildMessages(persona, text),
		Modalities:          []string{"text", "audio"},
		MaxCompletionTokens: g.params.MaxCompletionTokens,
		Temperature:         g.params.Temperature,
		TopP:                g.params.TopP,
		Stream:              false,
		Stop:                stopTokens,
		TopK:                g.params.TopK,
		RASWinLen:           g.params.RASWinLen,
		RAWWinMaxNumRepeat:  g.params.RAWWinMaxNumRepeat,
	}

	// SDK-level retries are off here: the backoff loop above owns the retry
	// policy for synthesis.
	client := g.pool.Get()
	var resp openai.ChatCompletion
	err := client.Post(ctx, "chat/completions", body, &resp,
		option.WithRequestTimeout(requestTimeout),
		option.WithMaxRetries(0))
	if err != nil {
		return "", fmt.Errorf("synthesis request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("synthesis response contained no choices")
	}
	audio := resp.Choices[0].Message.Audio.Data
	if audio == "" {
		return "", fmt.Errorf("synthesis response contained no audio")
	}
	return audio, nil
}

// buildMessages assembles the voice-cloning conversation: scene-conditioned
// system prompt, the reference transcript, the reference audio as an
// assistant turn, then the text to speak.
func buildMessages(persona catalog.Persona, text string) []chatMessage {
	return []chatMessage{
		{Role: "system", Content: fmt.Sprintf(systemPromptFormat, persona.SceneDesc)},
		{Role: "user", Content: persona.Transcript},
		{Role: "assistant", Content: []audioContentPart{{
			Type: "input_audio",
			InputAudio: inputAudio{
				Data:   base64.StdEncoding.EncodeToString(persona.Audio),
				Format: persona.AudioFormat,
			},
		}}},
		{Role: "user", Content: text},
	}
}

// chatAudioRequest is the audio-modality chat completion body. The typed SDK
// params do not cover assistant audio turns or the sampler extensions
// (top_k, ras_win_len, raw_win_max_num_repeat), so the request is built
// directly and sent through the SDK's raw Post.
type chatAudioRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Modalities          []string      `json:"modalities"`
	MaxCompletionTokens int64         `json:"max_completion_tokens"`
	Temperature         float64       `json:"temperature"`
	TopP                float64       `json:"top_p"`
	Stream              bool          `json:"stream"`
	Stop                []string      `json:"stop"`
	TopK                int           `json:"top_k"`
	RASWinLen           int           `json:"ras_win_len,omitempty"`
	RAWWinMaxNumRepeat  int           `json:"raw_win_max_num_repeat,omitempty"`
}

// chatMessage content is either a plain string or audio content parts.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type audioContentPart struct {
	Type       string     `json:"type"`
	InputAudio inputAudio `json:"input_audio"`
}

type inputAudio struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}
