package tts

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

var nonWordRE = regexp.MustCompile(`[^\w\s]`)

// normalizeWords lowercases, strips punctuation, and splits on whitespace.
func normalizeWords(s string) []string {
	return strings.Fields(nonWordRE.ReplaceAllString(strings.ToLower(s), ""))
}

// wordErrorRate is the word-level edit distance from reference to hypothesis
// divided by the reference length. Identical texts score 0; a hypothesis
// missing half the reference words scores 0.5.
func wordErrorRate(reference, hypothesis string) float64 {
	ref := normalizeWords(reference)
	hyp := normalizeWords(hypothesis)

	prev := make([]int, len(hyp)+1)
	curr := make([]int, len(hyp)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ref); i++ {
		curr[0] = i
		for j := 1; j <= len(hyp); j++ {
			if ref[i-1] == hyp[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = min(prev[j-1], prev[j], curr[j-1]) + 1
			}
		}
		prev, curr = curr, prev
	}
	return float64(prev[len(hyp)]) / float64(max(1, len(ref)))
}

// ValidScore transcribes candidate audio with the understanding model and
// returns 1 - WER against the requested text. Higher is better; 1.0 means
// the transcription matched the text word for word.
func (g *Generator) ValidScore(ctx context.Context, audioB64, reference string) (float64, error) {
	client := g.pool.Get()
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.sttModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("Transcribe this audio."),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.InputAudioContentPart(openai.ChatCompletionContentPartInputAudioInputAudioParam{
					Data:   audioB64,
					Format: "wav",
				}),
			}),
		},
		MaxCompletionTokens: param.NewOpt(int64(1024)),
		Temperature:         param.NewOpt(0.0),
	})
	if err != nil {
		return 0, fmt.Errorf("transcription request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("transcription response contained no choices")
	}
	return 1 - wordErrorRate(reference, resp.Choices[0].Message.Content), nil
}
