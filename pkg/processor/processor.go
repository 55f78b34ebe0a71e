// Package processor drives the live stream. Each tick converts one unit of
// work, a viewer interrupt or the next script line, into synthesized audio
// and keeps the script, history, and interrupt records consistent.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/streamforge/calliope/pkg/models"
	"github.com/streamforge/calliope/pkg/scriptgen"
	"github.com/streamforge/calliope/pkg/store"
)

// historySnapshotLimit bounds how many spoken lines feed a script rewrite.
const historySnapshotLimit = 50

// ErrUnsupportedInterruptKind indicates an interrupt whose kind the
// processor cannot dispatch. Input validation keeps these out of the queue,
// so hitting one means corrupted state; it is not requeued.
var ErrUnsupportedInterruptKind = errors.New("unsupported interrupt kind")

// Synthesizer turns text into base64 audio.
type Synthesizer interface {
	// Synthesize voices a one-off callout, not bound to a script line.
	Synthesize(ctx context.Context, persona, text string) (string, error)

	// SynthesizeLine voices one script line, identified by its ordinal for
	// best-take caching.
	SynthesizeLine(ctx context.Context, persona, text string, lineIndex int) (string, error)
}

// Rewriter produces a replacement script for a viewer event.
type Rewriter interface {
	Rewrite(ctx context.Context, input scriptgen.Input) (string, error)
}

// Outcome describes the unit of work one tick performed.
type Outcome struct {
	Type    models.AudioKind
	ChunkID string
	Persona string
	Text    string

	// ScriptEnqueued reports whether a gift rewrite replaced the script.
	ScriptEnqueued bool
}

// Options carry the stream-level settings for a processor.
type Options struct {
	// DefaultPersona voices script lines without a speaker tag.
	DefaultPersona string

	// DefaultScript is loaded on reset.
	DefaultScript string

	// GiftPrompt is the rewrite trigger for gift interrupts.
	GiftPrompt string
}

// StreamProcessor owns all writes to the script, audio, and history queues
// and to interrupt statuses. It runs single-threaded under one worker; the
// line counter below needs no locking.
type StreamProcessor struct {
	script     *store.ScriptQueue
	audio      *store.AudioQueue
	history    *store.HistoryLog
	interrupts *store.InterruptStore
	synth      Synthesizer
	rewriter   Rewriter
	opts       Options

	lineIndex int
}

// NewStreamProcessor creates a new StreamProcessor.
func NewStreamProcessor(script *store.ScriptQueue, audio *store.AudioQueue, history *store.HistoryLog, interrupts *store.InterruptStore, synth Synthesizer, rewriter Rewriter, opts Options) *StreamProcessor {
	if script == nil {
		panic("NewStreamProcessor: script must not be nil")
	}
	if audio == nil {
		panic("NewStreamProcessor: audio must not be nil")
	}
	if history == nil {
		panic("NewStreamProcessor: history must not be nil")
	}
	if interrupts == nil {
		panic("NewStreamProcessor: interrupts must not be nil")
	}
	if synth == nil {
		panic("NewStreamProcessor: synth must not be nil")
	}
	if rewriter == nil {
		panic("NewStreamProcessor: rewriter must not be nil")
	}
	return &StreamProcessor{
		script:     script,
		audio:      audio,
		history:    history,
		interrupts: interrupts,
		synth:      synth,
		rewriter:   rewriter,
		opts:       opts,
	}
}

// ProcessOnce executes the next unit of work: a pending interrupt wins over
// the next script line. Returns nil when there is nothing to do. A failed
// interrupt is pushed back to the queue tail for another attempt.
func (p *StreamProcessor) ProcessOnce(ctx context.Context) (*Outcome, error) {
	record, err := p.interrupts.PopNext(ctx)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return p.handleScriptLine(ctx)
	}

	slog.Info("Processing interrupt", "interrupt_id", record.InterruptID, "kind", record.Kind)
	outcome, err := p.handleInterrupt(ctx, *record)
	if err != nil {
		if errors.Is(err, ErrUnsupportedInterruptKind) {
			return nil, err
		}
		slog.Warn("Interrupt handling failed, requeueing", "interrupt_id", record.InterruptID, "error", err)
		if requeueErr := p.interrupts.Requeue(ctx, *record); requeueErr != nil {
			slog.Error("Failed to requeue interrupt", "interrupt_id", record.InterruptID, "error", requeueErr)
		}
		return nil, err
	}
	return outcome, nil
}

func (p *StreamProcessor) handleInterrupt(ctx context.Context, record models.InterruptRecord) (*Outcome, error) {
	switch record.Kind {
	case models.KindSuperchat:
		return p.processSuperchat(ctx, record)
	case models.KindGift:
		return p.processGift(ctx, record)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInterruptKind, record.Kind)
	}
}

// processSuperchat voices the paid message as its sender, then rewrites the
// remaining script around it.
func (p *StreamProcessor) processSuperchat(ctx context.Context, record models.InterruptRecord) (*Outcome, error) {
	if record.Message == "" {
		return nil, fmt.Errorf("superchat interrupt %s has no message", record.InterruptID)
	}
	persona := record.Persona
	if persona == "" {
		persona = p.opts.DefaultPersona
	}

	slog.Info("Generating superchat audio", "interrupt_id", record.InterruptID, "persona", persona)
	audio, err := p.synth.Synthesize(ctx, persona, record.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize superchat audio: %w", err)
	}

	chunkID, err := p.audio.Enqueue(ctx, models.KindSuperchat, audio, record.Message, persona)
	if err != nil {
		return nil, err
	}
	if err := p.appendHistory(ctx, persona, record.Message, models.KindSuperchat, chunkID); err != nil {
		return nil, err
	}

	p.rewriteScript(ctx, record.Message, persona, models.KindGeneral)

	if err := p.interrupts.MarkProcessed(ctx, record.InterruptID, models.InterruptProcessed); err != nil {
		return nil, err
	}
	return &Outcome{
		Type:    models.KindSuperchat,
		ChunkID: chunkID,
		Persona: persona,
		Text:    record.Message,
	}, nil
}

// processGift produces no immediate audio; it queues a reaction into the
// script instead.
func (p *StreamProcessor) processGift(ctx context.Context, record models.InterruptRecord) (*Outcome, error) {
	enqueued := p.rewriteScript(ctx, p.opts.GiftPrompt, "", models.KindGift)
	if err := p.interrupts.MarkProcessed(ctx, record.InterruptID, models.InterruptQueuedScript); err != nil {
		return nil, err
	}
	return &Outcome{Type: models.KindGift, ScriptEnqueued: enqueued}, nil
}

// handleScriptLine pops and voices the next script line. The inline
// [Speaker] tag wins over the entry's persona.
func (p *StreamProcessor) handleScriptLine(ctx context.Context) (*Outcome, error) {
	entry, err := p.script.PopHead(ctx)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	speaker, text := parseSpeaker(strings.TrimSpace(entry.Line))
	if speaker == "" {
		speaker = strings.ToLower(entry.Persona)
	}
	if speaker == "" {
		speaker = p.opts.DefaultPersona
	}
	if text == "" {
		slog.Warn("Skipping script line with no spoken text", "line", entry.Line)
		return nil, nil
	}

	slog.Info("Voicing script line", "speaker", speaker, "kind", entry.Kind, "line_index", p.lineIndex)
	audio, err := p.synth.SynthesizeLine(ctx, speaker, text, p.lineIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize script line: %w", err)
	}

	kind := entry.Kind
	if !kind.Valid() {
		kind = models.KindGeneral
	}
	chunkID, err := p.audio.Enqueue(ctx, kind, audio, text, speaker)
	if err != nil {
		return nil, err
	}
	if err := p.appendHistory(ctx, speaker, text, kind, chunkID); err != nil {
		return nil, err
	}

	p.lineIndex++
	return &Outcome{Type: kind, ChunkID: chunkID, Persona: speaker, Text: text}, nil
}

// rewriteScript asks the LLM for a replacement script and swaps it in. The
// rewrite is best-effort: on failure or empty output the current script
// keeps playing. Reports whether a new script was installed.
func (p *StreamProcessor) rewriteScript(ctx context.Context, trigger, sender string, kind models.AudioKind) bool {
	history, err := p.history.Snapshot(ctx, historySnapshotLimit)
	if err != nil {
		slog.Error("Failed to snapshot history for rewrite", "error", err)
		return false
	}
	remaining, err := p.script.SnapshotRemaining(ctx)
	if err != nil {
		slog.Error("Failed to snapshot remaining script for rewrite", "error", err)
		return false
	}

	newScript, err := p.rewriter.Rewrite(ctx, scriptgen.Input{
		History:         history,
		Trigger:         trigger,
		RemainingScript: remaining,
		Sender:          sender,
	})
	if err != nil {
		slog.Error("Script rewrite failed, keeping current script", "error", err)
		return false
	}
	if newScript == "" {
		slog.Info("Rewrite returned no follow-up script, keeping current script")
		return false
	}
	if err := p.replaceScript(ctx, newScript, kind); err != nil {
		slog.Error("Failed to install rewritten script", "error", err)
		return false
	}
	slog.Info("Installed rewritten script", "kind", kind)
	return true
}

// replaceScript swaps the whole queue and rewinds the line counter.
func (p *StreamProcessor) replaceScript(ctx context.Context, text string, kind models.AudioKind) error {
	p.lineIndex = 0
	n, err := p.script.Replace(ctx, text, kind, p.opts.DefaultPersona)
	if err != nil {
		return err
	}
	if n == 0 {
		slog.Info("Received empty script; script queue cleared")
	}
	return nil
}

// ResetState clears the audio queue, interrupts, and history, then reloads
// the built-in default script.
func (p *StreamProcessor) ResetState(ctx context.Context) error {
	slog.Info("Resetting stream state")
	if err := p.audio.Reset(ctx); err != nil {
		return err
	}
	if err := p.interrupts.Reset(ctx); err != nil {
		return err
	}
	if err := p.history.Reset(ctx); err != nil {
		return err
	}
	if err := p.replaceScript(ctx, p.opts.DefaultScript, models.KindGeneral); err != nil {
		return err
	}
	slog.Info("Stream state reset complete")
	return nil
}

// EnsureSeeded loads the default script on a completely fresh deployment.
// Any existing state (a mid-show restart) is left untouched.
func (p *StreamProcessor) EnsureSeeded(ctx context.Context) error {
	scriptLen, err := p.script.Len(ctx)
	if err != nil {
		return err
	}
	audioCount, err := p.audio.Count(ctx)
	if err != nil {
		return err
	}
	historyLen, err := p.history.Len(ctx)
	if err != nil {
		return err
	}
	pending, err := p.interrupts.PendingCount(ctx)
	if err != nil {
		return err
	}
	if scriptLen == 0 && audioCount == 0 && historyLen == 0 && pending == 0 {
		slog.Info("Empty stream state detected, seeding default script")
		return p.ResetState(ctx)
	}
	return nil
}

func (p *StreamProcessor) appendHistory(ctx context.Context, persona, text string, kind models.AudioKind, chunkID string) error {
	return p.history.Append(ctx, models.HistoryRecord{
		Persona:   persona,
		Text:      text,
		Kind:      kind,
		ChunkID:   chunkID,
		Timestamp: models.UnixSeconds(time.Now()),
	})
}

// parseSpeaker splits a "[Speaker] text" line into the lowercased speaker
// tag and the spoken text. Lines without a leading tag return an empty
// speaker and the full line.
func parseSpeaker(line string) (string, string) {
	if !strings.HasPrefix(line, "[") {
		return "", line
	}
	end := strings.Index(line, "]")
	if end < 0 {
		return "", line
	}
	speaker := strings.ToLower(strings.TrimSpace(line[1:end]))
	text := strings.TrimSpace(line[end+1:])
	return speaker, text
}
