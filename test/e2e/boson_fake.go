package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Model IDs the harness wires into the generators. The fake dispatches on
// them, so scenarios never need to sniff request bodies themselves.
const (
	synthModelID = "audio-gen-e2e"
	sttModelID   = "audio-stt-e2e"
	chatModelID  = "chat-model-e2e"
)

// ScriptedBoson fakes the Boson chat-completions endpoint for all three
// models. Synthesis requests are told apart by their modalities field,
// transcription requests by the model ID; everything else is a plain chat
// completion (script rewrites and AI viewer messages).
type ScriptedBoson struct {
	URL string

	mu             sync.Mutex
	audio          string // payload returned for synthesis calls
	chatReply      string // content returned for plain chat calls
	transcript     string // content returned for transcription calls
	failSynthesis  int    // synthesis calls left to fail with a 500
	onSynthesis    func() // one-shot hook run before the next synthesis reply
	synthCalls     int
	chatCalls      int
	sttCalls       int
	lastChatPrompt string
}

// NewScriptedBoson starts the fake upstream. Shutdown is registered via
// t.Cleanup.
func NewScriptedBoson(t *testing.T) *ScriptedBoson {
	t.Helper()
	b := &ScriptedBoson{audio: "AAAA"}
	srv := httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(srv.Close)
	b.URL = srv.URL + "/v1"
	return b
}

// SetAudio sets the base64 payload returned by synthesis calls.
func (b *ScriptedBoson) SetAudio(audio string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.audio = audio
}

// SetChatReply sets the content returned by plain chat completions. An empty
// reply makes script rewrites keep the current script.
func (b *ScriptedBoson) SetChatReply(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chatReply = text
}

// SetTranscript sets the content returned by transcription calls.
func (b *ScriptedBoson) SetTranscript(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transcript = text
}

// FailSynthesis makes the next n synthesis calls answer with a 500.
func (b *ScriptedBoson) FailSynthesis(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failSynthesis = n
}

// OnSynthesis registers a hook run once, before the next synthesis reply.
// Scenarios use it to mutate state mid-tick, while the processor is between
// popping an interrupt and committing its results.
func (b *ScriptedBoson) OnSynthesis(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onSynthesis = fn
}

// SynthesisCalls returns how many synthesis requests arrived.
func (b *ScriptedBoson) SynthesisCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.synthCalls
}

// ChatCalls returns how many plain chat requests arrived.
func (b *ScriptedBoson) ChatCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chatCalls
}

// LastChatPrompt returns the user prompt of the most recent plain chat call.
func (b *ScriptedBoson) LastChatPrompt() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastChatPrompt
}

type completionRequest struct {
	Model      string   `json:"model"`
	Modalities []string `json:"modalities"`
	Messages   []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

func (b *ScriptedBoson) handle(w http.ResponseWriter, r *http.Request) {
	var req completionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case len(req.Modalities) > 0:
		b.handleSynthesis(w)
	case req.Model == sttModelID:
		b.mu.Lock()
		b.sttCalls++
		transcript := b.transcript
		b.mu.Unlock()
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, transcript)
	default:
		b.mu.Lock()
		b.chatCalls++
		reply := b.chatReply
		if last := req.Messages[len(req.Messages)-1]; len(last.Content) > 0 {
			_ = json.Unmarshal(last.Content, &b.lastChatPrompt)
		}
		b.mu.Unlock()
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, reply)
	}
}

func (b *ScriptedBoson) handleSynthesis(w http.ResponseWriter) {
	b.mu.Lock()
	b.synthCalls++
	hook := b.onSynthesis
	b.onSynthesis = nil
	fail := b.failSynthesis > 0
	if fail {
		b.failSynthesis--
	}
	audio := b.audio
	b.mu.Unlock()

	if hook != nil {
		hook()
	}
	if fail {
		http.Error(w, "upstream synthesis unavailable", http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, `{"choices":[{"message":{"audio":{"data":%q}}}]}`, audio)
}
