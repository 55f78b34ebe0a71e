// Package e2e boots a complete stream backend (real stores, generators,
// processor, and HTTP server) against miniredis and a scripted Boson
// upstream, and exercises it the way the frontend and viewers do.
package e2e

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/calliope/pkg/api"
	"github.com/streamforge/calliope/pkg/boson"
	"github.com/streamforge/calliope/pkg/catalog"
	"github.com/streamforge/calliope/pkg/processor"
	"github.com/streamforge/calliope/pkg/scriptgen"
	"github.com/streamforge/calliope/pkg/services"
	"github.com/streamforge/calliope/pkg/store"
	"github.com/streamforge/calliope/pkg/tts"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// defaultTestScript is the seed script for scenarios that don't bring their
// own. Three lines keep playthrough assertions short.
const defaultTestScript = "[Speed] Yo chat, we are live!\n" +
	"[Speed] Today we are reading the attention paper.\n" +
	"[Speed] Multi-head attention, let's go."

const defaultGiftPrompt = "A viewer just sent a gift!"

// TestApp is a fully wired stream backend for end-to-end tests. The
// processor is driven by explicit Tick calls so scenarios control exactly
// when stream work happens.
type TestApp struct {
	Boson *ScriptedBoson
	Redis *redis.Client

	Script     *store.ScriptQueue
	Audio      *store.AudioQueue
	History    *store.HistoryLog
	Interrupts *store.InterruptStore
	Messages   *store.MessageList

	Processor *processor.StreamProcessor
	Server    *api.Server
	BaseURL   string

	t *testing.T
}

type testAppConfig struct {
	script     string
	giftPrompt string
	bestOf     int
}

// TestAppOption configures the test app.
type TestAppOption func(*testAppConfig)

// WithScript seeds a custom default script.
func WithScript(script string) TestAppOption {
	return func(c *testAppConfig) { c.script = script }
}

// WithGiftPrompt overrides the gift rewrite trigger.
func WithGiftPrompt(prompt string) TestAppOption {
	return func(c *testAppConfig) { c.giftPrompt = prompt }
}

// WithBestOf sets the number of synthesis candidates per script line.
func WithBestOf(n int) TestAppOption {
	return func(c *testAppConfig) { c.bestOf = n }
}

// NewTestApp creates and seeds a full stream backend instance. Cleanup is
// registered via t.Cleanup automatically.
func NewTestApp(t *testing.T, opts ...TestAppOption) *TestApp {
	t.Helper()

	tc := &testAppConfig{
		script:     defaultTestScript,
		giftPrompt: defaultGiftPrompt,
		bestOf:     1,
	}
	for _, opt := range opts {
		opt(tc)
	}

	// 1. State store.
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	// 2. Scripted model upstream and client pool.
	scripted := NewScriptedBoson(t)
	pool, err := boson.NewPool(scripted.URL, []string{"e2e-key"})
	require.NoError(t, err)

	// 3. Persona catalog from throwaway reference clips.
	refDir := t.TempDir()
	for _, key := range []string{"speed", "chinese_trump", "peter_griffin", "spongebob"} {
		require.NoError(t, os.WriteFile(filepath.Join(refDir, key+"_voice.wav"), []byte("ref-"+key), 0o644))
	}
	personas, err := catalog.Load(refDir, "speed")
	require.NoError(t, err)

	// 4. Stores.
	app := &TestApp{
		Boson:      scripted,
		Redis:      client,
		Script:     store.NewScriptQueue(client),
		Audio:      store.NewAudioQueue(client),
		History:    store.NewHistoryLog(client),
		Interrupts: store.NewInterruptStore(client),
		Messages:   store.NewMessageList(client),
		t:          t,
	}

	// 5. Generators and processor.
	synth := tts.NewGenerator(pool, personas, tts.Options{
		Model:    synthModelID,
		STTModel: sttModelID,
		BestOf:   tc.bestOf,
	})
	rewriter := scriptgen.NewGenerator(pool, personas, chatModelID, "speed")
	app.Processor = processor.NewStreamProcessor(app.Script, app.Audio, app.History, app.Interrupts, synth, rewriter, processor.Options{
		DefaultPersona: "speed",
		DefaultScript:  tc.script,
		GiftPrompt:     tc.giftPrompt,
	})
	require.NoError(t, app.Processor.EnsureSeeded(context.Background()))

	// 6. HTTP surface.
	app.Server = api.NewServer(
		services.NewAudioService(app.Audio),
		services.NewInterruptService(app.Interrupts),
		services.NewMessageService(app.Messages, pool, chatModelID),
	)
	srv := httptest.NewServer(app.Server.Handler())
	t.Cleanup(srv.Close)
	app.BaseURL = srv.URL

	return app
}
