// Package catalog resolves streamer personas to their voice-cloning
// reference material. Reference audio is read from disk once at startup so a
// missing voice sample fails the boot instead of the first synthesis.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Persona bundles everything the synthesizer needs to clone a voice.
type Persona struct {
	// Key is the normalized persona name ("chinese_trump").
	Key string

	// Transcript is the exact text spoken in the reference audio.
	Transcript string

	// SceneDesc describes delivery style for the scene block of the TTS
	// prompt. Empty for personas without one.
	SceneDesc string

	// Audio is the raw reference sample.
	Audio []byte

	// AudioFormat is the sample's container format, from the file
	// extension ("wav").
	AudioFormat string
}

// Catalog holds the loaded personas and the fallback for unknown names.
type Catalog struct {
	personas   map[string]Persona
	defaultKey string
}

// Normalize maps a display name to a persona key: lowercased, spaces as
// underscores.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Load reads every built-in persona's reference audio from dir. The default
// persona must be one of the built-ins.
func Load(dir, defaultPersona string) (*Catalog, error) {
	defaultKey := Normalize(defaultPersona)
	if _, ok := references[defaultKey]; !ok {
		return nil, fmt.Errorf("unknown default persona %q", defaultPersona)
	}

	personas := make(map[string]Persona, len(references))
	for key, ref := range references {
		path := filepath.Join(dir, key+"_voice.wav")
		audio, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read reference audio for persona %q: %w", key, err)
		}
		personas[key] = Persona{
			Key:         key,
			Transcript:  strings.TrimSpace(ref.transcript),
			SceneDesc:   ref.sceneDesc,
			Audio:       audio,
			AudioFormat: strings.TrimPrefix(filepath.Ext(path), "."),
		}
	}

	return &Catalog{personas: personas, defaultKey: defaultKey}, nil
}

// Get resolves a persona by name, falling back to the default persona when
// the name is unknown or blank.
func (c *Catalog) Get(name string) Persona {
	if p, ok := c.personas[Normalize(name)]; ok {
		return p
	}
	return c.personas[c.defaultKey]
}

// Has reports whether name resolves to a configured persona without falling
// back.
func (c *Catalog) Has(name string) bool {
	_, ok := c.personas[Normalize(name)]
	return ok
}

// DefaultKey returns the fallback persona key.
func (c *Catalog) DefaultKey() string {
	return c.defaultKey
}
