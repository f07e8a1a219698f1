// Package models tracks the local whisper.cpp model files the
// transcription engine depends on and downloads missing ones on demand.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrUnknownModel is returned when a name is not in the registry.
// Referencing an unregistered model is a programming error, not a
// retryable condition.
var ErrUnknownModel = errors.New("unknown model")

// Descriptor describes one downloadable ggml model preset.
type Descriptor struct {
	Name      string
	SizeLabel string
	URL       string
	LocalPath string
}

// Registry is a fixed name-to-descriptor mapping populated at startup.
type Registry struct {
	byName map[string]Descriptor
	names  []string
}

const hubURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// DefaultRoot returns the default directory for downloaded models.
func DefaultRoot() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".voice-tui", "models")
}

// DefaultRegistry builds the registry of known whisper.cpp presets with
// local paths rooted at root.
func DefaultRegistry(root string) *Registry {
	presets := []struct {
		name, size string
	}{
		{"tiny", "75 MB"},
		{"tiny.en", "75 MB"},
		{"base", "142 MB"},
		{"base.en", "142 MB"},
		{"small", "466 MB"},
		{"small.en", "466 MB"},
		{"medium", "1.5 GB"},
	}

	r := &Registry{byName: make(map[string]Descriptor, len(presets))}
	for _, p := range presets {
		file := fmt.Sprintf("ggml-%s.bin", p.name)
		r.byName[p.name] = Descriptor{
			Name:      p.name,
			SizeLabel: p.size,
			URL:       fmt.Sprintf("%s/%s", hubURL, file),
			LocalPath: filepath.Join(root, file),
		}
		r.names = append(r.names, p.name)
	}
	return r
}

// NewRegistry builds a registry from explicit descriptors. Used by
// tests and by configurations that point at a mirror.
func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{byName: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		r.byName[d.Name] = d
		r.names = append(r.names, d.Name)
	}
	return r
}

// Lookup returns the descriptor for name.
func (r *Registry) Lookup(name string) (Descriptor, error) {
	d, ok := r.byName[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%q: %w", name, ErrUnknownModel)
	}
	return d, nil
}

// Names returns the registered model names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
