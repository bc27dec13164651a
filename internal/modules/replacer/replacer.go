// Package replacer rewrites configured substrings in chat lines, in the
// spirit of the classic cloud-to-butt text mangler.
package replacer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deforce/multichat/internal/bus"
	"github.com/deforce/multichat/internal/message"
)

// Name identifies the module in the factory registry.
const Name = "replacer"

// Priority runs after filtering so replacements never resurrect a dropped
// message.
const Priority = 20

type config struct {
	Replacements map[string]string `yaml:"replacements"`
}

// Module applies configured substring replacements to text events in place.
type Module struct {
	replacements map[string]string
}

// New loads the module's configuration from confDir. A missing file loads an
// empty replacement table.
func New(confDir string) (bus.Module, int, error) {
	var cfg config
	data, err := os.ReadFile(filepath.Join(confDir, Name+".yaml"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// No replacements configured.
	case err != nil:
		return nil, 0, fmt.Errorf("replacer config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, 0, fmt.Errorf("replacer config: %w", err)
		}
	}

	return &Module{replacements: cfg.Replacements}, Priority, nil
}

func (m *Module) Name() string { return Name }

// Process rewrites the text of chat events; everything else passes through.
func (m *Module) Process(ctx context.Context, ev message.Event) (message.Event, error) {
	text, ok := ev.(*message.TextEvent)
	if !ok {
		return ev, nil
	}
	for old, new := range m.replacements {
		text.Text = strings.ReplaceAll(text.Text, old, new)
	}
	return text, nil
}
