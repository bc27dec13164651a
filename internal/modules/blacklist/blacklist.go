// Package blacklist filters chat lines from banned users and censors banned
// words before an event reaches the viewers.
package blacklist

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
const Name = "blacklist"

// Priority places the module early in the chain so later modules never see
// a banned message.
const Priority = 10

// Censor replaces every occurrence of a banned word.
const Censor = "***"

type config struct {
	Users []string `yaml:"users"`
	Words []string `yaml:"words"`
}

// Module drops events from banned users and censors banned words in place.
type Module struct {
	users map[string]struct{}
	words []string
}

// New loads the module's configuration from confDir. A missing file means an
// empty blacklist; a malformed one is a load error and excludes the module.
func New(confDir string) (bus.Module, int, error) {
	var cfg config
	data, err := os.ReadFile(filepath.Join(confDir, Name+".yaml"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Empty blacklist.
	case err != nil:
		return nil, 0, fmt.Errorf("blacklist config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, 0, fmt.Errorf("blacklist config: %w", err)
		}
	}

	users := make(map[string]struct{}, len(cfg.Users))
	for _, u := range cfg.Users {
		users[strings.ToLower(u)] = struct{}{}
	}
	return &Module{users: users, words: cfg.Words}, Priority, nil
}

func (m *Module) Name() string { return Name }

// Process drops text events from banned users and censors banned words.
// Non-text events pass through untouched.
func (m *Module) Process(ctx context.Context, ev message.Event) (message.Event, error) {
	text, ok := ev.(*message.TextEvent)
	if !ok {
		return ev, nil
	}

	if _, banned := m.users[strings.ToLower(text.User)]; banned {
		return nil, bus.ErrDrop
	}
	for _, word := range m.words {
		text.Text = replaceFold(text.Text, word, Censor)
	}
	return text, nil
}

// replaceFold replaces every case-insensitive occurrence of old in s.
func replaceFold(s, old, new string) string {
	if old == "" {
		return s
	}
	lower := strings.ToLower(s)
	target := strings.ToLower(old)

	var b strings.Builder
	for {
		i := strings.Index(lower, target)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(new)
		s = s[i+len(old):]
		lower = lower[i+len(target):]
	}
}
