// Package themes loads and watches the per-channel display settings that
// shape how events are rendered and replayed.
package themes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/deforce/multichat/internal/message"
)

// Channel names with their own style settings file.
const (
	ChannelGUI     = "gui_chat"
	ChannelBrowser = "server_chat"
)

// Channels lists every channel the registry manages settings for.
var Channels = []string{ChannelGUI, ChannelBrowser}

// StyleSettings is one channel's display configuration.
type StyleSettings struct {
	// StyleName names the theme the channel renders with.
	StyleName string `yaml:"style" validate:"required"`
	// ShowSystemMsg lists the system event categories visible on this channel.
	ShowSystemMsg []string `yaml:"show_system_msg"`
	// ShowHistory controls whether history is replayed to a new client.
	ShowHistory bool `yaml:"show_history"`
	// ClearTimer bounds replayed events by age in seconds; zero or negative
	// disables the bound.
	ClearTimer int `yaml:"clear_timer"`
	// RemoveText is shown in place of redacted message text.
	RemoveText string `yaml:"remove_text" validate:"required"`
	// ReplaceMessage delivers remove commands as-is when true; when false
	// they are downgraded to replace commands carrying ReplaceText.
	ReplaceMessage bool `yaml:"replace_message"`
	// ReplaceText is the display text for downgraded remove commands.
	ReplaceText string `yaml:"replace_text" validate:"required"`
}

// CategoryVisible reports whether a system event category is shown.
func (s StyleSettings) CategoryVisible(category string) bool {
	return slices.Contains(s.ShowSystemMsg, category)
}

// Default returns the settings used when a channel has no settings file.
func Default() StyleSettings {
	return StyleSettings{
		StyleName:      "default",
		ShowSystemMsg:  message.SystemCategories(),
		ShowHistory:    true,
		ClearTimer:     -1,
		RemoveText:     "message removed",
		ReplaceMessage: false,
		ReplaceText:    "***",
	}
}

// Registry holds the current settings per channel and refreshes them when
// the underlying files change.
type Registry struct {
	dir      string
	validate *validator.Validate

	mu       sync.RWMutex
	settings map[string]StyleSettings
}

// NewRegistry loads settings for every channel from dir. A missing or invalid
// file falls back to defaults for that channel; only I/O against an existing
// but unreadable directory is an error.
func NewRegistry(dir string) (*Registry, error) {
	r := &Registry{
		dir:      dir,
		validate: validator.New(),
		settings: make(map[string]StyleSettings, len(Channels)),
	}
	for _, channel := range Channels {
		r.settings[channel] = r.load(channel)
	}
	return r, nil
}

// Settings returns the current settings for a channel. Unknown channels get
// defaults.
func (r *Registry) Settings(channel string) StyleSettings {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[channel]
	if !ok {
		return Default()
	}
	s.ShowSystemMsg = slices.Clone(s.ShowSystemMsg)
	return s
}

// Watch reloads settings whenever a file in the themes directory changes.
// It returns once the watcher is installed; watching stops with the context.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("themes watcher: %w", err)
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", r.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				r.reload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Themes watcher error", "error", err)
			}
		}
	}()
	return nil
}

func (r *Registry) reload() {
	for _, channel := range Channels {
		s := r.load(channel)
		r.mu.Lock()
		r.settings[channel] = s
		r.mu.Unlock()
	}
	slog.Info("Theme settings reloaded", "dir", r.dir)
}

func (r *Registry) load(channel string) StyleSettings {
	path := filepath.Join(r.dir, channel+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Error("Unable to read theme settings, using defaults", "channel", channel, "error", err)
		}
		return Default()
	}

	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		slog.Error("Invalid theme settings file, using defaults", "channel", channel, "error", err)
		return Default()
	}
	if err := r.validate.Struct(s); err != nil {
		slog.Error("Theme settings failed validation, using defaults", "channel", channel, "error", err)
		return Default()
	}
	return s
}
