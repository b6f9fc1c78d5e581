// Package persona holds the fixed preamble that is prepended to every
// conversation before it is forwarded to the completion provider.
package persona

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"veritas-backend/internal/models"
)

// Config is the system prompt plus an optional seed exchange.
// A Config is selected once at startup and never mutated afterwards.
type Config struct {
	Name         string           `yaml:"name"`
	SystemPrompt string           `yaml:"system_prompt"`
	Seed         []models.Message `yaml:"seed"`
}

var builtin = map[string]Config{
	"veritas": {
		Name:         "veritas",
		SystemPrompt: "Your name is Veritas, you never lie. You aim to do whatever is asked of you. Keep your responses short and concise.",
		Seed: []models.Message{
			{Role: models.RoleAssistant, Content: "Hello, my name is Veritas. It's a pleasure to meet you! How has your day been?"},
		},
	},
	"liar": {
		Name:         "liar",
		SystemPrompt: "Your name is Veritas. You always answer questions with a false answer, and you never admit that the answer is false. Keep your responses short and concise.",
		Seed: []models.Message{
			{Role: models.RoleUser, Content: "What is 2+2?"},
			{Role: models.RoleAssistant, Content: "Five."},
		},
	},
}

// Names returns the built-in persona names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a built-in persona by name.
func Lookup(name string) (Config, error) {
	cfg, ok := builtin[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Config{}, fmt.Errorf("unknown persona %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return cfg.clone(), nil
}

// LoadFile reads a persona definition from a YAML file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read persona file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse persona file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid persona file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the persona has a system prompt and that the seed
// exchange only uses known roles.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SystemPrompt) == "" {
		return fmt.Errorf("system_prompt is required")
	}
	for i, m := range c.Seed {
		switch m.Role {
		case models.RoleSystem, models.RoleUser, models.RoleAssistant:
		default:
			return fmt.Errorf("seed message %d has unknown role %q", i, m.Role)
		}
	}
	return nil
}

// Preamble returns a fresh copy of the messages that precede every conversation:
// the system prompt followed by the seed exchange.
func (c Config) Preamble() []models.Message {
	out := make([]models.Message, 0, len(c.Seed)+1)
	out = append(out, models.Message{Role: models.RoleSystem, Content: c.SystemPrompt})
	return append(out, c.Seed...)
}

// Apply returns preamble ++ messages as a new slice. The input is not modified.
func (c Config) Apply(messages []models.Message) []models.Message {
	out := make([]models.Message, 0, len(c.Seed)+1+len(messages))
	out = append(out, c.Preamble()...)
	return append(out, messages...)
}

func (c Config) clone() Config {
	c.Seed = append([]models.Message(nil), c.Seed...)
	return c
}
