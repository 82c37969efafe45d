// Package config provides configuration loading and management for proofpipe.
package config

import (
	"time"

	"github.com/proofworks/proofpipe/internal/llm"
	"github.com/proofworks/proofpipe/internal/proofread"
)

// Config is the root configuration.
type Config struct {
	LLM    llm.Config             `json:"llm"              mapstructure:"llm"`
	Agents map[string]AgentConfig `json:"agents,omitempty" mapstructure:"agents"`
	Review ReviewConfig           `json:"review"           mapstructure:"review"`
	Web    WebConfig              `json:"web,omitempty"    mapstructure:"web"`
}

// AgentConfig overrides per-agent execution settings, keyed by agent type tag.
type AgentConfig struct {
	TimeoutMinutes int `json:"timeout_minutes,omitempty" mapstructure:"timeout_minutes"`
}

// ReviewConfig selects optional agents. Legal review is opt-in, brand
// checking is opt-out.
type ReviewConfig struct {
	IncludeLegal bool `json:"include_legal,omitempty" mapstructure:"include_legal"`
	SkipBrand    bool `json:"skip_brand,omitempty"    mapstructure:"skip_brand"`
}

// WebConfig configures the report UI server.
type WebConfig struct {
	Listen string `json:"listen,omitempty" mapstructure:"listen"`
}

// TimeoutOverrides translates the agent override table into executor
// deadlines. Unknown agent type keys are ignored.
func (c Config) TimeoutOverrides() map[proofread.AgentType]time.Duration {
	if len(c.Agents) == 0 {
		return nil
	}
	overrides := make(map[proofread.AgentType]time.Duration, len(c.Agents))
	for key, ac := range c.Agents {
		if ac.TimeoutMinutes <= 0 {
			continue
		}
		overrides[proofread.AgentType(key)] = time.Duration(ac.TimeoutMinutes) * time.Minute
	}
	return overrides
}
