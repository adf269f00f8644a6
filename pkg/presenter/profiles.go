package presenter

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/realty/pkg/config"
)

// AgentProfile is the display identity of one backend agent
type AgentProfile struct {
	DisplayKey    string
	CanonicalName string
	Color         lipgloss.Color
}

// Profiles is an immutable lookup table keyed by canonical agent name
type Profiles struct {
	ordered []AgentProfile
	byName  map[string]AgentProfile
}

// NewProfiles builds the table. Later duplicates of a name are ignored.
func NewProfiles(profiles []AgentProfile) *Profiles {
	p := &Profiles{
		ordered: make([]AgentProfile, 0, len(profiles)),
		byName:  make(map[string]AgentProfile, len(profiles)),
	}
	for _, profile := range profiles {
		if profile.CanonicalName == "" {
			continue
		}
		if _, exists := p.byName[profile.CanonicalName]; exists {
			continue
		}
		p.byName[profile.CanonicalName] = profile
		p.ordered = append(p.ordered, profile)
	}
	return p
}

// ProfilesFromConfig converts the settings representation
func ProfilesFromConfig(cfgs []config.AgentProfileConfig) *Profiles {
	profiles := make([]AgentProfile, 0, len(cfgs))
	for _, c := range cfgs {
		profiles = append(profiles, AgentProfile{
			DisplayKey:    c.Key,
			CanonicalName: c.Name,
			Color:         lipgloss.Color(c.Color),
		})
	}
	return NewProfiles(profiles)
}

// DefaultProfiles is the built-in table
func DefaultProfiles() *Profiles {
	return ProfilesFromConfig(config.DefaultProfiles())
}

// Lookup matches name exactly against the canonical names
func (p *Profiles) Lookup(name string) (AgentProfile, bool) {
	if p == nil {
		return AgentProfile{}, false
	}
	profile, ok := p.byName[name]
	return profile, ok
}

// All returns the profiles in configuration order
func (p *Profiles) All() []AgentProfile {
	if p == nil {
		return nil
	}
	out := make([]AgentProfile, len(p.ordered))
	copy(out, p.ordered)
	return out
}
