package source

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"statuswatch/internal/client/platform"
	"statuswatch/internal/config"
	"statuswatch/internal/model"
)

func TestAgentsSourceFetch(t *testing.T) {
	agents := []platform.Agent{
		{ArtifactID: 1, Name: "Case Manager", Enabled: true, Status: "Running", LastActivity: "2025-03-12T11:55:00Z"},
		{ArtifactID: 2, Name: "Branding Manager", Enabled: false, Status: "Running"},
		{ArtifactID: 3, Name: "OCR Manager", Enabled: true, Status: "Not Responding", LastActivity: "2025-03-12T09:00:00Z"},
	}

	client := newFakePlatform(t, nil, agents)
	src := NewAgentsSource(client, zerolog.Nop())

	observations, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	// One per agent plus the fleet roll-up
	if len(observations) != 4 {
		t.Fatalf("expected 4 observations, got %d", len(observations))
	}

	byID := make(map[string]model.Observation)
	for _, o := range observations {
		byID[o.ID] = o
	}

	if got := byID["agent-1"].Status; got != "running" {
		t.Errorf("unexpected status for healthy agent: %q", got)
	}
	// Disabled overrides the reported status
	if got := byID["agent-2"].Status; got != "disabled" {
		t.Errorf("unexpected status for disabled agent: %q", got)
	}
	if got := byID["agent-3"].Status; got != "not responding" {
		t.Errorf("unexpected status: %q", got)
	}

	fleet, ok := byID["agent-fleet"]
	if !ok {
		t.Fatal("missing fleet roll-up observation")
	}
	if got := fleet.Value("unhealthy"); got != 2 {
		t.Errorf("expected 2 unhealthy agents, got %v", got)
	}
}

func TestParseAgentTime(t *testing.T) {
	want := time.Date(2025, 3, 12, 11, 55, 0, 0, time.UTC)
	for _, s := range []string{"2025-03-12T11:55:00Z", "2025-03-12T11:55:00"} {
		if got := parseAgentTime(s); !got.Equal(want) {
			t.Errorf("parseAgentTime(%q): expected %v, got %v", s, want, got)
		}
	}
	if got := parseAgentTime("last tuesday"); !got.IsZero() {
		t.Errorf("expected zero time for unparsable value, got %v", got)
	}
	if got := parseAgentTime(""); !got.IsZero() {
		t.Errorf("expected zero time for empty value, got %v", got)
	}
}

func TestAgentsRulesMinutesToHours(t *testing.T) {
	cfg := config.AgentsCheckConfig{
		StaleMinutes:    config.Threshold{Warning: 30, High: 60, Critical: 120},
		UnhealthyAgents: config.Threshold{Warning: 1, High: 2, Critical: 3},
	}
	vocab := config.FindVocabulary(config.DefaultVocabularies(), "agent")

	rules := AgentsRules(cfg, vocab)

	agent := rules.Categories["agent"]
	if len(agent.Durations) != 1 {
		t.Fatalf("expected one staleness rule, got %d", len(agent.Durations))
	}
	cutoffs := agent.Durations[0].Cutoffs
	if cutoffs.Warning != 0.5 || cutoffs.High != 1 || cutoffs.Critical != 2 {
		t.Errorf("minutes not converted to hours: %+v", cutoffs)
	}

	fleet := rules.Categories["agent-fleet"]
	if len(fleet.Counts) != 1 || fleet.Counts[0].Field != "unhealthy" {
		t.Errorf("unexpected fleet rules: %+v", fleet)
	}
}
