package tui

import (
	"fmt"
	"strings"

	"github.com/bardlabs/minstrel/activity"
	"github.com/bardlabs/minstrel/protocol"
	"github.com/bardlabs/minstrel/session"
)

// formatEnvelope renders one inbound envelope for the scrollback. An empty
// result means the envelope either has a dedicated callback (auth, errors,
// activity completion) or carries nothing worth printing.
func formatEnvelope(env protocol.Envelope) string {
	switch env.Kind {
	case protocol.KindAuthSuccess, protocol.KindAuthFailed, protocol.KindError, protocol.KindExerciseComplete:
		return ""

	case protocol.KindExerciseState:
		// Poll snapshots repaint the progress bar; only a start record
		// deserves a scrollback line.
		if _, nested := env.Payload["session"].(map[string]any); nested {
			return narratorStyle.Render(env.Text)
		}
		return ""

	case protocol.KindConnected:
		return dimStyle.Render("Server: " + env.Text)

	case protocol.KindResponse:
		return mentorPrefixStyle.Render("Mentor: ") + env.Text

	case protocol.KindWorldState:
		return narratorStyle.Render(env.Text) + worldDetail(env.Payload)

	case protocol.KindLocationState, protocol.KindLocationUpdate:
		return narratorStyle.Render(env.Text) + locationDetail(env.Payload)

	case protocol.KindPlayerState:
		return narratorStyle.Render(env.Text) + playerDetail(env.Payload)

	default:
		if env.Text == "" {
			return ""
		}
		return narratorStyle.Render(env.Text)
	}
}

func worldDetail(payload map[string]any) string {
	names := nameList(payload["locations"])
	if len(names) == 0 {
		return ""
	}
	return "\n" + dimStyle.Render("  Locations: "+strings.Join(names, ", "))
}

func locationDetail(payload map[string]any) string {
	var parts []string
	if names := nameList(payload["available_destinations"]); len(names) > 0 {
		parts = append(parts, "Paths: "+strings.Join(names, ", "))
	}
	if segs := nameList(payload["available_segments"]); len(segs) > 0 {
		parts = append(parts, "Segments here: "+strings.Join(segs, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n" + dimStyle.Render("  "+strings.Join(parts, " | "))
}

func playerDetail(payload map[string]any) string {
	var parts []string
	for _, field := range []string{"level", "xp", "gold", "reputation"} {
		if v, ok := payload[field].(float64); ok {
			parts = append(parts, fmt.Sprintf("%s %.0f", field, v))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n" + dimStyle.Render("  "+strings.Join(parts, " | "))
}

// nameList reads a lenient list of names from a payload value that may hold
// strings or objects with a "name" field.
func nameList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var names []string
	for _, item := range items {
		switch it := item.(type) {
		case string:
			names = append(names, it)
		case map[string]any:
			if name, ok := it["name"].(string); ok {
				names = append(names, name)
			}
		}
	}
	return names
}

func formatRewards(final activity.Session, rewards protocol.Rewards) string {
	line := fmt.Sprintf("Practice %q complete! +%d XP, +%d gold", final.Label, rewards.XPGained, rewards.GoldGained)
	if rewards.SkillBonus != "" && rewards.SkillAmount > 0 {
		line += fmt.Sprintf(", +%d %s", rewards.SkillAmount, rewards.SkillBonus)
	}
	if rewards.LevelUp {
		line += fmt.Sprintf(" LEVEL UP! You are now level %d!", rewards.NewLevel)
	}
	return rewardStyle.Render(line)
}

func formatWelcome(id session.Identity) string {
	name, _ := id.Profile["name"].(string)
	if name == "" {
		name = id.PlayerID
	}
	return narratorStyle.Render(fmt.Sprintf("Welcome, %s! Your mentor awaits.", name))
}

func stateDot(st session.State) string {
	switch st {
	case session.StateAuthenticated:
		return okDotStyle.Render("●")
	case session.StateDisconnected:
		return errorStyle.Render("●")
	default:
		return pendingDotStyle.Render("●")
	}
}
