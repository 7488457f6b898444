package protocol

// Typed views over envelope payloads. The authority is lenient about extra
// and missing fields, and so are these decoders: absent fields fill with
// zero values, wrong-typed fields read as absent. Multiple authority
// versions can be live at once, so every reader tolerates the field spellings
// each of them uses.

// AuthSuccess is the identity granted by an auth_success frame.
type AuthSuccess struct {
	PlayerID string
	Player   map[string]any
}

// DecodeAuthSuccess reads data.player_id and the opaque data.player record.
func DecodeAuthSuccess(env Envelope) AuthSuccess {
	return AuthSuccess{
		PlayerID: str(env.Payload, "player_id"),
		Player:   record(env.Payload, "player"),
	}
}

// ActivityStart describes a timed activity as first reported by the
// authority: a travel/exercise acceptance or the state echoed to a poll.
type ActivityStart struct {
	Label           string
	DurationSeconds float64
	ElapsedSeconds  float64
	ProgressPercent float64
	Complete        bool
}

// DecodeActivityStart reads an activity description from an exercise_state
// payload. Travel acceptances nest the fields under data.session while poll
// echoes put them at the top level of data; nested reports which shape
// arrived so callers can tell a fresh start from a progress echo.
func DecodeActivityStart(env Envelope) (start ActivityStart, nested bool) {
	fields := env.Payload
	if sub := record(env.Payload, "session"); sub != nil {
		fields = sub
		nested = true
	}

	label := str(fields, "exercise_name")
	if label == "" {
		label = str(fields, "label")
	}

	return ActivityStart{
		Label:           label,
		DurationSeconds: num(fields, "duration_seconds"),
		ElapsedSeconds:  num(fields, "elapsed_seconds"),
		ProgressPercent: num(fields, "progress_percent"),
		Complete:        boolean(fields, "is_complete"),
	}, nested
}

// ActivitySnapshot is a partial authoritative update to a running activity.
// Nil fields were absent from the frame and must not regress known values.
type ActivitySnapshot struct {
	ProgressPercent *float64
	ElapsedSeconds  *float64
	Complete        *bool
}

// DecodeActivitySnapshot reads whichever of progress_percent,
// elapsed_seconds and is_complete the frame carries.
func DecodeActivitySnapshot(env Envelope) ActivitySnapshot {
	fields := env.Payload
	if sub := record(env.Payload, "session"); sub != nil {
		fields = sub
	}
	return ActivitySnapshot{
		ProgressPercent: numPtr(fields, "progress_percent"),
		ElapsedSeconds:  numPtr(fields, "elapsed_seconds"),
		Complete:        boolPtr(fields, "is_complete"),
	}
}

// Rewards summarizes an exercise_complete payload.
type Rewards struct {
	XPGained    int
	GoldGained  int
	SkillBonus  string
	SkillAmount int
	LevelUp     bool
	NewLevel    int
}

// DecodeRewards reads the data.rewards record, falling back to the payload
// itself for authority builds that flatten it.
func DecodeRewards(env Envelope) Rewards {
	fields := record(env.Payload, "rewards")
	if fields == nil {
		fields = env.Payload
	}
	return Rewards{
		XPGained:    int(num(fields, "xp_gained")),
		GoldGained:  int(num(fields, "gold_gained")),
		SkillBonus:  str(fields, "skill_bonus_type"),
		SkillAmount: int(num(fields, "skill_bonus_amount")),
		LevelUp:     boolean(fields, "level_up"),
		NewLevel:    int(num(fields, "new_level")),
	}
}

// --- lenient field readers ---

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// num accepts the numeric shapes that reach us in practice: float64 from the
// wire, int/int64 from payloads built in Go code.
func num(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func boolean(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func record(m map[string]any, key string) map[string]any {
	r, _ := m[key].(map[string]any)
	return r
}

func numPtr(m map[string]any, key string) *float64 {
	switch v := m[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	default:
		return nil
	}
}

func boolPtr(m map[string]any, key string) *bool {
	if b, ok := m[key].(bool); ok {
		return &b
	}
	return nil
}
