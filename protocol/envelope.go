package protocol

// Envelope is the wire unit exchanged with the authority. Kind selects
// routing, Text carries the short human-readable line, Payload the structured
// fields. Envelopes are immutable once constructed; receivers must not mutate
// Payload.
type Envelope struct {
	Kind    string
	Text    string
	Payload map[string]any
}

// Control kinds consumed by the session itself.
const (
	KindConnected   = "connected"
	KindAuthSuccess = "auth_success"
	KindAuthFailed  = "auth_failed"
	KindError       = "error"
)

// Domain kinds emitted by the authority. The session forwards these verbatim;
// the constants exist so adapters and the activity synchronizer can switch on
// them without string literals.
const (
	KindResponse          = "response"
	KindStatus            = "status"
	KindWorldState        = "world_state"
	KindWorldGenerating   = "world_generating"
	KindLocationState     = "location_state"
	KindLocationUpdate    = "location_update"
	KindPlayerState       = "player_state"
	KindExerciseState     = "exercise_state"
	KindExerciseComplete  = "exercise_complete"
	KindSegmentCollected  = "segment_collected"
	KindPerformanceResult = "performance_result"
	KindGameComplete      = "game_complete"
	KindInventoryUpdate   = "inventory_update"
)

// Intent kinds sent by the client.
const (
	IntentAuthenticate = "authenticate"
	IntentChat         = "chat"
	IntentStatus       = "status"
	IntentWorld        = "world"
	IntentLocation     = "location"
	IntentTravel       = "travel"
	IntentExercise     = "exercise"
	IntentCollect      = "collect"
	IntentPerform      = "perform"
	IntentFinalQuest   = "final_quest"
	IntentInventory    = "inventory"
	IntentPlayer       = "player"
)

// Exercise actions carried as the text of an IntentExercise message. Neither
// expects a correlated reply; the authority answers with a free-standing
// exercise_state or exercise_complete frame.
const (
	ExerciseActionCheck    = "check"
	ExerciseActionComplete = "complete"
)
