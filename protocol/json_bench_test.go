package protocol

import (
	stdjson "encoding/json"
	"testing"

	jsoniter "github.com/json-iterator/go"
)

// BenchmarkJSONLibraryComparison compares standard library vs json-iterator
func BenchmarkJSONLibraryComparison(b *testing.B) {
	// Test frames
	authFrame := []byte(`{"type":"auth_success","content":"Welcome back, bard!","data":{"player_id":"5f1c","player":{"id":"5f1c","name":"bard","level":3,"xp":140,"gold":75,"reputation":12}}}`)
	stateFrame := []byte(`{"type":"exercise_state","content":"Travel progress","data":{"exercise_name":"Scales","duration_seconds":60,"elapsed_seconds":37,"remaining_seconds":23,"progress_percent":61.7,"state":"running","is_complete":false}}`)
	chatFrame := []byte(`{"type":"response","content":"The innkeeper nods.","data":{}}`)

	authPayload := map[string]any{
		"username": "bard",
		"password": "music123",
	}
	exercisePayload := map[string]any{}

	// Configure json-iterator for maximum compatibility
	jsoniterStd := jsoniter.ConfigCompatibleWithStandardLibrary

	b.Run("StdLib/Unmarshal/AuthSuccess", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var raw any
			_ = stdjson.Unmarshal(authFrame, &raw)
		}
	})

	b.Run("JsonIter/Unmarshal/AuthSuccess", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var raw any
			_ = jsoniterStd.Unmarshal(authFrame, &raw)
		}
	})

	b.Run("StdLib/Unmarshal/ExerciseState", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var raw any
			_ = stdjson.Unmarshal(stateFrame, &raw)
		}
	})

	b.Run("JsonIter/Unmarshal/ExerciseState", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var raw any
			_ = jsoniterStd.Unmarshal(stateFrame, &raw)
		}
	})

	b.Run("Decode/ExerciseState", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = Decode(stateFrame)
		}
	})

	b.Run("Decode/Response", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = Decode(chatFrame)
		}
	})

	// Also benchmark the outbound path for completeness
	b.Run("StdLib/Marshal/Authenticate", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = stdjson.Marshal(map[string]any{"type": IntentAuthenticate, "content": "", "data": authPayload})
		}
	})

	b.Run("JsonIter/Marshal/Authenticate", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = jsoniterStd.Marshal(map[string]any{"type": IntentAuthenticate, "content": "", "data": authPayload})
		}
	})

	b.Run("Encode/ExerciseCheck", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = Encode(IntentExercise, ExerciseActionCheck, exercisePayload)
		}
	})
}
