package conversation

import (
	"encoding/json"
	"fmt"
)

// EncodeTranscript serializes transcript segments for artifact storage.
func EncodeTranscript(segments []TranscriptSegment) ([]byte, error) {
	return json.MarshalIndent(segments, "", "  ")
}

// DecodeTranscript parses a transcript artifact. Records missing any of
// start, end, or text are rejected rather than defaulted.
func DecodeTranscript(data []byte) ([]TranscriptSegment, error) {
	var raw []struct {
		Start *float64 `json:"start"`
		End   *float64 `json:"end"`
		Text  *string  `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse transcript artifact: %w", err)
	}
	segments := make([]TranscriptSegment, len(raw))
	for i, rec := range raw {
		if rec.Start == nil || rec.End == nil || rec.Text == nil {
			return nil, fmt.Errorf("parse transcript artifact: record %d missing required fields", i)
		}
		segments[i] = TranscriptSegment{Start: *rec.Start, End: *rec.End, Text: *rec.Text}
	}
	return segments, nil
}

// EncodeDiarization serializes speaker segments for artifact storage.
func EncodeDiarization(speakers []SpeakerSegment) ([]byte, error) {
	return json.MarshalIndent(speakers, "", "  ")
}

// DecodeDiarization parses a diarization artifact. Records missing start or
// end, or carrying an absent or empty speaker label, are rejected.
func DecodeDiarization(data []byte) ([]SpeakerSegment, error) {
	var raw []struct {
		Start   *float64 `json:"start"`
		End     *float64 `json:"end"`
		Speaker *string  `json:"speaker"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse diarization artifact: %w", err)
	}
	speakers := make([]SpeakerSegment, len(raw))
	for i, rec := range raw {
		if rec.Start == nil || rec.End == nil || rec.Speaker == nil || *rec.Speaker == "" {
			return nil, fmt.Errorf("parse diarization artifact: record %d missing required fields", i)
		}
		speakers[i] = SpeakerSegment{Start: *rec.Start, End: *rec.End, Speaker: *rec.Speaker}
	}
	return speakers, nil
}
