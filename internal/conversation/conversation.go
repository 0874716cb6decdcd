package conversation

import "math"

// UnknownSpeaker labels utterances that no diarization interval overlaps.
const UnknownSpeaker = "Unknown"

// TranscriptSegment is one transcript interval, in seconds from the start
// of the recording.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SpeakerSegment is one diarization interval attributing a span of the
// recording to an opaque provider speaker label.
type SpeakerSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Utterance is one speaker-attributed line of the aligned conversation.
type Utterance struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// Align attributes each transcript segment to the speaker whose diarization
// interval overlaps it longest. The output preserves input order and length
// and copies segment text verbatim. Segments nothing overlaps are attributed
// to UnknownSpeaker. Ties on overlap duration keep the earlier entry in
// speakers, so repeated runs over the same artifacts attribute identically.
func Align(segments []TranscriptSegment, speakers []SpeakerSegment) []Utterance {
	utterances := make([]Utterance, len(segments))
	for i, seg := range segments {
		utterances[i] = Utterance{
			Start:   seg.Start,
			End:     seg.End,
			Speaker: speakerFor(seg, speakers),
			Text:    seg.Text,
		}
	}
	return utterances
}

// speakerFor scans every candidate interval. Intervals only count when the
// overlap is strictly positive, which also excludes candidates whose start
// is not before their end.
func speakerFor(seg TranscriptSegment, speakers []SpeakerSegment) string {
	speaker := UnknownSpeaker
	best := 0.0
	for _, cand := range speakers {
		if cand.Start >= seg.End || cand.End <= seg.Start {
			continue
		}
		overlap := math.Min(seg.End, cand.End) - math.Max(seg.Start, cand.Start)
		if overlap > best {
			best = overlap
			speaker = cand.Speaker
		}
	}
	return speaker
}
