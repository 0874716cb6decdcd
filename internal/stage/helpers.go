package stage

import (
	"os"
	"strings"

	"confab/internal/conversation"
	"confab/internal/services"
)

// ReadTranscript loads the transcript artifact written by the transcription
// stage. Failures return services.ErrValidation so the item lands in review
// instead of being retried.
func ReadTranscript(path string) ([]conversation.TranscriptSegment, error) {
	data, err := readArtifact(path, "transcript", "transcription")
	if err != nil {
		return nil, err
	}
	segments, err := conversation.DecodeTranscript(data)
	if err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "decode transcript",
			"Transcript artifact corrupt; rerun transcription", err)
	}
	return segments, nil
}

// ReadDiarization loads the speaker segments written by the transcription stage.
func ReadDiarization(path string) ([]conversation.SpeakerSegment, error) {
	data, err := readArtifact(path, "diarization", "transcription")
	if err != nil {
		return nil, err
	}
	speakers, err := conversation.DecodeDiarization(data)
	if err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "decode diarization",
			"Diarization artifact corrupt; rerun transcription", err)
	}
	return speakers, nil
}

// ReadConversation loads the aligned conversation written by the alignment stage.
func ReadConversation(path string) ([]conversation.Utterance, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "read conversation",
			"Conversation artifact path not recorded; rerun alignment", nil)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "read conversation",
			"Conversation artifact missing or unreadable; rerun alignment", err)
	}
	defer file.Close()

	utterances, err := conversation.ReadCSV(file)
	if err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "decode conversation",
			"Conversation artifact corrupt; rerun alignment", err)
	}
	return utterances, nil
}

func readArtifact(path, label, producer string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "read "+label,
			"No "+label+" artifact recorded; rerun "+producer, nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "read "+label,
			"Unable to read "+label+" artifact; rerun "+producer, err)
	}
	return data, nil
}
