package conversation_test

import (
	"testing"

	"confab/internal/conversation"
)

func TestFormatForModel(t *testing.T) {
	utterances := []conversation.Utterance{
		{Start: 0, End: 65, Speaker: "Alice", Text: "hello there"},
		{Start: 65, End: 120, Speaker: "Bob", Text: "how are you"},
	}
	want := "[00:00-01:05] Alice: hello there\n[01:05-02:00] Bob: how are you"
	if got := conversation.FormatForModel(utterances); got != want {
		t.Fatalf("FormatForModel() = %q, want %q", got, want)
	}
}

func TestFormatForModelEmpty(t *testing.T) {
	if got := conversation.FormatForModel(nil); got != "" {
		t.Fatalf("FormatForModel(nil) = %q, want empty", got)
	}
}
