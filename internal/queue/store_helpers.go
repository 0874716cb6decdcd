package queue

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const itemColumns = "id, source_path, title, status, prepared_file, chunks_json, transcript_file, diarization_file, conversation_file, document_file, audio_seconds, speedup, chunk_count, error_message, created_at, updated_at, progress_stage, progress_percent, progress_message, last_heartbeat, needs_review, review_reason"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id               int64
		sourcePath       sql.NullString
		title            sql.NullString
		statusStr        string
		preparedFile     sql.NullString
		chunksJSON       sql.NullString
		transcriptFile   sql.NullString
		diarizationFile  sql.NullString
		conversationFile sql.NullString
		documentFile     sql.NullString
		audioSeconds     sql.NullFloat64
		speedup          sql.NullFloat64
		chunkCount       sql.NullInt64
		errorMessage     sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		lastHeartbeatRaw sql.NullString
		needsReview      sql.NullInt64
		reviewReason     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&title,
		&statusStr,
		&preparedFile,
		&chunksJSON,
		&transcriptFile,
		&diarizationFile,
		&conversationFile,
		&documentFile,
		&audioSeconds,
		&speedup,
		&chunkCount,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&lastHeartbeatRaw,
		&needsReview,
		&reviewReason,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:               id,
		SourcePath:       sourcePath.String,
		Title:            title.String,
		Status:           Status(statusStr),
		PreparedFile:     preparedFile.String,
		ChunksJSON:       chunksJSON.String,
		TranscriptFile:   transcriptFile.String,
		DiarizationFile:  diarizationFile.String,
		ConversationFile: conversationFile.String,
		DocumentFile:     documentFile.String,
		AudioSeconds:     audioSeconds.Float64,
		Speedup:          speedup.Float64,
		ChunkCount:       int(chunkCount.Int64),
		ErrorMessage:     errorMessage.String,
		ProgressStage:    progressStage.String,
		ProgressPercent:  progressPercent.Float64,
		ProgressMessage:  progressMessage.String,
	}
	if needsReview.Valid {
		item.NeedsReview = needsReview.Int64 != 0
	}
	item.ReviewReason = reviewReason.String

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			item.LastHeartbeat = &heartbeat
		}
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(time.RFC3339Nano)
	return v
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

var titleCaser = cases.Title(language.Und)

// inferTitleFromPath derives a display title from a recording's file name.
func inferTitleFromPath(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "Recording"
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)
	fields := strings.Fields(base)
	if len(fields) == 0 {
		return "Recording"
	}
	return titleCaser.String(strings.Join(fields, " "))
}
