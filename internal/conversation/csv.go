package conversation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var csvHeader = []string{"timestamp_start", "timestamp_end", "speaker", "text"}

// WriteCSV persists utterances as UTF-8 CSV with MM:SS timestamps. The
// column layout stays fixed so exports remain hand-editable and can be
// imported back through ReadCSV.
func WriteCSV(w io.Writer, utterances []Utterance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write conversation header: %w", err)
	}
	for _, utt := range utterances {
		record := []string{
			FormatTimestamp(utt.Start),
			FormatTimestamp(utt.End),
			utt.Speaker,
			utt.Text,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write conversation row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush conversation: %w", err)
	}
	return nil
}

// ReadCSV loads a conversation previously written by WriteCSV. Hand-edited
// files are accepted as long as the header and the MM:SS timestamps survive.
func ReadCSV(r io.Reader) ([]Utterance, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty conversation file")
	}
	if err != nil {
		return nil, fmt.Errorf("read conversation header: %w", err)
	}
	for i, name := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			return nil, fmt.Errorf("unexpected conversation header %q", strings.Join(header, ","))
		}
	}
	var utterances []Utterance
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read conversation row: %w", err)
		}
		start, err := ParseTimestamp(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		end, err := ParseTimestamp(record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		utterances = append(utterances, Utterance{
			Start:   start,
			End:     end,
			Speaker: record[2],
			Text:    record[3],
		})
	}
	return utterances, nil
}
