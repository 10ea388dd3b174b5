package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"time"

	"github.com/soaringjerry/MindBalance/internal/wellness"
)

var assessmentCSVHeader = []string{"id", "mode", "score", "max_score", "level", "emotion", "created_at", "answers"}

// ExportAssessmentsCSV renders one row per record in the given order.
// The answers column holds the JSON object of item id to value.
func ExportAssessmentsCSV(records []*wellness.Assessment) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write(assessmentCSVHeader)
	for _, r := range records {
		answers, err := json.Marshal(r.Answers)
		if err != nil {
			return nil, err
		}
		rec := []string{
			r.ID,
			string(r.Mode),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.MaxScore),
			string(r.Level),
			string(r.Emotion),
			r.CreatedAt.UTC().Format(time.RFC3339),
			string(answers),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportAssessmentsJSON renders records as an indented JSON array.
func ExportAssessmentsJSON(records []*wellness.Assessment) ([]byte, error) {
	if records == nil {
		records = []*wellness.Assessment{}
	}
	return json.MarshalIndent(records, "", "  ")
}
