package services

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/soaringjerry/MindBalance/internal/wellness"
)

func TestExportAssessmentsCSV(t *testing.T) {
	records := []*wellness.Assessment{
		{ID: "a1", Mode: wellness.ModeBanded, Answers: wellness.Answers{"nervous": 2, "afraid": 1}, Score: 3, MaxScore: 21, Level: wellness.LevelLow, CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{ID: "a2", Mode: wellness.ModeEmotion, Answers: wellness.Answers{"stress": 8, "mood": 5}, Score: 8, MaxScore: 10, Emotion: wellness.EmotionOverwhelmed, CreatedAt: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)},
	}
	b, err := ExportAssessmentsCSV(records)
	if err != nil {
		t.Fatalf("ExportAssessmentsCSV error: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(b))).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "id,mode,score,max_score,level,emotion,created_at,answers" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][4] != "Low" || rows[1][6] != "2025-01-02T03:04:05Z" || rows[1][7] != `{"afraid":1,"nervous":2}` {
		t.Fatalf("unexpected banded row %v", rows[1])
	}
	if rows[2][5] != "Overwhelmed" || rows[2][4] != "" {
		t.Fatalf("unexpected emotion row %v", rows[2])
	}
}

func TestExportAssessmentsJSONEmpty(t *testing.T) {
	b, err := ExportAssessmentsJSON(nil)
	if err != nil {
		t.Fatalf("ExportAssessmentsJSON error: %v", err)
	}
	var out []any
	if err := json.Unmarshal(b, &out); err != nil || out == nil || len(out) != 0 {
		t.Fatalf("expected empty array, got %s", b)
	}
}
