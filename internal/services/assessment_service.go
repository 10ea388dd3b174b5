package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soaringjerry/MindBalance/internal/wellness"
)

type AssessmentStore interface {
	SaveAssessment(ctx context.Context, a *wellness.Assessment) error
	ListAssessmentsByOwner(ctx context.Context, owner string) ([]*wellness.Assessment, error)
	DeleteAssessment(ctx context.Context, owner, id string) (bool, error)
	DeleteAssessmentsByOwner(ctx context.Context, owner string) (int, error)
	AddAudit(entry AuditEntry)
}

type AssessmentService struct {
	store     AssessmentStore
	now       func() time.Time
	idGen     func() string
	trendDays int
	location  *time.Location
}

// NewAssessmentService returns a service whose progress view covers trendDays
// days when the caller does not ask for a window.
func NewAssessmentService(store AssessmentStore, trendDays int) *AssessmentService {
	if trendDays < 0 {
		trendDays = 0
	}
	return &AssessmentService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     func() string { return "a" + shortID(16) },
		trendDays: trendDays,
		location:  time.UTC,
	}
}

type SubmitRequest struct {
	Mode    string                     `json:"mode"`
	Answers map[string]json.RawMessage `json:"answers"`
}

type SubmitResult struct {
	Assessment *wellness.Assessment `json:"assessment"`
	Analysis   wellness.Analysis    `json:"analysis"`
}

// Submit scores and classifies one check-in and persists it for owner.
func (s *AssessmentService) Submit(ctx context.Context, owner string, req SubmitRequest) (*SubmitResult, error) {
	if owner == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	mode, ok := wellness.ParseMode(req.Mode)
	if !ok {
		return nil, NewInvalidError("unknown mode " + req.Mode)
	}
	if len(req.Answers) == 0 {
		return nil, NewInvalidError("answers required")
	}
	q, _ := wellness.QuestionnaireFor(mode)
	answers, err := q.Resolve(req.Answers)
	if err != nil {
		return nil, fromCoreError(err)
	}
	rec, err := s.build(owner, q, answers, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveAssessment(ctx, rec); err != nil {
		return nil, fmt.Errorf("save assessment: %w", err)
	}
	return &SubmitResult{Assessment: rec, Analysis: wellness.Analyze(rec.Tag(), rec.Score, rec.MaxScore)}, nil
}

func (s *AssessmentService) build(owner string, q wellness.Questionnaire, answers wellness.Answers, at time.Time) (*wellness.Assessment, error) {
	score, err := wellness.Score(q, answers)
	if err != nil {
		return nil, fromCoreError(err)
	}
	rec := &wellness.Assessment{
		ID:        s.idGen(),
		OwnerID:   owner,
		Mode:      q.Mode,
		Answers:   answers,
		Score:     score,
		MaxScore:  q.MaxScore,
		CreatedAt: at,
	}
	switch q.Mode {
	case wellness.ModeBanded:
		level, err := wellness.Classify(score, q.MaxScore)
		if err != nil {
			return nil, fromCoreError(err)
		}
		rec.Level = level
	case wellness.ModeEmotion:
		emotion, err := wellness.EmotionOf(answers)
		if err != nil {
			return nil, fromCoreError(err)
		}
		rec.Emotion = emotion
	}
	return rec, nil
}

func (s *AssessmentService) chronological(ctx context.Context, owner string) ([]*wellness.Assessment, error) {
	if owner == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	records, err := s.store.ListAssessmentsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	wellness.SortChronological(records)
	return records, nil
}

// History returns owner's records, newest first.
func (s *AssessmentService) History(ctx context.Context, owner string) ([]*wellness.Assessment, error) {
	records, err := s.chronological(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]*wellness.Assessment, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

func (s *AssessmentService) Delete(ctx context.Context, owner, id string) error {
	if owner == "" {
		return NewUnauthorizedError("unauthorized")
	}
	if strings.TrimSpace(id) == "" {
		return NewInvalidError("id required")
	}
	ok, err := s.store.DeleteAssessment(ctx, owner, id)
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	if !ok {
		return NewNotFoundError("assessment not found")
	}
	return nil
}

// Clear removes every record of owner and returns how many were deleted.
func (s *AssessmentService) Clear(ctx context.Context, owner string) (int, error) {
	if owner == "" {
		return 0, NewUnauthorizedError("unauthorized")
	}
	n, err := s.store.DeleteAssessmentsByOwner(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("clear assessments: %w", err)
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: owner, Action: "clear_assessments", Target: owner, Note: fmt.Sprintf("deleted=%d", n)})
	return n, nil
}

type ProgressQuery struct {
	Mode string
	// Days is nil when the caller wants the default window; 0 disables the day filter.
	Days *int
	Last int
}

// Progress aggregates owner's records of one mode over the requested window.
func (s *AssessmentService) Progress(ctx context.Context, owner string, q ProgressQuery) (*wellness.Trend, error) {
	mode, ok := wellness.ParseMode(q.Mode)
	if !ok {
		return nil, NewInvalidError("unknown mode " + q.Mode)
	}
	days := s.trendDays
	if q.Days != nil {
		days = *q.Days
	}
	if days < 0 || q.Last < 0 {
		return nil, NewInvalidError("days and last must not be negative")
	}
	records, err := s.chronological(ctx, owner)
	if err != nil {
		return nil, err
	}
	ofMode := make([]*wellness.Assessment, 0, len(records))
	for _, r := range records {
		if r.Mode == mode {
			ofMode = append(ofMode, r)
		}
	}
	trend := wellness.Aggregate(ofMode, wellness.Window{Days: days, LastN: q.Last, Location: s.location}, s.now())
	return &trend, nil
}

// Solutions composes the solution cards for kind. An empty tag uses the
// classification of owner's latest record of that kind; with no such record,
// or a tag outside the table, the cards come back in declaration order.
func (s *AssessmentService) Solutions(ctx context.Context, owner, kind, tag string) ([]wellness.Solution, error) {
	k := wellness.KindLevel
	if strings.TrimSpace(kind) != "" {
		var ok bool
		if k, ok = wellness.ParseTagKind(kind); !ok {
			return nil, NewInvalidError("unknown kind " + kind)
		}
	}
	c := wellness.Classification{Kind: k}
	switch {
	case strings.TrimSpace(tag) != "":
		c = parseTag(k, tag)
	case owner != "":
		records, err := s.chronological(ctx, owner)
		if err != nil {
			return nil, err
		}
		for i := len(records) - 1; i >= 0; i-- {
			if t := records[i].Tag(); t.Kind == k {
				c = t
				break
			}
		}
	}
	return wellness.Compose(c), nil
}

// parseTag normalizes tag for kind. Unknown tags are kept verbatim so Compose
// falls back to declaration order.
func parseTag(k wellness.TagKind, tag string) wellness.Classification {
	tag = strings.TrimSpace(tag)
	if k == wellness.KindEmotion {
		if e, ok := wellness.ParseEmotion(tag); ok {
			return wellness.EmotionTag(e)
		}
		return wellness.EmotionTag(wellness.Emotion(tag))
	}
	if l, ok := wellness.ParseLevel(tag); ok {
		return wellness.LevelTag(l)
	}
	return wellness.LevelTag(wellness.Level(tag))
}

type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Export renders owner's history in chronological order as csv or json.
func (s *AssessmentService) Export(ctx context.Context, owner, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "json"
	}
	if format != "csv" && format != "json" {
		return nil, NewInvalidError("unsupported format " + format)
	}
	records, err := s.chronological(ctx, owner)
	if err != nil {
		return nil, err
	}
	stamp := s.now().Format("2006-01-02")
	if format == "csv" {
		b, err := ExportAssessmentsCSV(records)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Name: "mindbalance-history-" + stamp + ".csv", ContentType: "text/csv", Data: b}, nil
	}
	b, err := ExportAssessmentsJSON(records)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Name: "mindbalance-history-" + stamp + ".json", ContentType: "application/json", Data: b}, nil
}

// LegacyCheckIn is one entry of the browser's mindBalanceCheckIns list.
type LegacyCheckIn struct {
	ID          string `json:"id"`
	Timestamp   int64  `json:"timestamp"`
	Date        string `json:"date"`
	StressLevel int    `json:"stressLevel"`
	Emotion     string `json:"emotion"`
}

type ImportResult struct {
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

const legacyIDPrefix = "legacy-"

// ImportLegacy stores browser check-ins as emotion records. Rows that fail
// validation are skipped and reported; rows imported before are counted as
// duplicates.
func (s *AssessmentService) ImportLegacy(ctx context.Context, owner string, rows []LegacyCheckIn) (*ImportResult, error) {
	existing, err := s.chronological(ctx, owner)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		seen[r.ID] = struct{}{}
	}
	q := wellness.EmotionQuestionnaire()
	res := &ImportResult{}
	for i, row := range rows {
		rec, err := s.fromLegacy(owner, q, row)
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", i, err))
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			res.Duplicates++
			continue
		}
		if err := s.store.SaveAssessment(ctx, rec); err != nil {
			if errors.Is(err, ErrDuplicateRecord) {
				// imported concurrently since the listing above
				seen[rec.ID] = struct{}{}
				res.Duplicates++
				continue
			}
			return res, fmt.Errorf("save imported assessment: %w", err)
		}
		seen[rec.ID] = struct{}{}
		res.Imported++
	}
	if res.Imported > 0 {
		s.store.AddAudit(AuditEntry{Time: s.now(), Actor: owner, Action: "import_checkins", Target: owner, Note: fmt.Sprintf("imported=%d skipped=%d", res.Imported, res.Skipped)})
	}
	return res, nil
}

func (s *AssessmentService) fromLegacy(owner string, q wellness.Questionnaire, row LegacyCheckIn) (*wellness.Assessment, error) {
	if row.Timestamp <= 0 {
		return nil, fmt.Errorf("missing timestamp")
	}
	emotion, ok := wellness.ParseEmotion(row.Emotion)
	if !ok {
		return nil, &wellness.UnknownTagError{Kind: wellness.KindEmotion, Tag: row.Emotion}
	}
	mood := 0
	for i, e := range wellness.Emotions() {
		if e == emotion {
			mood = i
		}
	}
	answers := wellness.Answers{wellness.StressItemID: row.StressLevel, wellness.MoodItemID: mood}
	rec, err := s.build(owner, q, answers, time.UnixMilli(row.Timestamp).UTC())
	if err != nil {
		return nil, err
	}
	id := strings.TrimSpace(row.ID)
	if id == "" {
		id = fmt.Sprintf("%d", row.Timestamp)
	}
	rec.ID = legacyIDPrefix + id
	return rec, nil
}
