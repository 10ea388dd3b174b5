package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soaringjerry/MindBalance/internal/middleware"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T, store Store) *testServer {
	t.Helper()
	t.Setenv("MINDBALANCE_JWT_SECRET", "router-test-secret")
	mux := http.NewServeMux()
	rt := NewRouter(store, Options{TrendDays: 7})
	rt.pick = func(int) int { return 0 }
	rt.Register(mux)
	return &testServer{t: t, handler: middleware.LocaleMiddleware(middleware.WithAuth(mux))}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func (s *testServer) signup(name, email string) string {
	s.t.Helper()
	rr := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"name": name, "email": email, "password": "Secret123"})
	if rr.Code != http.StatusCreated {
		s.t.Fatalf("signup status %d: %s", rr.Code, rr.Body.String())
	}
	var res struct {
		Token string `json:"token"`
	}
	decode(s.t, rr, &res)
	return res.Token
}

func bandedBody(v int) map[string]any {
	answers := map[string]int{}
	for _, id := range []string{"nervous", "worry_control", "worry_much", "relaxing", "restless", "irritable", "afraid"} {
		answers[id] = v
	}
	return map[string]any{"mode": "banded", "answers": answers}
}

func TestAuthRoutes(t *testing.T) {
	srv := newTestServer(t, NewMemoryStore())
	token := srv.signup("Ada", "ada@example.com")

	rr := srv.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"name": "Ada", "email": "ada@example.com", "password": "Secret123"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: %d", rr.Code)
	}

	rr = srv.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"name": "", "email": "not-an-email", "password": "123"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid signup: %d", rr.Code)
	}
	var verr ErrorResponse
	decode(t, rr, &verr)
	if verr.Code != "invalid" || verr.Details["email"] != "email" || verr.Details["password"] != "min" || verr.Details["name"] != "required" {
		t.Fatalf("unexpected validation envelope %+v", verr)
	}

	rr = srv.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "nope"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", rr.Code)
	}
	rr = srv.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "Secret123"})
	if rr.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rr.Code, rr.Body.String())
	}

	rr = srv.do(http.MethodGet, "/api/auth/me", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("me without token: %d", rr.Code)
	}
	rr = srv.do(http.MethodPut, "/api/auth/profile", token, map[string]string{"profession": "Software developer"})
	if rr.Code != http.StatusOK {
		t.Fatalf("profile: %d %s", rr.Code, rr.Body.String())
	}
	rr = srv.do(http.MethodGet, "/api/auth/me", token, nil)
	var me struct {
		Name       string `json:"name"`
		Profession string `json:"profession"`
	}
	decode(t, rr, &me)
	if me.Name != "Ada" || me.Profession != "Software developer" {
		t.Fatalf("unexpected profile %+v", me)
	}

	rr = srv.do(http.MethodGet, "/api/tips", token, nil)
	var tip struct {
		Tip struct {
			Icon string `json:"icon"`
		} `json:"tip"`
	}
	decode(t, rr, &tip)
	if tip.Tip.Icon != "👁️" {
		t.Fatalf("unexpected tip %s", rr.Body.String())
	}
}

func TestQuestionnaireRoutes(t *testing.T) {
	srv := newTestServer(t, NewMemoryStore())
	rr := srv.do(http.MethodGet, "/api/questionnaires/emotion", "", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"id":"stress"`) {
		t.Fatalf("emotion questionnaire: %d %s", rr.Code, rr.Body.String())
	}
	rr = srv.do(http.MethodGet, "/api/questionnaires/weekly", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown questionnaire: %d", rr.Code)
	}
	rr = srv.do(http.MethodGet, "/api/meditations?score=9", "", nil)
	var meds []struct {
		ID int `json:"id"`
	}
	decode(t, rr, &meds)
	if len(meds) != 4 || meds[0].ID != 6 {
		t.Fatalf("unexpected meditations %+v", meds)
	}
	rr = srv.do(http.MethodGet, "/api/meditations?score=high", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad score: %d", rr.Code)
	}
}

func TestAssessmentFlow(t *testing.T) {
	srv := newTestServer(t, NewMemoryStore())
	token := srv.signup("Lin", "lin@example.com")
	other := srv.signup("Sam", "sam@example.com")

	rr := srv.do(http.MethodPost, "/api/assessments", token, bandedBody(3))
	if rr.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", rr.Code, rr.Body.String())
	}
	var created struct {
		Assessment struct {
			ID         string `json:"id"`
			Score      int    `json:"score"`
			Level      string `json:"level"`
			LevelLabel string `json:"level_label"`
		} `json:"assessment"`
		Analysis struct {
			Recommendations []struct {
				Duration string `json:"duration"`
			} `json:"recommendations"`
		} `json:"analysis"`
	}
	decode(t, rr, &created)
	if created.Assessment.Score != 21 || created.Assessment.Level != "High" || created.Assessment.LevelLabel != "High stress" {
		t.Fatalf("unexpected assessment %+v", created.Assessment)
	}
	if len(created.Analysis.Recommendations) != 3 || created.Analysis.Recommendations[0].Duration != "Immediate" {
		t.Fatalf("unexpected analysis %+v", created.Analysis)
	}

	rr = srv.do(http.MethodPost, "/api/assessments", token, map[string]any{"mode": "emotion", "answers": map[string]any{"stress": 6, "mood": "Calm"}})
	if rr.Code != http.StatusCreated {
		t.Fatalf("emotion submit: %d %s", rr.Code, rr.Body.String())
	}
	rr = srv.do(http.MethodPost, "/api/assessments", token, map[string]any{"mode": "emotion", "answers": map[string]any{"stress": 12, "mood": "Calm"}})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("out of range submit: %d", rr.Code)
	}
	rr = srv.do(http.MethodPost, "/api/assessments", token, map[string]any{"mode": "weekly", "answers": map[string]any{"stress": 1}})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad mode submit: %d", rr.Code)
	}
	rr = srv.do(http.MethodPost, "/api/assessments", token, "{not json")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: %d", rr.Code)
	}

	rr = srv.do(http.MethodGet, "/api/assessments", token, nil)
	var hist struct {
		Count       int `json:"count"`
		Assessments []struct {
			Mode string `json:"mode"`
		} `json:"assessments"`
	}
	decode(t, rr, &hist)
	if hist.Count != 2 || hist.Assessments[0].Mode != "emotion" {
		t.Fatalf("unexpected history %+v", hist)
	}

	rr = srv.do(http.MethodGet, "/api/progress?mode=banded", token, nil)
	var trend struct {
		Count          int     `json:"count"`
		OverallAverage float64 `json:"overall_average"`
	}
	decode(t, rr, &trend)
	if trend.Count != 1 || trend.OverallAverage != 21 {
		t.Fatalf("unexpected progress %s", rr.Body.String())
	}
	rr = srv.do(http.MethodGet, "/api/assessments?lang=zh", token, nil)
	if !strings.Contains(rr.Body.String(), `"emotion_label":"平静"`) || !strings.Contains(rr.Body.String(), `"level_label":"高压力"`) {
		t.Fatalf("labels not localized: %s", rr.Body.String())
	}

	rr = srv.do(http.MethodGet, "/api/progress?days=-2", token, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("negative days: %d", rr.Code)
	}

	rr = srv.do(http.MethodGet, "/api/solutions?kind=emotion", token, nil)
	var sol struct {
		Solutions []struct {
			Tag struct {
				Emotion string `json:"emotion"`
			} `json:"tag"`
		} `json:"solutions"`
	}
	decode(t, rr, &sol)
	if len(sol.Solutions) != 6 || sol.Solutions[0].Tag.Emotion != "Calm" {
		t.Fatalf("unexpected solutions %s", rr.Body.String())
	}

	rr = srv.do(http.MethodGet, "/api/solutions?kind=emotion&tag=Bored", token, nil)
	sol.Solutions = nil
	decode(t, rr, &sol)
	if rr.Code != http.StatusOK || len(sol.Solutions) != 6 || sol.Solutions[0].Tag.Emotion != "Anxious" {
		t.Fatalf("unknown tag should fall back: %d %s", rr.Code, rr.Body.String())
	}
	rr = srv.do(http.MethodGet, "/api/solutions?kind=colour", token, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind: %d", rr.Code)
	}

	rr = srv.do(http.MethodGet, "/api/assessments/export?format=csv", token, nil)
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "text/csv" || !strings.Contains(rr.Header().Get("Content-Disposition"), ".csv") {
		t.Fatalf("export: %d %v", rr.Code, rr.Header())
	}

	rr = srv.do(http.MethodDelete, "/api/assessments/"+created.Assessment.ID, other, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("cross-owner delete: %d", rr.Code)
	}
	rr = srv.do(http.MethodDelete, "/api/assessments/"+created.Assessment.ID, token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: %d", rr.Code)
	}
	rr = srv.do(http.MethodDelete, "/api/assessments", token, nil)
	var cleared struct {
		Deleted int `json:"deleted"`
	}
	decode(t, rr, &cleared)
	if cleared.Deleted != 1 {
		t.Fatalf("clear deleted %d", cleared.Deleted)
	}
}

func TestImportRoute(t *testing.T) {
	store := NewMemoryStore()
	srv := newTestServer(t, store)
	token := srv.signup("Kai", "kai@example.com")

	body := `[{"id":"1714550400000","timestamp":1714550400000,"date":"5/1/2024","stressLevel":7,"emotion":"Anxious"},
	          {"id":"x","timestamp":1714550500000,"date":"5/1/2024","stressLevel":0,"emotion":"Anxious"}]`
	rr := srv.do(http.MethodPost, "/api/assessments/import", token, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("import: %d %s", rr.Code, rr.Body.String())
	}
	var res struct {
		Imported int `json:"imported"`
		Skipped  int `json:"skipped"`
	}
	decode(t, rr, &res)
	if res.Imported != 1 || res.Skipped != 1 {
		t.Fatalf("unexpected import result %+v", res)
	}

	rr = srv.do(http.MethodPost, "/api/assessments/import", token, `{"check_ins": []}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("empty import: %d", rr.Code)
	}
	if audit := store.ListAudit(); len(audit) != 1 || audit[0].Action != "import_checkins" {
		t.Fatalf("unexpected audit %+v", audit)
	}
}
