package api

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/soaringjerry/MindBalance/internal/middleware"
	"github.com/soaringjerry/MindBalance/internal/services"
	"github.com/soaringjerry/MindBalance/internal/utils"
	"github.com/soaringjerry/MindBalance/internal/wellness"
)

type Options struct {
	// TrendDays is the progress window used when a request gives no days.
	TrendDays int
	// Signer issues auth tokens; defaults to middleware.SignToken.
	Signer services.TokenSigner
}

type Router struct {
	store       Store
	auth        *services.AuthService
	assessments *services.AssessmentService
	validate    *validator.Validate
	pick        func(n int) int
}

// NewServices builds the account and assessment services on top of store.
func NewServices(store Store, opts Options) (*services.AuthService, *services.AssessmentService) {
	signer := opts.Signer
	if signer == nil {
		signer = middleware.SignToken
	}
	return services.NewAuthService(newAuthStoreAdapter(store), signer),
		services.NewAssessmentService(newAssessmentStoreAdapter(store), opts.TrendDays)
}

func NewRouter(store Store, opts Options) *Router {
	auth, assessments := NewServices(store, opts)
	return &Router{
		store:       store,
		auth:        auth,
		assessments: assessments,
		validate:    newValidator(),
		pick:        rand.Intn,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

	mux.HandleFunc("POST /api/auth/signup", rt.handleSignup)
	mux.HandleFunc("POST /api/auth/login", rt.handleLogin)
	mux.Handle("GET /api/auth/me", authed(rt.handleMe))
	mux.Handle("PUT /api/auth/profile", authed(rt.handleProfile))

	mux.HandleFunc("GET /api/questionnaires", rt.handleQuestionnaires)
	mux.HandleFunc("GET /api/questionnaires/{mode}", rt.handleQuestionnaire)

	mux.Handle("POST /api/assessments", authed(rt.handleSubmit))
	mux.Handle("GET /api/assessments", authed(rt.handleHistory))
	mux.Handle("DELETE /api/assessments", authed(rt.handleClear))
	mux.Handle("DELETE /api/assessments/{id}", authed(rt.handleDelete))
	mux.Handle("GET /api/assessments/export", authed(rt.handleExport))
	mux.Handle("POST /api/assessments/import", authed(rt.handleImport))

	mux.Handle("GET /api/progress", authed(rt.handleProgress))
	mux.Handle("GET /api/solutions", authed(rt.handleSolutions))
	mux.HandleFunc("GET /api/meditations", rt.handleMeditations)
	mux.Handle("GET /api/tips", authed(rt.handleTips))
}

func uid(r *http.Request) string {
	id, _ := middleware.UserIDFromContext(r.Context())
	return id
}

// POST /api/auth/signup
func (rt *Router) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := rt.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := rt.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := rt.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := rt.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/auth/me
func (rt *Router) handleMe(w http.ResponseWriter, r *http.Request) {
	p, err := rt.auth.Profile(r.Context(), uid(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PUT /api/auth/profile
func (rt *Router) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := rt.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := rt.auth.UpdateProfile(r.Context(), uid(r), req.Name, req.Profession)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GET /api/questionnaires
func (rt *Router) handleQuestionnaires(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"default_mode": wellness.ModeBanded, "questionnaires": wellness.Questionnaires()})
}

// GET /api/questionnaires/{mode}
func (rt *Router) handleQuestionnaire(w http.ResponseWriter, r *http.Request) {
	mode, ok := wellness.ParseMode(r.PathValue("mode"))
	if !ok {
		writeError(w, r, services.NewNotFoundError("unknown questionnaire"))
		return
	}
	q, _ := wellness.QuestionnaireFor(mode)
	writeJSON(w, http.StatusOK, q)
}

type assessmentView struct {
	*wellness.Assessment
	LevelLabel   string `json:"level_label,omitempty"`
	EmotionLabel string `json:"emotion_label,omitempty"`
}

func viewOf(r *http.Request, a *wellness.Assessment) assessmentView {
	locale := middleware.LocaleFromContext(r.Context())
	return assessmentView{
		Assessment:   a,
		LevelLabel:   utils.Label(locale, "level", string(a.Level)),
		EmotionLabel: utils.Label(locale, "emotion", string(a.Emotion)),
	}
}

type progressView struct {
	*wellness.Trend
	DirectionLabel string `json:"trend_label,omitempty"`
}

// POST /api/assessments
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := rt.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := rt.assessments.Submit(r.Context(), uid(r), services.SubmitRequest{Mode: req.Mode, Answers: req.Answers})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"assessment": viewOf(r, res.Assessment), "analysis": res.Analysis})
}

// GET /api/assessments
func (rt *Router) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := rt.assessments.History(r.Context(), uid(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]assessmentView, 0, len(records))
	for _, a := range records {
		out = append(out, viewOf(r, a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessments": out, "count": len(out)})
}

// DELETE /api/assessments
func (rt *Router) handleClear(w http.ResponseWriter, r *http.Request) {
	n, err := rt.assessments.Clear(r.Context(), uid(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": n})
}

// DELETE /api/assessments/{id}
func (rt *Router) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := rt.assessments.Delete(r.Context(), uid(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// GET /api/assessments/export?format=csv|json
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := rt.assessments.Export(r.Context(), uid(r), r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+f.Name)
	_, _ = w.Write(f.Data)
}

// POST /api/assessments/import
// Body: the mindBalanceCheckIns array, or {"check_ins": [...]}.
func (rt *Router) handleImport(w http.ResponseWriter, r *http.Request) {
	req, err := decodeImport(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := rt.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := rt.assessments.ImportLegacy(r.Context(), uid(r), req.CheckIns)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func queryInt(r *http.Request, key string) (*int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, services.NewInvalidError(key + " must be an integer")
	}
	return &n, nil
}

// GET /api/progress?mode=banded|emotion&days=7&last=N
func (rt *Router) handleProgress(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		writeError(w, r, err)
		return
	}
	last, err := queryInt(r, "last")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := services.ProgressQuery{Mode: r.URL.Query().Get("mode"), Days: days}
	if last != nil {
		q.Last = *last
	}
	trend, err := rt.assessments.Progress(r.Context(), uid(r), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, http.StatusOK, progressView{Trend: trend, DirectionLabel: utils.Label(locale, "trend", string(trend.Direction))})
}

// GET /api/solutions?kind=level|emotion&tag=
func (rt *Router) handleSolutions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cards, err := rt.assessments.Solutions(r.Context(), uid(r), q.Get("kind"), q.Get("tag"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"solutions": cards})
}

// GET /api/meditations?score=N
func (rt *Router) handleMeditations(w http.ResponseWriter, r *http.Request) {
	score, err := queryInt(r, "score")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wellness.Meditations(score))
}

// GET /api/tips
func (rt *Router) handleTips(w http.ResponseWriter, r *http.Request) {
	p, err := rt.auth.Profile(r.Context(), uid(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	tip, ok := wellness.TipFor(p.Profession, rt.pick)
	if !ok {
		locale := middleware.LocaleFromContext(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{"profession": "", "tip": nil, "msg": utils.T(locale, "tip.none")})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profession": p.Profession, "tip": tip})
}
