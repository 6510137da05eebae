package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/statlab/internal/chat"
	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/grading"
	"github.com/abhisek/statlab/internal/llm"
	"github.com/abhisek/statlab/internal/mastery"
	"github.com/abhisek/statlab/internal/metrics"
	"github.com/abhisek/statlab/internal/practice"
	"github.com/abhisek/statlab/internal/question"
	"github.com/abhisek/statlab/internal/questiongen"
	"github.com/abhisek/statlab/internal/recommend"
	"github.com/abhisek/statlab/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router   *gin.Engine
	store    *store.Store
	provider *llm.MockProvider
}

func newTestEnv(t *testing.T, generate bool, opts ...func(*practice.Deps)) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:server_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	provider := llm.NewMockProvider()
	m := metrics.New()
	rnd := recommend.NewRandomSource(3)
	tracker := mastery.NewTracker(st.ProgressRepo(), nil)
	rec := recommend.NewService(st, recommend.NewPolicy(rnd), nil, m)

	deps := practice.Deps{
		Questions:   st.QuestionRepo(),
		Answers:     st.AnswerRepo(),
		Recommender: rec,
		Grader:      grading.New(provider, grading.DefaultConfig(), nil, grading.WithPicker(func(int) int { return 0 })),
		Tracker:     tracker,
		Random:      rnd,
		Observer:    m,
	}
	if generate {
		deps.Generator = questiongen.New(provider, questiongen.DefaultConfig(), nil)
		deps.GenerateOnMiss = true
	}
	for _, opt := range opts {
		opt(&deps)
	}

	router := NewRouter(Deps{
		Practice:    practice.NewService(deps),
		Recommender: rec,
		Chat:        chat.NewService(st.ChatRepo(), tracker, provider, chat.DefaultConfig(), nil),
		Metrics:     m,
		Ping:        func(ctx context.Context) error { return st.DB().PingContext(ctx) },
		CORSOrigins: []string{"http://localhost:5173"},
	})
	return &testEnv{router: router, store: st, provider: provider}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) addQuestion(t *testing.T, q question.Question) *question.Question {
	t.Helper()
	q.Active = true
	require.NoError(t, e.store.QuestionRepo().Create(context.Background(), &q))
	return &q
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorEnvelope](t, w).Error.Code
}

var sdQuestion = question.Question{
	Concept:     concept.DescriptiveStatistics,
	Difficulty:  question.DifficultyBasic,
	Type:        question.TypeMultipleChoice,
	Text:        "Which statistic describes the centre of a distribution?",
	Options:     []string{"Mean", "Range", "Variance", "Standard deviation"},
	Answer:      "A",
	Explanation: "The mean is a measure of central tendency.",
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t, false)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestConcepts(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.do(t, http.MethodGet, "/api/concepts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Concepts      []conceptInfo    `json:"concepts"`
		Entry         string           `json:"entry"`
		Difficulties  []difficultyInfo `json:"difficulties"`
		QuestionTypes []string         `json:"questionTypes"`
	}](t, w)
	assert.Len(t, body.Concepts, 8)
	assert.Equal(t, "Descriptive Statistics", body.Entry)
	assert.Equal(t, []difficultyInfo{{1, "basic"}, {2, "medium"}, {3, "advanced"}}, body.Difficulties)
	assert.Contains(t, body.QuestionTypes, "multiple_choice")
}

func TestRecommendation_NewUser(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.do(t, http.MethodGet, "/api/practice/recommendation/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	rec := decode[recommend.Recommendation](t, w)
	assert.Equal(t, recommend.CategoryNewUser, rec.Category)
	assert.Equal(t, concept.Entry, rec.Concept)
	assert.Equal(t, 1, rec.Difficulty)
}

func TestNext(t *testing.T) {
	env := newTestEnv(t, false)
	q := env.addQuestion(t, sdQuestion)

	w := env.do(t, http.MethodGet, "/api/practice/next/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	next := decode[practice.Next](t, w)
	assert.Equal(t, q.ID, next.Question.ID)
	assert.False(t, next.Generated)
	assert.NotContains(t, w.Body.String(), "correctAnswer")
	assert.NotContains(t, w.Body.String(), sdQuestion.Explanation)
}

func TestNext_Errors(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodGet, "/api/practice/next/u1?type=essay", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_type", errorCode(t, w))

	w = env.do(t, http.MethodGet, "/api/practice/next/u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no_question", errorCode(t, w))
}

func TestNext_GenerationFailureIsBadGateway(t *testing.T) {
	env := newTestEnv(t, true)
	env.provider.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})

	w := env.do(t, http.MethodGet, "/api/practice/next/u1", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "generation_failed", errorCode(t, w))
}

func TestListQuestions(t *testing.T) {
	env := newTestEnv(t, false)
	env.addQuestion(t, sdQuestion)
	other := sdQuestion
	other.Concept = concept.StandardDeviation
	other.Difficulty = question.DifficultyMedium
	env.addQuestion(t, other)

	w := env.do(t, http.MethodGet, "/api/practice/questions?concept="+"%E6%A8%99%E6%BA%96%E5%B7%AE"+"&difficulty=medium", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Questions []practice.PublicQuestion `json:"questions"`
		Count     int                       `json:"count"`
	}](t, w)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Standard Deviation", body.Questions[0].Concept)

	tests := []struct {
		query string
		code  string
	}{
		{"concept=astrology", "unknown_concept"},
		{"difficulty=expert", "invalid_difficulty"},
		{"type=essay", "invalid_type"},
		{"limit=0", "invalid_query"},
		{"limit=abc", "invalid_query"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/practice/questions?"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestGetQuestion(t *testing.T) {
	env := newTestEnv(t, false)
	q := env.addQuestion(t, sdQuestion)

	w := env.do(t, http.MethodGet, "/api/practice/questions/"+q.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, q.Text, decode[practice.PublicQuestion](t, w).Text)

	w = env.do(t, http.MethodGet, "/api/practice/questions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "question_not_found", errorCode(t, w))
}

func TestSubmit(t *testing.T) {
	env := newTestEnv(t, false)
	q := env.addQuestion(t, sdQuestion)

	w := env.do(t, http.MethodPost, "/api/practice/submit", gin.H{
		"submissionId": "s-1",
		"userId":       "u1",
		"questionId":   q.ID,
		"answer":       "a",
		"timeTakenMs":  12000,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[practice.SubmitResult](t, w)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, grading.ModeExact, res.GradingMode)
	require.NotNil(t, res.Mastery)
	assert.InDelta(t, mastery.FirstCorrect, res.Mastery.Mastery, 1e-9)

	w = env.do(t, http.MethodPost, "/api/practice/submit", gin.H{
		"submissionId": "s-1",
		"userId":       "u1",
		"questionId":   q.ID,
		"answer":       "b",
	})
	require.Equal(t, http.StatusOK, w.Code)
	again := decode[practice.SubmitResult](t, w)
	assert.True(t, again.Duplicate)
	assert.True(t, again.IsCorrect)

	w = env.do(t, http.MethodGet, "/api/practice/progress/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[practice.Progress](t, w)
	assert.Equal(t, 1, p.TotalAnswered)
	assert.Equal(t, int64(12000), p.AvgTimeMs)
}

func TestSubmit_Errors(t *testing.T) {
	env := newTestEnv(t, false)
	q := env.addQuestion(t, sdQuestion)

	tests := []struct {
		name   string
		body   gin.H
		status int
		code   string
	}{
		{"missing answer", gin.H{"userId": "u1", "questionId": q.ID}, http.StatusBadRequest, "invalid_request"},
		{"blank answer", gin.H{"userId": "u1", "questionId": q.ID, "answer": "   "}, http.StatusBadRequest, "empty_answer"},
		{"blank user", gin.H{"userId": " ", "questionId": q.ID, "answer": "A"}, http.StatusBadRequest, "missing_user_id"},
		{"negative time", gin.H{"userId": "u1", "questionId": q.ID, "answer": "A", "timeTakenMs": -1}, http.StatusBadRequest, "invalid_request"},
		{"unknown question", gin.H{"userId": "u1", "questionId": "nope", "answer": "A"}, http.StatusNotFound, "question_not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/practice/submit", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestGenerate(t *testing.T) {
	env := newTestEnv(t, true)
	env.provider.AddResponse(llm.MockText(`{
		"question_text": "A sample has values 2, 4 and 6. What is its mean?",
		"question_type": "calculation",
		"correct_answer": 4,
		"explanation": "(2+4+6)/3 = 4",
		"concept_name": "Descriptive Statistics"
	}`))

	w := env.do(t, http.MethodPost, "/api/practice/generate", gin.H{
		"concept":    "描述統計",
		"difficulty": "basic",
		"type":       "calculation",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := decode[generatedQuestion](t, w)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "4", got.CorrectAnswer)
	assert.Equal(t, question.SourceGenerated, got.Source)
	assert.Equal(t, question.TypeCalculation, got.Type)

	stored, err := env.store.QuestionRepo().Get(context.Background(), got.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
}

func TestGenerate_OnMissOff(t *testing.T) {
	env := newTestEnv(t, true, func(d *practice.Deps) { d.GenerateOnMiss = false })

	w := env.do(t, http.MethodGet, "/api/practice/next/u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no_question", errorCode(t, w))

	env.provider.AddResponse(llm.MockText(`{
		"question_text": "Which measure is most affected by an outlier?",
		"question_type": "multiple_choice",
		"options": ["Mean", "Median", "Mode", "Interquartile range"],
		"correct_answer": "A",
		"explanation": "The mean uses every value, so one extreme score pulls it.",
		"concept_name": "Descriptive Statistics"
	}`))
	w = env.do(t, http.MethodPost, "/api/practice/generate", gin.H{
		"concept":    "descriptive statistics",
		"difficulty": 1,
		"type":       "multiple_choice",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "A", decode[generatedQuestion](t, w).CorrectAnswer)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		generate bool
		body     gin.H
		status   int
		code     string
	}{
		{"bad difficulty", true, gin.H{"concept": "correlation", "difficulty": 7}, http.StatusBadRequest, "invalid_request"},
		{"unknown concept", true, gin.H{"concept": "astrology", "difficulty": 1}, http.StatusBadRequest, "unknown_concept"},
		{"bad type", true, gin.H{"concept": "correlation", "difficulty": 1, "type": "essay"}, http.StatusBadRequest, "invalid_type"},
		{"provider down", true, gin.H{"concept": "correlation", "difficulty": 2}, http.StatusBadGateway, "generation_failed"},
		{"not configured", false, gin.H{"concept": "correlation", "difficulty": 2}, http.StatusServiceUnavailable, "generation_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.generate)
			w := env.do(t, http.MethodPost, "/api/practice/generate", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestChatFlow(t *testing.T) {
	env := newTestEnv(t, false)
	env.provider.AddResponse(llm.MockText("Correlation tells you how two variables move together."))

	w := env.do(t, http.MethodPost, "/api/chat/sessions", gin.H{"userId": "u1"})
	require.Equal(t, http.StatusCreated, w.Code)
	sess := decode[store.ChatSession](t, w)
	assert.Equal(t, "New conversation", sess.Title)

	path := "/api/chat/sessions/" + sess.ID + "/messages"
	w = env.do(t, http.MethodPost, path, gin.H{"userId": "u1", "message": "Does correlation mean causation?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reply := decode[chat.Reply](t, w)
	assert.Equal(t, chat.RoleAssistant, reply.Message.Role)
	assert.Contains(t, reply.Concepts, concept.CorrelationAnalysis)

	w = env.do(t, http.MethodGet, path+"?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	msgs := decode[struct {
		Messages []store.ChatMessage `json:"messages"`
	}](t, w)
	assert.Len(t, msgs.Messages, 2)

	w = env.do(t, http.MethodGet, "/api/chat/issues/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestChat_Errors(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/chat/sessions", gin.H{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", errorCode(t, w))

	w = env.do(t, http.MethodPost, "/api/chat/sessions/nope/messages", gin.H{"message": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "session_not_found", errorCode(t, w))

	w = env.do(t, http.MethodPost, "/api/chat/sessions", gin.H{"userId": "u1"})
	require.Equal(t, http.StatusCreated, w.Code)
	sess := decode[store.ChatSession](t, w)

	// No canned response queued: the provider is unavailable.
	w = env.do(t, http.MethodPost, "/api/chat/sessions/"+sess.ID+"/messages", gin.H{"message": "what is a t-test"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "llm_failed", errorCode(t, w))

	w = env.do(t, http.MethodGet, "/api/chat/sessions/"+sess.ID+"/messages?limit=-2", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	env.do(t, http.MethodGet, "/api/practice/recommendation/u9", nil)

	w := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `statlab_recommendations_total{category="new_user"} 1`)
	assert.Contains(t, body, `route="/api/practice/recommendation/:userId"`)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errorCode(t, w))
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/practice/submit", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
