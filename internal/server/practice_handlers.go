package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/practice"
	"github.com/abhisek/statlab/internal/question"
	"github.com/abhisek/statlab/internal/questiongen"
	"github.com/abhisek/statlab/internal/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type conceptInfo struct {
	Name  concept.Concept `json:"name"`
	Index int             `json:"index"`
}

type difficultyInfo struct {
	Level int    `json:"level"`
	Name  string `json:"name"`
}

func (h *handlers) concepts(c *gin.Context) {
	all := concept.All()
	out := make([]conceptInfo, len(all))
	for i, cc := range all {
		out[i] = conceptInfo{Name: cc, Index: concept.Index(cc)}
	}
	diffs := make([]difficultyInfo, 0, 3)
	for d := question.DifficultyBasic; d <= question.DifficultyAdvanced; d++ {
		diffs = append(diffs, difficultyInfo{Level: d, Name: question.DifficultyName(d)})
	}
	respondOK(c, gin.H{
		"concepts":      out,
		"entry":         concept.Entry,
		"difficulties":  diffs,
		"questionTypes": question.Types(),
	})
}

func (h *handlers) recommendation(c *gin.Context) {
	rec, err := h.recommender.Recommend(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, rec)
}

func (h *handlers) next(c *gin.Context) {
	qt := question.Type(strings.TrimSpace(c.Query("type")))
	n, err := h.practice.Next(c.Request.Context(), c.Param("userId"), qt)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, n)
}

func (h *handlers) listQuestions(c *gin.Context) {
	f, err := parseQuestionFilter(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	qs, err := h.practice.Questions(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"questions": qs, "count": len(qs)})
}

// parseQuestionFilter reads concept, difficulty, type and limit from the
// query string. Concepts accept any alias; difficulties accept names.
func parseQuestionFilter(c *gin.Context) (store.QuestionFilter, error) {
	f := store.QuestionFilter{Limit: defaultListLimit}
	if raw := c.Query("concept"); raw != "" {
		cc, err := concept.Parse(raw)
		if err != nil {
			return f, err
		}
		f.Concept = cc
	}
	if raw := c.Query("difficulty"); raw != "" {
		d, err := question.ParseDifficulty(raw)
		if err != nil {
			return f, err
		}
		f.Difficulty = d
	}
	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		qt := question.Type(raw)
		if !qt.Valid() {
			return f, fmt.Errorf("%w: %q", practice.ErrInvalidType, raw)
		}
		f.Type = qt
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return f, fmt.Errorf("%w: limit must be a positive integer", errInvalidQuery)
		}
		f.Limit = min(n, maxListLimit)
	}
	return f, nil
}

func (h *handlers) getQuestion(c *gin.Context) {
	q, err := h.practice.Question(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, q)
}

// difficultyParam accepts a level as a JSON number or a name string.
type difficultyParam int

func (d *difficultyParam) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var s string
	switch v := raw.(type) {
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		s = v
	default:
		return fmt.Errorf("%w: %s", question.ErrInvalidDifficulty, string(b))
	}
	n, err := question.ParseDifficulty(s)
	if err != nil {
		return err
	}
	*d = difficultyParam(n)
	return nil
}

type generateRequest struct {
	Concept    string          `json:"concept" binding:"required"`
	Difficulty difficultyParam `json:"difficulty" binding:"required"`
	Type       string          `json:"type"`
}

// generatedQuestion is returned to the author, so it includes the answer.
type generatedQuestion struct {
	practice.PublicQuestion
	CorrectAnswer string          `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
	Source        question.Source `json:"source"`
}

func (h *handlers) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	cc, err := concept.Parse(req.Concept)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	q, err := h.practice.Generate(c.Request.Context(), questiongen.GenerateInput{
		Concept:    cc,
		Difficulty: int(req.Difficulty),
		Type:       question.Type(strings.TrimSpace(req.Type)),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, generatedQuestion{
		PublicQuestion: practice.Public(q),
		CorrectAnswer:  q.Answer,
		Explanation:    q.Explanation,
		Source:         q.Source,
	})
}

type submitRequest struct {
	SubmissionID string `json:"submissionId"`
	UserID       string `json:"userId" binding:"required"`
	QuestionID   string `json:"questionId" binding:"required"`
	SessionID    string `json:"sessionId"`
	Answer       string `json:"answer" binding:"required"`
	TimeTakenMs  int64  `json:"timeTakenMs" binding:"min=0"`
}

func (h *handlers) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := h.practice.Submit(c.Request.Context(), practice.Submission{
		SubmissionID: req.SubmissionID,
		UserID:       req.UserID,
		QuestionID:   req.QuestionID,
		SessionID:    req.SessionID,
		Answer:       req.Answer,
		TimeTaken:    time.Duration(req.TimeTakenMs) * time.Millisecond,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, res)
}

func (h *handlers) progress(c *gin.Context) {
	p, err := h.practice.Progress(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}
