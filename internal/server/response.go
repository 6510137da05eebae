package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/statlab/internal/chat"
	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/practice"
	"github.com/abhisek/statlab/internal/question"
	"github.com/abhisek/statlab/internal/questiongen"
	"github.com/abhisek/statlab/internal/recommend"
)

// APIError is the body of every failed request.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

var errInvalidQuery = errors.New("invalid query parameter")

// statusRule maps a sentinel error to an HTTP status and error code.
type statusRule struct {
	target error
	status int
	code   string
}

var statusRules = []statusRule{
	{recommend.ErrMissingUserID, http.StatusBadRequest, "missing_user_id"},
	{errInvalidQuery, http.StatusBadRequest, "invalid_query"},
	{practice.ErrEmptyAnswer, http.StatusBadRequest, "empty_answer"},
	{practice.ErrInvalidType, http.StatusBadRequest, "invalid_type"},
	{questiongen.ErrUnsupportedType, http.StatusBadRequest, "invalid_type"},
	{concept.ErrUnknownConcept, http.StatusBadRequest, "unknown_concept"},
	{question.ErrInvalidDifficulty, http.StatusBadRequest, "invalid_difficulty"},
	{chat.ErrEmptyMessage, http.StatusBadRequest, "empty_message"},
	{practice.ErrQuestionNotFound, http.StatusNotFound, "question_not_found"},
	{chat.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
	{practice.ErrNoQuestion, http.StatusNotFound, "no_question"},
	{practice.ErrGenerationFailed, http.StatusBadGateway, "generation_failed"},
	{practice.ErrGenerationUnavailable, http.StatusServiceUnavailable, "generation_unavailable"},
	{chat.ErrLLMFailed, http.StatusBadGateway, "llm_failed"},
	{practice.ErrRecordFailed, http.StatusInternalServerError, "record_failed"},
}

// respondServiceError writes the envelope for an error returned by a
// service call. Unclassified errors become a 500 without their detail.
func respondServiceError(c *gin.Context, err error) {
	for _, r := range statusRules {
		if errors.Is(err, r.target) {
			respondError(c, r.status, r.code, err)
			return
		}
	}
	_ = c.Error(err)
	respondError(c, http.StatusInternalServerError, "internal", errors.New("internal server error"))
}

func respondBindError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "invalid_request", err)
}
