package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("x").HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, Duplicate("x").HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, BadRequest("x").HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("x").HTTPStatus())
	assert.Equal(t, http.StatusForbidden, Forbidden("x").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Internal("x").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, New(KindUnknown, "x").HTTPStatus())
}

func TestKindSurvivesWrapping(t *testing.T) {
	cause := errors.New("cause")
	err := fmt.Errorf("outer: %w", Wrap(KindDuplicate, "again", cause).WithOp("leads.process"))

	assert.True(t, Is(err, KindDuplicate))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindUnknown, GetKind(cause))
	assert.Equal(t, "outer: leads.process: again", err.Error())
}
