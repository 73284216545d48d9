package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{InvalidAmount("negative"), http.StatusBadRequest},
		{NoInstrument(), http.StatusBadRequest},
		{NotFound("due"), http.StatusNotFound},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Forbidden("admin only"), http.StatusForbidden},
		{Conflict("exists"), http.StatusConflict},
		{AlreadyPaid("due"), http.StatusBadRequest},
		{Gateway("commit failed", errors.New("timeout")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Status(c.err), c.err.Error())
	}
}

func TestMatchingThroughWrapping(t *testing.T) {
	err := fmt.Errorf("settle: %w", AlreadyPaid("online obligation"))

	assert.True(t, HasCode(err, CodeAlreadyPaid))
	assert.True(t, errors.Is(err, AlreadyPaid("anything")))
	assert.False(t, errors.Is(err, Conflict("other")))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))

	cause := errors.New("dial tcp: refused")
	gw := Gateway("gateway create failed", cause)
	assert.ErrorIs(t, gw, cause)
	assert.Equal(t, "gateway create failed: dial tcp: refused", gw.Error())
}

func TestWrite(t *testing.T) {
	decode := func(rec *httptest.ResponseRecorder) body {
		var b body
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&b))
		return b
	}

	rec := httptest.NewRecorder()
	Write(rec, zap.NewNop(), NotFound("enrollment obligation"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, body{Code: CodeNotFound, Detail: "enrollment obligation not found"}, decode(rec))

	rec = httptest.NewRecorder()
	Write(rec, zap.NewNop(), errors.New("pq: connection reset"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, body{Code: CodeInternal, Detail: "internal error"}, decode(rec))

	rec = httptest.NewRecorder()
	Write(rec, nil, Gateway("gateway commit failed", errors.New("status 401: Not Authorized")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "gateway commit failed: status 401: Not Authorized", decode(rec).Detail)
}
