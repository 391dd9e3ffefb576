package testutils

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/foodgram/pkg/errors"
)

// HTTPAssertions provides HTTP-specific assertion methods for recorded responses
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(rec *httptest.ResponseRecorder, expectedCode int, msgAndArgs ...interface{}) {
	ha.t.Helper()
	require.NotNil(ha.t, rec, "Response should not be nil")
	assert.Equal(ha.t, expectedCode, rec.Code, append(msgAndArgs, rec.Body.String())...)
}

// JSONResponse asserts that the response is JSON and unmarshals it
func (ha *HTTPAssertions) JSONResponse(rec *httptest.ResponseRecorder, target interface{}) {
	ha.t.Helper()
	contentType := rec.Header().Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)
	require.NoError(ha.t, json.Unmarshal(rec.Body.Bytes(), target), "Response should be valid JSON")
}

// ErrorCode asserts the response carries an error envelope with code
func (ha *HTTPAssertions) ErrorCode(rec *httptest.ResponseRecorder, expectedCode errors.ErrorCode) *errors.ErrorResponse {
	ha.t.Helper()
	var body errors.ErrorResponse
	ha.JSONResponse(rec, &body)
	assert.Equal(ha.t, expectedCode, body.Error.Code, rec.Body.String())
	return &body
}

// SecurityHeaders asserts that security headers are present
func (ha *HTTPAssertions) SecurityHeaders(rec *httptest.ResponseRecorder) {
	ha.t.Helper()
	for _, header := range []string{"X-Content-Type-Options", "X-Frame-Options", "Referrer-Policy"} {
		assert.NotEmpty(ha.t, rec.Header().Get(header), "Security header %s should be present", header)
	}
}

// AssertAppError asserts err is an AppError with code
func AssertAppError(t *testing.T, err error, code errors.ErrorCode, msgAndArgs ...interface{}) {
	t.Helper()
	require.Error(t, err, msgAndArgs...)
	assert.Equal(t, code, errors.GetCode(err), append(msgAndArgs, err.Error())...)
}
