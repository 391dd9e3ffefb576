package handlers

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/alchemorsel/foodgram/pkg/errors"
)

type DecodeTestSuite struct {
	suite.Suite
}

func (s *DecodeTestSuite) request(body string, limit int64) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if limit > 0 {
		req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, limit)
	}
	return req
}

func (s *DecodeTestSuite) appError(err error) *errors.AppError {
	var appErr *errors.AppError
	s.Require().True(stderrors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr
}

func (s *DecodeTestSuite) TestDecode() {
	s.Run("OversizedBody_ShouldReportTooLarge", func() {
		body := `{"name":"` + strings.Repeat("x", 4<<10) + `"}`
		var req RecipeRequest

		err := decode(s.request(body, 1<<10), &req)

		appErr := s.appError(err)
		s.Equal(errors.CodeBadRequest, appErr.Code)
		s.Equal("Request body too large", appErr.Message)
	})

	s.Run("BlankBody_ShouldReportEmpty", func() {
		var req RegisterRequest

		appErr := s.appError(decode(s.request("  \n", 0), &req))

		s.Equal("Request body is empty", appErr.Message)
	})

	s.Run("TruncatedJSON_ShouldReportInvalid", func() {
		var req RegisterRequest

		appErr := s.appError(decode(s.request(`{"email":`, 0), &req))

		s.Equal("Invalid JSON body", appErr.Message)
	})

	s.Run("PaddedEmail_ShouldBeNormalizedBeforeValidation", func() {
		body := `{"email":" New@Example.com ","username":" newcomer ","first_name":"New",` +
			`"last_name":"Comer","password":"s3cret-pass"}`
		var req RegisterRequest

		s.Require().NoError(decode(s.request(body, 0), &req))

		s.Equal("new@example.com", req.Email)
		s.Equal("newcomer", req.Username)
	})

	s.Run("InvalidEmail_ShouldStillFailValidation", func() {
		body := `{"email":"not-an-email","username":"u","first_name":"a","last_name":"b","password":"p"}`
		var req RegisterRequest

		appErr := s.appError(decode(s.request(body, 0), &req))

		s.Equal(errors.CodeValidationFailed, appErr.Code)
	})
}

func TestDecodeTestSuite(t *testing.T) {
	suite.Run(t, new(DecodeTestSuite))
}
