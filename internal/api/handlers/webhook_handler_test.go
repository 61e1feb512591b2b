package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/mocks"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
)

type WebhookHandlerTestSuite struct {
	suite.Suite
	echo      *echo.Echo
	processor *mocks.MockInboundProcessor
	handler   *WebhookHandler
	logs      *bytes.Buffer
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.processor = new(mocks.MockInboundProcessor)
	security, buf := newSecurityLogger()
	s.logs = buf
	s.handler = NewWebhookHandler(s.processor, security, time.Second)
}

func (s *WebhookHandlerTestSuite) TearDownTest() {
	s.processor.AssertExpectations(s.T())
}

func TestWebhookHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) post(provider, teamID string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/"+provider+"/"+teamID, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	setParams(c, []string{"provider", "teamId"}, []string{provider, teamID})
	s.Require().NoError(s.handler.Receive(c))
	return rec
}

func (s *WebhookHandlerTestSuite) TestReceive_Stored() {
	form := url.Values{"Message-Id": {"<a@ext.com>"}, "recipient": {"alice@team.co"}}
	s.processor.On("Ingest", mock.Anything, uint(1), models.IntegrationMailgun,
		mock.MatchedBy(func(p services.InboundPayload) bool {
			return p.Values["Message-Id"][0] == "<a@ext.com>"
		})).
		Return(&services.IngestResult{Outcome: services.OutcomeStored}, nil)

	rec := s.post("mailgun", "1", form)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"outcome":"stored"`)
}

func (s *WebhookHandlerTestSuite) TestReceive_AppliesDeadline() {
	s.processor.On("Ingest", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), uint(1), models.IntegrationMailgun, mock.Anything).
		Return(&services.IngestResult{Outcome: services.OutcomeDuplicate}, nil)

	rec := s.post("mailgun", "1", url.Values{"Message-Id": {"<a@ext.com>"}})

	s.Equal(http.StatusOK, rec.Code)
}

func (s *WebhookHandlerTestSuite) TestReceive_BadSignatureIsLogged() {
	s.processor.On("Ingest", mock.Anything, uint(1), models.IntegrationMailgun, mock.Anything).
		Return(nil, apperrors.NewAppError(apperrors.ErrSignatureInvalid, "signature mismatch", apperrors.CodeSignatureInvalid))

	rec := s.post("mailgun", "1", url.Values{"signature": {"forged"}})

	s.Equal(http.StatusUnauthorized, rec.Code)
	resp, err := parseErrorResponse(rec)
	s.Require().NoError(err)
	s.Equal(apperrors.CodeSignatureInvalid, resp.Code)
	s.Contains(s.logs.String(), "webhook")
	s.Contains(s.logs.String(), "mailgun")
}

func (s *WebhookHandlerTestSuite) TestReceive_MalformedPayload() {
	s.processor.On("Ingest", mock.Anything, uint(1), models.IntegrationMailgun, mock.Anything).
		Return(nil, apperrors.NewAppError(apperrors.ErrPayloadMalformed, "missing Message-Id", apperrors.CodePayloadMalformed))

	rec := s.post("mailgun", "1", url.Values{})

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Empty(s.logs.String())
}

func (s *WebhookHandlerTestSuite) TestReceive_InvalidTeam() {
	rec := s.post("mailgun", "zero", url.Values{})

	s.Equal(http.StatusBadRequest, rec.Code)
	s.processor.AssertNotCalled(s.T(), "Ingest")
}

func (s *WebhookHandlerTestSuite) TestReceive_StorageFailureIsLogged() {
	s.processor.On("Ingest", mock.Anything, uint(1), models.IntegrationMailgun, mock.Anything).
		Return(nil, context.DeadlineExceeded)

	rec := s.post("mailgun", "1", url.Values{"Message-Id": {"<a@ext.com>"}})

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Contains(s.logs.String(), "inbound delivery failed")
	resp, err := parseErrorResponse(rec)
	s.Require().NoError(err)
	s.Equal(apperrors.ErrInternal.Error(), resp.Error)
}
