package services_test

import (
	"net/url"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
)

func (s *MailingSuite) TestIngest_StoresInboxMessage() {
	res, err := s.ingest(delivery("<m1@ext.com>"))
	s.Require().NoError(err)

	s.Equal(services.OutcomeStored, res.Outcome)
	s.Equal("client@ext.com", res.Email.From)
	s.Equal(models.DirectionIncoming, res.Email.Direction)
	s.Equal(res.Email.ID, res.Email.ChainID)
	s.Equal("alice@team.co", res.Email.Recipient)
	s.False(res.Email.IsRead)
	s.Equal("Could you send a quote?", res.Email.Summary)

	chain, err := s.query.GetChain(s.ctx, alice, res.Email.ChainID)
	s.Require().NoError(err)
	s.Require().Len(chain.Emails, 1)
	inbox, err := s.labelsRepo.GetSystem(s.ctx, models.LabelInbox)
	s.Require().NoError(err)
	s.Contains(chain.Emails[0].LabelIDs, inbox.ID)
}

func (s *MailingSuite) TestIngest_RedeliveryIsIdempotent() {
	first := s.mustIngest(delivery("<dup@ext.com>"))

	res, err := s.ingest(delivery("<dup@ext.com>"))
	s.Require().NoError(err)

	s.Equal(services.OutcomeDuplicate, res.Outcome)
	s.Equal(first.ID, res.Email.ID)
	s.Equal(int64(1), s.countEmails())
}

func (s *MailingSuite) TestIngest_ConcurrentRedeliveryStoresOnce() {
	var wg sync.WaitGroup
	ids := make([]string, 4)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.ingest(delivery("<race@ext.com>"))
			if err == nil && res.Email != nil {
				ids[i] = res.Email.ID
			}
		}()
	}
	wg.Wait()

	s.Equal(int64(1), s.countEmails())
	for _, id := range ids {
		s.Equal(ids[0], id)
	}
}

func (s *MailingSuite) TestIngest_ThreadsRepliesIntoOneChain() {
	a := s.mustIngest(delivery("<a@ext.com>"))
	b := s.mustIngest(delivery("<b@ext.com>", func(v url.Values) {
		v.Set("In-Reply-To", "<a@ext.com>")
		v.Set("References", "<a@ext.com>")
	}))
	c := s.mustIngest(delivery("<c@ext.com>", func(v url.Values) {
		v.Set("In-Reply-To", "<b@ext.com>")
		v.Set("References", "<a@ext.com> <b@ext.com>")
	}))

	s.Equal(a.ID, a.ChainID)
	s.Equal(a.ChainID, b.ChainID)
	s.Equal(a.ChainID, c.ChainID)

	chain, err := s.query.GetChain(s.ctx, alice, a.ChainID)
	s.Require().NoError(err)
	s.Len(chain.Emails, 3)
	s.Equal("Quote request", chain.Conversation.Subject)
}

func (s *MailingSuite) TestIngest_ReferencesOnlyJoinsChain() {
	a := s.mustIngest(delivery("<root@ext.com>"))
	b := s.mustIngest(delivery("<late@ext.com>", func(v url.Values) {
		v.Set("References", "<unknown@ext.com> <root@ext.com>")
	}))
	s.Equal(a.ChainID, b.ChainID)
}

func (s *MailingSuite) TestIngest_UnknownRecipientIsIgnored() {
	res, err := s.ingest(delivery("<nobody@ext.com>", func(v url.Values) {
		v.Set("recipient", "nobody@team.co")
	}))
	s.Require().NoError(err)

	s.Equal(services.OutcomeIgnoredNoRecipient, res.Outcome)
	s.Nil(res.Email)
	s.Zero(s.countEmails())
}

func (s *MailingSuite) TestIngest_BlindCopyReachesMailbox() {
	email := s.mustIngest(delivery("<bcc@ext.com>", func(v url.Values) {
		v.Set("recipient", "bob@team.co")
		v.Set("To", "someone@ext.com")
	}))

	s.Equal([]string{"bob@team.co"}, email.Bcc)
	_, err := s.query.GetChain(s.ctx, bob, email.ChainID)
	s.NoError(err)
}

func (s *MailingSuite) TestIngest_RejectsBadSignature() {
	res, err := s.ingest(delivery("<forged@ext.com>", func(v url.Values) {
		v.Set("signature", "00ff")
	}))

	s.Nil(res)
	s.ErrorIs(err, apperrors.ErrSignatureInvalid)
	s.Zero(s.countEmails())
}

func (s *MailingSuite) TestIngest_RejectsReplayOutsideWindow() {
	res, err := s.ingest(delivery("<old@ext.com>", func(v url.Values) {
		v.Set("timestamp", strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10))
	}))

	s.Nil(res)
	s.ErrorIs(err, apperrors.ErrSignatureInvalid)
	s.Zero(s.countEmails())
}

func (s *MailingSuite) TestIngest_RejectsWhenReceivingDisabled() {
	apiKey := "key-live"
	_, err := s.integrationS.Upsert(s.ctx, owner, models.IntegrationMailgun, services.UpsertIntegrationRequest{
		APIKey: &apiKey, OutboundEnabled: true,
	})
	s.Require().NoError(err)

	_, err = s.ingest(delivery("<off@ext.com>"))
	s.ErrorIs(err, apperrors.ErrSignatureInvalid)
}

func (s *MailingSuite) TestIngest_UnknownProviderIsInvalid() {
	_, err := s.processor.Ingest(s.ctx, teamID, models.IntegrationSES, services.InboundPayload{Values: delivery("<x@ext.com>")})
	s.ErrorIs(err, apperrors.ErrInvalidInput)
}

func (s *MailingSuite) TestIngest_MalformedAfterValidSignature() {
	_, err := s.ingest(delivery("", func(v url.Values) {
		v.Del("Message-Id")
	}))
	s.ErrorIs(err, apperrors.ErrPayloadMalformed)
}
