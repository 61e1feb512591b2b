package services_test

import (
	"fmt"
	"net/url"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
	"github.com/welldanyogia/webrana-teammail-backend/internal/storage"
)

func (s *MailingSuite) TestList_OneRowPerChainWithLatestEmail() {
	a := s.mustIngest(delivery("<q1@ext.com>"))
	b := s.mustIngest(delivery("<q2@ext.com>", func(v url.Values) {
		v.Set("subject", "Re: Quote request")
		v.Set("In-Reply-To", "<q1@ext.com>")
	}))
	s.mustIngest(delivery("<other@ext.com>", func(v url.Values) { v.Set("subject", "Invoice") }))

	page, err := s.query.List(s.ctx, alice, aliceID, services.ConversationFilter{}, 1, 20)
	s.Require().NoError(err)

	s.Equal(int64(2), page.Total)
	s.Require().Len(page.Items, 2)
	var quote services.ConversationItem
	for _, item := range page.Items {
		if item.ChainID == a.ChainID {
			quote = item
		}
	}
	s.Equal(b.ID, quote.LatestEmail.ID)
	s.Equal(int64(2), quote.MessageCount)
	s.Equal("Quote request", quote.Subject)
}

func (s *MailingSuite) TestList_Paginates() {
	for i := 0; i < 25; i++ {
		s.mustIngest(delivery(fmt.Sprintf("<bulk-%d@ext.com>", i)))
	}

	seen := map[string]bool{}
	for page, want := range map[int]int{1: 10, 2: 10, 3: 5} {
		res, err := s.query.List(s.ctx, alice, aliceID, services.ConversationFilter{}, page, 10)
		s.Require().NoError(err)
		s.Equal(int64(25), res.Total)
		s.Len(res.Items, want)
		for _, item := range res.Items {
			s.False(seen[item.ChainID], "chain listed twice")
			seen[item.ChainID] = true
		}
	}
	s.Len(seen, 25)
}

func (s *MailingSuite) TestList_IsolatesMembers() {
	email := s.mustIngest(delivery("<alice-only@ext.com>"))

	page, err := s.query.List(s.ctx, bob, bobID, services.ConversationFilter{}, 1, 20)
	s.Require().NoError(err)
	s.Zero(page.Total)
	s.Empty(page.Items)

	_, err = s.query.GetChain(s.ctx, bob, email.ChainID)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.query.List(s.ctx, bob, aliceID, services.ConversationFilter{}, 1, 20)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.query.List(s.ctx, bob, bobID, services.ConversationFilter{EmailAddress: "alice@team.co"}, 1, 20)
	s.ErrorIs(err, apperrors.ErrMailboxNotOwned)
}

func (s *MailingSuite) TestList_MemberWithoutAddressesSeesNothing() {
	s.mustIngest(delivery("<x@ext.com>"))

	page, err := s.query.List(s.ctx, outsider, outsiderID, services.ConversationFilter{}, 1, 20)
	s.Require().NoError(err)
	s.Empty(page.Items)
}

func (s *MailingSuite) TestList_StatusFilters() {
	read := s.mustIngest(delivery("<read@ext.com>"))
	unread := s.mustIngest(delivery("<unread@ext.com>"))
	_, err := s.messages.MarkRead(s.ctx, alice, read.ID, true)
	s.Require().NoError(err)
	_, err = s.messages.SetStarred(s.ctx, alice, read.ID, true)
	s.Require().NoError(err)

	page, err := s.query.List(s.ctx, alice, aliceID, services.ConversationFilter{Status: services.StatusUnread}, 1, 20)
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal(unread.ID, page.Items[0].ChainID)

	page, err = s.query.List(s.ctx, alice, aliceID, services.ConversationFilter{Status: services.StatusStarred}, 1, 20)
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal(read.ID, page.Items[0].ChainID)

	page, err = s.query.List(s.ctx, alice, aliceID, services.ConversationFilter{Status: services.StatusSent}, 1, 20)
	s.Require().NoError(err)
	s.Empty(page.Items)

	_, err = s.query.List(s.ctx, alice, aliceID, services.ConversationFilter{Status: "archived"}, 1, 20)
	s.ErrorIs(err, apperrors.ErrInvalidInput)
}

func (s *MailingSuite) TestList_Search() {
	s.mustIngest(delivery("<s1@ext.com>", func(v url.Values) { v.Set("subject", "Invoice 2231") }))
	s.mustIngest(delivery("<s2@ext.com>"))

	page, err := s.query.List(s.ctx, alice, aliceID, services.ConversationFilter{Search: "invoice"}, 1, 20)
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal("Invoice 2231", page.Items[0].Subject)
}

func (s *MailingSuite) TestList_SearchMatchesWildcardsLiterally() {
	s.mustIngest(delivery("<w1@ext.com>", func(v url.Values) { v.Set("subject", "Invoice") }))
	s.mustIngest(delivery("<w2@ext.com>", func(v url.Values) { v.Set("subject", "Quote") }))
	s.mustIngest(delivery("<w3@ext.com>", func(v url.Values) { v.Set("subject", "100% done") }))

	for _, term := range []string{"_", "%%"} {
		page, err := s.query.List(s.ctx, alice, aliceID, services.ConversationFilter{Search: term}, 1, 20)
		s.Require().NoError(err)
		s.Zero(page.Total, "search %q", term)
	}

	page, err := s.query.List(s.ctx, alice, aliceID, services.ConversationFilter{Search: "0%"}, 1, 20)
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal("100% done", page.Items[0].Subject)
}

func (s *MailingSuite) TestList_LatestEmailCarriesLabelsAndAttachmentURLs() {
	_, err := s.dispatcher.Send(s.ctx, alice, services.SendRequest{
		From: "alice@team.co", To: []string{"client@ext.com"}, Subject: "Report",
		Text:        "attached",
		Attachments: []storage.Upload{storage.BytesUpload("q3.csv", "text/csv", []byte("a,b"))},
	})
	s.Require().NoError(err)

	page, err := s.query.List(s.ctx, alice, aliceID, services.ConversationFilter{Status: services.StatusSent}, 1, 20)
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)

	latest := page.Items[0].LatestEmail
	s.NotEmpty(latest.LabelIDs)
	s.Require().Len(latest.Attachments, 1)
	s.Equal("q3.csv", latest.Attachments[0].Filename)
	s.Equal(services.AttachmentURL(baseURL, teamID, latest.Attachments[0].ID), latest.Attachments[0].URL)
}

func (s *MailingSuite) TestGetChain_Unknown() {
	_, err := s.query.GetChain(s.ctx, alice, "00000000-0000-0000-0000-000000000000")
	s.ErrorIs(err, apperrors.ErrChainNotFound)
}

func (s *MailingSuite) TestGetChainForAddress_FiltersParticipants() {
	s.provision(aliceID, "sales")
	first := s.mustIngest(delivery("<f1@ext.com>"))
	s.mustIngest(delivery("<f2@ext.com>", func(v url.Values) {
		v.Set("recipient", "sales@team.co")
		v.Set("In-Reply-To", "<f1@ext.com>")
	}))

	view, err := s.query.GetChainForAddress(s.ctx, alice, first.ChainID, "sales@team.co")
	s.Require().NoError(err)
	s.Require().Len(view.Emails, 1)
	s.Equal("<f2@ext.com>", view.Emails[0].MessageID)
	s.Equal("Quote request", view.Conversation.Subject)

	_, err = s.query.GetChainForAddress(s.ctx, alice, first.ChainID, "bob@team.co")
	s.ErrorIs(err, apperrors.ErrMailboxNotOwned)
}
