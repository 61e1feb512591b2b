package services_test

import (
	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
)

func (s *MailingSuite) TestDomains_ManagerOnly() {
	_, err := s.domains.Create(s.ctx, alice, services.CreateDomainRequest{Name: "other.co"})
	s.ErrorIs(err, apperrors.ErrForbidden)

	manager := services.Identity{TeamID: teamID, MemberID: 2, Role: services.RoleManager}
	d, err := s.domains.Create(s.ctx, manager, services.CreateDomainRequest{Name: "  Other.CO "})
	s.Require().NoError(err)
	s.Equal("other.co", d.Name)
	s.Equal(models.DomainTypeManual, d.Type)
	s.Equal(models.VerificationPending, d.VerificationStatus)

	_, err = s.domains.Create(s.ctx, manager, services.CreateDomainRequest{Name: "other.co"})
	s.ErrorIs(err, apperrors.ErrDuplicateEntry)

	_, err = s.domains.Create(s.ctx, manager, services.CreateDomainRequest{Name: "not a domain"})
	s.ErrorIs(err, apperrors.ErrInvalidInput)
}

func (s *MailingSuite) TestDomains_DeleteRefusedWhileReferenced() {
	err := s.domains.Delete(s.ctx, owner, s.domain.ID)
	s.ErrorIs(err, apperrors.ErrDomainInUse)

	_, err = s.domains.Get(s.ctx, teamID, s.domain.ID)
	s.NoError(err)
}

func (s *MailingSuite) TestDomains_InactiveDomainStopsMail() {
	_, err := s.domains.SetActive(s.ctx, owner, s.domain.ID, false)
	s.Require().NoError(err)

	_, err = s.directory.Create(s.ctx, owner, services.CreateAddressRequest{
		LocalPart: "carol", DomainID: s.domain.ID, TeamMemberID: 40,
	})
	s.ErrorIs(err, apperrors.ErrDomainNotActive)

	res, err := s.ingest(delivery("<inactive@ext.com>"))
	s.Require().NoError(err)
	s.Equal(services.OutcomeIgnoredNoRecipient, res.Outcome)

	_, err = s.dispatcher.Send(s.ctx, alice, services.SendRequest{From: "alice@team.co", To: []string{"client@ext.com"}})
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *MailingSuite) TestAddresses_FirstIsDefaultAndUnique() {
	rows, err := s.directory.ListByMember(s.ctx, teamID, aliceID)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.True(rows[0].IsDefault)
	s.Equal("alice@team.co", rows[0].FullAddress)

	alias := s.provision(aliceID, "Sales")
	s.False(alias.IsDefault)
	s.Equal("sales@team.co", alias.FullAddress)

	_, err = s.directory.Create(s.ctx, owner, services.CreateAddressRequest{
		LocalPart: "sales", DomainID: s.domain.ID, TeamMemberID: bobID,
	})
	s.ErrorIs(err, apperrors.ErrDuplicateEntry)

	_, err = s.directory.Create(s.ctx, alice, services.CreateAddressRequest{
		LocalPart: "mine", DomainID: s.domain.ID, TeamMemberID: aliceID,
	})
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *MailingSuite) TestAddresses_SetDefault() {
	alias := s.provision(aliceID, "support")

	_, err := s.directory.SetDefault(s.ctx, bob, alias.ID)
	s.ErrorIs(err, apperrors.ErrMailboxNotOwned)

	updated, err := s.directory.SetDefault(s.ctx, alice, alias.ID)
	s.Require().NoError(err)
	s.True(updated.IsDefault)

	rows, err := s.directory.ListByMember(s.ctx, teamID, aliceID)
	s.Require().NoError(err)
	defaults := 0
	for _, r := range rows {
		if r.IsDefault {
			defaults++
			s.Equal(alias.ID, r.ID)
		}
	}
	s.Equal(1, defaults)
}

func (s *MailingSuite) TestAddresses_ResolveRecipientsIgnoresUnknown() {
	rows, err := s.directory.ResolveRecipients(s.ctx, teamID, []string{"Alice@team.co", "ghost@team.co", "alice@team.co", "bob@elsewhere.io"})
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(aliceID, rows[0].TeamMemberID)
}

func (s *MailingSuite) TestIntegrations_SecretsMergeAndStayHidden() {
	endpoint := "https://api.eu.mailgun.net/v3"
	view, err := s.integrationS.Upsert(s.ctx, owner, models.IntegrationMailgun, services.UpsertIntegrationRequest{
		Endpoint: endpoint, InboundEnabled: true, OutboundEnabled: true,
	})
	s.Require().NoError(err)
	s.Equal(endpoint, view.Endpoint)
	s.True(view.APIKeySet)
	s.True(view.WebhookSigningKeySet)

	stored, err := s.integrations.Get(s.ctx, teamID, models.IntegrationMailgun)
	s.Require().NoError(err)
	s.Equal("key-live", stored.APIKey)
	s.Equal(signingKey, stored.WebhookSigningKey)

	_, err = s.integrationS.Get(s.ctx, alice, models.IntegrationMailgun)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.integrationS.Upsert(s.ctx, owner, models.IntegrationSES, services.UpsertIntegrationRequest{OutboundEnabled: true})
	s.ErrorIs(err, apperrors.ErrInvalidInput)

	_, err = s.integrationS.Upsert(s.ctx, owner, "postmark", services.UpsertIntegrationRequest{})
	s.ErrorIs(err, apperrors.ErrInvalidInput)
}

func (s *MailingSuite) TestLabels_Lifecycle() {
	email := s.mustIngest(delivery("<lbl@ext.com>"))

	_, err := s.labels.Create(s.ctx, alice, services.LabelRequest{Name: "Inbox"})
	s.ErrorIs(err, apperrors.ErrInvalidInput)

	label, err := s.labels.Create(s.ctx, alice, services.LabelRequest{Name: "Leads", Color: "#1a2b3c"})
	s.Require().NoError(err)

	s.Require().NoError(s.labels.AddLabel(s.ctx, alice, email.ID, label.ID))
	page, err := s.query.List(s.ctx, alice, aliceID, services.ConversationFilter{LabelID: label.ID}, 1, 20)
	s.Require().NoError(err)
	s.Len(page.Items, 1)

	s.ErrorIs(s.labels.AddLabel(s.ctx, bob, email.ID, label.ID), apperrors.ErrForbidden)

	updated, err := s.labels.Update(s.ctx, alice, label.ID, services.LabelRequest{Name: "Hot leads"})
	s.Require().NoError(err)
	s.Equal("Hot leads", updated.Name)

	s.Require().NoError(s.labels.RemoveLabel(s.ctx, alice, email.ID, label.ID))
	page, err = s.query.List(s.ctx, alice, aliceID, services.ConversationFilter{LabelID: label.ID}, 1, 20)
	s.Require().NoError(err)
	s.Empty(page.Items)

	s.ErrorIs(s.labels.Delete(s.ctx, bob, label.ID), apperrors.ErrLabelNotFound)
	s.NoError(s.labels.Delete(s.ctx, alice, label.ID))
}

func (s *MailingSuite) TestLabels_SystemLabelsAreImmutable() {
	inbox, err := s.labelsRepo.GetSystem(s.ctx, models.LabelInbox)
	s.Require().NoError(err)

	_, err = s.labels.Update(s.ctx, owner, inbox.ID, services.LabelRequest{Name: "Renamed"})
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.ErrorIs(s.labels.Delete(s.ctx, owner, inbox.ID), apperrors.ErrForbidden)

	labels, err := s.labels.List(s.ctx, alice)
	s.Require().NoError(err)
	names := map[string]bool{}
	for _, l := range labels {
		names[l.Name] = true
	}
	s.True(names[models.LabelInbox])
	s.True(names[models.LabelSent])
}
