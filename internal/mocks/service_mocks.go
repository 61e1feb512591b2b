package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
)

// MockDomainRegistry implements services.DomainRegistry
type MockDomainRegistry struct {
	mock.Mock
}

func (m *MockDomainRegistry) Create(ctx context.Context, id services.Identity, req services.CreateDomainRequest) (*models.Domain, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Domain), args.Error(1)
}

func (m *MockDomainRegistry) List(ctx context.Context, teamID uint) ([]models.Domain, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Domain), args.Error(1)
}

func (m *MockDomainRegistry) Get(ctx context.Context, teamID, domainID uint) (*models.Domain, error) {
	args := m.Called(ctx, teamID, domainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Domain), args.Error(1)
}

func (m *MockDomainRegistry) SetActive(ctx context.Context, id services.Identity, domainID uint, active bool) (*models.Domain, error) {
	args := m.Called(ctx, id, domainID, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Domain), args.Error(1)
}

func (m *MockDomainRegistry) Delete(ctx context.Context, id services.Identity, domainID uint) error {
	args := m.Called(ctx, id, domainID)
	return args.Error(0)
}

// MockMailboxDirectory implements services.MailboxDirectory
type MockMailboxDirectory struct {
	mock.Mock
}

func (m *MockMailboxDirectory) Create(ctx context.Context, id services.Identity, req services.CreateAddressRequest) (*models.EmailAddress, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailAddress), args.Error(1)
}

func (m *MockMailboxDirectory) ListByMember(ctx context.Context, teamID, memberID uint) ([]models.EmailAddress, error) {
	args := m.Called(ctx, teamID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EmailAddress), args.Error(1)
}

func (m *MockMailboxDirectory) ListByTeam(ctx context.Context, teamID uint) ([]models.EmailAddress, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EmailAddress), args.Error(1)
}

func (m *MockMailboxDirectory) Delete(ctx context.Context, id services.Identity, addressID uint) error {
	args := m.Called(ctx, id, addressID)
	return args.Error(0)
}

func (m *MockMailboxDirectory) SetDefault(ctx context.Context, id services.Identity, addressID uint) (*models.EmailAddress, error) {
	args := m.Called(ctx, id, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailAddress), args.Error(1)
}

func (m *MockMailboxDirectory) ResolveRecipients(ctx context.Context, teamID uint, recipients []string) ([]models.EmailAddress, error) {
	args := m.Called(ctx, teamID, recipients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EmailAddress), args.Error(1)
}

func (m *MockMailboxDirectory) OwnedAddresses(ctx context.Context, teamID, memberID uint) ([]string, error) {
	args := m.Called(ctx, teamID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMailboxDirectory) FindOwnedSender(ctx context.Context, id services.Identity, from string) (*models.EmailAddress, error) {
	args := m.Called(ctx, id, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailAddress), args.Error(1)
}

// MockInboundProcessor implements services.InboundProcessor
type MockInboundProcessor struct {
	mock.Mock
}

func (m *MockInboundProcessor) Ingest(ctx context.Context, teamID uint, provider models.IntegrationType, payload services.InboundPayload) (*services.IngestResult, error) {
	args := m.Called(ctx, teamID, provider, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.IngestResult), args.Error(1)
}

// MockOutboundDispatcher implements services.OutboundDispatcher
type MockOutboundDispatcher struct {
	mock.Mock
}

func (m *MockOutboundDispatcher) Send(ctx context.Context, id services.Identity, req services.SendRequest) (*models.Email, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

// MockConversationQuery implements services.ConversationQuery
type MockConversationQuery struct {
	mock.Mock
}

func (m *MockConversationQuery) List(ctx context.Context, id services.Identity, memberID uint, filter services.ConversationFilter, page, limit int) (*services.ConversationPage, error) {
	args := m.Called(ctx, id, memberID, filter, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ConversationPage), args.Error(1)
}

func (m *MockConversationQuery) GetChain(ctx context.Context, id services.Identity, chainID string) (*services.ChainView, error) {
	args := m.Called(ctx, id, chainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ChainView), args.Error(1)
}

func (m *MockConversationQuery) GetChainForAddress(ctx context.Context, id services.Identity, chainID, address string) (*services.ChainView, error) {
	args := m.Called(ctx, id, chainID, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ChainView), args.Error(1)
}

// MockMessageService implements services.MessageService
type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) MarkRead(ctx context.Context, id services.Identity, emailID string, read bool) (*models.Email, error) {
	args := m.Called(ctx, id, emailID, read)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

func (m *MockMessageService) SetStarred(ctx context.Context, id services.Identity, emailID string, starred bool) (*models.Email, error) {
	args := m.Called(ctx, id, emailID, starred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

func (m *MockMessageService) OpenAttachment(ctx context.Context, id services.Identity, attachmentID uint) (*models.Attachment, io.ReadCloser, error) {
	args := m.Called(ctx, id, attachmentID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Attachment), args.Get(1).(io.ReadCloser), args.Error(2)
}

// MockLabelService implements services.LabelService
type MockLabelService struct {
	mock.Mock
}

func (m *MockLabelService) Create(ctx context.Context, id services.Identity, req services.LabelRequest) (*models.Label, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Label), args.Error(1)
}

func (m *MockLabelService) List(ctx context.Context, id services.Identity) ([]models.Label, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Label), args.Error(1)
}

func (m *MockLabelService) Update(ctx context.Context, id services.Identity, labelID uint, req services.LabelRequest) (*models.Label, error) {
	args := m.Called(ctx, id, labelID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Label), args.Error(1)
}

func (m *MockLabelService) Delete(ctx context.Context, id services.Identity, labelID uint) error {
	args := m.Called(ctx, id, labelID)
	return args.Error(0)
}

func (m *MockLabelService) AddLabel(ctx context.Context, id services.Identity, emailID string, labelID uint) error {
	args := m.Called(ctx, id, emailID, labelID)
	return args.Error(0)
}

func (m *MockLabelService) RemoveLabel(ctx context.Context, id services.Identity, emailID string, labelID uint) error {
	args := m.Called(ctx, id, emailID, labelID)
	return args.Error(0)
}

// MockIntegrationService implements services.IntegrationService
type MockIntegrationService struct {
	mock.Mock
}

func (m *MockIntegrationService) Upsert(ctx context.Context, id services.Identity, kind models.IntegrationType, req services.UpsertIntegrationRequest) (*models.IntegrationView, error) {
	args := m.Called(ctx, id, kind, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IntegrationView), args.Error(1)
}

func (m *MockIntegrationService) Get(ctx context.Context, id services.Identity, kind models.IntegrationType) (*models.IntegrationView, error) {
	args := m.Called(ctx, id, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IntegrationView), args.Error(1)
}
