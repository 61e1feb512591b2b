package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"gorm.io/gorm"
)

// EmailAddressRepositoryTestSuite is the test suite for EmailAddressRepository
type EmailAddressRepositoryTestSuite struct {
	suite.Suite
	db     *gorm.DB
	repo   EmailAddressRepository
	domain *models.Domain
}

func (s *EmailAddressRepositoryTestSuite) SetupSuite() {
	s.db = openTestDB(s.T())
	s.repo = NewEmailAddressRepository(s.db)
}

func (s *EmailAddressRepositoryTestSuite) TearDownSuite() {
	closeTestDB(s.db)
}

func (s *EmailAddressRepositoryTestSuite) SetupTest() {
	resetTables(s.db)
	s.domain = &models.Domain{TeamID: 1, Name: "team.co", Type: models.DomainTypePrimary, IsActive: true}
	s.Require().NoError(s.db.Create(s.domain).Error)
}

func TestEmailAddressRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(EmailAddressRepositoryTestSuite))
}

func (s *EmailAddressRepositoryTestSuite) newAddress(local string, member uint, status models.AddressStatus) *models.EmailAddress {
	a := &models.EmailAddress{
		LocalPart:    local,
		DomainID:     s.domain.ID,
		TeamMemberID: member,
		Status:       status,
		Type:         models.AddressTypeAlias,
	}
	s.Require().NoError(s.repo.Create(context.Background(), a))
	return a
}

func (s *EmailAddressRepositoryTestSuite) TestCreate_LocalPartUniquePerDomain() {
	s.newAddress("sales", 1, models.AddressActive)

	err := s.repo.Create(context.Background(), &models.EmailAddress{
		LocalPart: "sales", DomainID: s.domain.ID, TeamMemberID: 2,
		Status: models.AddressActive, Type: models.AddressTypeAlias,
	})

	assert.ErrorIs(s.T(), err, ErrDuplicateEntry)
}

func (s *EmailAddressRepositoryTestSuite) TestGetByID_ProjectsFullAddress() {
	a := s.newAddress("sales", 1, models.AddressActive)

	found, err := s.repo.GetByID(context.Background(), 1, a.ID)
	s.Require().NoError(err)
	assert.Equal(s.T(), "sales@team.co", found.FullAddress)

	_, err = s.repo.GetByID(context.Background(), 2, a.ID)
	assert.ErrorIs(s.T(), err, apperrors.ErrEmailAddressNotFound)
}

func (s *EmailAddressRepositoryTestSuite) TestFullAddress_FollowsDomainRename() {
	a := s.newAddress("sales", 1, models.AddressActive)
	s.Require().NoError(s.db.Model(s.domain).Update("name", "renamed.co").Error)

	found, err := s.repo.GetByID(context.Background(), 1, a.ID)
	s.Require().NoError(err)
	assert.Equal(s.T(), "sales@renamed.co", found.FullAddress)
}

func (s *EmailAddressRepositoryTestSuite) TestFindActive() {
	s.newAddress("sales", 1, models.AddressActive)
	s.newAddress("old", 1, models.AddressInactive)

	found, err := s.repo.FindActive(context.Background(), 1, "SALES", "Team.co")
	s.Require().NoError(err)
	assert.Equal(s.T(), uint(1), found.TeamMemberID)

	_, err = s.repo.FindActive(context.Background(), 1, "old", "team.co")
	assert.ErrorIs(s.T(), err, apperrors.ErrEmailAddressNotFound)

	_, err = s.repo.FindActive(context.Background(), 2, "sales", "team.co")
	assert.ErrorIs(s.T(), err, apperrors.ErrEmailAddressNotFound)
}

func (s *EmailAddressRepositoryTestSuite) TestFindActive_InactiveDomain() {
	s.newAddress("sales", 1, models.AddressActive)
	s.Require().NoError(s.db.Model(s.domain).Update("is_active", false).Error)

	_, err := s.repo.FindActive(context.Background(), 1, "sales", "team.co")
	assert.ErrorIs(s.T(), err, apperrors.ErrEmailAddressNotFound)
}

func (s *EmailAddressRepositoryTestSuite) TestListByMemberAndCount() {
	s.newAddress("a", 1, models.AddressActive)
	s.newAddress("b", 1, models.AddressActive)
	s.newAddress("c", 2, models.AddressActive)

	list, err := s.repo.ListByMember(context.Background(), 1, 1)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	assert.Equal(s.T(), "a@team.co", list[0].FullAddress)

	count, err := s.repo.CountByMember(context.Background(), 1, 1)
	s.Require().NoError(err)
	assert.Equal(s.T(), int64(2), count)

	team, err := s.repo.ListByTeam(context.Background(), 1)
	s.Require().NoError(err)
	assert.Len(s.T(), team, 3)
}

func (s *EmailAddressRepositoryTestSuite) TestSetDefault_ClearsOthers() {
	a := s.newAddress("a", 1, models.AddressActive)
	b := s.newAddress("b", 1, models.AddressActive)
	s.Require().NoError(s.repo.SetDefault(context.Background(), 1, 1, a.ID))

	s.Require().NoError(s.repo.SetDefault(context.Background(), 1, 1, b.ID))

	list, err := s.repo.ListByMember(context.Background(), 1, 1)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	assert.Equal(s.T(), b.ID, list[0].ID)
	assert.True(s.T(), list[0].IsDefault)
	assert.False(s.T(), list[1].IsDefault)
}

func (s *EmailAddressRepositoryTestSuite) TestSetDefault_OtherMembersAddress() {
	a := s.newAddress("a", 2, models.AddressActive)

	err := s.repo.SetDefault(context.Background(), 1, 1, a.ID)

	assert.ErrorIs(s.T(), err, apperrors.ErrEmailAddressNotFound)
}

func (s *EmailAddressRepositoryTestSuite) TestDelete() {
	a := s.newAddress("a", 1, models.AddressActive)

	assert.ErrorIs(s.T(), s.repo.Delete(context.Background(), 2, a.ID), apperrors.ErrEmailAddressNotFound)
	s.Require().NoError(s.repo.Delete(context.Background(), 1, a.ID))

	_, err := s.repo.GetByID(context.Background(), 1, a.ID)
	assert.ErrorIs(s.T(), err, apperrors.ErrEmailAddressNotFound)
}
