//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/welldanyogia/webrana-teammail-backend/internal/database"
	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresIntegrationTestSuite runs the repositories against a real PostgreSQL
type PostgresIntegrationTestSuite struct {
	suite.Suite
	container testcontainers.Container
	db        *gorm.DB
	emails    EmailRepository
	domains   DomainRepository
}

func (s *PostgresIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "teammail_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(ctx)
	require.NoError(s.T(), err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(s.T(), err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=teammail_test sslmode=disable",
		host, port.Port())

	// No TranslateError here so the pgconn path of duplicate detection is exercised
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)
	require.NoError(s.T(), database.Migrate(db))

	s.db = db
	s.emails = NewEmailRepository(db)
	s.domains = NewDomainRepository(db)
}

func (s *PostgresIntegrationTestSuite) TearDownSuite() {
	closeTestDB(s.db)
	if s.container != nil {
		s.container.Terminate(context.Background())
	}
}

func (s *PostgresIntegrationTestSuite) SetupTest() {
	resetTables(s.db)
}

func TestPostgresIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationTestSuite))
}

func (s *PostgresIntegrationTestSuite) TestConcurrentDuplicateDelivery_StoresOnce() {
	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.emails.Create(context.Background(), &models.Email{
				TeamID: 1, From: "a@ext.com", To: []string{"alice@team.co"},
				MessageID: "<race@ext.com>", Direction: models.DirectionIncoming,
			}, nil)
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateEntry):
			dup++
		default:
			s.T().Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(s.T(), 1, ok)
	assert.Equal(s.T(), workers-1, dup)
}

func (s *PostgresIntegrationTestSuite) TestListLatestPerChain_OnPostgres() {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first := &models.Email{
		TeamID: 1, From: "a@ext.com", To: []string{"alice@team.co"},
		MessageID: "<1@ext.com>", Direction: models.DirectionIncoming, CreatedAt: base, IsStarred: true,
	}
	s.Require().NoError(s.emails.Create(context.Background(), first, nil))
	s.Require().NoError(s.emails.Create(context.Background(), &models.Email{
		TeamID: 1, ChainID: first.ChainID, From: "a@ext.com", To: []string{"alice@team.co"},
		MessageID: "<2@ext.com>", Direction: models.DirectionIncoming, CreatedAt: base.Add(time.Minute),
	}, nil))

	rows, total, err := s.emails.ListLatestPerChain(context.Background(), ChainFilter{
		TeamID: 1, VisibleTo: []string{"alice@team.co"}, Limit: 10,
	})
	s.Require().NoError(err)
	assert.Equal(s.T(), int64(1), total)
	s.Require().Len(rows, 1)
	assert.Equal(s.T(), "<2@ext.com>", rows[0].MessageID)
	assert.Equal(s.T(), int64(2), rows[0].MessageCount)

	yes := true
	rows, _, err = s.emails.ListLatestPerChain(context.Background(), ChainFilter{TeamID: 1, IsStarred: &yes, Limit: 10})
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	assert.Equal(s.T(), "<1@ext.com>", rows[0].MessageID)
}

func (s *PostgresIntegrationTestSuite) TestDomainDelete_RefusedWhileReferenced() {
	d := &models.Domain{TeamID: 1, Name: "team.co", Type: models.DomainTypeManual, IsActive: true}
	s.Require().NoError(s.domains.Create(context.Background(), d))
	s.Require().NoError(NewEmailAddressRepository(s.db).Create(context.Background(), &models.EmailAddress{
		LocalPart: "alice", DomainID: d.ID, TeamMemberID: 1,
		Status: models.AddressActive, Type: models.AddressTypePrimary,
	}))

	assert.ErrorIs(s.T(), s.domains.Delete(context.Background(), 1, d.ID), apperrors.ErrDomainInUse)
}
