//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"fellinglicence/internal/conditions/models"
	"fellinglicence/internal/conditions/service"
	"fellinglicence/internal/conditions/store"
	id "fellinglicence/pkg/domain"
	auditpostgres "fellinglicence/pkg/platform/audit/store/postgres"
	"fellinglicence/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	tx       *store.PostgresTx
	appID    id.ApplicationID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(s.postgres.Exec(context.Background(), store.Schema, auditpostgres.Schema))
	s.store = store.NewPostgres(s.postgres.DB)
	s.tx = store.NewPostgresTx(s.postgres.DB, 0)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "licence_conditions", "outbox"))
	s.appID = id.ApplicationID(uuid.New())
}

func (s *PostgresStoreSuite) newRecord(name string, compartments int) models.ConditionRecord {
	ids := make([]id.CompartmentID, compartments)
	for i := range ids {
		ids[i] = id.CompartmentID(uuid.New())
	}
	value := "40.00% Ash60.00% Oak"
	return models.NewConditionRecord(s.appID, models.CalculatedCondition{
		AppliesToCompartmentIDs: ids,
		ConditionName:           name,
		ConditionsText:          []string{value, "2500 stems per Ha", "compartment 1, 2"},
		Parameters: []models.ConditionParameter{
			{Key: "species", Value: &value, Description: "Species mix"},
			{Key: "0", DefaultValue: "2", Description: "Years allowed"},
		},
	}, time.Now().UTC().Truncate(time.Microsecond))
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	first, second := s.newRecord("first", 2), s.newRecord("second", 1)

	s.Require().NoError(s.store.SaveConditionsForApplication(ctx, s.appID, []models.ConditionRecord{first, second}))

	records, err := s.store.GetConditionsForApplication(ctx, s.appID)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(first.ID, records[0].ID)
	s.Equal(first.AppliesToCompartmentIDs, records[0].AppliesToCompartmentIDs)
	s.Equal(first.ConditionsText, records[0].ConditionsText)
	s.Equal(first.Parameters, records[0].Parameters)
	s.True(first.CreatedAt.Equal(records[0].CreatedAt))
	s.Equal("second", records[1].ConditionName)
}

func (s *PostgresStoreSuite) TestGetEmpty() {
	records, err := s.store.GetConditionsForApplication(context.Background(), s.appID)
	s.Require().NoError(err)
	s.NotNil(records)
	s.Empty(records)
}

func (s *PostgresStoreSuite) TestTransaction() {
	ctx := context.Background()
	s.Require().NoError(s.store.SaveConditionsForApplication(ctx, s.appID, []models.ConditionRecord{s.newRecord("prior", 1)}))

	s.Run("failure rolls back the clear", func() {
		err := s.tx.RunInTx(ctx, func(ctx context.Context, st service.Store) error {
			if err := st.ClearConditionsForApplication(ctx, s.appID); err != nil {
				return err
			}
			return errors.New("save failed")
		})
		s.EqualError(err, "save failed")

		records, err := s.store.GetConditionsForApplication(ctx, s.appID)
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal("prior", records[0].ConditionName)
	})

	s.Run("commit replaces prior records", func() {
		err := s.tx.RunInTx(ctx, func(ctx context.Context, st service.Store) error {
			if err := st.ClearConditionsForApplication(ctx, s.appID); err != nil {
				return err
			}
			return st.SaveConditionsForApplication(ctx, s.appID, []models.ConditionRecord{s.newRecord("replacement", 1)})
		})
		s.Require().NoError(err)

		records, err := s.store.GetConditionsForApplication(ctx, s.appID)
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal("replacement", records[0].ConditionName)
	})
}
