package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"fellinglicence/internal/conditions/models"
	id "fellinglicence/pkg/domain"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	appID id.ApplicationID
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.appID = id.ApplicationID(uuid.New())
}

func newRecord(appID id.ApplicationID, name string) models.ConditionRecord {
	return models.NewConditionRecord(appID, models.CalculatedCondition{
		AppliesToCompartmentIDs: []id.CompartmentID{id.CompartmentID(uuid.New())},
		ConditionName:           name,
		ConditionsText:          []string{"100.00% Oak", "2500 stems per Ha"},
		Parameters:              []models.ConditionParameter{{Key: "0", DefaultValue: "2"}},
	}, time.Now())
}

func (s *InMemoryStoreSuite) TestGet() {
	ctx := context.Background()

	s.Run("unknown application returns empty list", func() {
		records, err := s.store.GetConditionsForApplication(ctx, id.ApplicationID(uuid.New()))
		s.NoError(err)
		s.NotNil(records)
		s.Empty(records)
	})

	s.Run("returns records in save order", func() {
		first, second := newRecord(s.appID, "first"), newRecord(s.appID, "second")
		s.Require().NoError(s.store.SaveConditionsForApplication(ctx, s.appID, []models.ConditionRecord{first, second}))

		records, err := s.store.GetConditionsForApplication(ctx, s.appID)
		s.Require().NoError(err)
		s.Require().Len(records, 2)
		s.Equal("first", records[0].ConditionName)
		s.Equal("second", records[1].ConditionName)
	})
}

func (s *InMemoryStoreSuite) TestClear() {
	ctx := context.Background()
	other := id.ApplicationID(uuid.New())

	s.Require().NoError(s.store.SaveConditionsForApplication(ctx, s.appID, []models.ConditionRecord{newRecord(s.appID, "a")}))
	s.Require().NoError(s.store.SaveConditionsForApplication(ctx, other, []models.ConditionRecord{newRecord(other, "b")}))

	s.Require().NoError(s.store.ClearConditionsForApplication(ctx, s.appID))

	records, _ := s.store.GetConditionsForApplication(ctx, s.appID)
	s.Empty(records)
	records, _ = s.store.GetConditionsForApplication(ctx, other)
	s.Len(records, 1, "other applications are untouched")
}

func (s *InMemoryStoreSuite) TestIsolation() {
	ctx := context.Background()
	record := newRecord(s.appID, "a")
	s.Require().NoError(s.store.SaveConditionsForApplication(ctx, s.appID, []models.ConditionRecord{record}))

	record.ConditionsText[0] = "mutated by caller"
	records, _ := s.store.GetConditionsForApplication(ctx, s.appID)
	s.Equal("100.00% Oak", records[0].ConditionsText[0])

	records[0].ConditionsText[0] = "mutated after read"
	again, _ := s.store.GetConditionsForApplication(ctx, s.appID)
	s.Equal("100.00% Oak", again[0].ConditionsText[0])
}

func (s *InMemoryStoreSuite) TestStage() {
	ctx := context.Background()
	s.Require().NoError(s.store.SaveConditionsForApplication(ctx, s.appID, []models.ConditionRecord{newRecord(s.appID, "old")}))

	s.Run("writes stay invisible until commit", func() {
		staged := s.store.Stage()
		s.Require().NoError(staged.ClearConditionsForApplication(ctx, s.appID))
		s.Require().NoError(staged.SaveConditionsForApplication(ctx, s.appID, []models.ConditionRecord{newRecord(s.appID, "new")}))

		viaStage, err := staged.GetConditionsForApplication(ctx, s.appID)
		s.Require().NoError(err)
		s.Require().Len(viaStage, 1)
		s.Equal("new", viaStage[0].ConditionName)

		committed, _ := s.store.GetConditionsForApplication(ctx, s.appID)
		s.Require().Len(committed, 1)
		s.Equal("old", committed[0].ConditionName)
	})

	s.Run("discarded stage leaves prior records", func() {
		staged := s.store.Stage()
		s.Require().NoError(staged.ClearConditionsForApplication(ctx, s.appID))

		records, _ := s.store.GetConditionsForApplication(ctx, s.appID)
		s.Require().Len(records, 1)
		s.Equal("old", records[0].ConditionName)
	})

	s.Run("commit replaces in one step", func() {
		staged := s.store.Stage()
		s.Require().NoError(staged.ClearConditionsForApplication(ctx, s.appID))
		s.Require().NoError(staged.SaveConditionsForApplication(ctx, s.appID, []models.ConditionRecord{
			newRecord(s.appID, "a"), newRecord(s.appID, "b"),
		}))
		staged.Commit()

		records, _ := s.store.GetConditionsForApplication(ctx, s.appID)
		s.Require().Len(records, 2)
		s.Equal("a", records[0].ConditionName)
		s.Equal("b", records[1].ConditionName)
	})
}
