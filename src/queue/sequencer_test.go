package queue

import (
	"qms/src/models"
	"qms/src/types"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type SequencerTestSuite struct {
	suite.Suite
	DB        *gorm.DB
	Organizer models.User
}

func (s *SequencerTestSuite) SetupTest() {
	s.DB = newTestDB(s.T())
	s.Organizer = models.User{Name: "Organizer", Email: "organizer@example.com", Role: "organizer"}
	s.Require().NoError(s.DB.Create(&s.Organizer).Error)
}

func (s *SequencerTestSuite) TestTokensStartAtOne() {
	token, err := nextToken(s.DB, 42)
	s.Require().NoError(err)
	s.EqualValues(1, token)
}

func (s *SequencerTestSuite) TestTokensAreSequentialPerService() {
	for i := 1; i <= 5; i++ {
		token, err := nextToken(s.DB, 1)
		s.Require().NoError(err)
		s.EqualValues(i, token)
	}
	// A different service has its own counter.
	token, err := nextToken(s.DB, 2)
	s.Require().NoError(err)
	s.EqualValues(1, token)
}

func (s *SequencerTestSuite) TestTokensAreNeverReusedAfterCompletion() {
	service := models.Service{
		Name:        "Salon",
		Slug:        "salon",
		MaxCapacity: 2,
		Status:      types.SERVICE_ACTIVE,
		OrganizerID: s.Organizer.ID,
	}
	s.Require().NoError(s.DB.Create(&service).Error)

	first := models.User{Name: "A", Email: "a@example.com"}
	second := models.User{Name: "B", Email: "b@example.com"}
	s.Require().NoError(s.DB.Create(&first).Error)
	s.Require().NoError(s.DB.Create(&second).Error)

	joined, err := Join(service.ID, first.ID, 1, []string{"A"})
	s.Require().NoError(err)
	s.EqualValues(1, joined.Entry.TokenNumber)

	_, _, err = MarkComplete(service.ID, joined.Entry.ID, s.Organizer.ID)
	s.Require().NoError(err)

	// The completed entry's token stays burned.
	next, err := Join(service.ID, second.ID, 1, []string{"B"})
	s.Require().NoError(err)
	s.EqualValues(2, next.Entry.TokenNumber)
}

func TestSequencerTestSuite(t *testing.T) {
	suite.Run(t, new(SequencerTestSuite))
}
