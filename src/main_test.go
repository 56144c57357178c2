package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"qms/src/db"
	"qms/src/models"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB     *gorm.DB
	Router *gin.Engine

	organizerToken string
	consumerToken  string
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file:apitest?mode=memory&cache=shared"), &gorm.Config{})
	s.Require().NoError(err)
	sqlDB, err := gdb.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(gdb.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.QueueEntry{},
		&models.TokenSequence{},
	))
	db.NewDB(gdb)
	s.DB = gdb

	s.Router = setupRouter()

	s.organizerToken = s.registerAndLogin("Organizer", "organizer@example.com")
	s.consumerToken = s.registerAndLogin("Consumer", "consumer@example.com")
}

func (s *TestSuite) request(method, path, token string, body any) *httptest.ResponseRecorder {
	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *TestSuite) registerAndLogin(name, email string) string {
	w := s.request(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "correct-horse",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.request(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "correct-horse",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	token := gjson.Get(w.Body.String(), "data.token").String()
	s.Require().NotEmpty(token)
	return token
}

func (s *TestSuite) createService(name string, maxCapacity uint) uint {
	w := s.request(http.MethodPost, "/api/v1/services", s.organizerToken, gin.H{
		"name":         name,
		"max_capacity": maxCapacity,
		"activate":     true,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return uint(gjson.Get(w.Body.String(), "data.id").Uint())
}

func (s *TestSuite) TestHealthz() {
	w := s.request(http.MethodGet, "/api/v1/healthz", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *TestSuite) TestJoinRequiresAuth() {
	w := s.request(http.MethodPost, "/api/v1/services/1/queue/join", "", gin.H{
		"group_size":   1,
		"member_names": []string{"Alice"},
	})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *TestSuite) TestJoinRejectsBlankMemberName() {
	serviceID := s.createService("Strict Counter", 5)
	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/services/%d/queue/join", serviceID), s.consumerToken, gin.H{
		"group_size":   2,
		"member_names": []string{"Alice", "   "},
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TestSuite) TestQueueLifecycleOverHTTP() {
	// Unique users per scenario keep the one-live-entry rule out of the way.
	aliceToken := s.registerAndLogin("Alice", "alice@example.com")
	bobToken := s.registerAndLogin("Bob", "bob@example.com")

	serviceID := s.createService("Busy Counter", 5)
	joinPath := fmt.Sprintf("/api/v1/services/%d/queue/join", serviceID)

	// First party of 3 is served immediately with token 1.
	w := s.request(http.MethodPost, joinPath, aliceToken, gin.H{
		"group_size":   3,
		"member_names": []string{"Alice", "Ann", "Al"},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("serving", gjson.Get(w.Body.String(), "data.entry.status").String())
	s.EqualValues(1, gjson.Get(w.Body.String(), "data.entry.token_number").Int())
	firstEntryID := uint(gjson.Get(w.Body.String(), "data.entry.id").Uint())

	// Second party of 3 exceeds capacity and waits at position 1.
	w = s.request(http.MethodPost, joinPath, bobToken, gin.H{
		"group_size":   3,
		"member_names": []string{"Bob", "Ben", "Bea"},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("waiting", gjson.Get(w.Body.String(), "data.entry.status").String())
	s.EqualValues(2, gjson.Get(w.Body.String(), "data.entry.token_number").Int())
	s.EqualValues(1, gjson.Get(w.Body.String(), "data.position").Int())

	// Double join is rejected.
	w = s.request(http.MethodPost, joinPath, bobToken, gin.H{
		"group_size":   1,
		"member_names": []string{"Bob"},
	})
	s.Equal(http.StatusConflict, w.Code)

	// Bob sees his waiting status.
	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/services/%d/queue/me", serviceID), bobToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("waiting", gjson.Get(w.Body.String(), "data.status").String())
	s.EqualValues(0, gjson.Get(w.Body.String(), "data.waiting_ahead").Int())

	// Only the organizer may complete an entry.
	completePath := fmt.Sprintf("/api/v1/services/%d/queue/%d/complete", serviceID, firstEntryID)
	w = s.request(http.MethodPut, completePath, bobToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	// Completing token 1 promotes token 2.
	w = s.request(http.MethodPut, completePath, s.organizerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("complete", gjson.Get(w.Body.String(), "data.status").String())
	s.Equal("serving", gjson.Get(w.Body.String(), "promoted.status").String())
	s.EqualValues(2, gjson.Get(w.Body.String(), "promoted.token_number").Int())

	// Completing an already-complete entry is rejected.
	w = s.request(http.MethodPut, completePath, s.organizerToken, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	// Public snapshot reflects the committed state.
	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/services/%d/queue", serviceID), "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.EqualValues(3, gjson.Get(w.Body.String(), "data.serving_capacity").Int())
	s.EqualValues(1, gjson.Get(w.Body.String(), "data.serving_entries.#").Int())
	s.EqualValues(1, gjson.Get(w.Body.String(), "data.complete_entries.#").Int())
	s.False(gjson.Get(w.Body.String(), "data.is_full").Bool())
}

func (s *TestSuite) TestJoinInactiveServiceOverHTTP() {
	w := s.request(http.MethodPost, "/api/v1/services", s.organizerToken, gin.H{
		"name":         "Paused Counter",
		"max_capacity": 3,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	serviceID := gjson.Get(w.Body.String(), "data.id").Uint()

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/services/%d/queue/join", serviceID), s.consumerToken, gin.H{
		"group_size":   1,
		"member_names": []string{"Solo"},
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *TestSuite) TestServiceStatusPatchRequiresOwner() {
	serviceID := s.createService("Owned Counter", 4)
	path := fmt.Sprintf("/api/v1/services/%d/status", serviceID)

	w := s.request(http.MethodPatch, path, s.consumerToken, gin.H{"new_status": "paused"})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request(http.MethodPatch, path, s.organizerToken, gin.H{"new_status": "paused"})
	s.Equal(http.StatusNoContent, w.Code)
}

func TestSuiteRun(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
