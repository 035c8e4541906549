package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-backend/internal/mocks"
	"chat-backend/internal/models"
	"chat-backend/internal/repositories"
)

type friendHandlerDeps struct {
	users       *mocks.UserRepositoryMock
	requests    *mocks.FriendRequestRepositoryMock
	friendships *mocks.FriendshipRepositoryMock
}

func newFriendRouter(userID int) (*gin.Engine, friendHandlerDeps) {
	deps := friendHandlerDeps{
		users:       new(mocks.UserRepositoryMock),
		requests:    new(mocks.FriendRequestRepositoryMock),
		friendships: new(mocks.FriendshipRepositoryMock),
	}
	handler := NewFriendHandler(deps.users, deps.requests, deps.friendships, nil)

	router := gin.New()
	router.Use(authAs(userID, "alice"))
	router.POST("/friends/request", handler.SendRequest)
	router.POST("/friends/request/:id/accept", handler.AcceptRequest)
	router.POST("/friends/request/:id/reject", handler.RejectRequest)
	router.GET("/friends", handler.ListFriends)
	router.GET("/friends/requests/pending", handler.PendingRequests)
	return router, deps
}

func TestSendRequestCreatesPending(t *testing.T) {
	router, deps := newFriendRouter(1)
	deps.users.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2, Username: "bob"}, nil)
	deps.friendships.On("Exists", mock.Anything, 1, 2).Return(false, nil)
	deps.requests.On("Create", mock.Anything, 1, 2).Return(models.FriendRequest{
		ID:         7,
		SenderID:   1,
		ReceiverID: 2,
		Status:     models.RequestPending,
	}, nil)

	rec := doJSON(t, router, http.MethodPost, "/friends/request", gin.H{"receiver_id": 2})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	request := body["request"].(map[string]any)
	assert.Equal(t, float64(7), request["id"])
	assert.Equal(t, models.RequestPending, request["status"])
	deps.requests.AssertExpectations(t)
}

func TestSendRequestToSelf(t *testing.T) {
	router, deps := newFriendRouter(1)

	rec := doJSON(t, router, http.MethodPost, "/friends/request", gin.H{"receiver_id": 1})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	deps.requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendRequestUnknownReceiver(t *testing.T) {
	router, deps := newFriendRouter(1)
	deps.users.On("GetByID", mock.Anything, 99).Return(models.User{}, repositories.ErrUserNotFound)

	rec := doJSON(t, router, http.MethodPost, "/friends/request", gin.H{"receiver_id": 99})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendRequestAlreadyFriends(t *testing.T) {
	router, deps := newFriendRouter(1)
	deps.users.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2}, nil)
	deps.friendships.On("Exists", mock.Anything, 1, 2).Return(true, nil)

	rec := doJSON(t, router, http.MethodPost, "/friends/request", gin.H{"receiver_id": 2})

	require.Equal(t, http.StatusConflict, rec.Code)
	deps.requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendRequestDuplicatePending(t *testing.T) {
	router, deps := newFriendRouter(1)
	deps.users.On("GetByID", mock.Anything, 2).Return(models.User{ID: 2}, nil)
	deps.friendships.On("Exists", mock.Anything, 1, 2).Return(false, nil)
	deps.requests.On("Create", mock.Anything, 1, 2).Return(models.FriendRequest{}, repositories.ErrRequestExists)

	rec := doJSON(t, router, http.MethodPost, "/friends/request", gin.H{"receiver_id": 2})

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "friend request already exists", decodeBody(t, rec)["error"])
}

func TestAcceptRequestCreatesFriendship(t *testing.T) {
	router, deps := newFriendRouter(2)
	deps.requests.On("Accept", mock.Anything, 7, 2).Return(models.Friendship{
		ID:      3,
		User1ID: 1,
		User2ID: 2,
	}, nil)

	rec := doJSON(t, router, http.MethodPost, "/friends/request/7/accept", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	friendship := decodeBody(t, rec)["friendship"].(map[string]any)
	assert.Equal(t, float64(1), friendship["user1_id"])
	assert.Equal(t, float64(2), friendship["user2_id"])
	deps.requests.AssertExpectations(t)
}

func TestAcceptRequestAlreadyProcessed(t *testing.T) {
	router, deps := newFriendRouter(2)
	deps.requests.On("Accept", mock.Anything, 7, 2).Return(models.Friendship{}, repositories.ErrRequestNotFound)

	rec := doJSON(t, router, http.MethodPost, "/friends/request/7/accept", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAcceptRequestRacedFriendship(t *testing.T) {
	router, deps := newFriendRouter(2)
	deps.requests.On("Accept", mock.Anything, 7, 2).Return(models.Friendship{}, repositories.ErrAlreadyFriends)

	rec := doJSON(t, router, http.MethodPost, "/friends/request/7/accept", nil)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAcceptRequestInvalidID(t *testing.T) {
	router, _ := newFriendRouter(2)

	rec := doJSON(t, router, http.MethodPost, "/friends/request/abc/accept", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRejectRequest(t *testing.T) {
	router, deps := newFriendRouter(2)
	deps.requests.On("Reject", mock.Anything, 7, 2).Return(nil)

	rec := doJSON(t, router, http.MethodPost, "/friends/request/7/reject", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rejected", decodeBody(t, rec)["status"])
}

func TestRejectRequestNotFound(t *testing.T) {
	router, deps := newFriendRouter(2)
	deps.requests.On("Reject", mock.Anything, 7, 2).Return(repositories.ErrRequestNotFound)

	rec := doJSON(t, router, http.MethodPost, "/friends/request/7/reject", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListFriends(t *testing.T) {
	router, deps := newFriendRouter(1)
	deps.friendships.On("ListFriends", mock.Anything, 1).Return([]models.Friend{
		{
			Profile:      models.Profile{ID: 2, Username: "bob"},
			FriendsSince: time.Now(),
		},
	}, nil)

	rec := doJSON(t, router, http.MethodGet, "/friends", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	friends := decodeBody(t, rec)["friends"].([]any)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].(map[string]any)["username"])
}

func TestPendingRequests(t *testing.T) {
	router, deps := newFriendRouter(2)
	deps.requests.On("ListPending", mock.Anything, 2).Return([]models.PendingRequest{
		{ID: 7, SenderID: 1, Sender: models.Profile{ID: 1, Username: "alice"}},
	}, nil)

	rec := doJSON(t, router, http.MethodGet, "/friends/requests/pending", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	requests := decodeBody(t, rec)["requests"].([]any)
	require.Len(t, requests, 1)
	sender := requests[0].(map[string]any)["sender"].(map[string]any)
	assert.Equal(t, "alice", sender["username"])
}
