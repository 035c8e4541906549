package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-backend/internal/mocks"
	"chat-backend/internal/models"
	"chat-backend/internal/realtime"
	"chat-backend/internal/storage"
)

type messageHandlerDeps struct {
	messages    *mocks.MessageRepositoryMock
	friendships *mocks.FriendshipRepositoryMock
	files       *mocks.FileStoreMock
	notifier    *mocks.NotifierMock
}

func newMessageRouter(userID int, username string) (*gin.Engine, messageHandlerDeps) {
	deps := messageHandlerDeps{
		messages:    new(mocks.MessageRepositoryMock),
		friendships: new(mocks.FriendshipRepositoryMock),
		files:       new(mocks.FileStoreMock),
		notifier:    new(mocks.NotifierMock),
	}
	handler := NewMessageHandler(deps.messages, deps.friendships, deps.files, deps.notifier, nil)

	router := gin.New()
	router.Use(authAs(userID, username))
	router.GET("/messages", handler.ListPublic)
	router.POST("/messages", handler.Send)
	router.POST("/messages/file", handler.SendFile)
	router.GET("/messages/private/:friend_id", handler.GetPrivate)
	router.GET("/messages/user/:username", handler.ByUser)
	return router, deps
}

func TestSendPublicMessage(t *testing.T) {
	router, deps := newMessageRouter(1, "alice")
	body := "hello everyone"
	deps.messages.On("Create", mock.Anything, mock.Anything).Return(models.Message{
		ID:       10,
		SenderID: 1,
		Username: "alice",
		Body:     &body,
	}, nil)
	deps.notifier.On("Trigger", mock.Anything, realtime.PublicChannel, realtime.EventNewMessage, mock.Anything).Return(nil)

	rec := doJSON(t, router, http.MethodPost, "/messages", gin.H{"message": "hello everyone"})

	require.Equal(t, http.StatusCreated, rec.Code)
	deps.notifier.AssertExpectations(t)
	deps.friendships.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendPrivateMessageToFriend(t *testing.T) {
	router, deps := newMessageRouter(1, "alice")
	body := "hey bob"
	receiverID := 2
	deps.friendships.On("Exists", mock.Anything, 1, 2).Return(true, nil)
	deps.messages.On("Create", mock.Anything, mock.Anything).Return(models.Message{
		ID:         11,
		SenderID:   1,
		ReceiverID: &receiverID,
		Username:   "alice",
		Body:       &body,
		IsPrivate:  true,
	}, nil)
	deps.notifier.On("Trigger", mock.Anything, "private-chat-1-2", realtime.EventNewMessage, mock.Anything).Return(nil)

	rec := doJSON(t, router, http.MethodPost, "/messages", gin.H{"message": "hey bob", "receiver_id": 2})

	require.Equal(t, http.StatusCreated, rec.Code)
	deps.notifier.AssertExpectations(t)
}

func TestSendPrivateMessageWithoutFriendship(t *testing.T) {
	router, deps := newMessageRouter(1, "alice")
	deps.friendships.On("Exists", mock.Anything, 1, 3).Return(false, nil)

	rec := doJSON(t, router, http.MethodPost, "/messages", gin.H{"message": "hey", "receiver_id": 3})

	require.Equal(t, http.StatusForbidden, rec.Code)
	deps.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	deps.notifier.AssertNotCalled(t, "Trigger", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendEmptyMessage(t *testing.T) {
	router, deps := newMessageRouter(1, "alice")

	rec := doJSON(t, router, http.MethodPost, "/messages", gin.H{"message": "   "})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	deps.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSendMessageEmitFailureStillCreated(t *testing.T) {
	router, deps := newMessageRouter(1, "alice")
	body := "hello"
	deps.messages.On("Create", mock.Anything, mock.Anything).Return(models.Message{
		ID:       12,
		SenderID: 1,
		Username: "alice",
		Body:     &body,
	}, nil)
	deps.notifier.On("Trigger", mock.Anything, realtime.PublicChannel, realtime.EventNewMessage, mock.Anything).Return(errors.New("transport down"))

	rec := doJSON(t, router, http.MethodPost, "/messages", gin.H{"message": "hello"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "hello", decodeBody(t, rec)["message"])
}

func TestSendFileMessage(t *testing.T) {
	router, deps := newMessageRouter(1, "alice")
	deps.files.On("Save", mock.Anything, mock.Anything).Return(storage.StoredFile{
		URL:  "/uploads/abc.png",
		Name: "photo.png",
		Type: "image",
		Size: 1024,
	}, nil)
	deps.messages.On("Create", mock.Anything, mock.Anything).Return(models.Message{
		ID:       13,
		SenderID: 1,
		Username: "alice",
	}, nil)
	deps.notifier.On("Trigger", mock.Anything, realtime.PublicChannel, realtime.EventNewMessage, mock.Anything).Return(nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a png"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/messages/file", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	deps.files.AssertExpectations(t)
	deps.notifier.AssertExpectations(t)
}

func TestSendFileMessageTooLarge(t *testing.T) {
	router, deps := newMessageRouter(1, "alice")
	deps.files.On("Save", mock.Anything, mock.Anything).Return(storage.StoredFile{}, storage.ErrFileTooLarge)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "huge.bin")
	require.NoError(t, err)
	_, err = part.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/messages/file", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	deps.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSendFileMissing(t *testing.T) {
	router, _ := newMessageRouter(1, "alice")

	rec := doJSON(t, router, http.MethodPost, "/messages/file", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPublicMessages(t *testing.T) {
	router, deps := newMessageRouter(1, "alice")
	body := "hi"
	deps.messages.On("ListPublic", mock.Anything, publicHistoryLimit).Return([]models.Message{
		{ID: 1, SenderID: 2, Username: "bob", Body: &body},
	}, nil)

	rec := doJSON(t, router, http.MethodGet, "/messages", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	msgs := decodeBody(t, rec)["messages"].([]any)
	require.Len(t, msgs, 1)
}

func TestGetPrivateMessagesRequiresFriendship(t *testing.T) {
	router, deps := newMessageRouter(1, "alice")
	deps.friendships.On("Exists", mock.Anything, 1, 2).Return(false, nil)

	rec := doJSON(t, router, http.MethodGet, "/messages/private/2", nil)

	require.Equal(t, http.StatusForbidden, rec.Code)
	deps.messages.AssertNotCalled(t, "ListPrivate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPrivateMessages(t *testing.T) {
	router, deps := newMessageRouter(1, "alice")
	deps.friendships.On("Exists", mock.Anything, 1, 2).Return(true, nil)
	deps.messages.On("ListPrivate", mock.Anything, 1, 2, privateHistoryLimit).Return([]models.Message{}, nil)

	rec := doJSON(t, router, http.MethodGet, "/messages/private/2", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	msgs := decodeBody(t, rec)["messages"].([]any)
	assert.Empty(t, msgs)
}

func TestMessagesByUser(t *testing.T) {
	router, deps := newMessageRouter(1, "alice")
	deps.messages.On("ListPublicByUsername", mock.Anything, "bob", userHistoryLimit).Return([]models.Message{}, nil)

	rec := doJSON(t, router, http.MethodGet, "/messages/user/bob", nil)

	require.Equal(t, http.StatusOK, rec.Code)
}
