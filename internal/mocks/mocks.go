package mocks

import (
	"context"
	"mime/multipart"

	"github.com/stretchr/testify/mock"

	"chat-backend/internal/models"
	"chat-backend/internal/realtime"
	"chat-backend/internal/repositories"
	"chat-backend/internal/storage"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, username, email, passwordHash string, avatar, bio *string) (models.User, error) {
	args := m.Called(ctx, username, email, passwordHash, avatar, bio)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, id int) (models.User, error) {
	args := m.Called(ctx, id)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) Search(ctx context.Context, selfID int, query string, limit int) ([]models.Profile, error) {
	args := m.Called(ctx, selfID, query, limit)
	var profiles []models.Profile
	if val := args.Get(0); val != nil {
		profiles = val.([]models.Profile)
	}
	return profiles, args.Error(1)
}

func (m *UserRepositoryMock) SetPresence(ctx context.Context, userID int, online bool) error {
	args := m.Called(ctx, userID, online)
	return args.Error(0)
}

type FriendRequestRepositoryMock struct {
	mock.Mock
}

func (m *FriendRequestRepositoryMock) Create(ctx context.Context, senderID, receiverID int) (models.FriendRequest, error) {
	args := m.Called(ctx, senderID, receiverID)
	var request models.FriendRequest
	if val := args.Get(0); val != nil {
		request = val.(models.FriendRequest)
	}
	return request, args.Error(1)
}

func (m *FriendRequestRepositoryMock) Accept(ctx context.Context, requestID, receiverID int) (models.Friendship, error) {
	args := m.Called(ctx, requestID, receiverID)
	var friendship models.Friendship
	if val := args.Get(0); val != nil {
		friendship = val.(models.Friendship)
	}
	return friendship, args.Error(1)
}

func (m *FriendRequestRepositoryMock) Reject(ctx context.Context, requestID, receiverID int) error {
	args := m.Called(ctx, requestID, receiverID)
	return args.Error(0)
}

func (m *FriendRequestRepositoryMock) ListPending(ctx context.Context, receiverID int) ([]models.PendingRequest, error) {
	args := m.Called(ctx, receiverID)
	var requests []models.PendingRequest
	if val := args.Get(0); val != nil {
		requests = val.([]models.PendingRequest)
	}
	return requests, args.Error(1)
}

type FriendshipRepositoryMock struct {
	mock.Mock
}

func (m *FriendshipRepositoryMock) Exists(ctx context.Context, userA, userB int) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *FriendshipRepositoryMock) ListFriends(ctx context.Context, userID int) ([]models.Friend, error) {
	args := m.Called(ctx, userID)
	var friends []models.Friend
	if val := args.Get(0); val != nil {
		friends = val.([]models.Friend)
	}
	return friends, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, params repositories.CreateMessageParams) (models.Message, error) {
	args := m.Called(ctx, params)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListPublic(ctx context.Context, limit int) ([]models.Message, error) {
	args := m.Called(ctx, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) ListPrivate(ctx context.Context, userID, friendID, limit int) ([]models.Message, error) {
	args := m.Called(ctx, userID, friendID, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) ListPublicByUsername(ctx context.Context, username string, limit int) ([]models.Message, error) {
	args := m.Called(ctx, username, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) Trigger(ctx context.Context, channel, event string, payload any) error {
	args := m.Called(ctx, channel, event, payload)
	return args.Error(0)
}

type ChannelAuthorizerMock struct {
	mock.Mock
}

func (m *ChannelAuthorizerMock) AuthorizeChannel(params []byte, identity realtime.Identity) ([]byte, error) {
	args := m.Called(params, identity)
	var blob []byte
	if val := args.Get(0); val != nil {
		blob = val.([]byte)
	}
	return blob, args.Error(1)
}

type FileStoreMock struct {
	mock.Mock
}

func (m *FileStoreMock) Save(ctx context.Context, file *multipart.FileHeader) (storage.StoredFile, error) {
	args := m.Called(ctx, file)
	var stored storage.StoredFile
	if val := args.Get(0); val != nil {
		stored = val.(storage.StoredFile)
	}
	return stored, args.Error(1)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.FriendRequestRepository = (*FriendRequestRepositoryMock)(nil)
var _ repositories.FriendshipRepository = (*FriendshipRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ realtime.Notifier = (*NotifierMock)(nil)
var _ realtime.ChannelAuthorizer = (*ChannelAuthorizerMock)(nil)
var _ storage.FileStore = (*FileStoreMock)(nil)
