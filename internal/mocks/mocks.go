package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lobby-service/internal/models"
	"lobby-service/internal/push"
	"lobby-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, username string, email string, passwordHash string) (models.User, error) {
	args := m.Called(ctx, username, email, passwordHash)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
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

func (m *UserRepositoryMock) SavePushToken(ctx context.Context, userID int, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *UserRepositoryMock) ActiveTokensForUser(ctx context.Context, userID int) ([]string, error) {
	args := m.Called(ctx, userID)
	var tokens []string
	if val := args.Get(0); val != nil {
		tokens = val.([]string)
	}
	return tokens, args.Error(1)
}

func (m *UserRepositoryMock) DeactivateTokens(ctx context.Context, tokens []string) error {
	args := m.Called(ctx, tokens)
	return args.Error(0)
}

type ActivityRepositoryMock struct {
	mock.Mock
}

func (m *ActivityRepositoryMock) Create(ctx context.Context, activity models.Activity) (models.Activity, error) {
	args := m.Called(ctx, activity)
	var created models.Activity
	if val := args.Get(0); val != nil {
		created = val.(models.Activity)
	}
	return created, args.Error(1)
}

func (m *ActivityRepositoryMock) Get(ctx context.Context, activityID int) (models.Activity, error) {
	args := m.Called(ctx, activityID)
	var activity models.Activity
	if val := args.Get(0); val != nil {
		activity = val.(models.Activity)
	}
	return activity, args.Error(1)
}

func (m *ActivityRepositoryMock) GetVisible(ctx context.Context, activityID int, viewerID int, staff bool) (models.Activity, error) {
	args := m.Called(ctx, activityID, viewerID, staff)
	var activity models.Activity
	if val := args.Get(0); val != nil {
		activity = val.(models.Activity)
	}
	return activity, args.Error(1)
}

func (m *ActivityRepositoryMock) ListVisible(ctx context.Context, viewerID int, staff bool, filters models.ActivityFilters) ([]models.Activity, error) {
	args := m.Called(ctx, viewerID, staff, filters)
	var activities []models.Activity
	if val := args.Get(0); val != nil {
		activities = val.([]models.Activity)
	}
	return activities, args.Error(1)
}

func (m *ActivityRepositoryMock) ListHosted(ctx context.Context, hostID int) ([]models.Activity, error) {
	args := m.Called(ctx, hostID)
	var activities []models.Activity
	if val := args.Get(0); val != nil {
		activities = val.([]models.Activity)
	}
	return activities, args.Error(1)
}

func (m *ActivityRepositoryMock) Update(ctx context.Context, activity models.Activity) (models.Activity, error) {
	args := m.Called(ctx, activity)
	var updated models.Activity
	if val := args.Get(0); val != nil {
		updated = val.(models.Activity)
	}
	return updated, args.Error(1)
}

func (m *ActivityRepositoryMock) Delete(ctx context.Context, activityID int) error {
	args := m.Called(ctx, activityID)
	return args.Error(0)
}

type ParticipantRepositoryMock struct {
	mock.Mock
}

func (m *ParticipantRepositoryMock) Join(ctx context.Context, activityID int, userID int, capacity int) (models.ActivityParticipant, error) {
	args := m.Called(ctx, activityID, userID, capacity)
	var participant models.ActivityParticipant
	if val := args.Get(0); val != nil {
		participant = val.(models.ActivityParticipant)
	}
	return participant, args.Error(1)
}

func (m *ParticipantRepositoryMock) Leave(ctx context.Context, activityID int, userID int) error {
	args := m.Called(ctx, activityID, userID)
	return args.Error(0)
}

func (m *ParticipantRepositoryMock) SetStatus(ctx context.Context, activityID int, userID int, status string, capacity int) error {
	args := m.Called(ctx, activityID, userID, status, capacity)
	return args.Error(0)
}

func (m *ParticipantRepositoryMock) ConfirmedCount(ctx context.Context, activityID int) (int, error) {
	args := m.Called(ctx, activityID)
	return args.Int(0), args.Error(1)
}

func (m *ParticipantRepositoryMock) ListConfirmed(ctx context.Context, activityID int) ([]models.ActivityParticipant, error) {
	args := m.Called(ctx, activityID)
	var participants []models.ActivityParticipant
	if val := args.Get(0); val != nil {
		participants = val.([]models.ActivityParticipant)
	}
	return participants, args.Error(1)
}

func (m *ParticipantRepositoryMock) ListForActivity(ctx context.Context, activityID int) ([]models.ActivityParticipant, error) {
	args := m.Called(ctx, activityID)
	var participants []models.ActivityParticipant
	if val := args.Get(0); val != nil {
		participants = val.([]models.ActivityParticipant)
	}
	return participants, args.Error(1)
}

func (m *ParticipantRepositoryMock) IsParticipant(ctx context.Context, activityID int, userID int) (bool, error) {
	args := m.Called(ctx, activityID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ParticipantRepositoryMock) HasConfirmed(ctx context.Context, activityID int, userID int) (bool, error) {
	args := m.Called(ctx, activityID, userID)
	return args.Bool(0), args.Error(1)
}

type SwipeRepositoryMock struct {
	mock.Mock
}

func (m *SwipeRepositoryMock) CreateSwipe(ctx context.Context, userID int, activityID int, direction string) (models.Swipe, error) {
	args := m.Called(ctx, userID, activityID, direction)
	var swipe models.Swipe
	if val := args.Get(0); val != nil {
		swipe = val.(models.Swipe)
	}
	return swipe, args.Error(1)
}

func (m *SwipeRepositoryMock) HostReciprocates(ctx context.Context, hostID int, swiperID int) (bool, error) {
	args := m.Called(ctx, hostID, swiperID)
	return args.Bool(0), args.Error(1)
}

func (m *SwipeRepositoryMock) ListSwipesForUser(ctx context.Context, userID int) ([]models.Swipe, error) {
	args := m.Called(ctx, userID)
	var swipes []models.Swipe
	if val := args.Get(0); val != nil {
		swipes = val.([]models.Swipe)
	}
	return swipes, args.Error(1)
}

type MatchRepositoryMock struct {
	mock.Mock
}

func (m *MatchRepositoryMock) ResolveMatch(ctx context.Context, activityID int, userX int, userY int) (models.Match, bool, error) {
	args := m.Called(ctx, activityID, userX, userY)
	var match models.Match
	if val := args.Get(0); val != nil {
		match = val.(models.Match)
	}
	return match, args.Bool(1), args.Error(2)
}

func (m *MatchRepositoryMock) GetMatch(ctx context.Context, matchID int) (models.Match, error) {
	args := m.Called(ctx, matchID)
	var match models.Match
	if val := args.Get(0); val != nil {
		match = val.(models.Match)
	}
	return match, args.Error(1)
}

func (m *MatchRepositoryMock) ListMatchesForUser(ctx context.Context, userID int) ([]models.Match, error) {
	args := m.Called(ctx, userID)
	var matches []models.Match
	if val := args.Get(0); val != nil {
		matches = val.([]models.Match)
	}
	return matches, args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) GetOrCreateConversation(ctx context.Context, matchID int) (models.Conversation, error) {
	args := m.Called(ctx, matchID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) GetConversation(ctx context.Context, conversationID int) (models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) ListConversationsForUser(ctx context.Context, userID int) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	var convs []models.Conversation
	if val := args.Get(0); val != nil {
		convs = val.([]models.Conversation)
	}
	return convs, args.Error(1)
}

func (m *ConversationRepositoryMock) CreateMessage(ctx context.Context, conversationID int, senderID int, text string) (models.Message, error) {
	args := m.Called(ctx, conversationID, senderID, text)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *ConversationRepositoryMock) ListMessages(ctx context.Context, conversationID int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type ReviewRepositoryMock struct {
	mock.Mock
}

func (m *ReviewRepositoryMock) Create(ctx context.Context, review models.Review) (models.Review, error) {
	args := m.Called(ctx, review)
	var created models.Review
	if val := args.Get(0); val != nil {
		created = val.(models.Review)
	}
	return created, args.Error(1)
}

func (m *ReviewRepositoryMock) ListForActivity(ctx context.Context, activityID int) ([]models.Review, error) {
	args := m.Called(ctx, activityID)
	var reviews []models.Review
	if val := args.Get(0); val != nil {
		reviews = val.([]models.Review)
	}
	return reviews, args.Error(1)
}

func (m *ReviewRepositoryMock) ListForUser(ctx context.Context, userID int) ([]models.Review, error) {
	args := m.Called(ctx, userID)
	var reviews []models.Review
	if val := args.Get(0); val != nil {
		reviews = val.([]models.Review)
	}
	return reviews, args.Error(1)
}

type PushSenderMock struct {
	mock.Mock
}

func (m *PushSenderMock) Notify(ctx context.Context, userID int, title string, body string, payload map[string]interface{}) error {
	args := m.Called(ctx, userID, title, body, payload)
	return args.Error(0)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.ActivityRepository = (*ActivityRepositoryMock)(nil)
var _ repositories.ParticipantRepository = (*ParticipantRepositoryMock)(nil)
var _ repositories.SwipeRepository = (*SwipeRepositoryMock)(nil)
var _ repositories.MatchRepository = (*MatchRepositoryMock)(nil)
var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.ReviewRepository = (*ReviewRepositoryMock)(nil)
var _ push.Sender = (*PushSenderMock)(nil)
