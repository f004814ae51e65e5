package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"lobby-service/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository abstracts conversation and message persistence.
type ConversationRepository interface {
	GetOrCreateConversation(ctx context.Context, matchID int) (models.Conversation, error)
	GetConversation(ctx context.Context, conversationID int) (models.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID int) ([]models.Conversation, error)
	CreateMessage(ctx context.Context, conversationID int, senderID int, text string) (models.Message, error)
	ListMessages(ctx context.Context, conversationID int) ([]models.Message, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// GetOrCreateConversation lazily materializes the one conversation bound to a
// match. Idempotent under concurrency via the unique constraint on match_id.
func (r *ConversationRepo) GetOrCreateConversation(ctx context.Context, matchID int) (models.Conversation, error) {
	var conv models.Conversation
	lookup := `SELECT id, match_id, created_at FROM conversations WHERE match_id=$1`
	err := r.db.GetContext(ctx, &conv, lookup, matchID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, err
	}

	insert := `INSERT INTO conversations (match_id) VALUES ($1)
        ON CONFLICT (match_id) DO NOTHING
        RETURNING id, match_id, created_at`
	err = r.db.QueryRowxContext(ctx, insert, matchID).StructScan(&conv)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, err
	}

	// Lost the insert race; the row exists now.
	if err := r.db.GetContext(ctx, &conv, lookup, matchID); err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

// GetConversation fetches a conversation by id.
func (r *ConversationRepo) GetConversation(ctx context.Context, conversationID int) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT id, match_id, created_at FROM conversations WHERE id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// ListConversationsForUser returns conversations whose match involves the user.
func (r *ConversationRepo) ListConversationsForUser(ctx context.Context, userID int) ([]models.Conversation, error) {
	var convs []models.Conversation
	query := `SELECT c.id, c.match_id, c.created_at FROM conversations c
        JOIN matches m ON m.id = c.match_id
        WHERE m.user_a_id=$1 OR m.user_b_id=$1
        ORDER BY c.created_at DESC`
	err := r.db.SelectContext(ctx, &convs, query, userID)
	return convs, err
}

// CreateMessage appends a message with a server-assigned timestamp.
func (r *ConversationRepo) CreateMessage(ctx context.Context, conversationID int, senderID int, text string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (conversation_id, sender_id, text) VALUES ($1, $2, $3)
        RETURNING id, conversation_id, sender_id, text, created_at`, conversationID, senderID, text).
		StructScan(&msg)
	return msg, err
}

// ListMessages returns the full ordered history of a conversation. Ties on
// created_at break by insertion order.
func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID int) ([]models.Message, error) {
	var msgs []models.Message
	query := `SELECT id, conversation_id, sender_id, text, created_at FROM messages
        WHERE conversation_id=$1
        ORDER BY created_at ASC, id ASC`
	err := r.db.SelectContext(ctx, &msgs, query, conversationID)
	return msgs, err
}
