package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/santiagofavero/Autoselll-sub000/internal/models"
)

// Queries wraps database operations
type Queries struct {
	pool *pgxpool.Pool
}

// New creates a new Queries instance
func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

// Connect establishes a database connection pool
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Listing operations

func (q *Queries) CreateListing(ctx context.Context, l models.Listing) error {
	attrs, err := json.Marshal(l.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}
	_, err = q.pool.Exec(ctx, `
		INSERT INTO listings (id, title, price, floor_price, condition, category, status, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, l.ID, l.Title, l.Price, l.FloorPrice, l.Condition, l.Category, l.Status, attrs, l.CreatedAt, l.UpdatedAt)
	return err
}

func (q *Queries) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var l models.Listing
	var attrs []byte
	err := q.pool.QueryRow(ctx, `
		SELECT id, title, price, floor_price, condition, category, status, attributes, created_at, updated_at
		FROM listings WHERE id = $1
	`, id).Scan(&l.ID, &l.Title, &l.Price, &l.FloorPrice, &l.Condition, &l.Category, &l.Status, &attrs, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		var a models.ItemAttributes
		if err := json.Unmarshal(attrs, &a); err == nil {
			l.Attributes = &a
		}
	}
	return &l, nil
}

func (q *Queries) UpdateListingStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := q.pool.Exec(ctx, `UPDATE listings SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

// Workflow run operations

// Run is the persisted record of one orchestrator run.
type Run struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ListingID    *uuid.UUID      `json:"listing_id,omitempty" db:"listing_id"`
	Phase        string          `json:"phase" db:"phase"`
	Success      bool            `json:"success" db:"success"`
	Summary      string          `json:"summary" db:"summary"`
	Steps        json.RawMessage `json:"steps" db:"steps"`
	WorkflowText string          `json:"workflow_text" db:"workflow_text"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

func (q *Queries) CreateRun(ctx context.Context, r Run) error {
	_, err := q.pool.Exec(ctx, `
		INSERT INTO workflow_runs (id, listing_id, phase, success, summary, steps, workflow_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.ID, r.ListingID, r.Phase, r.Success, r.Summary, r.Steps, r.WorkflowText, r.CreatedAt)
	return err
}

func (q *Queries) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var r Run
	err := q.pool.QueryRow(ctx, `
		SELECT id, listing_id, phase, success, summary, steps, workflow_text, created_at
		FROM workflow_runs WHERE id = $1
	`, id).Scan(&r.ID, &r.ListingID, &r.Phase, &r.Success, &r.Summary, &r.Steps, &r.WorkflowText, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Chat operations

func (q *Queries) AppendChatMessage(ctx context.Context, listingID uuid.UUID, m models.ChatMessage) error {
	_, err := q.pool.Exec(ctx, `
		INSERT INTO chat_messages (id, listing_id, role, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, listingID, m.Role, m.Text, m.CreatedAt)
	return err
}

func (q *Queries) ListChatMessages(ctx context.Context, listingID uuid.UUID) ([]models.ChatMessage, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT id, role, text, created_at
		FROM chat_messages WHERE listing_id = $1 ORDER BY created_at
	`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.Role, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}
