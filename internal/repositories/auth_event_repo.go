package repositories

import (
	"context"
	"fmt"

	"github.com/exploria-travel/auth-service/internal/database"
	"github.com/exploria-travel/auth-service/internal/models"
	"github.com/exploria-travel/auth-service/pkg/refid"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const authEventColumns = `
	id, auth_refid, user_refid, firebase_uid, event_type, auth_method, portal_type,
	success, failure_reason, ip_address, user_agent,
	device_type, device_model, os_version, app_version, browser,
	metadata, created_at`

// AuthEventRepository handles the append-only auth journal. Entries are
// written once and never updated; the retention task is the only deleter.
type AuthEventRepository struct {
	db *database.DB
}

// NewAuthEventRepository creates a new AuthEventRepository
func NewAuthEventRepository(db *database.DB) *AuthEventRepository {
	return &AuthEventRepository{db: db}
}

func scanAuthEventRow(row rowScanner) (*models.AuthEvent, error) {
	var event models.AuthEvent

	err := row.Scan(
		&event.ID, &event.AuthRefID, &event.UserRefID, &event.FirebaseUID,
		&event.EventType, &event.AuthMethod, &event.PortalType,
		&event.Success, &event.FailureReason, &event.IPAddress, &event.UserAgent,
		&event.DeviceType, &event.DeviceModel, &event.OSVersion,
		&event.AppVersion, &event.Browser,
		&event.Metadata, &event.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &event, nil
}

func scanAuthEventRows(rows pgx.Rows) ([]*models.AuthEvent, error) {
	defer rows.Close()

	events := make([]*models.AuthEvent, 0)

	for rows.Next() {
		event, err := scanAuthEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auth event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auth event rows: %w", err)
	}

	return events, nil
}

// Create appends a journal entry, assigning it a uuid and an auth ref id.
func (r *AuthEventRepository) Create(ctx context.Context, event *models.AuthEvent) (*models.AuthEvent, error) {
	event.ID = uuid.New()
	event.AuthRefID = refid.NewAuthRefID()

	query := `
		INSERT INTO auth_history (
			id, auth_refid, user_refid, firebase_uid, event_type, auth_method, portal_type,
			success, failure_reason, ip_address, user_agent,
			device_type, device_model, os_version, app_version, browser, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + authEventColumns

	result, err := scanAuthEventRow(r.db.Pool.QueryRow(
		ctx, query,
		event.ID, event.AuthRefID, event.UserRefID, event.FirebaseUID,
		event.EventType, event.AuthMethod, event.PortalType,
		event.Success, event.FailureReason, event.IPAddress, event.UserAgent,
		event.DeviceType, event.DeviceModel, event.OSVersion,
		event.AppVersion, event.Browser, event.Metadata,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create auth event: %w", err)
	}

	return result, nil
}

// GetByUserRefID retrieves journal entries for an account, newest first.
func (r *AuthEventRepository) GetByUserRefID(ctx context.Context, userRefID string, limit, offset int) ([]*models.AuthEvent, error) {
	query := `
		SELECT ` + authEventColumns + `
		FROM auth_history
		WHERE user_refid = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, userRefID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query auth events: %w", err)
	}

	return scanAuthEventRows(rows)
}

// GetFailedAttempts retrieves failed attempts across all accounts.
func (r *AuthEventRepository) GetFailedAttempts(ctx context.Context, limit, offset int) ([]*models.AuthEvent, error) {
	query := `
		SELECT ` + authEventColumns + `
		FROM auth_history
		WHERE success = false
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query failed auth events: %w", err)
	}

	return scanAuthEventRows(rows)
}

// CountByUserRefID counts journal entries for an account.
func (r *AuthEventRepository) CountByUserRefID(ctx context.Context, userRefID string) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM auth_history WHERE user_refid = $1`, userRefID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count auth events: %w", err)
	}
	return count, nil
}

// Cleanup removes journal entries older than the given number of days.
func (r *AuthEventRepository) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	query := `
		DELETE FROM auth_history
		WHERE created_at < CURRENT_TIMESTAMP - INTERVAL '1 day' * $1
	`

	result, err := r.db.Pool.Exec(ctx, query, olderThanDays)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup auth events: %w", err)
	}

	return result.RowsAffected(), nil
}
