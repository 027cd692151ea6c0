package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/exploria-travel/auth-service/internal/database"
	"github.com/exploria-travel/auth-service/internal/models"
	"github.com/exploria-travel/auth-service/pkg/refid"
	"github.com/jackc/pgx/v5"
)

// accountColumns is the canonical select list for the users table.
const accountColumns = `
	user_refid, firebase_uid, email, email_verified, display_name, profile_photo_url,
	firstname, lastname, birthday, gender, mobile_number, mobile_country_code,
	nationality, home_country, home_city, preferred_language, preferred_currency,
	confirmed, is_admin, is_staff, is_operator, account_status, referral_code,
	registration_source, member_tier, loyalty_points,
	last_login_at, last_login_ip, last_login_device, created_at, updated_at`

// AccountRepository handles account data access. Uniqueness of firebase_uid,
// email, and referral_code is enforced by database constraints; callers'
// pre-checks are optimizations, the constraint is the arbiter under
// concurrent registration.
type AccountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// rowScanner interface for scanning rows (single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAccountRow handles nullable fields and populates an Account model from a database row
func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var acct models.Account

	err := scanner.Scan(
		&acct.RefID, &acct.FirebaseUID, &acct.Email, &acct.EmailVerified,
		&acct.DisplayName, &acct.ProfilePhotoURL,
		&acct.Firstname, &acct.Lastname, &acct.Birthday, &acct.Gender,
		&acct.MobileNumber, &acct.MobileCountryCode,
		&acct.Nationality, &acct.HomeCountry, &acct.HomeCity,
		&acct.PreferredLanguage, &acct.PreferredCurrency,
		&acct.Confirmed, &acct.IsAdmin, &acct.IsStaff, &acct.IsOperator,
		&acct.AccountStatus, &acct.ReferralCode,
		&acct.RegistrationSource, &acct.MemberTier, &acct.LoyaltyPoints,
		&acct.LastLoginAt, &acct.LastLoginIP, &acct.LastLoginDevice,
		&acct.CreatedAt, &acct.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &acct, nil
}

// Create inserts a new account. A fresh ref id and referral code are
// generated here; the unique constraints decide conflicts under races.
func (r *AccountRepository) Create(ctx context.Context, acct *models.Account) (*models.Account, error) {
	acct.RefID = refid.NewUserRefID()
	if acct.ReferralCode == "" {
		acct.ReferralCode = refid.NewReferralCode()
	}
	if acct.AccountStatus == "" {
		acct.AccountStatus = models.AccountStatusActive
	}
	if acct.PreferredLanguage == "" {
		acct.PreferredLanguage = "en"
	}
	if acct.PreferredCurrency == "" {
		acct.PreferredCurrency = "USD"
	}
	if acct.RegistrationSource == "" {
		acct.RegistrationSource = "web"
	}

	now := time.Now()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	query := `
		INSERT INTO users (
			user_refid, firebase_uid, email, email_verified, display_name, profile_photo_url,
			confirmed, is_admin, is_staff, is_operator, account_status, referral_code,
			registration_source, preferred_language, preferred_currency,
			last_login_at, last_login_ip, last_login_device, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING ` + accountColumns

	created, err := scanAccountRow(r.db.Pool.QueryRow(ctx, query,
		acct.RefID, acct.FirebaseUID, acct.Email, acct.EmailVerified,
		acct.DisplayName, acct.ProfilePhotoURL,
		acct.Confirmed, acct.IsAdmin, acct.IsStaff, acct.IsOperator,
		acct.AccountStatus, acct.ReferralCode, acct.RegistrationSource,
		acct.PreferredLanguage, acct.PreferredCurrency,
		acct.LastLoginAt, acct.LastLoginIP, acct.LastLoginDevice,
		acct.CreatedAt, acct.UpdatedAt,
	))
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *AccountRepository) GetByRefID(ctx context.Context, refID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE user_refid = $1`
	return scanAccountRow(r.db.Pool.QueryRow(ctx, query, refID))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE email = $1`
	return scanAccountRow(r.db.Pool.QueryRow(ctx, query, email))
}

func (r *AccountRepository) GetByFirebaseUID(ctx context.Context, firebaseUID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE firebase_uid = $1`
	return scanAccountRow(r.db.Pool.QueryRow(ctx, query, firebaseUID))
}

// GetByEmailAndFirebaseUID looks up an account by the (email, firebase_uid)
// pair. A mismatch on either is indistinguishable from not found.
func (r *AccountRepository) GetByEmailAndFirebaseUID(ctx context.Context, email, firebaseUID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE email = $1 AND firebase_uid = $2`
	return scanAccountRow(r.db.Pool.QueryRow(ctx, query, email, firebaseUID))
}

// CompleteProfile writes the profile fields and flips confirmed in one
// transaction. The row lock plus the confirmed guard make confirmation
// single-shot even under concurrent completion attempts.
func (r *AccountRepository) CompleteProfile(ctx context.Context, refID string, profile *models.ProfileUpdate) (*models.Account, error) {
	var updated *models.Account

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var confirmed bool
		err := tx.QueryRow(ctx, `SELECT confirmed FROM users WHERE user_refid = $1 FOR UPDATE`, refID).Scan(&confirmed)
		if err != nil {
			return database.MapPostgresError(err)
		}
		if confirmed {
			return models.ErrAlreadyConfirmed
		}

		query := `
			UPDATE users SET
				firstname = $1, lastname = $2, display_name = $3, birthday = $4, gender = $5,
				mobile_number = $6, mobile_country_code = $7, nationality = $8,
				home_country = $9, home_city = $10,
				preferred_language = $11, preferred_currency = $12,
				confirmed = TRUE, updated_at = $13
			WHERE user_refid = $14
			RETURNING ` + accountColumns

		updated, err = scanAccountRow(tx.QueryRow(ctx, query,
			profile.Firstname, profile.Lastname, profile.DisplayName,
			profile.Birthday, profile.Gender,
			profile.MobileNumber, profile.MobileCountryCode, profile.Nationality,
			profile.HomeCountry, profile.HomeCity,
			profile.PreferredLanguage, profile.PreferredCurrency,
			time.Now(), refID,
		))
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// RecordLogin updates the last-login bookkeeping fields.
func (r *AccountRepository) RecordLogin(ctx context.Context, refID string, booking *models.LoginBookkeeping) error {
	query := `
		UPDATE users
		SET last_login_at = $1, last_login_ip = $2, last_login_device = $3, updated_at = $1
		WHERE user_refid = $4
	`

	var ip *string
	if booking.IPAddress != "" {
		ip = &booking.IPAddress
	}
	var device *string
	if booking.DeviceType != "" {
		device = &booking.DeviceType
	}

	result, err := r.db.Pool.Exec(ctx, query, booking.At, ip, device, refID)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// UpdateLocation writes the live GPS point. The point is built from bound
// parameters, never from string concatenation.
func (r *AccountRepository) UpdateLocation(ctx context.Context, refID string, longitude, latitude float64) error {
	query := `
		UPDATE users
		SET gps_live = POINT($1, $2), updated_at = $3
		WHERE user_refid = $4
	`

	result, err := r.db.Pool.Exec(ctx, query, longitude, latitude, time.Now(), refID)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// List returns accounts ordered by creation time, newest first.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*models.Account, 0)
	for rows.Next() {
		acct, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return accounts, nil
}
