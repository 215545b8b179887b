package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"github.com/phrazzld/accounts-api/internal/store"
)

const profileColumns = `
	id, identity_ref, email, name, last_name, document_type, document_number,
	cell_phone, password_hash, roles, profile_image, created_at, updated_at`

// PostgresProfileStore implements store.ProfileStore on PostgreSQL.
type PostgresProfileStore struct {
	db      store.DBTX
	logger  *slog.Logger
	typeMap *pgtype.Map
}

// NewPostgresProfileStore creates a new PostgreSQL implementation of the
// ProfileStore interface. If logger is nil, a default logger will be used.
func NewPostgresProfileStore(db store.DBTX, logger *slog.Logger) *PostgresProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProfileStore{
		db:      db,
		logger:  logger.With(slog.String("component", "profile_store")),
		typeMap: pgtype.NewMap(),
	}
}

// Ensure PostgresProfileStore implements store.ProfileStore interface
var _ store.ProfileStore = (*PostgresProfileStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresProfileStore) scanProfile(row rowScanner) (*domain.UserProfile, error) {
	var (
		p     domain.UserProfile
		roles []string
		image sql.NullString
	)

	err := row.Scan(
		&p.ID,
		&p.IdentityRef,
		&p.Email,
		&p.Name,
		&p.LastName,
		&p.DocumentType,
		&p.DocumentNumber,
		&p.CellPhone,
		&p.PasswordHash,
		s.typeMap.SQLScanner(&roles),
		&image,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if roles == nil {
		roles = []string{}
	}
	p.Roles = roles
	if image.Valid {
		p.ProfileImage = &image.String
	}
	return &p, nil
}

func (s *PostgresProfileStore) getOne(
	ctx context.Context,
	where string,
	arg any,
	logKey string,
) (*domain.UserProfile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE ` + where
	p, err := s.scanProfile(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("profile not found", slog.Any(logKey, arg))
			return nil, store.ErrProfileNotFound
		}
		log.Error("failed to get profile",
			slog.String("error", err.Error()),
			slog.Any(logKey, arg))
		return nil, MapError(err)
	}

	return p, nil
}

// GetByID implements store.ProfileStore.GetByID
func (s *PostgresProfileStore) GetByID(ctx context.Context, id int64) (*domain.UserProfile, error) {
	return s.getOne(ctx, `id = $1`, id, "profile_id")
}

// GetByEmail implements store.ProfileStore.GetByEmail.
// Emails compare case-insensitively, matching the unique index.
func (s *PostgresProfileStore) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	return s.getOne(ctx, `LOWER(email) = LOWER($1)`, email, "email")
}

// GetByIdentityRef implements store.ProfileStore.GetByIdentityRef
func (s *PostgresProfileStore) GetByIdentityRef(
	ctx context.Context,
	identityRef string,
) (*domain.UserProfile, error) {
	return s.getOne(ctx, `identity_ref = $1`, identityRef, "identity_ref")
}

// List implements store.ProfileStore.List
func (s *PostgresProfileStore) List(ctx context.Context) iter.Seq2[*domain.UserProfile, error] {
	return func(yield func(*domain.UserProfile, error) bool) {
		log := logger.FromContextOrDefault(ctx, s.logger)

		rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM user_profiles ORDER BY id`)
		if err != nil {
			log.Error("failed to list profiles", slog.String("error", err.Error()))
			yield(nil, MapError(err))
			return
		}
		defer func() {
			if cerr := rows.Close(); cerr != nil {
				log.Warn("failed to close profile rows", slog.String("error", cerr.Error()))
			}
		}()

		for rows.Next() {
			p, err := s.scanProfile(rows)
			if err != nil {
				log.Error("failed to scan profile row", slog.String("error", err.Error()))
				yield(nil, err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			log.Error("profile row iteration failed", slog.String("error", err.Error()))
			yield(nil, MapError(err))
		}
	}
}

// Create implements store.ProfileStore.Create
func (s *PostgresProfileStore) Create(ctx context.Context, p *domain.UserProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		log.Warn("profile validation failed during create",
			slog.String("error", err.Error()),
			slog.String("identity_ref", p.IdentityRef))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO user_profiles (
			identity_ref, email, name, last_name, document_type, document_number,
			cell_phone, password_hash, roles, profile_image
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		p.IdentityRef,
		p.Email,
		p.Name,
		p.LastName,
		p.DocumentType,
		p.DocumentNumber,
		p.CellPhone,
		p.PasswordHash,
		rolesArg(p.Roles),
		p.ProfileImage,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Warn("unique violation during profile create",
				slog.String("error", err.Error()),
				slog.String("identity_ref", p.IdentityRef))
		} else {
			log.Error("failed to create profile",
				slog.String("error", err.Error()),
				slog.String("identity_ref", p.IdentityRef))
		}
		return mapped
	}

	log.Info("profile created",
		slog.Int64("profile_id", p.ID),
		slog.String("identity_ref", p.IdentityRef))
	return nil
}

// Update implements store.ProfileStore.Update
func (s *PostgresProfileStore) Update(ctx context.Context, p *domain.UserProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		log.Warn("profile validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("profile_id", p.ID))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE user_profiles
		SET email = $1, name = $2, last_name = $3, document_type = $4,
		    document_number = $5, cell_phone = $6, password_hash = $7,
		    roles = $8, profile_image = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		p.Email,
		p.Name,
		p.LastName,
		p.DocumentType,
		p.DocumentNumber,
		p.CellPhone,
		p.PasswordHash,
		rolesArg(p.Roles),
		p.ProfileImage,
		p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("profile not found for update", slog.Int64("profile_id", p.ID))
			return store.ErrProfileNotFound
		}
		log.Error("failed to update profile",
			slog.String("error", err.Error()),
			slog.Int64("profile_id", p.ID))
		return MapError(err)
	}

	log.Info("profile updated", slog.Int64("profile_id", p.ID))
	return nil
}

// Delete implements store.ProfileStore.Delete
func (s *PostgresProfileStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM user_profiles WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete profile",
			slog.String("error", err.Error()),
			slog.Int64("profile_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrProfileNotFound); err != nil {
		log.Debug("profile delete affected no rows", slog.Int64("profile_id", id))
		return err
	}

	log.Info("profile deleted", slog.Int64("profile_id", id))
	return nil
}

// rolesArg keeps a nil slice from being written as SQL NULL.
func rolesArg(roles []string) []string {
	if roles == nil {
		return []string{}
	}
	return roles
}
