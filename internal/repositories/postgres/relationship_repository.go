package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/asakaida/todomap/internal/entities"
	"github.com/asakaida/todomap/internal/repositories"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// PostgresRelationshipRepository implements RelationshipRepository using PostgreSQL
type PostgresRelationshipRepository struct {
	db       *sql.DB
	defaults repositories.RelationshipDefaults
}

// NewPostgresRelationshipRepository creates a new PostgreSQL relationship repository.
// The defaults are applied to rows created without an explicit relationship type.
func NewPostgresRelationshipRepository(db *sql.DB, defaults repositories.RelationshipDefaults) repositories.RelationshipRepository {
	return &PostgresRelationshipRepository{db: db, defaults: defaults}
}

// Create inserts one relationship row. The exact 6-tuple is protected by a
// unique index where a NULL key collapses to a single uniqueness class, so a
// second insert with the same combination fails with ErrDuplicateRelationship.
func (r *PostgresRelationshipRepository) Create(ctx context.Context, gm *entities.GeneralMap) (*entities.GeneralMap, error) {
	if gm.RelationshipType == "" {
		gm.RelationshipType = r.defaults.RelationshipType
	}
	if err := gm.Validate(); err != nil {
		return nil, fmt.Errorf("invalid relationship: %w", err)
	}

	query := `
		INSERT INTO general_maps (
			subject_type, subject_id, object_type, object_id,
			relationship_type, relationship_key, metadata, sort_order, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	created := *gm
	err := r.db.QueryRowContext(ctx, query,
		gm.SubjectType, gm.SubjectID, gm.ObjectType, gm.ObjectID,
		gm.RelationshipType, nullString(gm.RelationshipKey), gm.Metadata,
		gm.SortOrder, gm.IsActive,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, repositories.ErrDuplicateRelationship
		}
		return nil, fmt.Errorf("failed to create relationship: %w", err)
	}

	return &created, nil
}

// Query retrieves relationship rows matching the filter, ordered by
// sort_order with the row id as tiebreak.
func (r *PostgresRelationshipRepository) Query(ctx context.Context, filter *repositories.RelationshipFilter) ([]*entities.GeneralMap, error) {
	query := `
		SELECT id, subject_type, subject_id, object_type, object_id,
			relationship_type, relationship_key, metadata, sort_order, is_active,
			created_at, updated_at
		FROM general_maps
		WHERE 1 = 1
	`
	args := []interface{}{}
	argIdx := 1

	// Build dynamic WHERE clause based on filter
	if filter != nil {
		if filter.SubjectType != "" {
			query += fmt.Sprintf(" AND subject_type = $%d", argIdx)
			args = append(args, filter.SubjectType)
			argIdx++
		}
		if filter.SubjectID != 0 {
			query += fmt.Sprintf(" AND subject_id = $%d", argIdx)
			args = append(args, filter.SubjectID)
			argIdx++
		}
		if filter.ObjectType != "" {
			query += fmt.Sprintf(" AND object_type = $%d", argIdx)
			args = append(args, filter.ObjectType)
			argIdx++
		}
		if filter.ObjectID != 0 {
			query += fmt.Sprintf(" AND object_id = $%d", argIdx)
			args = append(args, filter.ObjectID)
			argIdx++
		}
		if filter.RelationshipType != "" {
			query += fmt.Sprintf(" AND relationship_type = $%d", argIdx)
			args = append(args, filter.RelationshipType)
			argIdx++
		}
		if filter.RelationshipKey != "" {
			query += fmt.Sprintf(" AND relationship_key = $%d", argIdx)
			args = append(args, filter.RelationshipKey)
			argIdx++
		}
		if !filter.IncludeInactive {
			query += " AND is_active = true"
		}
	} else {
		query += " AND is_active = true"
	}

	query += " ORDER BY sort_order, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	maps := []*entities.GeneralMap{}
	for rows.Next() {
		gm, err := scanGeneralMap(rows)
		if err != nil {
			return nil, err
		}
		maps = append(maps, gm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relationships: %w", err)
	}

	return maps, nil
}

// Exists checks for at least one active matching row, ignoring the
// relationship key.
func (r *PostgresRelationshipRepository) Exists(ctx context.Context, subjectType entities.Kind, subjectID int64, objectType entities.Kind, objectID int64, relationshipType string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM general_maps
			WHERE subject_type = $1
				AND subject_id = $2
				AND object_type = $3
				AND object_id = $4
				AND relationship_type = $5
				AND is_active = true
		)
	`
	var exists bool
	err := r.db.QueryRowContext(ctx, query,
		subjectType, subjectID, objectType, objectID, relationshipType,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check relationship existence: %w", err)
	}

	return exists, nil
}

// Remove hard-deletes one row, active or not. An empty key targets only the
// null-class key.
func (r *PostgresRelationshipRepository) Remove(ctx context.Context, subjectType entities.Kind, subjectID int64, objectType entities.Kind, objectID int64, relationshipType, relationshipKey string) (bool, error) {
	query := `
		DELETE FROM general_maps
		WHERE subject_type = $1
			AND subject_id = $2
			AND object_type = $3
			AND object_id = $4
			AND relationship_type = $5
			AND COALESCE(relationship_key, '') = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		subjectType, subjectID, objectType, objectID, relationshipType, relationshipKey,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove relationship: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

// SetActive toggles the soft-deactivation flag on one row.
func (r *PostgresRelationshipRepository) SetActive(ctx context.Context, subjectType entities.Kind, subjectID int64, objectType entities.Kind, objectID int64, relationshipType, relationshipKey string, active bool) (bool, error) {
	query := `
		UPDATE general_maps
		SET is_active = $1, updated_at = now()
		WHERE subject_type = $2
			AND subject_id = $3
			AND object_type = $4
			AND object_id = $5
			AND relationship_type = $6
			AND COALESCE(relationship_key, '') = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		active, subjectType, subjectID, objectType, objectID, relationshipType, relationshipKey,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update relationship: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

// scanGeneralMap reads one general_maps row.
func scanGeneralMap(rows *sql.Rows) (*entities.GeneralMap, error) {
	var gm entities.GeneralMap
	var relationshipKey sql.NullString

	err := rows.Scan(
		&gm.ID, &gm.SubjectType, &gm.SubjectID, &gm.ObjectType, &gm.ObjectID,
		&gm.RelationshipType, &relationshipKey, &gm.Metadata, &gm.SortOrder,
		&gm.IsActive, &gm.CreatedAt, &gm.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan relationship: %w", err)
	}

	if relationshipKey.Valid {
		gm.RelationshipKey = relationshipKey.String
	}

	return &gm, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
