package repositories

import (
	"context"

	"github.com/asakaida/todomap/internal/entities"
)

// RelationshipDefaults holds the fallback values applied when a relationship
// is created without an explicit type, sort order, or active flag. Passed to
// the store constructor instead of living in ambient configuration.
type RelationshipDefaults struct {
	RelationshipType string
	SortOrder        int
	IsActive         bool
}

// DefaultRelationshipDefaults returns the stock defaults.
func DefaultRelationshipDefaults() RelationshipDefaults {
	return RelationshipDefaults{
		RelationshipType: entities.RelationshipGeneral,
		SortOrder:        0,
		IsActive:         true,
	}
}

// RelationshipFilter defines filter criteria for querying relationship rows.
// Zero-valued fields are not applied. Inactive rows are excluded unless
// IncludeInactive is set.
type RelationshipFilter struct {
	SubjectType      entities.Kind
	SubjectID        int64
	ObjectType       entities.Kind
	ObjectID         int64
	RelationshipType string
	RelationshipKey  string
	IncludeInactive  bool
}

// RelationshipRepository defines the data access interface for the
// general_maps table. Results are always ordered by sort_order ascending with
// the row id as tiebreak, so ties preserve insertion order.
type RelationshipRepository interface {
	// Create inserts one relationship row. Returns ErrDuplicateRelationship
	// when the exact 6-tuple already exists, active or not. There is no
	// upsert; idempotent callers must check first.
	Create(ctx context.Context, gm *entities.GeneralMap) (*entities.GeneralMap, error)

	// Query retrieves relationship rows matching the filter.
	// Returns an empty slice, not an error, when nothing matches.
	Query(ctx context.Context, filter *RelationshipFilter) ([]*entities.GeneralMap, error)

	// Exists reports whether at least one active row matches the pair and
	// relationship type, ignoring the relationship key.
	Exists(ctx context.Context, subjectType entities.Kind, subjectID int64, objectType entities.Kind, objectID int64, relationshipType string) (bool, error)

	// Remove hard-deletes one row. An empty relationshipKey targets only the
	// null-class key; it does not wildcard across keys. Returns true iff a
	// row was deleted.
	Remove(ctx context.Context, subjectType entities.Kind, subjectID int64, objectType entities.Kind, objectID int64, relationshipType, relationshipKey string) (bool, error)

	// SetActive toggles the soft-deactivation flag on one row.
	// Returns true iff a row was updated.
	SetActive(ctx context.Context, subjectType entities.Kind, subjectID int64, objectType entities.Kind, objectID int64, relationshipType, relationshipKey string, active bool) (bool, error)
}
