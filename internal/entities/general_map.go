package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// maxTypeLength matches the varchar(100) columns in the general_maps table.
const maxTypeLength = 100

// Metadata is an arbitrary key/value payload attached to a relationship.
// It is opaque to the store and persisted as JSONB.
type Metadata map[string]interface{}

// Value implements driver.Valuer so Metadata can be written to a JSONB column.
// A nil map is stored as SQL NULL.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for reading a JSONB column.
func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into Metadata", src)
	}
	return json.Unmarshal(b, m)
}

// GeneralMap represents a single polymorphic relationship row.
// Example: user:7#todo_owner@todo:42
// This means: user 7 owns todo 42.
//
// An empty RelationshipKey is stored as NULL and counts as one uniqueness
// class, so at most one row exists per exact
// (subject, object, relationship_type, relationship_key) combination.
type GeneralMap struct {
	ID               int64
	SubjectType      Kind
	SubjectID        int64
	ObjectType       Kind
	ObjectID         int64
	RelationshipType string
	RelationshipKey  string // optional secondary discriminator; empty means unset
	Metadata         Metadata
	SortOrder        int
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// String returns a string representation of the relationship.
// Format: subject_type:subject_id#relationship_type[/relationship_key]@object_type:object_id
func (gm *GeneralMap) String() string {
	if gm.RelationshipKey != "" {
		return fmt.Sprintf("%s:%d#%s/%s@%s:%d",
			gm.SubjectType, gm.SubjectID, gm.RelationshipType,
			gm.RelationshipKey, gm.ObjectType, gm.ObjectID)
	}
	return fmt.Sprintf("%s:%d#%s@%s:%d",
		gm.SubjectType, gm.SubjectID, gm.RelationshipType,
		gm.ObjectType, gm.ObjectID)
}

// Validate checks if the relationship is well formed.
func (gm *GeneralMap) Validate() error {
	if !gm.SubjectType.Valid() {
		return fmt.Errorf("unknown subject type: %q", gm.SubjectType)
	}
	if gm.SubjectID <= 0 {
		return fmt.Errorf("subject ID is required")
	}
	if !gm.ObjectType.Valid() {
		return fmt.Errorf("unknown object type: %q", gm.ObjectType)
	}
	if gm.ObjectID <= 0 {
		return fmt.Errorf("object ID is required")
	}
	if gm.RelationshipType == "" {
		return fmt.Errorf("relationship type is required")
	}
	if !ValidRelationshipType(gm.RelationshipType) {
		return fmt.Errorf("unknown relationship type: %q", gm.RelationshipType)
	}
	if len(gm.RelationshipType) > maxTypeLength {
		return fmt.Errorf("relationship type exceeds %d characters", maxTypeLength)
	}
	if len(gm.RelationshipKey) > maxTypeLength {
		return fmt.Errorf("relationship key exceeds %d characters", maxTypeLength)
	}
	return nil
}
