package entities

// Kind identifies an entity type that can participate in a general
// relationship. Relationship rows store the kind as a plain string, so the
// referenced table is resolved by the caller rather than by a foreign key.
type Kind string

const (
	KindUser Kind = "user"
	KindTodo Kind = "todo"
)

// knownKinds is the registry of resolvable entity kinds.
var knownKinds = map[Kind]struct{}{
	KindUser: {},
	KindTodo: {},
}

// Valid reports whether the kind is registered.
func (k Kind) Valid() bool {
	_, ok := knownKinds[k]
	return ok
}

// Relationship type vocabulary. The set is closed: rows carrying an
// unregistered type are rejected before they reach storage.
const (
	RelationshipGeneral      = "general"
	RelationshipTodoOwner    = "todo_owner"
	RelationshipTodoMetadata = "todo_metadata"
	RelationshipFavorite     = "favorite"
	RelationshipShared       = "shared"
)

var knownRelationshipTypes = map[string]struct{}{
	RelationshipGeneral:      {},
	RelationshipTodoOwner:    {},
	RelationshipTodoMetadata: {},
	RelationshipFavorite:     {},
	RelationshipShared:       {},
}

// ValidRelationshipType reports whether the relationship type is registered.
func ValidRelationshipType(relationshipType string) bool {
	_, ok := knownRelationshipTypes[relationshipType]
	return ok
}
