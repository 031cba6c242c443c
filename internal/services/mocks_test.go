package services

import (
	"context"
	"sort"
	"time"

	"github.com/asakaida/todomap/internal/entities"
	"github.com/asakaida/todomap/internal/repositories"
)

// Mock RelationshipRepository

type mockRelationshipRepository struct {
	nextID int64
	rows   []*entities.GeneralMap
}

func newMockRelationshipRepository() *mockRelationshipRepository {
	return &mockRelationshipRepository{}
}

func (m *mockRelationshipRepository) Create(ctx context.Context, gm *entities.GeneralMap) (*entities.GeneralMap, error) {
	if gm.RelationshipType == "" {
		gm.RelationshipType = entities.RelationshipGeneral
	}
	if err := gm.Validate(); err != nil {
		return nil, err
	}
	for _, row := range m.rows {
		if row.SubjectType == gm.SubjectType && row.SubjectID == gm.SubjectID &&
			row.ObjectType == gm.ObjectType && row.ObjectID == gm.ObjectID &&
			row.RelationshipType == gm.RelationshipType && row.RelationshipKey == gm.RelationshipKey {
			return nil, repositories.ErrDuplicateRelationship
		}
	}
	m.nextID++
	created := *gm
	created.ID = m.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	m.rows = append(m.rows, &created)
	return &created, nil
}

func (m *mockRelationshipRepository) Query(ctx context.Context, filter *repositories.RelationshipFilter) ([]*entities.GeneralMap, error) {
	matched := []*entities.GeneralMap{}
	for _, row := range m.rows {
		if filter.SubjectType != "" && row.SubjectType != filter.SubjectType {
			continue
		}
		if filter.SubjectID != 0 && row.SubjectID != filter.SubjectID {
			continue
		}
		if filter.ObjectType != "" && row.ObjectType != filter.ObjectType {
			continue
		}
		if filter.ObjectID != 0 && row.ObjectID != filter.ObjectID {
			continue
		}
		if filter.RelationshipType != "" && row.RelationshipType != filter.RelationshipType {
			continue
		}
		if filter.RelationshipKey != "" && row.RelationshipKey != filter.RelationshipKey {
			continue
		}
		if !filter.IncludeInactive && !row.IsActive {
			continue
		}
		matched = append(matched, row)
	}
	// rows are held in insertion (id) order; stable sort keeps that for ties
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].SortOrder < matched[j].SortOrder
	})
	return matched, nil
}

func (m *mockRelationshipRepository) Exists(ctx context.Context, subjectType entities.Kind, subjectID int64, objectType entities.Kind, objectID int64, relationshipType string) (bool, error) {
	for _, row := range m.rows {
		if row.SubjectType == subjectType && row.SubjectID == subjectID &&
			row.ObjectType == objectType && row.ObjectID == objectID &&
			row.RelationshipType == relationshipType && row.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRelationshipRepository) Remove(ctx context.Context, subjectType entities.Kind, subjectID int64, objectType entities.Kind, objectID int64, relationshipType, relationshipKey string) (bool, error) {
	for i, row := range m.rows {
		if row.SubjectType == subjectType && row.SubjectID == subjectID &&
			row.ObjectType == objectType && row.ObjectID == objectID &&
			row.RelationshipType == relationshipType && row.RelationshipKey == relationshipKey {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRelationshipRepository) SetActive(ctx context.Context, subjectType entities.Kind, subjectID int64, objectType entities.Kind, objectID int64, relationshipType, relationshipKey string, active bool) (bool, error) {
	for _, row := range m.rows {
		if row.SubjectType == subjectType && row.SubjectID == subjectID &&
			row.ObjectType == objectType && row.ObjectID == objectID &&
			row.RelationshipType == relationshipType && row.RelationshipKey == relationshipKey {
			row.IsActive = active
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRelationshipRepository) deleteForEntity(kind entities.Kind, id int64) {
	kept := m.rows[:0]
	for _, row := range m.rows {
		if (row.SubjectType == kind && row.SubjectID == id) ||
			(row.ObjectType == kind && row.ObjectID == id) {
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
}

// Mock UserRepository

type mockUserRepository struct {
	nextID        int64
	users         map[int64]*entities.User
	relationships *mockRelationshipRepository
}

func newMockUserRepository(relationships *mockRelationshipRepository) *mockUserRepository {
	return &mockUserRepository{
		users:         make(map[int64]*entities.User),
		relationships: relationships,
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return nil, repositories.ErrDuplicateEmail
		}
	}
	m.nextID++
	created := *user
	created.ID = m.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	m.users[created.ID] = &created
	return &created, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepository) GetByIDs(ctx context.Context, ids []int64) ([]*entities.User, error) {
	users := []*entities.User{}
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockUserRepository) List(ctx context.Context) ([]*entities.User, error) {
	users := []*entities.User{}
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *entities.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.users, id)
	if m.relationships != nil {
		m.relationships.deleteForEntity(entities.KindUser, id)
	}
	return nil
}

// Mock TodoRepository

type mockTodoRepository struct {
	nextID        int64
	todos         map[int64]*entities.Todo
	order         []int64
	relationships *mockRelationshipRepository
}

func newMockTodoRepository(relationships *mockRelationshipRepository) *mockTodoRepository {
	return &mockTodoRepository{
		todos:         make(map[int64]*entities.Todo),
		relationships: relationships,
	}
}

func (m *mockTodoRepository) Create(ctx context.Context, todo *entities.Todo) (*entities.Todo, error) {
	m.nextID++
	created := *todo
	created.ID = m.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	m.todos[created.ID] = &created
	m.order = append(m.order, created.ID)
	return &created, nil
}

func (m *mockTodoRepository) GetByID(ctx context.Context, id int64) (*entities.Todo, error) {
	todo, ok := m.todos[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return todo, nil
}

func (m *mockTodoRepository) GetByIDs(ctx context.Context, ids []int64) ([]*entities.Todo, error) {
	todos := []*entities.Todo{}
	for _, id := range ids {
		if todo, ok := m.todos[id]; ok {
			todos = append(todos, todo)
		}
	}
	return todos, nil
}

func (m *mockTodoRepository) List(ctx context.Context) ([]*entities.Todo, error) {
	todos := []*entities.Todo{}
	// newest first
	for i := len(m.order) - 1; i >= 0; i-- {
		if todo, ok := m.todos[m.order[i]]; ok {
			todos = append(todos, todo)
		}
	}
	return todos, nil
}

func (m *mockTodoRepository) Update(ctx context.Context, todo *entities.Todo) error {
	if _, ok := m.todos[todo.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.todos[todo.ID] = todo
	return nil
}

func (m *mockTodoRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.todos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.todos, id)
	if m.relationships != nil {
		m.relationships.deleteForEntity(entities.KindTodo, id)
	}
	return nil
}

// newTestServices wires mock repositories into real services.
func newTestServices() (*UserService, *TodoService, *mockRelationshipRepository, *mockUserRepository, *mockTodoRepository) {
	relationships := newMockRelationshipRepository()
	users := newMockUserRepository(relationships)
	todos := newMockTodoRepository(relationships)
	defaults := repositories.DefaultRelationshipDefaults()
	userService := NewUserService(users, todos, relationships, defaults)
	todoService := NewTodoService(todos, users, relationships, defaults)
	return userService, todoService, relationships, users, todos
}
