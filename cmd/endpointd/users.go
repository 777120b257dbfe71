package main

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/endpointkit/endpoint"
	"github.com/kbukum/endpointkit/errors"
	"github.com/kbukum/endpointkit/logger"
	"github.com/kbukum/endpointkit/service"
	"github.com/kbukum/endpointkit/validation"
)

// User is the resource served by the users service.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type createUser struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
}

var userEndpoints = endpoint.Table{
	{Name: "list", URLSubpath: "/users"},
	{Name: "get", URLSubpath: "/users/:id"},
	{Name: "create", HTTPMethod: "post", URLSubpath: "/users"},
	{Name: "delete", HTTPMethod: "delete", URLSubpath: "/users/:id"},
}

// userStore keeps users in memory.
type userStore struct {
	mu    sync.RWMutex
	users map[string]User
}

func newUserStore() *userStore {
	return &userStore{users: make(map[string]User)}
}

// Service declares the users endpoints backed by the store.
func (s *userStore) Service(log *logger.Logger) (*service.Service, error) {
	return service.NewService("users", service.Config[endpoint.ProcessFunc]{
		Endpoints: userEndpoints,
		Methods: endpoint.MethodMap{
			"list":   s.list,
			"get":    s.get,
			"create": s.create,
			"delete": s.delete,
		},
		Logger: log,
	})
}

func (s *userStore) list(_ *endpoint.Request, ready endpoint.ReadyFunc) {
	s.mu.RLock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	ready(out, nil)
}

func (s *userStore) get(req *endpoint.Request, ready endpoint.ReadyFunc) {
	id := req.Param("id")
	s.mu.RLock()
	u, ok := s.users[id]
	s.mu.RUnlock()
	if !ok {
		ready(nil, errors.NotFound("user", id))
		return
	}
	ready(u, nil)
}

func (s *userStore) create(req *endpoint.Request, ready endpoint.ReadyFunc) {
	var in createUser
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		ready(nil, errors.InvalidInput("body", "must be a JSON object"))
		return
	}
	if appErr := validation.Struct(in); appErr != nil {
		ready(nil, appErr)
		return
	}

	u := User{ID: uuid.NewString(), Name: in.Name, Email: in.Email, CreatedAt: time.Now().UTC()}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	ready(u, nil, http.StatusCreated)
}

func (s *userStore) delete(req *endpoint.Request, ready endpoint.ReadyFunc) {
	id := req.Param("id")
	s.mu.Lock()
	_, ok := s.users[id]
	delete(s.users, id)
	s.mu.Unlock()
	if !ok {
		ready(nil, errors.NotFound("user", id))
		return
	}
	ready(map[string]any{"deleted": id}, nil)
}

// stats is the api chunk's own endpoint.
func (s *userStore) stats(_ *endpoint.Request, res endpoint.Response, _ endpoint.Next) {
	s.mu.RLock()
	n := len(s.users)
	s.mu.RUnlock()
	res.JSON(map[string]any{"users": n})
}
