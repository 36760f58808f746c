package handlers

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jobboard/apiserver/internal/events"
	"github.com/jobboard/apiserver/internal/store"
	"github.com/jobboard/apiserver/types"
)

type memUsers struct {
	mu     sync.Mutex
	users  map[int]types.User
	nextID int
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[int]types.User{}, nextID: 1}
}

func (m *memUsers) GetByID(_ context.Context, id int) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) find(match func(types.User) bool) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (types.User, error) {
	return m.find(func(u types.User) bool { return u.Email != nil && *u.Email == email })
}

func (m *memUsers) GetByCPF(_ context.Context, cpf string) (types.User, error) {
	return m.find(func(u types.User) bool { return u.CPF != nil && *u.CPF == cpf })
}

func (m *memUsers) List(_ context.Context, offset, limit int) ([]types.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := []types.User{}
	for i, id := range ids {
		if i >= offset && len(out) < limit {
			out = append(out, m.users[id])
		}
	}
	return out, len(ids), nil
}

func (m *memUsers) Create(_ context.Context, u types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if u.CPF != nil && existing.CPF != nil && *u.CPF == *existing.CPF {
			return types.User{}, &store.ConflictError{Constraint: "users_cpf_key"}
		}
	}
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return u, nil
}

func (m *memUsers) Update(_ context.Context, u types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memUsers) SetProfileImage(_ context.Context, id int, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.ProfileImage = key
	m.users[id] = u
	return nil
}

type memJobs struct {
	mu     sync.Mutex
	jobs   map[int]types.Job
	users  *memUsers
	nextID int
}

func newMemJobs(users *memUsers) *memJobs {
	return &memJobs{jobs: map[int]types.Job{}, users: users, nextID: 1}
}

func (m *memJobs) sorted(match func(types.Job) bool) []types.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.Job{}
	for _, j := range m.jobs {
		if match(j) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (m *memJobs) List(_ context.Context, offset, limit int) ([]types.Job, int, error) {
	all := m.sorted(func(types.Job) bool { return true })
	out := []types.Job{}
	for i, j := range all {
		if i >= offset && len(out) < limit {
			out = append(out, j)
		}
	}
	return out, len(all), nil
}

func (m *memJobs) Get(_ context.Context, id int) (types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return types.Job{}, store.ErrNotFound
	}
	return j, nil
}

func (m *memJobs) ListByUser(_ context.Context, userID int) ([]types.Job, error) {
	return m.sorted(func(j types.Job) bool { return j.UserID == userID }), nil
}

func (m *memJobs) ListByCategory(_ context.Context, category string) ([]types.Job, error) {
	return m.sorted(func(j types.Job) bool { return j.Category == category }), nil
}

func (m *memJobs) Create(ctx context.Context, j types.Job) (types.Job, error) {
	owner, err := m.users.GetByID(ctx, j.UserID)
	if err != nil {
		return types.Job{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	j.ID = m.nextID
	m.nextID++
	j.OwnerName = owner.Name
	j.CreatedAt = time.Now().UTC()
	j.UpdatedAt = j.CreatedAt
	m.jobs[j.ID] = j
	return j, nil
}

func (m *memJobs) Update(_ context.Context, j types.Job) (types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[j.ID]; !ok {
		return types.Job{}, store.ErrNotFound
	}
	m.jobs[j.ID] = j
	return j, nil
}

func (m *memJobs) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.jobs, id)
	return nil
}

type memRatings struct {
	mu      sync.Mutex
	ratings []types.Rating
}

func (m *memRatings) Create(_ context.Context, r types.Rating) (types.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = len(m.ratings) + 1
	r.CreatedAt = time.Now().UTC()
	m.ratings = append(m.ratings, r)
	return r, nil
}

func (m *memRatings) Summary(_ context.Context, userID int) (types.RatingSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var summary types.RatingSummary
	var total float64
	for _, r := range m.ratings {
		if r.EvaluatedID == userID {
			total += r.Score
			summary.Count++
		}
	}
	if summary.Count > 0 {
		summary.Average = total / float64(summary.Count)
	}
	return summary, nil
}

type memAvatars struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
}

func newMemAvatars() *memAvatars {
	return &memAvatars{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *memAvatars) PutAvatar(_ context.Context, userKey string, r io.Reader, _ int64, contentType, ext string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := "avatars/" + userKey + "/" + strconv.Itoa(len(m.objects)) + ext
	m.objects[key] = data
	m.contentTypes[key] = contentType
	return key, nil
}

func (m *memAvatars) OpenAvatar(_ context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, "", store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), m.contentTypes[key], nil
}

func (m *memAvatars) DeleteAvatar(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type publishedEvent struct {
	Type events.Type
	Data any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, t events.Type, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: t, Data: data})
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
