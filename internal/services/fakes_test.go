package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jobboard/apiserver/internal/store"
	"github.com/jobboard/apiserver/types"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]types.User
	nextID int
	err    error
}

func newFakeUserRepo(users ...types.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[int]types.User{}, nextID: 1}
	for _, u := range users {
		repo.users[u.ID] = u
		if u.ID >= repo.nextID {
			repo.nextID = u.ID + 1
		}
	}
	return repo
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return types.User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) find(match func(types.User) bool) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return types.User{}, f.err
	}
	for _, u := range f.users {
		if match(u) {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	return f.find(func(u types.User) bool { return u.Email != nil && *u.Email == email })
}

func (f *fakeUserRepo) GetByCPF(_ context.Context, cpf string) (types.User, error) {
	return f.find(func(u types.User) bool { return u.CPF != nil && *u.CPF == cpf })
}

func (f *fakeUserRepo) List(_ context.Context, offset, limit int) ([]types.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := []types.User{}
	for i, id := range ids {
		if i >= offset && len(out) < limit {
			out = append(out, f.users[id])
		}
	}
	return out, len(ids), nil
}

func (f *fakeUserRepo) Create(_ context.Context, u types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if u.CPF != nil && existing.CPF != nil && *u.CPF == *existing.CPF {
			return types.User{}, &store.ConflictError{Constraint: "users_cpf_key"}
		}
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) SetProfileImage(_ context.Context, id int, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.ProfileImage = key
	f.users[id] = u
	return nil
}

type fakeJobRepo struct {
	mu      sync.Mutex
	jobs    map[int]types.Job
	nextID  int
	updates int
	deletes int
}

func newFakeJobRepo(jobs ...types.Job) *fakeJobRepo {
	repo := &fakeJobRepo{jobs: map[int]types.Job{}, nextID: 1}
	for _, j := range jobs {
		repo.jobs[j.ID] = j
		if j.ID >= repo.nextID {
			repo.nextID = j.ID + 1
		}
	}
	return repo
}

func (f *fakeJobRepo) List(_ context.Context, offset, limit int) ([]types.Job, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []types.Job{}
	for _, j := range f.jobs {
		out = append(out, j)
	}
	return out, len(out), nil
}

func (f *fakeJobRepo) Get(_ context.Context, id int) (types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return types.Job{}, store.ErrNotFound
	}
	return j, nil
}

func (f *fakeJobRepo) filter(match func(types.Job) bool) []types.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []types.Job{}
	for _, j := range f.jobs {
		if match(j) {
			out = append(out, j)
		}
	}
	return out
}

func (f *fakeJobRepo) ListByUser(_ context.Context, userID int) ([]types.Job, error) {
	return f.filter(func(j types.Job) bool { return j.UserID == userID }), nil
}

func (f *fakeJobRepo) ListByCategory(_ context.Context, category string) ([]types.Job, error) {
	return f.filter(func(j types.Job) bool { return j.Category == category }), nil
}

func (f *fakeJobRepo) Create(_ context.Context, j types.Job) (types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j.ID = f.nextID
	f.nextID++
	f.jobs[j.ID] = j
	return j, nil
}

func (f *fakeJobRepo) Update(_ context.Context, j types.Job) (types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[j.ID]; !ok {
		return types.Job{}, store.ErrNotFound
	}
	f.updates++
	f.jobs[j.ID] = j
	return j, nil
}

func (f *fakeJobRepo) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[id]; !ok {
		return store.ErrNotFound
	}
	f.deletes++
	delete(f.jobs, id)
	return nil
}

type fakeRatingRepo struct {
	ratings []types.Rating
	summary map[int]types.RatingSummary
	calls   int
}

func (f *fakeRatingRepo) Create(_ context.Context, r types.Rating) (types.Rating, error) {
	r.ID = len(f.ratings) + 1
	f.ratings = append(f.ratings, r)
	return r, nil
}

func (f *fakeRatingRepo) Summary(_ context.Context, userID int) (types.RatingSummary, error) {
	f.calls++
	return f.summary[userID], nil
}

type fakeRatingCache struct {
	entries     map[int]types.RatingSummary
	invalidated []int
	failReads   bool
}

func (f *fakeRatingCache) Get(_ context.Context, userID int) (types.RatingSummary, bool, error) {
	if f.failReads {
		return types.RatingSummary{}, false, errors.New("cache down")
	}
	s, ok := f.entries[userID]
	return s, ok, nil
}

func (f *fakeRatingCache) Set(_ context.Context, userID int, summary types.RatingSummary) error {
	if f.entries == nil {
		f.entries = map[int]types.RatingSummary{}
	}
	f.entries[userID] = summary
	return nil
}

func (f *fakeRatingCache) Invalidate(_ context.Context, userID int) error {
	f.invalidated = append(f.invalidated, userID)
	delete(f.entries, userID)
	return nil
}

type fakeAvatarStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
	deleted      []string
}

func newFakeAvatarStore() *fakeAvatarStore {
	return &fakeAvatarStore{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *fakeAvatarStore) PutAvatar(_ context.Context, userKey string, r io.Reader, _ int64, contentType, ext string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := "avatars/" + userKey + "/" + string(rune('a'+len(f.objects))) + ext
	f.objects[key] = data
	f.contentTypes[key] = contentType
	return key, nil
}

func (f *fakeAvatarStore) OpenAvatar(_ context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, "", store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), f.contentTypes[key], nil
}

func (f *fakeAvatarStore) DeleteAvatar(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func strPtr(s string) *string {
	return &s
}
