package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rizz-social/internal/model"
	"rizz-social/internal/repository"
	"rizz-social/internal/storage"
	"rizz-social/internal/testutil"
)

type fakeImages struct {
	mu      sync.Mutex
	next    int
	saved   []string
	deleted []string
	saveErr error
}

func (f *fakeImages) Save(_ context.Context, upload storage.Upload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	if _, err := io.ReadAll(upload.Reader); err != nil {
		return "", err
	}
	f.next++
	ref := fmt.Sprintf("/uploads/fake-%d.png", f.next)
	f.saved = append(f.saved, ref)
	return ref, nil
}

func (f *fakeImages) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.ContentEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, event model.ContentEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeGuard struct {
	failures map[string]int
	max      int
	allowErr error
}

func newFakeGuard(max int) *fakeGuard {
	return &fakeGuard{failures: map[string]int{}, max: max}
}

func (g *fakeGuard) Allow(_ context.Context, username string) (bool, error) {
	if g.allowErr != nil {
		return true, g.allowErr
	}
	return g.failures[username] < g.max, nil
}

func (g *fakeGuard) RecordFailure(_ context.Context, username string) error {
	g.failures[username]++
	return nil
}

func (g *fakeGuard) Reset(_ context.Context, username string) error {
	delete(g.failures, username)
	return nil
}

// failingPosts wraps a PostStore and fails writes.
type failingPosts struct {
	PostStore
}

var errStoreDown = errors.New("store down")

func (f failingPosts) Create(context.Context, *model.Post) error {
	return errStoreDown
}

// racingUsers inserts intruder right before the profile write and then
// reports the unique-index violation the database would raise.
type racingUsers struct {
	UserStore
	intruder *model.User
}

func (r racingUsers) UpdateProfile(ctx context.Context, _ *model.User) error {
	if err := r.UserStore.Create(ctx, r.intruder); err != nil {
		return err
	}
	return fmt.Errorf("update user profile failed: %w", gorm.ErrDuplicatedKey)
}

type fixture struct {
	users     *repository.UserRepository
	posts     *repository.PostRepository
	images    *fakeImages
	publisher *fakePublisher
	auth      *AuthService
	postSvc   *PostService
	userSvc   *UserService
}

const testSecret = "test-secret"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	f := &fixture{
		users:     repository.NewUserRepository(db),
		posts:     repository.NewPostRepository(db),
		images:    &fakeImages{},
		publisher: &fakePublisher{},
	}
	f.auth = NewAuthService(f.users, f.images, nil, testSecret, time.Hour)
	f.postSvc = NewPostService(f.posts, f.users, f.images, f.publisher)
	f.userSvc = NewUserService(f.users, f.images, f.publisher)
	return f
}

func (f *fixture) register(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@x.com",
		Password: "Passw0rd",
	})
	require.NoError(t, err)
	return user
}

func upload() *storage.Upload {
	return &storage.Upload{Filename: "a.png", Reader: strings.NewReader("png-bytes")}
}

func strPtr(s string) *string { return &s }
