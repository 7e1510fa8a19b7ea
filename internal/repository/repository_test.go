package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rizz-social/internal/model"
	"rizz-social/internal/repository"
	"rizz-social/internal/testutil"
)

func strPtr(s string) *string { return &s }

func createUser(t *testing.T, repo *repository.UserRepository, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: username + "@x.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository_Lookups(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, repo, "alice")
	require.NotZero(t, alice.ID)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, alice.ID, byName.ID)

	byEmail, err := repo.GetByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)

	byID, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Nil(t, byID.ProfilePicture)

	missing, err := repo.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missingID, err := repo.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missingID)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user := createUser(t, repo, "alice")
	user.Username = "alice2"
	user.Email = "alice2@x.com"
	user.ProfilePicture = strPtr("/uploads/a.png")
	require.NoError(t, repo.UpdateProfile(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)
	assert.Equal(t, "alice2@x.com", got.Email)
	require.NotNil(t, got.ProfilePicture)
	assert.Equal(t, "/uploads/a.png", *got.ProfilePicture)
}

func TestPostRepository_CreateAndGetJoinsOwner(t *testing.T) {
	db := testutil.OpenDB(t)
	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	alice.ProfilePicture = strPtr("/uploads/avatar.png")
	require.NoError(t, users.UpdateProfile(ctx, alice))

	post := &model.Post{UserID: alice.ID, Content: "hello", ImageURL: strPtr("/uploads/p.png")}
	require.NoError(t, posts.Create(ctx, post))
	require.NotZero(t, post.ID)

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, "alice", got.Username)
	require.NotNil(t, got.ImageURL)
	assert.Equal(t, "/uploads/p.png", *got.ImageURL)
	require.NotNil(t, got.ProfilePicture)
	assert.Equal(t, "/uploads/avatar.png", *got.ProfilePicture)

	missing, err := posts.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostRepository_ListOrderingAndPaging(t *testing.T) {
	db := testutil.OpenDB(t)
	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, owner := range []uint{alice.ID, bob.ID, alice.ID} {
		p := &model.Post{UserID: owner, Content: string(rune('a' + i)), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, posts.Create(ctx, p))
	}

	all, err := posts.List(ctx, repository.PageOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].Content, all[1].Content, all[2].Content})

	page, err := posts.List(ctx, repository.PageOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].Content)
	assert.Equal(t, "bob", page[0].Username)

	byAlice, err := posts.ListByUserID(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, byAlice, 2)
	assert.Equal(t, "c", byAlice[0].Content)

	carol := createUser(t, users, "carol")
	none, err := posts.ListByUserID(ctx, carol.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestPostRepository_OwnerScopedMutations(t *testing.T) {
	db := testutil.OpenDB(t)
	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	post := &model.Post{UserID: alice.ID, Content: "mine"}
	require.NoError(t, posts.Create(ctx, post))

	ok, err := posts.UpdateByIDAndUserID(ctx, post.ID, bob.ID, "stolen", nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = posts.DeleteByIDAndUserID(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "mine", got.Content)

	ok, err = posts.UpdateByIDAndUserID(ctx, post.ID, alice.ID, "edited", strPtr("/uploads/n.png"))
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
	require.NotNil(t, got.ImageURL)

	ok, err = posts.DeleteByIDAndUserID(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
