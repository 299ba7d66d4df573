package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"pressroom/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dsn, "file://../db/migrations")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     email,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, s.CreateUser(context.Background(), u, "hash"))
	return u
}

func seedPost(t *testing.T, s *Store, author *domain.User, title string, scope domain.Scope) *domain.Post {
	t.Helper()
	p := &domain.Post{
		ID:       uuid.NewString(),
		Title:    title,
		Content:  "content of " + title,
		Status:   domain.StatusPublished,
		Scope:    scope,
		AuthorID: author.ID,
	}
	require.NoError(t, s.CreatePost(context.Background(), p, "slug-"+uuid.NewString()))
	return p
}

func TestUserRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice@example.com", domain.RoleEditor)

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", got.Email)
	require.Equal(t, domain.RoleEditor, got.Role)
	require.True(t, got.IsActive)
	require.Nil(t, got.LastLoginAt)

	require.NoError(t, s.TouchLastLogin(ctx, u.ID))
	got, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)

	affected, err := s.SetRole(ctx, u.ID, domain.RoleAdmin)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	affected, err = s.SetActive(ctx, u.ID, false)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	got, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, got.Role)
	require.False(t, got.IsActive)
}

func TestCreatePost_SlugSuffixing(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "author@example.com", domain.RoleAuthor)

	var slugs []string
	for i := 0; i < 3; i++ {
		p := &domain.Post{
			ID:       uuid.NewString(),
			Title:    "Hello, World!",
			Content:  "body",
			Status:   domain.StatusDraft,
			Scope:    domain.OrgScope(),
			AuthorID: author.ID,
		}
		require.NoError(t, s.CreatePost(ctx, p, "hello-world"))
		slugs = append(slugs, p.Slug)
	}
	require.Equal(t, []string{"hello-world", "hello-world-1", "hello-world-2"}, slugs)
}

func TestCreatePost_RecordsVersionOne(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "author@example.com", domain.RoleAuthor)
	p := seedPost(t, s, author, "First", domain.OrgScope())

	versions, err := s.ListVersions(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	require.Equal(t, 1, versions[0].Version)
	require.Equal(t, "First", versions[0].Title)
	require.Equal(t, p.Content, versions[0].Content)
}

func TestUpdatePost_VersionNumbersAreConsecutive(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "author@example.com", domain.RoleAuthor)
	p := seedPost(t, s, author, "First", domain.OrgScope())

	p.Content = "second body"
	v, err := s.UpdatePost(ctx, p, true)
	require.NoError(t, err)
	require.Equal(t, 2, v)

	p.Title = "Renamed"
	v, err = s.UpdatePost(ctx, p, true)
	require.NoError(t, err)
	require.Equal(t, 3, v)

	// A metadata-only write must not grow the ledger.
	v, err = s.UpdatePost(ctx, p, false)
	require.NoError(t, err)
	require.Equal(t, 0, v)

	versions, err := s.ListVersions(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, want := range []int{3, 2, 1} {
		require.Equal(t, want, versions[i].Version)
	}
}

func TestListVersions_Idempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "author@example.com", domain.RoleAuthor)
	p := seedPost(t, s, author, "First", domain.OrgScope())
	p.Content = "v2"
	_, err := s.UpdatePost(ctx, p, true)
	require.NoError(t, err)

	a, err := s.ListVersions(ctx, p.ID)
	require.NoError(t, err)
	b, err := s.ListVersions(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestUpdatePost_MissingRow(t *testing.T) {
	s := testStore(t)
	p := &domain.Post{ID: uuid.NewString(), Title: "x", Content: "y", Status: domain.StatusDraft, Scope: domain.OrgScope(), AuthorID: "nobody"}
	_, err := s.UpdatePost(context.Background(), p, false)
	require.Error(t, err)
}

func TestDeletePost_CascadesOwnedRows(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "author@example.com", domain.RoleAuthor)
	reader := seedUser(t, s, "reader@example.com", domain.RoleReader)

	p := seedPost(t, s, author, "Doomed", domain.PrivateScope(reader.ID))
	p.Content = "v2"
	_, err := s.UpdatePost(ctx, p, true)
	require.NoError(t, err)
	require.NoError(t, s.RecordView(ctx, p.ID, reader.ID, "127.0.0.1", "test"))

	affected, err := s.DeletePost(ctx, p.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	versions, err := s.ListVersions(ctx, p.ID)
	require.NoError(t, err)
	require.Empty(t, versions)

	views, err := s.CountViews(ctx, p.ID)
	require.NoError(t, err)
	require.Zero(t, views)

	_, err = s.GetPost(ctx, p.ID)
	require.Error(t, err)
}

func TestTagsAndInvitees_DeclarativeReplace(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "author@example.com", domain.RoleAuthor)
	bob := seedUser(t, s, "bob@example.com", domain.RoleReader)
	carol := seedUser(t, s, "carol@example.com", domain.RoleReader)

	p := seedPost(t, s, author, "Tagged", domain.PrivateScope(bob.ID))
	p.Tags = []string{"go", "infra"}
	_, err := s.UpdatePost(ctx, p, false)
	require.NoError(t, err)

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"go", "infra"}, got.Tags)
	require.Equal(t, []string{bob.ID}, got.Scope.Invitees)

	// Replace both sets entirely.
	p.Tags = []string{"design"}
	p.Scope.Invitees = []string{carol.ID}
	_, err = s.UpdatePost(ctx, p, false)
	require.NoError(t, err)

	got, err = s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"design"}, got.Tags)
	require.Equal(t, []string{carol.ID}, got.Scope.Invitees)
}

func TestListPosts_MatchesPerRowVisibility(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	admin := seedUser(t, s, "admin@example.com", domain.RoleAdmin)
	author := seedUser(t, s, "author@example.com", domain.RoleAuthor)
	member := seedUser(t, s, "member@example.com", domain.RoleReader)
	outsider := seedUser(t, s, "outsider@example.com", domain.RoleReader)
	invitee := seedUser(t, s, "invitee@example.com", domain.RoleReader)

	space := &domain.Space{ID: uuid.NewString(), Key: "eng", Name: "Engineering"}
	require.NoError(t, s.CreateSpace(ctx, space))
	require.NoError(t, s.AddMember(ctx, space.ID, member.ID, "MEMBER"))

	orgPost := seedPost(t, s, author, "Org post", domain.OrgScope())
	spacePost := seedPost(t, s, author, "Space post", domain.SpaceScope(space.ID))
	privatePost := seedPost(t, s, author, "Private post", domain.PrivateScope(invitee.ID))

	ids := func(posts []*domain.Post) map[string]bool {
		got := map[string]bool{}
		for _, p := range posts {
			got[p.ID] = true
		}
		return got
	}

	list := func(u *domain.User) map[string]bool {
		posts, total, err := s.ListPosts(ctx, u, ListFilter{Status: domain.StatusPublished, Limit: 50})
		require.NoError(t, err)
		require.Len(t, posts, total)
		return ids(posts)
	}

	require.Equal(t, map[string]bool{orgPost.ID: true, spacePost.ID: true, privatePost.ID: true}, list(admin))
	require.Equal(t, map[string]bool{orgPost.ID: true, privatePost.ID: true}, list(author))
	require.Equal(t, map[string]bool{orgPost.ID: true, spacePost.ID: true}, list(member))
	require.Equal(t, map[string]bool{orgPost.ID: true}, list(outsider))
	require.Equal(t, map[string]bool{orgPost.ID: true, privatePost.ID: true}, list(invitee))
}

func TestListPosts_Filters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "author@example.com", domain.RoleAuthor)
	other := seedUser(t, s, "other@example.com", domain.RoleAuthor)

	p1 := seedPost(t, s, author, "Kubernetes notes", domain.OrgScope())
	p1.Tags = []string{"infra"}
	_, err := s.UpdatePost(ctx, p1, false)
	require.NoError(t, err)
	seedPost(t, s, other, "Cooking tips", domain.OrgScope())

	posts, total, err := s.ListPosts(ctx, author, ListFilter{Status: domain.StatusPublished, Search: "kubernetes", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, p1.ID, posts[0].ID)

	posts, total, err = s.ListPosts(ctx, author, ListFilter{Status: domain.StatusPublished, Tag: "infra", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, p1.ID, posts[0].ID)

	posts, total, err = s.ListPosts(ctx, author, ListFilter{Status: domain.StatusPublished, AuthorID: other.ID, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "Cooking tips", posts[0].Title)

	_, total, err = s.ListPosts(ctx, author, ListFilter{Status: domain.StatusDraft, Limit: 10})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestSpaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "u@example.com", domain.RoleReader)

	sp := &domain.Space{ID: uuid.NewString(), Key: "design", Name: "Design", Description: "d"}
	require.NoError(t, s.CreateSpace(ctx, sp))

	ok, err := s.IsMember(ctx, sp.ID, u.ID)
	require.NoError(t, err)
	require.False(t, ok)

	role, err := s.MemberRole(ctx, sp.ID, u.ID)
	require.NoError(t, err)
	require.Empty(t, role)

	require.NoError(t, s.AddMember(ctx, sp.ID, u.ID, "MEMBER"))
	ok, err = s.IsMember(ctx, sp.ID, u.ID)
	require.NoError(t, err)
	require.True(t, ok)

	role, err = s.MemberRole(ctx, sp.ID, u.ID)
	require.NoError(t, err)
	require.Equal(t, "MEMBER", role)

	// Upsert re-roles instead of failing.
	require.NoError(t, s.AddMember(ctx, sp.ID, u.ID, "OWNER"))

	role, err = s.MemberRole(ctx, sp.ID, u.ID)
	require.NoError(t, err)
	require.Equal(t, "OWNER", role)

	spaces, err := s.ListSpaces(ctx)
	require.NoError(t, err)
	require.Len(t, spaces, 1)
	require.Equal(t, 1, spaces[0].MemberCount)
}

func TestUserIDsByEmail(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	a := seedUser(t, s, "a@example.com", domain.RoleReader)

	ids, err := s.UserIDsByEmail(ctx, []string{"a@example.com", "ghost@example.com"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a@example.com": a.ID}, ids)
}
