package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"pressroom/access"
	"pressroom/domain"
	"pressroom/slug"
	"pressroom/store"
)

const (
	maxTitleLen   = 200
	maxExcerptLen = 500
)

type CreatePostInput struct {
	Title         string
	Excerpt       string
	Content       string
	Visibility    domain.Visibility
	SpaceID       string
	FeaturedImage string
	Tags          []string
	InviteeEmails []string
	Publish       bool
}

type UpdatePostInput struct {
	Title         *string
	Excerpt       *string
	Content       *string
	Visibility    *domain.Visibility
	SpaceID       *string
	FeaturedImage *string
	Tags          *[]string
	InviteeEmails *[]string
}

// ListFilter narrows ListPosts. Status defaults to PUBLISHED.
type ListFilter struct {
	Status     domain.Status
	Visibility domain.Visibility
	SpaceID    string
	AuthorID   string
	Tag        string
	Search     string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

// ViewMeta carries request attribution for the view record emitted by
// a successful single read.
type ViewMeta struct {
	IP        string
	UserAgent string
}

// CreatePost creates a draft (or immediately published) post, assigns
// its slug and records version 1. Requires AUTHOR or better.
func (s *Service) CreatePost(ctx context.Context, requester *domain.User, in CreatePostInput) (*domain.Post, error) {
	if in.Title == "" || len(in.Title) > maxTitleLen {
		return nil, domain.Invalid("title", fmt.Sprintf("required, at most %d characters", maxTitleLen))
	}
	if in.Content == "" {
		return nil, domain.Invalid("content", "required")
	}
	if len(in.Excerpt) > maxExcerptLen {
		return nil, domain.Invalid("excerpt", fmt.Sprintf("at most %d characters", maxExcerptLen))
	}
	if in.Visibility == "" {
		in.Visibility = domain.VisibilityOrg
	}

	if err := requireActive(requester); err != nil {
		return nil, err
	}
	if !access.CanCreate(requester) {
		return nil, domain.ErrForbidden
	}

	scope, err := s.buildScope(ctx, in.Visibility, in.SpaceID, in.InviteeEmails)
	if err != nil {
		return nil, err
	}

	p := &domain.Post{
		ID:            uuid.NewString(),
		Title:         in.Title,
		Excerpt:       in.Excerpt,
		Content:       in.Content,
		FeaturedImage: in.FeaturedImage,
		Status:        domain.StatusDraft,
		Scope:         scope,
		AuthorID:      requester.ID,
		Tags:          in.Tags,
	}
	if in.Publish {
		p.Status = domain.StatusPublished
		t := nowUTC()
		p.PublishedAt = &t
	}

	if err := s.store.CreatePost(ctx, p, slug.Make(in.Title)); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// GetPost returns a post the requester may read and records a view.
// Absent and unreadable posts are both reported as not found.
func (s *Service) GetPost(ctx context.Context, requester *domain.User, id string, meta ViewMeta) (*domain.Post, error) {
	p, err := s.readGated(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	// View recording is best-effort attribution; a failed insert must
	// not turn a successful read into an error.
	_ = s.store.RecordView(ctx, p.ID, requester.ID, meta.IP, meta.UserAgent)
	return p, nil
}

// ListPosts returns the page of posts visible to the requester and the
// total count under the same predicate.
func (s *Service) ListPosts(ctx context.Context, requester *domain.User, f ListFilter) ([]*domain.Post, int, error) {
	if f.Status == "" {
		f.Status = domain.StatusPublished
	}
	if !f.Status.Valid() {
		return nil, 0, domain.Invalid("status", "must be DRAFT, PUBLISHED or ARCHIVED")
	}
	if f.Visibility != "" && !f.Visibility.Valid() {
		return nil, 0, domain.Invalid("visibility", "must be ORG, SPACE or PRIVATE")
	}
	if err := requireActive(requester); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	posts, total, err := s.store.ListPosts(ctx, requester, store.ListFilter{
		Status:     f.Status,
		Visibility: f.Visibility,
		SpaceID:    f.SpaceID,
		AuthorID:   f.AuthorID,
		Tag:        f.Tag,
		Search:     f.Search,
		SortBy:     f.SortBy,
		SortOrder:  f.SortOrder,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

// UpdatePost applies a partial update. A new version is recorded, in
// the same transaction as the post write, iff title or content is part
// of the payload; the recorded version number is returned (0 when no
// version was recorded). Tag and invitee sets are replaced, not merged.
func (s *Service) UpdatePost(ctx context.Context, requester *domain.User, id string, in UpdatePostInput) (*domain.Post, int, error) {
	if in.Title != nil && (*in.Title == "" || len(*in.Title) > maxTitleLen) {
		return nil, 0, domain.Invalid("title", fmt.Sprintf("required, at most %d characters", maxTitleLen))
	}
	if in.Content != nil && *in.Content == "" {
		return nil, 0, domain.Invalid("content", "must not be empty")
	}
	if in.Excerpt != nil && len(*in.Excerpt) > maxExcerptLen {
		return nil, 0, domain.Invalid("excerpt", fmt.Sprintf("at most %d characters", maxExcerptLen))
	}
	if in.Visibility != nil && !in.Visibility.Valid() {
		return nil, 0, domain.Invalid("visibility", "must be ORG, SPACE or PRIVATE")
	}

	p, err := s.readGated(ctx, requester, id)
	if err != nil {
		return nil, 0, err
	}
	if !access.CanWrite(requester, p) {
		return nil, 0, domain.ErrForbidden
	}

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Excerpt != nil {
		p.Excerpt = *in.Excerpt
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.FeaturedImage != nil {
		p.FeaturedImage = *in.FeaturedImage
	}
	if in.Tags != nil {
		p.Tags = *in.Tags
	}

	if in.Visibility != nil || in.SpaceID != nil || in.InviteeEmails != nil {
		visibility := p.Scope.Visibility
		if in.Visibility != nil {
			visibility = *in.Visibility
		}
		spaceID := p.Scope.SpaceID
		if in.SpaceID != nil {
			spaceID = *in.SpaceID
		}
		if visibility != domain.VisibilitySpace {
			spaceID = ""
		}
		invitees := p.Scope.Invitees
		if in.InviteeEmails != nil {
			scope, err := s.buildScope(ctx, visibility, spaceID, *in.InviteeEmails)
			if err != nil {
				return nil, 0, err
			}
			p.Scope = scope
		} else {
			if visibility != domain.VisibilityPrivate {
				invitees = nil
			}
			p.Scope = domain.Scope{Visibility: visibility, SpaceID: spaceID, Invitees: invitees}
			if err := p.Scope.Validate(); err != nil {
				return nil, 0, err
			}
			if visibility == domain.VisibilitySpace {
				if err := s.checkSpace(ctx, spaceID); err != nil {
					return nil, 0, err
				}
			}
		}
	}

	recordVersion := in.Title != nil || in.Content != nil
	version, err := s.store.UpdatePost(ctx, p, recordVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("update post: %w", err)
	}
	return p, version, nil
}

// SetPublishState moves a post between DRAFT and PUBLISHED. The action
// is validated before any state is read or changed.
func (s *Service) SetPublishState(ctx context.Context, requester *domain.User, id, action string) (*domain.Post, error) {
	if action != "publish" && action != "unpublish" {
		return nil, domain.Invalid("action", `must be "publish" or "unpublish"`)
	}

	p, err := s.readGated(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	if !access.CanWrite(requester, p) {
		return nil, domain.ErrForbidden
	}

	if action == "publish" {
		p.Status = domain.StatusPublished
		t := nowUTC()
		p.PublishedAt = &t
	} else {
		p.Status = domain.StatusDraft
		p.PublishedAt = nil
	}

	if _, err := s.store.UpdatePost(ctx, p, false); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set publish state: %w", err)
	}
	return p, nil
}

// DeletePost hard-deletes a post; its versions, invitees, tag links
// and views go with it.
func (s *Service) DeletePost(ctx context.Context, requester *domain.User, id string) error {
	p, err := s.readGated(ctx, requester, id)
	if err != nil {
		return err
	}
	if !access.CanWrite(requester, p) {
		return domain.ErrForbidden
	}
	affected, err := s.store.DeletePost(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListVersions returns a post's history, newest first, gated exactly
// like GetPost.
func (s *Service) ListVersions(ctx context.Context, requester *domain.User, postID string) ([]*domain.PostVersion, error) {
	p, err := s.readGated(ctx, requester, postID)
	if err != nil {
		return nil, err
	}
	versions, err := s.store.ListVersions(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

// readGated loads a post and applies the read rules. Absent posts and
// posts the requester may not read both come back as ErrNotFound so
// the read path never confirms existence; the SPACE integrity fault is
// surfaced distinctly.
func (s *Service) readGated(ctx context.Context, requester *domain.User, id string) (*domain.Post, error) {
	if err := requireActive(requester); err != nil {
		return nil, err
	}
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	isMember := false
	if p.Scope.Visibility == domain.VisibilitySpace && p.Scope.SpaceID != "" {
		isMember, err = s.store.IsMember(ctx, p.Scope.SpaceID, requester.ID)
		if err != nil {
			return nil, fmt.Errorf("membership check: %w", err)
		}
	}

	switch access.CanRead(requester, p, isMember) {
	case access.Allow:
		return p, nil
	case access.DenySpaceUnbound:
		return nil, domain.ErrSpaceUnbound
	default:
		return nil, domain.ErrNotFound
	}
}

// buildScope validates a visibility triple and resolves invitee emails
// to user IDs. Unknown emails and unknown spaces are validation
// errors, reported before anything is written.
func (s *Service) buildScope(ctx context.Context, visibility domain.Visibility, spaceID string, inviteeEmails []string) (domain.Scope, error) {
	scope := domain.Scope{Visibility: visibility, SpaceID: spaceID}

	if visibility == domain.VisibilityPrivate && len(inviteeEmails) > 0 {
		ids, err := s.store.UserIDsByEmail(ctx, inviteeEmails)
		if err != nil {
			return domain.Scope{}, fmt.Errorf("resolve invitees: %w", err)
		}
		for _, email := range inviteeEmails {
			id, ok := ids[email]
			if !ok {
				return domain.Scope{}, domain.Invalid("inviteeEmails", "no user with email "+email)
			}
			scope.Invitees = append(scope.Invitees, id)
		}
		sort.Strings(scope.Invitees)
	} else if len(inviteeEmails) > 0 {
		return domain.Scope{}, domain.Invalid("invitees", "only allowed for PRIVATE visibility")
	}

	if err := scope.Validate(); err != nil {
		return domain.Scope{}, err
	}
	if visibility == domain.VisibilitySpace {
		if err := s.checkSpace(ctx, spaceID); err != nil {
			return domain.Scope{}, err
		}
	}
	return scope, nil
}

func (s *Service) checkSpace(ctx context.Context, spaceID string) error {
	if _, err := s.store.GetSpace(ctx, spaceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Invalid("spaceId", "unknown space")
		}
		return fmt.Errorf("check space: %w", err)
	}
	return nil
}
