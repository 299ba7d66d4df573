package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"pressroom/domain"
	"pressroom/service"
)

type postResponse struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt,omitempty"`
	Content       string     `json:"content"`
	HTML          string     `json:"html"`
	FeaturedImage string     `json:"featuredImage,omitempty"`
	Status        string     `json:"status"`
	Visibility    string     `json:"visibility"`
	SpaceID       string     `json:"spaceId,omitempty"`
	AuthorID      string     `json:"authorId"`
	Invitees      []string   `json:"invitees,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
}

func toPostResponse(p *domain.Post) postResponse {
	return postResponse{
		ID:            p.ID,
		Slug:          p.Slug,
		Title:         sanitizerStrict.Sanitize(p.Title),
		Excerpt:       p.Excerpt,
		Content:       p.Content,
		HTML:          safeHTML(p.Content),
		FeaturedImage: p.FeaturedImage,
		Status:        string(p.Status),
		Visibility:    string(p.Scope.Visibility),
		SpaceID:       p.Scope.SpaceID,
		AuthorID:      p.AuthorID,
		Invitees:      p.Scope.Invitees,
		Tags:          p.Tags,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		PublishedAt:   p.PublishedAt,
	}
}

type createPostRequest struct {
	Title         string   `json:"title"`
	Excerpt       string   `json:"excerpt"`
	Content       string   `json:"content"`
	Visibility    string   `json:"visibility"`
	SpaceID       string   `json:"spaceId"`
	FeaturedImage string   `json:"featuredImage"`
	Tags          []string `json:"tags"`
	InviteeEmails []string `json:"inviteeEmails"`
	Publish       bool     `json:"publish"`
}

func (h *Handler) CreatePost(c echo.Context) error {
	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	post, err := h.Service.CreatePost(c.Request().Context(), h.requester(c), service.CreatePostInput{
		Title:         req.Title,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		Visibility:    domain.Visibility(req.Visibility),
		SpaceID:       req.SpaceID,
		FeaturedImage: req.FeaturedImage,
		Tags:          req.Tags,
		InviteeEmails: req.InviteeEmails,
		Publish:       req.Publish,
	})
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Post created successfully",
		"post":    toPostResponse(post),
	})
}

func (h *Handler) GetPosts(c echo.Context) error {
	page, _ := intQuery(c, "page")
	limit, _ := intQuery(c, "limit")

	posts, total, err := h.Service.ListPosts(c.Request().Context(), h.requester(c), service.ListFilter{
		Status:     domain.Status(c.QueryParam("status")),
		Visibility: domain.Visibility(c.QueryParam("visibility")),
		SpaceID:    c.QueryParam("spaceId"),
		AuthorID:   c.QueryParam("authorId"),
		Tag:        c.QueryParam("tag"),
		Search:     c.QueryParam("search"),
		SortBy:     c.QueryParam("sortBy"),
		SortOrder:  c.QueryParam("sortOrder"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return httpError(c, err)
	}

	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	if limit <= 0 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	return c.JSON(http.StatusOK, map[string]any{
		"posts": out,
		"pagination": map[string]int{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": (total + limit - 1) / limit,
		},
	})
}

func (h *Handler) GetPost(c echo.Context) error {
	post, err := h.Service.GetPost(c.Request().Context(), h.requester(c), c.Param("id"), service.ViewMeta{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"post": toPostResponse(post)})
}

type updatePostRequest struct {
	Title         *string   `json:"title"`
	Excerpt       *string   `json:"excerpt"`
	Content       *string   `json:"content"`
	Visibility    *string   `json:"visibility"`
	SpaceID       *string   `json:"spaceId"`
	FeaturedImage *string   `json:"featuredImage"`
	Tags          *[]string `json:"tags"`
	InviteeEmails *[]string `json:"inviteeEmails"`
}

func (h *Handler) UpdatePost(c echo.Context) error {
	var req updatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	in := service.UpdatePostInput{
		Title:         req.Title,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		SpaceID:       req.SpaceID,
		FeaturedImage: req.FeaturedImage,
		Tags:          req.Tags,
		InviteeEmails: req.InviteeEmails,
	}
	if req.Visibility != nil {
		v := domain.Visibility(*req.Visibility)
		in.Visibility = &v
	}

	post, version, err := h.Service.UpdatePost(c.Request().Context(), h.requester(c), c.Param("id"), in)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Post updated successfully",
		"post":    toPostResponse(post),
		"version": version,
	})
}

type publishRequest struct {
	Action string `json:"action"`
}

func (h *Handler) PublishPost(c echo.Context) error {
	var req publishRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	post, err := h.Service.SetPublishState(c.Request().Context(), h.requester(c), c.Param("id"), req.Action)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Post " + req.Action + "ed successfully",
		"post":    toPostResponse(post),
	})
}

func (h *Handler) DeletePost(c echo.Context) error {
	if err := h.Service.DeletePost(c.Request().Context(), h.requester(c), c.Param("id")); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

type versionResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) GetPostVersions(c echo.Context) error {
	versions, err := h.Service.ListVersions(c.Request().Context(), h.requester(c), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	out := make([]versionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, versionResponse{
			ID: v.ID, PostID: v.PostID, Title: v.Title, Content: v.Content,
			Version: v.Version, CreatedAt: v.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"versions": out})
}

func intQuery(c echo.Context, name string) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
