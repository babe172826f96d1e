package forum

import (
	"errors"

	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type ForumHandler struct {
	service *ForumService
	deps    *apps.Deps
}

func NewForumHandler(service *ForumService, deps *apps.Deps) *ForumHandler {
	return &ForumHandler{service: service, deps: deps}
}

func (h *ForumHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return apps.WriteError(c, err, "Failed to fetch categories")
	}
	return c.JSON(CategoryListResponse{Categories: categories})
}

func (h *ForumHandler) CategoryPosts(c *fiber.Ctx) error {
	category, posts, err := h.service.PostsByCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrUnknownCategory) {
			return dto.Fail(c, fiber.StatusNotFound, category.Name)
		}
		return apps.WriteError(c, err, "Failed to fetch posts")
	}
	return c.JSON(CategoryPostsResponse{Category: category, Posts: posts})
}

func (h *ForumHandler) GetPost(c *fiber.Ctx) error {
	id, err := apps.ParamID(c)
	if err != nil {
		return apps.WriteError(c, err, "Failed to fetch post")
	}
	detail, err := h.service.GetPost(c.UserContext(), id)
	if err != nil {
		return apps.WriteError(c, err, "Failed to fetch post")
	}
	return c.JSON(detail)
}

// CreatePost accepts JSON or a multipart form with an optional "photo" file.
func (h *ForumHandler) CreatePost(c *fiber.Ctx) error {
	actor, err := apps.CurrentActor(c, h.deps)
	if err != nil {
		return apps.WriteError(c, err, "Failed to create post")
	}

	var req CreatePostRequest
	var photo *apps.Photo
	if apps.IsMultipart(c) {
		req = CreatePostRequest{
			Title:    c.FormValue("title"),
			Content:  c.FormValue("content"),
			Category: c.FormValue("category"),
		}
		if photo, err = apps.FormPhoto(c, "photo"); err != nil {
			return dto.Fail(c, fiber.StatusBadRequest, "Invalid multipart form")
		}
	} else if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	post, err := h.service.CreatePost(c.UserContext(), actor, req, photo)
	if err != nil {
		return apps.WriteError(c, err, "Failed to create post")
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *ForumHandler) AddComment(c *fiber.Ctx) error {
	actor, err := apps.CurrentActor(c, h.deps)
	if err != nil {
		return apps.WriteError(c, err, "Failed to add comment")
	}
	postID, err := apps.ParamID(c)
	if err != nil {
		return apps.WriteError(c, err, "Failed to add comment")
	}

	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	comment, err := h.service.AddComment(c.UserContext(), actor, postID, req.Content)
	if err != nil {
		return apps.WriteError(c, err, "Failed to add comment")
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *ForumHandler) DeletePost(c *fiber.Ctx) error {
	actor, err := apps.CurrentActor(c, h.deps)
	if err != nil {
		return apps.WriteError(c, err, "Failed to delete post")
	}
	id, err := apps.ParamID(c)
	if err != nil {
		return apps.WriteError(c, err, "Failed to delete post")
	}
	if err := h.service.DeletePost(c.UserContext(), actor, id); err != nil {
		return apps.WriteError(c, err, "Failed to delete post")
	}
	return c.JSON(MessageResponse{Message: "Publication supprimée"})
}

func (h *ForumHandler) DeleteComment(c *fiber.Ctx) error {
	actor, err := apps.CurrentActor(c, h.deps)
	if err != nil {
		return apps.WriteError(c, err, "Failed to delete comment")
	}
	id, err := apps.ParamID(c)
	if err != nil {
		return apps.WriteError(c, err, "Failed to delete comment")
	}
	if err := h.service.DeleteComment(c.UserContext(), actor, id); err != nil {
		return apps.WriteError(c, err, "Failed to delete comment")
	}
	return c.JSON(MessageResponse{Message: "Commentaire supprimé"})
}
