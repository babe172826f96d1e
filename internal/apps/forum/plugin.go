package forum

import (
	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type ForumPlugin struct{}

func New() *ForumPlugin {
	return &ForumPlugin{}
}

func (p *ForumPlugin) ID() string { return "forum" }

func (p *ForumPlugin) Models() []interface{} {
	return []interface{}{
		&Post{},
		&Comment{},
	}
}

func (p *ForumPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewForumHandler(NewForumService(deps), deps)

	router.Get("/forum/categories", handler.Categories)
	router.Get("/forum/categories/:id/posts", handler.CategoryPosts)
	router.Post("/forum/posts", handler.CreatePost)
	router.Get("/forum/posts/:id", handler.GetPost)
	router.Delete("/forum/posts/:id", handler.DeletePost)
	router.Post("/forum/posts/:id/comments", handler.AddComment)
	router.Delete("/forum/comments/:id", handler.DeleteComment)
}
