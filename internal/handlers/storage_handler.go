package handlers

import (
	"errors"
	"net/url"

	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/Bdsolutionconsulting/linkhood/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// StorageHandler serves objects kept by the in-memory store. It is only
// mounted when no S3 endpoint is configured.
type StorageHandler struct {
	store *storage.MemoryStore
}

func NewStorageHandler(store *storage.MemoryStore) *StorageHandler {
	return &StorageHandler{store: store}
}

func (h *StorageHandler) Get(c *fiber.Ctx) error {
	key, err := url.PathUnescape(c.Params("*"))
	if err != nil || key == "" {
		return dto.Fail(c, fiber.StatusNotFound, "Object not found")
	}

	data, contentType, err := h.store.Get(c.Params("bucket"), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return dto.Fail(c, fiber.StatusNotFound, "Object not found")
		}
		return dto.Fail(c, fiber.StatusInternalServerError, "Failed to read object")
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.Send(data)
}
