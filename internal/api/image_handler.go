package api

import (
	"errors"

	"github.com/SnehashisOrg/webapp/internal/apperr"
	"github.com/SnehashisOrg/webapp/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ImageHandler struct {
	userService  service.UserService
	imageService service.ImageService
}

func NewImageHandler(userService service.UserService, imageService service.ImageService) *ImageHandler {
	return &ImageHandler{userService: userService, imageService: imageService}
}

func (h *ImageHandler) Upload(c *fiber.Ctx) error {
	user, err := h.userService.GetByEmail(c.Context(), c.Locals(localPrincipal).(string))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Empty image body"})
	}

	image, err := h.imageService.Upload(c.Context(), user, body, c.Get(fiber.HeaderContentType))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported image type"})
		case errors.Is(err, apperr.ErrConflict):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Profile image already exists"})
		default:
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(image)
}

func (h *ImageHandler) Get(c *fiber.Ctx) error {
	user, err := h.userService.GetByEmail(c.Context(), c.Locals(localPrincipal).(string))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	image, err := h.imageService.Get(c.Context(), user)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No profile image found"})
		}
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.Status(fiber.StatusOK).JSON(image)
}

func (h *ImageHandler) Delete(c *fiber.Ctx) error {
	user, err := h.userService.GetByEmail(c.Context(), c.Locals(localPrincipal).(string))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	if err := h.imageService.Delete(c.Context(), user); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No profile image found"})
		}
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
