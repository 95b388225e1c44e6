package api

import (
	"errors"
	"log/slog"
	"regexp"

	"github.com/SnehashisOrg/webapp/internal/apperr"
	"github.com/SnehashisOrg/webapp/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var alphaSpaceRegex = regexp.MustCompile(`^[A-Za-z]+( [A-Za-z]+)*$`)

type UserHandler struct {
	userService         service.UserService
	verificationService service.VerificationService
	validate            *validator.Validate
	logger              *slog.Logger
}

func NewUserHandler(userService service.UserService, verificationService service.VerificationService, logger *slog.Logger) *UserHandler {
	v := validator.New()
	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpaceRegex.MatchString(fl.Field().String())
	})

	return &UserHandler{
		userService:         userService,
		verificationService: verificationService,
		validate:            v,
		logger:              logger,
	}
}

type RegisterUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,alphaspace"`
	LastName  string `json:"last_name" validate:"required,alphaspace"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,alphaspace"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,alphaspace"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	if hasQueryParams(c) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query parameters are not allowed"})
	}

	var req RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	user, err := h.userService.Register(c.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Account already exists"})
		}
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	// the account starts unverified; a verification token always goes out
	if _, err := h.verificationService.Issue(c.Context(), user); err != nil {
		h.logger.Error("verification token issue failed", "email", user.Email, "error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *UserHandler) GetSelf(c *fiber.Ctx) error {
	if hasQueryParams(c) || hasBody(c) {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	principal := c.Locals(localPrincipal).(string)

	user, err := h.userService.GetByEmail(c.Context(), principal)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

func (h *UserHandler) UpdateSelf(c *fiber.Ctx) error {
	if hasQueryParams(c) {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	principal := c.Locals(localPrincipal).(string)

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	// email is immutable through this path and must restate the principal
	if req.Email == nil || *req.Email != principal {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Updates to email are not allowed"})
	}

	err := h.userService.UpdateProfile(c.Context(), principal, service.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) Verify(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing verification token"})
	}

	if err := h.verificationService.Consume(c.Context(), token); err != nil {
		switch {
		case errors.Is(err, apperr.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or expired verification token"})
		case errors.Is(err, apperr.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		default:
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Email verified successfully"})
}

// Health answers GET only, refuses any payload or query string, and reports
// whether the backing store is reachable.
func (h *UserHandler) Health(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodGet {
		return c.SendStatus(fiber.StatusMethodNotAllowed)
	}
	if hasQueryParams(c) || hasBody(c) {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := h.userService.CheckStore(c.Context()); err != nil {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendStatus(fiber.StatusOK)
}

func hasQueryParams(c *fiber.Ctx) bool {
	return len(c.Request().URI().QueryString()) > 0
}

func hasBody(c *fiber.Ctx) bool {
	return len(c.Body()) > 0 || c.Get(fiber.HeaderContentLength) != ""
}
