package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/42piotrnycz/new-web-app/internal/repository"
)

type UserHandler struct {
	userRepo repository.UserRepository
}

func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// GetMe returns the authenticated principal's identity record
// GET /api/users/me
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	username, _ := c.Locals("username").(string)

	user, err := h.userRepo.GetByUsername(c.Context(), username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load user",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}
