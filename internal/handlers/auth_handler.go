package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/auth"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/utils"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginBody struct {
	Password string `json:"password"`
}

// POST /api/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginBody
	if err := c.BodyParser(&body); err != nil || body.Password == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "password required")
	}
	token, err := h.svc.SignIn(body.Password)
	if err != nil {
		return utils.JSONError(c, fiber.StatusUnauthorized, "invalid password")
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"token": token})
}
