package server

import (
	"photogram/internal/models"
	"photogram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/register
// @Summary Register a new account
// @Description Create a user account; per-field validation errors are returned under "fields"
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password1=string,password2=string} true "Registration request"
// @Success 201 {object} object{user=models.User,message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password1 string `json:"password1"`
		Password2 string `json:"password2"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Register(c.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password1: req.Password1,
		Password2: req.Password2,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    user,
		"message": "Account created successfully",
	})
}

// Token handles POST /api/token
// @Summary Log in
// @Description Verify credentials and issue the configured credential type
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} service.Credentials
// @Failure 401 {object} models.ErrorResponse
// @Router /token [post]
func (s *Server) Token(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	user, err := s.authService.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		return respondAppError(c, err)
	}

	creds, err := s.authService.IssueCredentials(c.Context(), user)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(creds)
}

// TokenRefresh handles POST /api/token/refresh
// @Summary Refresh an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{refresh=string} true "Refresh token"
// @Success 200 {object} service.Credentials
// @Failure 401 {object} models.ErrorResponse
// @Router /token/refresh [post]
func (s *Server) TokenRefresh(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Refresh token is required"))
	}

	creds, err := s.authService.Refresh(c.Context(), req.Refresh)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(creds)
}

// Logout handles POST /api/logout
// @Summary Log out
// @Description Invalidate the caller's credential where the auth mode supports it
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} object{message=string}
// @Router /logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	userID := s.currentUserID(c)
	if err := s.authService.Logout(c.Context(), userID); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}
