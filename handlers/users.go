package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/middleware"
	"github.com/localmart/localmart-backend-go/models"
	"github.com/localmart/localmart-backend-go/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) Register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
		Country  string `json:"country"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Validate email format
	if !isValidEmail(req.Email) {
		return errorJSON(c, http.StatusBadRequest, "Invalid email format")
	}
	if len(req.Password) < 8 {
		return errorJSON(c, http.StatusBadRequest, "Password must be at least 8 characters")
	}
	if req.Role != "seller" {
		req.Role = "buyer"
	}

	ctx := c.Request().Context()
	_, err := docstore.FindFirst(ctx, h.Store, docstore.Query{
		Collection: docstore.Users,
		Filters:    []docstore.Filter{docstore.Where("email", req.Email)},
	})
	if err == nil {
		return errorJSON(c, http.StatusConflict, "Email already registered")
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return h.fail(c, err, "Failed to create user")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to process password")
	}
	now := time.Now().UTC()
	user := models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		Password:  string(hashedPassword),
		Role:      req.Role,
		Country:   strings.ToUpper(strings.TrimSpace(req.Country)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	user.ID, err = h.Store.Add(ctx, docstore.Users, user.Document())
	if err != nil {
		return h.fail(c, err, "Failed to create user")
	}

	token, err := utils.GenerateJWT(h.JWTSecret, user.ID)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"user": user, "token": token})
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func (h *Handler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}

	doc, err := docstore.FindFirst(c.Request().Context(), h.Store, docstore.Query{
		Collection: docstore.Users,
		Filters:    []docstore.Filter{docstore.Where("email", strings.ToLower(strings.TrimSpace(req.Email)))},
	})
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, "Invalid email or password")
	}
	user := models.UserFromDocument(doc)
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return errorJSON(c, http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := utils.GenerateJWT(h.JWTSecret, user.ID)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user, "token": token})
}

// GetProfile returns the authenticated user.
func (h *Handler) GetProfile(c echo.Context) error {
	doc, err := h.Store.Get(c.Request().Context(), docstore.Users, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "User not found")
		}
		return h.fail(c, err, "Failed to load user")
	}
	return c.JSON(http.StatusOK, models.UserFromDocument(doc))
}

// SetDeliveryLocation saves the location used for delivery orders.
func (h *Handler) SetDeliveryLocation(c echo.Context) error {
	var loc models.Location
	if err := c.Bind(&loc); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid location")
	}
	loc.Address = strings.TrimSpace(loc.Address)
	if loc.Address == "" {
		return errorJSON(c, http.StatusBadRequest, "Address is required")
	}

	err := h.Store.Update(c.Request().Context(), docstore.Users, middleware.UserID(c), docstore.Document{
		"deliveryLocation": loc.Document(),
		"updatedAt":        time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "User not found")
		}
		return h.fail(c, err, "Failed to save location")
	}
	return c.JSON(http.StatusOK, loc)
}
