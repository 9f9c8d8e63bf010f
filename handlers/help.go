package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/localmart/localmart-backend-go/helpcenter"
	"github.com/localmart/localmart-backend-go/middleware"
	"github.com/localmart/localmart-backend-go/utils"
)

func (h *Handler) HelpContent(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Help.Content())
}

func (h *Handler) HelpArticles(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Help.Articles(c.QueryParam("category")))
}

func (h *Handler) HelpArticle(c echo.Context) error {
	article, err := h.Help.Article(c.Param("id"))
	if err != nil {
		return h.fail(c, err, "Failed to load article")
	}
	return c.JSON(http.StatusOK, article)
}

func (h *Handler) HelpSearch(c echo.Context) error {
	results := h.Help.Search(c.QueryParam("q"))
	if results == nil {
		results = []helpcenter.Article{}
	}
	return c.JSON(http.StatusOK, results)
}

// ContactSupport is public. A valid bearer token attaches the request to that user.
func (h *Handler) ContactSupport(c echo.Context) error {
	var req helpcenter.ContactRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}
	req.UserID = ""
	if token := middleware.BearerToken(c); token != "" {
		if claims, err := utils.ValidateJWT(h.JWTSecret, token); err == nil {
			req.UserID = claims.UserID
		}
	}

	res, err := h.Contact.Submit(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err, "Failed to submit request")
	}
	return c.JSON(http.StatusCreated, res)
}
