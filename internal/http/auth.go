package http

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"

	"github.com/nkazemy/subman/internal/metrics"
	"github.com/nkazemy/subman/internal/service/auth"
)

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func registerHandler(authSvc *auth.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req registerReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		if req.Name == "" || req.Email == "" || req.Password == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "name, email, and password are required"})
		}

		id, err := authSvc.Register(c.Request().Context(), req.Name, req.Email, req.Password)
		if err != nil {
			return errorJSON(c, err)
		}

		metrics.CustomersRegistered.Inc()
		return c.JSON(http.StatusCreated, map[string]string{
			"message":     "customer registered successfully",
			"customer_id": id,
		})
	}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func loginHandler(authSvc *auth.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" || req.Password == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		}

		token, err := authSvc.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			return errorJSON(c, err)
		}

		return c.JSON(http.StatusOK, map[string]string{
			"message":      "login successful",
			"access_token": token,
		})
	}
}
