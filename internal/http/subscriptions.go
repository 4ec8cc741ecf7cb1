package http

import (
	"net/http"

	echo "github.com/labstack/echo/v4"

	"github.com/nkazemy/subman/internal/apperr"
	"github.com/nkazemy/subman/internal/http/middleware"
	"github.com/nkazemy/subman/internal/model"
	"github.com/nkazemy/subman/internal/service/subscription"
)

type subscribeReq struct {
	CustomerID     string                 `json:"customer_id"`
	ProductID      string                 `json:"product_id"`
	ExpirationDate string                 `json:"expiration_date"`
	Customization  model.CustomizationMap `json:"customization"`
}

func subscribeHandler(subSvc *subscription.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req subscribeReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		if req.CustomerID == "" || req.ProductID == "" || req.ExpirationDate == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "customer_id, product_id, and expiration_date are required"})
		}

		custID, _ := middleware.CustomerIDFromCtx(c)
		if req.CustomerID != custID {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "you can only subscribe on behalf of yourself"})
		}

		id, err := subSvc.Subscribe(c.Request().Context(),
			req.CustomerID, req.ProductID, req.ExpirationDate, req.Customization)
		if err != nil {
			return errorJSON(c, err)
		}

		return c.JSON(http.StatusCreated, map[string]string{
			"message":         "subscription created successfully",
			"subscription_id": id,
		})
	}
}

// requireOwned resolves the path subscription and enforces that it belongs
// to the authenticated customer. Ownership is a boundary concern; the
// ledger itself never sees the caller's identity.
func requireOwned(c echo.Context, subSvc *subscription.Service) (string, error) {
	id := c.Param("id")

	sub, err := subSvc.GetByID(c.Request().Context(), id)
	if err != nil {
		return "", err
	}
	if sub == nil {
		return "", apperr.ErrSubscriptionNotFound
	}

	custID, _ := middleware.CustomerIDFromCtx(c)
	if sub.CustomerID != custID {
		return "", apperr.ErrNotOwner
	}
	return id, nil
}

func subscriptionStatusHandler(subSvc *subscription.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := requireOwned(c, subSvc)
		if err != nil {
			return errorJSON(c, err)
		}

		status, err := subSvc.Status(c.Request().Context(), id)
		if err != nil {
			return errorJSON(c, err)
		}

		return c.JSON(http.StatusOK, map[string]string{
			"subscription_id": id,
			"status":          status.String(),
		})
	}
}

func subscriptionSettingsHandler(subSvc *subscription.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := requireOwned(c, subSvc)
		if err != nil {
			return errorJSON(c, err)
		}

		settings, err := subSvc.Settings(c.Request().Context(), id)
		if err != nil {
			return errorJSON(c, err)
		}

		return c.JSON(http.StatusOK, map[string]any{
			"subscription_id": id,
			"settings":        settings,
		})
	}
}

type editSettingsReq struct {
	Settings model.CustomizationMap `json:"settings"`
}

func editSubscriptionSettingsHandler(subSvc *subscription.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := requireOwned(c, subSvc)
		if err != nil {
			return errorJSON(c, err)
		}

		var req editSettingsReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		if req.Settings == nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "new settings are required"})
		}

		res, err := subSvc.EditSettings(c.Request().Context(), id, req.Settings)
		if err != nil {
			return errorJSON(c, err)
		}

		if !res.Updated {
			return c.JSON(http.StatusOK, map[string]any{"message": res.Notice, "updated": false})
		}
		return c.JSON(http.StatusOK, map[string]any{"message": "subscription settings updated successfully", "updated": true})
	}
}

type extendReq struct {
	NewExpirationDate string `json:"new_expiration_date"`
}

func extendSubscriptionHandler(subSvc *subscription.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := requireOwned(c, subSvc)
		if err != nil {
			return errorJSON(c, err)
		}

		var req extendReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		if req.NewExpirationDate == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "new expiration date is required"})
		}

		res, err := subSvc.Extend(c.Request().Context(), id, req.NewExpirationDate)
		if err != nil {
			return errorJSON(c, err)
		}

		if !res.Updated {
			return c.JSON(http.StatusOK, map[string]any{"message": res.Notice, "updated": false})
		}
		return c.JSON(http.StatusOK, map[string]any{"message": "subscription extended successfully", "updated": true})
	}
}
