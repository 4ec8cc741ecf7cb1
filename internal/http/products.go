package http

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"

	"github.com/nkazemy/subman/internal/metrics"
	"github.com/nkazemy/subman/internal/service/catalog"
)

type addProductReq struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Customizable bool    `json:"customizable"`
	Price        float64 `json:"price"`
	Periodicity  string  `json:"periodicity"`
}

func addProductHandler(catalogSvc *catalog.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req addProductReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Description = strings.TrimSpace(req.Description)

		if req.Name == "" || req.Description == "" || req.Price == 0 || req.Periodicity == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "name, description, price, and periodicity are required"})
		}

		id, err := catalogSvc.AddProduct(c.Request().Context(),
			req.Name, req.Description, req.Customizable, req.Price, req.Periodicity)
		if err != nil {
			return errorJSON(c, err)
		}

		metrics.ProductsCreated.Inc()
		return c.JSON(http.StatusCreated, map[string]string{
			"message":    "product added successfully",
			"product_id": id,
		})
	}
}
