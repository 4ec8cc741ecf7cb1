package http

import (
	"errors"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v4"

	"github.com/nkazemy/subman/internal/service/revenue"
)

func mrrHandler(revSvc *revenue.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		mrr, err := revSvc.MRR(c.Request().Context())
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]float64{"mrr": mrr})
	}
}

func arrHandler(revSvc *revenue.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		arr, err := revSvc.ARR(c.Request().Context())
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]float64{"arr": arr})
	}
}

func arpuHandler(revSvc *revenue.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		arpu, err := revSvc.ARPU(c.Request().Context())
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]float64{"arpu": arpu})
	}
}

var errBadPeriod = errors.New("bad period")

// parsePeriod reads inclusive calendar dates and widens the end date to
// end-of-day (start of next day minus one second) before the engine sees
// it. start must land strictly before end after widening.
func parsePeriod(startStr, endStr string) (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, errBadPeriod
	}
	end, err = time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, errBadPeriod
	}
	end = end.Add(24*time.Hour - time.Second)

	if !start.Before(end) {
		return time.Time{}, time.Time{}, errBadPeriod
	}
	return start, end, nil
}

func periodFromQuery(c echo.Context) (time.Time, time.Time, bool) {
	startStr := c.QueryParam("start_date")
	endStr := c.QueryParam("end_date")
	if startStr == "" || endStr == "" {
		_ = c.JSON(http.StatusBadRequest, map[string]string{"error": "start_date and end_date are required query parameters"})
		return time.Time{}, time.Time{}, false
	}
	start, end, err := parsePeriod(startStr, endStr)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid period, use YYYY-MM-DD with start_date before end_date"})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func retentionHandler(revSvc *revenue.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		start, end, ok := periodFromQuery(c)
		if !ok {
			return nil
		}
		crr, err := revSvc.RetentionRate(c.Request().Context(), start, end)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]float64{"customer_retention_rate": crr})
	}
}

func churnHandler(revSvc *revenue.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		start, end, ok := periodFromQuery(c)
		if !ok {
			return nil
		}
		churn, err := revSvc.ChurnRate(c.Request().Context(), start, end)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]float64{"churn_rate": churn})
	}
}

func aovHandler(revSvc *revenue.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		aov, err := revSvc.AOV(c.Request().Context())
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]float64{"average_order_value": aov})
	}
}

func rprHandler(revSvc *revenue.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		rpr, err := revSvc.RPR(c.Request().Context())
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]float64{"repeat_purchase_rate": rpr})
	}
}

func purchaseFrequencyHandler(revSvc *revenue.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		pf, err := revSvc.PurchaseFrequency(c.Request().Context())
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]float64{"purchase_frequency": pf})
	}
}
