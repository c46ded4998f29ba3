package httpapi

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/jma-forecast/internal/forecast"
	"github.com/i474232898/jma-forecast/internal/report"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *forecast.Service, reports *report.Generator) {
	v1 := app.Group("/api/v1")

	v1.Get("/regions", func(c *fiber.Ctx) error {
		regions, err := service.Regions()
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{"regions": regions})
	})

	v1.Get("/regions/:center/prefectures", func(c *fiber.Ctx) error {
		p := codeParam{Code: c.Params("center")}
		if err := validate.Struct(p); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "center must be a 6-digit area code")
		}

		prefectures, err := service.Prefectures(p.Code)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{"center": p.Code, "prefectures": prefectures})
	})

	v1.Get("/prefectures/:office/areas", func(c *fiber.Ctx) error {
		p := codeParam{Code: c.Params("office")}
		if err := validate.Struct(p); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "office must be a 6-digit area code")
		}

		areas, err := service.SubAreas(p.Code)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{"office": p.Code, "areas": areas})
	})

	v1.Get("/prefectures/:office/forecast", func(c *fiber.Ctx) error {
		p := codeParam{Code: c.Params("office")}
		if err := validate.Struct(p); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "office must be a 6-digit area code")
		}

		fc, err := service.FetchPrefecture(c.UserContext(), p.Code)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fc)
	})

	v1.Get("/forecasts/dates", func(c *fiber.Ctx) error {
		idx, err := service.Dates(c.UserContext())
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(idx)
	})

	v1.Get("/forecasts", func(c *fiber.Ctx) error {
		q, err := parseWindowQuery(c, service)
		if err != nil {
			return err
		}

		days, err := service.Window(c.UserContext(), q.Date, q.Days)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{
			"start": q.Date,
			"days":  q.Days,
			"dates": days,
		})
	})

	v1.Get("/forecasts/export", func(c *fiber.Ctx) error {
		q, err := parseWindowQuery(c, service)
		if err != nil {
			return err
		}

		days, err := service.Window(c.UserContext(), q.Date, q.Days)
		if err != nil {
			return toHTTPError(err)
		}

		data, err := reports.GenerateWindow(c.UserContext(), q.Date, days)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to generate report")
		}

		c.Set(fiber.HeaderContentType, report.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="forecast_%s.xlsx"`, q.Date))
		return c.Send(data)
	})
}

// codeParam holds a JMA area code taken from the path.
type codeParam struct {
	Code string `validate:"required,len=6,numeric"`
}

// windowQuery holds query parameters for the cached window endpoints.
type windowQuery struct {
	Date string `validate:"required,datetime=2006-01-02"`
	Days int    `validate:"min=1,max=7"`
}

func parseWindowQuery(c *fiber.Ctx, service *forecast.Service) (windowQuery, error) {
	q := windowQuery{
		Date: c.Query("date", service.Today()),
		Days: forecast.DefaultWindowDays,
	}

	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, fiber.NewError(fiber.StatusBadRequest, "days must be an integer between 1 and 7")
		}
		q.Days = n
	}

	if err := validate.Struct(q); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD and days between 1 and 7")
	}
	return q, nil
}

// toHTTPError maps domain errors to responses for the central error handler.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, forecast.ErrUnknownArea):
		return fiber.NewError(fiber.StatusNotFound, "unknown area code")
	case errors.Is(err, forecast.ErrCatalogNotLoaded):
		return fiber.NewError(fiber.StatusServiceUnavailable, "area catalog not loaded")
	case errors.Is(err, forecast.ErrParse):
		return fiber.NewError(fiber.StatusBadGateway, "failed to parse weather forecast")
	case errors.Is(err, forecast.ErrFetch):
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather forecast")
	case errors.Is(err, forecast.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "no cached forecast for requested dates")
	case errors.Is(err, forecast.ErrInvalidWindow):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
