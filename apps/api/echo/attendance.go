package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/attendance"
	"github.com/trezcool/mentora/core/mentee"
)

var errSheetParams = core.NewFieldValidationError("date", "provide either `date` or both `month` and `year`")

type attendanceApi struct {
	svc      *attendance.Service
	validate *validator.Validate
	metrics  *metrics
}

func registerAttendanceAPI(g *echo.Group, jwt, admin echo.MiddlewareFunc, s *Server) {
	api := attendanceApi{svc: s.deps.AttendanceSvc, validate: s.deps.Validate, metrics: s.metrics}

	ag := g.Group("/attendance", jwt, admin)
	ag.GET("", api.sheet)
	ag.POST("", api.save)
	ag.GET("/mentees/:id/stats", api.stats)
}

// sheet serves `?date=YYYY-MM-DD` or `?month=M&year=YYYY`, optionally narrowed by the mentee filters.
func (api *attendanceApi) sheet(ctx echo.Context) error {
	var filter mentee.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to mentee.QueryFilter")
	}

	var sheet attendance.Sheet
	var err error
	date, month, year := ctx.QueryParam("date"), ctx.QueryParam("month"), ctx.QueryParam("year")
	switch {
	case date != "":
		sheet, err = api.svc.ByDate(ctx.Request().Context(), date, filter)
	case month != "" && year != "":
		m, mErr := strconv.Atoi(month)
		if mErr != nil {
			return core.NewFieldValidationError("month", "month must be between 1 and 12")
		}
		y, yErr := strconv.Atoi(year)
		if yErr != nil {
			return core.NewFieldValidationError("year", "invalid year")
		}
		sheet, err = api.svc.ByMonth(ctx.Request().Context(), y, time.Month(m), filter)
	default:
		return errSheetParams
	}
	if err != nil {
		return errors.Wrap(err, "reading attendance")
	}
	return ctx.JSON(http.StatusOK, sheet)
}

func (api *attendanceApi) save(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data attendance.SaveRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	res, err := api.svc.Save(ctx.Request().Context(), data.Date, data.Attendance, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "saving attendance")
	}
	for _, saved := range res.Saved {
		api.metrics.attendanceMarks.WithLabelValues(string(saved.Status)).Inc()
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *attendanceApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("from"), ctx.QueryParam("to"))
	if err != nil {
		return errors.Wrap(err, "computing attendance stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
