package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mentora/core/mentee"
)

type menteeApi struct {
	svc *mentee.Service
}

func registerMenteeAPI(g *echo.Group, jwt, admin echo.MiddlewareFunc, s *Server) {
	api := menteeApi{svc: s.deps.MenteeSvc}

	mg := g.Group("/mentees", jwt, admin)
	mg.GET("", api.query)
	mg.GET("/:id", api.retrieve)
	mg.PUT("/:id/mentor", api.assignMentor)
}

func (api *menteeApi) query(ctx echo.Context) error {
	var filter mentee.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []mentee.Mentee{})
	}
	filter.Clean()

	mentees, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying mentees")
	}
	if mentees == nil {
		mentees = []mentee.Mentee{}
	}
	return ctx.JSON(http.StatusOK, mentees)
}

func (api *menteeApi) retrieve(ctx echo.Context) error {
	m, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding mentee by ID")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *menteeApi) assignMentor(ctx echo.Context) error {
	var data mentee.MentorAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MentorAssignment")
	}

	m, err := api.svc.AssignMentor(ctx.Request().Context(), ctx.Param("id"), data.MentorID)
	if err != nil {
		return errors.Wrap(err, "assigning mentor")
	}
	return ctx.JSON(http.StatusOK, m)
}
