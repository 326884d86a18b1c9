package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mentora/core/mentee"
	"github.com/trezcool/mentora/core/mentor"
)

type mentorApi struct {
	svc     *mentor.Service
	mentees *mentee.Service
}

func registerMentorAPI(g *echo.Group, jwt, admin echo.MiddlewareFunc, s *Server) {
	api := mentorApi{svc: s.deps.MentorSvc, mentees: s.deps.MenteeSvc}

	mg := g.Group("/mentors", jwt, admin)
	mg.GET("", api.query)
	mg.GET("/:id", api.retrieve)
	mg.GET("/:id/mentees", api.queryMentees)
}

func (api *mentorApi) query(ctx echo.Context) error {
	var filter mentor.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []mentor.Mentor{})
	}
	filter.Clean()

	mentors, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying mentors")
	}
	if mentors == nil {
		mentors = []mentor.Mentor{}
	}
	return ctx.JSON(http.StatusOK, mentors)
}

func (api *mentorApi) retrieve(ctx echo.Context) error {
	m, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding mentor by ID")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *mentorApi) queryMentees(ctx echo.Context) error {
	m, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding mentor by ID")
	}

	mentees, err := api.mentees.Query(ctx.Request().Context(), mentee.QueryFilter{MentorID: m.ID})
	if err != nil {
		return errors.Wrap(err, "querying mentees")
	}
	if mentees == nil {
		mentees = []mentee.Mentee{}
	}
	return ctx.JSON(http.StatusOK, mentees)
}
