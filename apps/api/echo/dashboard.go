package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mentora/core/attendance"
	"github.com/trezcool/mentora/core/mentee"
	"github.com/trezcool/mentora/core/mentor"
	"github.com/trezcool/mentora/core/user"
)

type dashboardApi struct {
	users      *user.Service
	mentors    *mentor.Service
	mentees    *mentee.Service
	attendance *attendance.Service
}

type Dashboard struct {
	Users             map[string]int      `json:"users"` // per role
	Mentors           int                 `json:"mentors"`
	Mentees           int                 `json:"mentees"`
	UnassignedMentees int                 `json:"unassigned_mentees"`
	Today             attendance.DayCount `json:"today"`
}

func registerDashboardAPI(g *echo.Group, jwt, admin echo.MiddlewareFunc, s *Server) {
	api := dashboardApi{
		users:      s.deps.UserSvc,
		mentors:    s.deps.MentorSvc,
		mentees:    s.deps.MenteeSvc,
		attendance: s.deps.AttendanceSvc,
	}
	g.GET("/dashboard", api.retrieve, jwt, admin)
}

func (api *dashboardApi) retrieve(ctx echo.Context) error {
	c := ctx.Request().Context()
	dash := Dashboard{Users: make(map[string]int, len(user.AllRoles))}

	for _, role := range user.AllRoles {
		n, err := api.users.Count(c, user.QueryFilter{Roles: []string{role}})
		if err != nil {
			return errors.Wrapf(err, "counting %s users", role)
		}
		dash.Users[role] = n
	}

	var err error
	if dash.Mentors, err = api.mentors.Count(c); err != nil {
		return errors.Wrap(err, "counting mentors")
	}
	if dash.Mentees, err = api.mentees.Count(c, mentee.QueryFilter{}); err != nil {
		return errors.Wrap(err, "counting mentees")
	}
	if dash.UnassignedMentees, err = api.mentees.Count(c, mentee.QueryFilter{Unassigned: true}); err != nil {
		return errors.Wrap(err, "counting unassigned mentees")
	}
	if dash.Today, err = api.attendance.CountByDay(c, attendance.Today()); err != nil {
		return errors.Wrap(err, "counting today's attendance")
	}
	return ctx.JSON(http.StatusOK, dash)
}
