package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/user"
)

var orderingParam = "ordering"

func bindOrdering(ctx echo.Context, allowed ...string) []core.DBOrdering {
	return core.ParseOrderings(ctx.QueryParam(orderingParam), allowed...)
}

// bindUserFilter reads ?search=&role=&is_active= ; role may be repeated or comma separated.
func bindUserFilter(ctx echo.Context) user.QueryFilter {
	params := ctx.QueryParams()
	filter := user.QueryFilter{Search: params.Get("search")}
	for _, val := range params["role"] {
		filter.Roles = append(filter.Roles, strings.Split(val, ",")...)
	}
	if val := params.Get("is_active"); val != "" {
		if active, err := strconv.ParseBool(val); err == nil {
			filter.IsActive = &active
		}
	}
	filter.Clean()
	return filter
}
