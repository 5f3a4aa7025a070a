package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/dp_pos/internal/util"
)

type page struct {
	num, size, offset, limit int
}

func pageFrom(c echo.Context) page {
	num := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(num, size)
	if num < 1 {
		num = 1
	}
	return page{num: num, size: size, offset: offset, limit: limit}
}

func paged(p page, total int64, data any) map[string]any {
	return map[string]any{
		"data": data,
		"meta": util.NewMeta(p.num, p.limit, total),
	}
}
