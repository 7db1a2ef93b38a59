package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/parishweb/portal-gateway/internal/remoteapi"
	"github.com/parishweb/portal-gateway/internal/utils"
	"golang.org/x/sync/errgroup"
)

const dashboardNewsLimit int = 5

type dashboardResponse struct {
	LatestNews []models.News          `json:"latestNews"`
	NewsTotal  int                    `json:"newsTotal"`
	Albums     []models.Album         `json:"albums"`
	Schedule   []models.ScheduleEntry `json:"schedule"`
}

// GetDashboard loads the latest news, the albums and the schedule at the same time. The three
// calls share the session's client, so an expired access token is refreshed only once.
func (a *AdminServer) GetDashboard(c echo.Context) error {
	api, err := a.api(c)
	if err != nil {
		return err
	}
	locale := c.QueryParam("locale")
	var output dashboardResponse
	g, ctx := errgroup.WithContext(utils.RequestContext(c))
	g.Go(func() error {
		list, err := api.ListNews(ctx, remoteapi.NewsQuery{
			Page:      1,
			Limit:     dashboardNewsLimit,
			SortBy:    remoteapi.SortByCreatedAt,
			SortOrder: remoteapi.SortDescending,
			Locale:    locale,
		})
		output.LatestNews = list.News
		output.NewsTotal = list.Total
		return err
	})
	g.Go(func() error {
		albums, err := api.ListAlbums(ctx, locale)
		output.Albums = albums
		return err
	})
	g.Go(func() error {
		schedule, err := api.ListSchedule(ctx, locale)
		output.Schedule = schedule
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, output)
}
