package admin

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/parishweb/portal-gateway/internal/remoteapi"
	"github.com/parishweb/portal-gateway/internal/utils"
)

// NewsQueryFromRequest reads the paging, sorting and locale query parameters of a news list request.
func NewsQueryFromRequest(c echo.Context) (remoteapi.NewsQuery, error) {
	query := remoteapi.NewsQuery{
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
		Locale:    c.QueryParam("locale"),
	}
	var err error
	if query.Page, err = intParam(c, "page"); err != nil {
		return query, err
	}
	if query.Limit, err = intParam(c, "limit"); err != nil {
		return query, err
	}
	return query, nil
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s has to be a number", gwerrors.ErrInvalidInput, name)
	}
	return val, nil
}

func (a *AdminServer) GetNewsList(c echo.Context) error {
	query, err := NewsQueryFromRequest(c)
	if err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	list, err := api.ListNews(utils.RequestContext(c), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (a *AdminServer) GetNews(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	news, err := api.GetNews(utils.RequestContext(c), id, c.QueryParam("locale"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, news)
}

func (a *AdminServer) PostNews(c echo.Context) error {
	var body models.NewsInput
	if err := c.Bind(&body); err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	news, err := api.CreateNews(utils.RequestContext(c), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, news)
}

func (a *AdminServer) PatchNews(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body models.NewsInput
	if err := c.Bind(&body); err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	news, err := api.UpdateNews(utils.RequestContext(c), id, body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, news)
}

func (a *AdminServer) DeleteNews(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	if err := api.DeleteNews(utils.RequestContext(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PostUpload forwards a single file of the multipart field "file".
func (a *AdminServer) PostUpload(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: the file field is missing: %w", gwerrors.ErrInvalidInput, err)
	}
	file, err := readFormFile(header)
	if err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	uploaded, err := api.UploadFile(utils.RequestContext(c), file)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, uploaded)
}

// readFormFile loads an uploaded file into memory so that it can be sent again after a token refresh.
func readFormFile(header *multipart.FileHeader) (remoteapi.File, error) {
	src, err := header.Open()
	if err != nil {
		return remoteapi.File{}, err
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		return remoteapi.File{}, err
	}
	return remoteapi.File{Name: header.Filename, Content: content}, nil
}

func (a *AdminServer) GetSchedule(c echo.Context) error {
	api, err := a.api(c)
	if err != nil {
		return err
	}
	entries, err := api.ListSchedule(utils.RequestContext(c), c.QueryParam("locale"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (a *AdminServer) GetScheduleEntry(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	entry, err := api.GetScheduleEntry(utils.RequestContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

func (a *AdminServer) PostScheduleEntry(c echo.Context) error {
	var body models.ScheduleInput
	if err := c.Bind(&body); err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	entry, err := api.CreateScheduleEntry(utils.RequestContext(c), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, entry)
}

func (a *AdminServer) PatchScheduleEntry(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body models.ScheduleInput
	if err := c.Bind(&body); err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	entry, err := api.UpdateScheduleEntry(utils.RequestContext(c), id, body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

func (a *AdminServer) DeleteScheduleEntry(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	if err := api.DeleteScheduleEntry(utils.RequestContext(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
