package admin

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/parishweb/portal-gateway/internal/remoteapi"
	"github.com/parishweb/portal-gateway/internal/utils"
)

func (a *AdminServer) GetAlbums(c echo.Context) error {
	api, err := a.api(c)
	if err != nil {
		return err
	}
	albums, err := api.ListAlbums(utils.RequestContext(c), c.QueryParam("locale"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, albums)
}

func (a *AdminServer) GetAlbum(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	album, err := api.GetAlbum(utils.RequestContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, album)
}

func (a *AdminServer) PostAlbum(c echo.Context) error {
	var body models.AlbumInput
	if err := c.Bind(&body); err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	album, err := api.CreateAlbum(utils.RequestContext(c), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, album)
}

func (a *AdminServer) PatchAlbum(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body models.AlbumInput
	if err := c.Bind(&body); err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	album, err := api.UpdateAlbum(utils.RequestContext(c), id, body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, album)
}

func (a *AdminServer) DeleteAlbum(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	if err := api.DeleteAlbum(utils.RequestContext(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PostAlbumImages uploads the files of the multipart field "files" and adds every stored file
// to the album, in upload order. The optional "caption" field applies to all of them.
func (a *AdminServer) PostAlbumImages(c echo.Context) error {
	albumID, err := pathID(c)
	if err != nil {
		return err
	}
	form, err := c.MultipartForm()
	if err != nil {
		return fmt.Errorf("%w: expected a multipart form: %w", gwerrors.ErrInvalidInput, err)
	}
	headers := form.File["files"]
	files := make([]remoteapi.File, 0, len(headers))
	for _, header := range headers {
		file, err := readFormFile(header)
		if err != nil {
			return err
		}
		files = append(files, file)
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	ctx := utils.RequestContext(c)
	uploaded, err := api.UploadGalleryFiles(ctx, files)
	if err != nil {
		return err
	}
	caption := c.FormValue("caption")
	images := make([]models.Image, 0, len(uploaded))
	for _, file := range uploaded {
		image, err := api.AddImage(ctx, models.ImageInput{
			AlbumID: albumID,
			URL:     file.URL,
			Caption: caption,
			Type:    file.Type,
		})
		if err != nil {
			return err
		}
		images = append(images, image)
	}
	return c.JSON(http.StatusCreated, images)
}

func (a *AdminServer) DeleteImage(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	api, err := a.api(c)
	if err != nil {
		return err
	}
	if err := api.DeleteImage(utils.RequestContext(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
