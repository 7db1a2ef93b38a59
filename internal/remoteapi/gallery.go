package remoteapi

import (
	"context"
	"net/http"

	"github.com/parishweb/portal-gateway/internal/models"
)

const (
	albumsPath string = "/api/gallery/albums"
	imagesPath string = "/api/gallery/images"
)

func (c *Client) ListAlbums(ctx context.Context, locale string) ([]models.Album, error) {
	output := []models.Album{}
	if err := validLocale(locale); err != nil {
		return output, err
	}
	err := c.get(ctx, albumsPath, localeQuery(locale), &output)
	return output, err
}

func (c *Client) GetAlbum(ctx context.Context, id int) (models.Album, error) {
	var output models.Album
	if err := validID(id); err != nil {
		return output, err
	}
	err := c.get(ctx, resourcePath(albumsPath, id), nil, &output)
	return output, err
}

func (c *Client) CreateAlbum(ctx context.Context, album models.AlbumInput) (models.Album, error) {
	var output models.Album
	if err := validateAlbum(album); err != nil {
		return output, err
	}
	err := c.send(ctx, http.MethodPost, albumsPath, album, &output)
	return output, err
}

func (c *Client) UpdateAlbum(ctx context.Context, id int, album models.AlbumInput) (models.Album, error) {
	var output models.Album
	if err := validID(id); err != nil {
		return output, err
	}
	if err := validateAlbum(album); err != nil {
		return output, err
	}
	err := c.send(ctx, http.MethodPatch, resourcePath(albumsPath, id), album, &output)
	return output, err
}

func (c *Client) DeleteAlbum(ctx context.Context, id int) error {
	if err := validID(id); err != nil {
		return err
	}
	return c.delete(ctx, resourcePath(albumsPath, id), nil)
}

// AddImage attaches an uploaded file to an album.
func (c *Client) AddImage(ctx context.Context, image models.ImageInput) (models.Image, error) {
	var output models.Image
	if image.Type == "" {
		image.Type = models.PhotoMedia
	}
	if err := validateImage(image); err != nil {
		return output, err
	}
	err := c.send(ctx, http.MethodPost, imagesPath, image, &output)
	return output, err
}

func (c *Client) DeleteImage(ctx context.Context, id int) error {
	if err := validID(id); err != nil {
		return err
	}
	return c.delete(ctx, resourcePath(imagesPath, id), nil)
}
