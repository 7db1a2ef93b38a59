package remoteapi

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/parishweb/portal-gateway/internal/apiclient"
	"github.com/parishweb/portal-gateway/internal/models"
)

const (
	uploadPath        string = "/api/upload"
	galleryUploadPath string = "/api/gallery/upload/multiple"
)

// File is an upload held in memory so that the request can be replayed after a token refresh.
type File struct {
	Name    string
	Content []byte
}

func (c *Client) UploadFile(ctx context.Context, file File) (models.UploadedFile, error) {
	var output models.UploadedFile
	req, err := newMultipartRequest(uploadPath, "file", []File{file})
	if err != nil {
		return output, err
	}
	res, err := c.api.Do(ctx, req)
	if err != nil {
		return output, err
	}
	err = res.DecodeJSON(&output)
	return output, err
}

// UploadGalleryFiles stores several photos or videos at once, the answer lists them in upload order.
func (c *Client) UploadGalleryFiles(ctx context.Context, files []File) ([]models.UploadedFile, error) {
	output := []models.UploadedFile{}
	req, err := newMultipartRequest(galleryUploadPath, "files", files)
	if err != nil {
		return output, err
	}
	res, err := c.api.Do(ctx, req)
	if err != nil {
		return output, err
	}
	err = res.DecodeJSON(&output)
	return output, err
}

func newMultipartRequest(path string, field string, files []File) (*apiclient.Request, error) {
	if len(files) == 0 {
		return nil, invalid("no files to upload")
	}
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, file := range files {
		if err := required("file name", file.Name); err != nil {
			return nil, err
		}
		if len(file.Content) == 0 {
			return nil, invalid("the file %s is empty", file.Name)
		}
		part, err := writer.CreateFormFile(field, filepath.Base(file.Name))
		if err != nil {
			return nil, err
		}
		_, err = part.Write(file.Content)
		if err != nil {
			return nil, err
		}
	}
	err := writer.Close()
	if err != nil {
		return nil, err
	}
	req := apiclient.NewRequest(http.MethodPost, path)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Body = body.Bytes()
	return req, nil
}
