package remoteapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/parishweb/portal-gateway/internal/models"
)

const newsPath string = "/api/news"

const (
	SortByCreatedAt string = "createdAt"
	SortByTitle     string = "title"
	SortAscending   string = "ASC"
	SortDescending  string = "DESC"
)

// NewsQuery filters and pages the news list, zero values are left out of the query.
type NewsQuery struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Locale    string
}

func (q NewsQuery) validate() error {
	if q.Page < 0 || q.Limit < 0 {
		return invalid("page and limit cannot be negative")
	}
	switch q.SortBy {
	case "", SortByCreatedAt, SortByTitle:
	default:
		return invalid("cannot sort news by %q", q.SortBy)
	}
	switch q.SortOrder {
	case "", SortAscending, SortDescending:
	default:
		return invalid("unknown sort order %q", q.SortOrder)
	}
	return validLocale(q.Locale)
}

func (q NewsQuery) values() url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.SortBy != "" {
		values.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		values.Set("sortOrder", q.SortOrder)
	}
	if q.Locale != "" {
		values.Set("locale", q.Locale)
	}
	return values
}

func (c *Client) ListNews(ctx context.Context, query NewsQuery) (models.NewsList, error) {
	var output models.NewsList
	if err := query.validate(); err != nil {
		return output, err
	}
	err := c.get(ctx, newsPath, query.values(), &output)
	if output.News == nil {
		output.News = []models.News{}
	}
	return output, err
}

func (c *Client) GetNews(ctx context.Context, id int, locale string) (models.News, error) {
	var output models.News
	if err := validID(id); err != nil {
		return output, err
	}
	if err := validLocale(locale); err != nil {
		return output, err
	}
	err := c.get(ctx, resourcePath(newsPath, id), localeQuery(locale), &output)
	return output, err
}

func (c *Client) CreateNews(ctx context.Context, news models.NewsInput) (models.News, error) {
	var output models.News
	if err := validateNews(news); err != nil {
		return output, err
	}
	err := c.send(ctx, http.MethodPost, newsPath, news, &output)
	return output, err
}

func (c *Client) UpdateNews(ctx context.Context, id int, news models.NewsInput) (models.News, error) {
	var output models.News
	if err := validID(id); err != nil {
		return output, err
	}
	if err := validateNews(news); err != nil {
		return output, err
	}
	err := c.send(ctx, http.MethodPatch, resourcePath(newsPath, id), news, &output)
	return output, err
}

func (c *Client) DeleteNews(ctx context.Context, id int) error {
	if err := validID(id); err != nil {
		return err
	}
	return c.delete(ctx, resourcePath(newsPath, id), nil)
}
