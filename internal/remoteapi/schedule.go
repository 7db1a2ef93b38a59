package remoteapi

import (
	"context"
	"net/http"

	"github.com/parishweb/portal-gateway/internal/models"
)

const schedulePath string = "/api/schedule"

func (c *Client) ListSchedule(ctx context.Context, locale string) ([]models.ScheduleEntry, error) {
	output := []models.ScheduleEntry{}
	if err := validLocale(locale); err != nil {
		return output, err
	}
	err := c.get(ctx, schedulePath, localeQuery(locale), &output)
	return output, err
}

func (c *Client) GetScheduleEntry(ctx context.Context, id int) (models.ScheduleEntry, error) {
	var output models.ScheduleEntry
	if err := validID(id); err != nil {
		return output, err
	}
	err := c.get(ctx, resourcePath(schedulePath, id), nil, &output)
	return output, err
}

func (c *Client) CreateScheduleEntry(ctx context.Context, entry models.ScheduleInput) (models.ScheduleEntry, error) {
	var output models.ScheduleEntry
	if err := validateSchedule(entry); err != nil {
		return output, err
	}
	err := c.send(ctx, http.MethodPost, schedulePath, entry, &output)
	return output, err
}

func (c *Client) UpdateScheduleEntry(ctx context.Context, id int, entry models.ScheduleInput) (models.ScheduleEntry, error) {
	var output models.ScheduleEntry
	if err := validID(id); err != nil {
		return output, err
	}
	if err := validateSchedule(entry); err != nil {
		return output, err
	}
	err := c.send(ctx, http.MethodPatch, resourcePath(schedulePath, id), entry, &output)
	return output, err
}

func (c *Client) DeleteScheduleEntry(ctx context.Context, id int) error {
	if err := validID(id); err != nil {
		return err
	}
	return c.delete(ctx, resourcePath(schedulePath, id), nil)
}
