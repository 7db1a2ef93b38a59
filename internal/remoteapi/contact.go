package remoteapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/parishweb/portal-gateway/internal/models"
)

const (
	emailPath        string = "/api/email/send"
	subscriptionPath string = "/api/subscriptions/update"
	unsubscribePath  string = "/api/subscriptions/unsubscribe"
	ktitorsPath      string = "/api/ktitors"
)

func (c *Client) SendEmail(ctx context.Context, email models.Email) error {
	if err := validEmail("to", email.To); err != nil {
		return err
	}
	if err := required("subject", email.Subject); err != nil {
		return err
	}
	return c.send(ctx, http.MethodPost, emailPath, email, nil)
}

func (c *Client) UpdateSubscription(ctx context.Context, subscription models.Subscription) error {
	if err := validEmail("email", subscription.Email); err != nil {
		return err
	}
	return c.send(ctx, http.MethodPut, subscriptionPath, subscription, nil)
}

func (c *Client) Unsubscribe(ctx context.Context, email string) error {
	if err := validEmail("email", email); err != nil {
		return err
	}
	return c.delete(ctx, unsubscribePath, url.Values{"email": []string{email}})
}

func (c *Client) ListKtitors(ctx context.Context) ([]models.Ktitor, error) {
	output := []models.Ktitor{}
	err := c.get(ctx, ktitorsPath, nil, &output)
	return output, err
}

func (c *Client) CreateKtitor(ctx context.Context, ktitor models.Ktitor) (models.Ktitor, error) {
	var output models.Ktitor
	if err := required("name", ktitor.Name); err != nil {
		return output, err
	}
	err := c.send(ctx, http.MethodPost, ktitorsPath, ktitor, &output)
	return output, err
}
