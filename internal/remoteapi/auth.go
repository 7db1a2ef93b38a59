package remoteapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/parishweb/portal-gateway/internal/apiclient"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/tidwall/gjson"
)

const loginPath string = "/api/auth/login"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges the admin username and password for a credential pair. The API has to
// return both tokens, a partial pair is an error.
func (c *Client) Login(ctx context.Context, username string, password string) (models.Credentials, error) {
	if err := required("username", username); err != nil {
		return models.Credentials{}, err
	}
	if err := required("password", password); err != nil {
		return models.Credentials{}, err
	}
	req, err := apiclient.NewJSONRequest(http.MethodPost, loginPath, loginRequest{Username: username, Password: password})
	if err != nil {
		return models.Credentials{}, err
	}
	res, err := c.api.Do(ctx, req)
	if err != nil {
		return models.Credentials{}, err
	}
	if !gjson.ValidBytes(res.Body) {
		return models.Credentials{}, fmt.Errorf("the login response is not valid JSON")
	}
	creds := models.Credentials{
		AccessToken:  gjson.GetBytes(res.Body, "accessToken").String(),
		RefreshToken: gjson.GetBytes(res.Body, "refreshToken").String(),
	}
	if !creds.Complete() {
		return models.Credentials{}, fmt.Errorf("the login response is missing tokens: %s", creds)
	}
	return creds, nil
}
