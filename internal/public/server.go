// Package public serves the routes of the public parish site. Requests go to the API with the
// static public token and never refresh or redirect to the admin login.
package public

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/parishweb/portal-gateway/internal/admin"
	"github.com/parishweb/portal-gateway/internal/apiclient"
	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/parishweb/portal-gateway/internal/remoteapi"
	"github.com/parishweb/portal-gateway/internal/utils"
)

const RoutesBasePath string = "/api"

type PublicServer struct {
	api               *remoteapi.Client
	notificationEmail string
}

func (p *PublicServer) RegisterHandlers(server *echo.Echo, commonMiddlewares ...echo.MiddlewareFunc) {
	e := server.Group(RoutesBasePath)
	e.Use(commonMiddlewares...)
	e.Use(mapErrors)

	e.GET("/news", p.GetNewsList)
	e.GET("/news/:id", p.GetNews)
	e.GET("/gallery/albums", p.GetAlbums)
	e.GET("/gallery/albums/:id", p.GetAlbum)
	e.GET("/schedule", p.GetSchedule)

	e.POST("/donations", p.PostDonation)
	e.POST("/donations/checkout", p.PostDonationCheckout, admin.NoCaching)
	e.POST("/notes", p.PostNote)
	e.POST("/notes/checkout", p.PostNoteCheckout, admin.NoCaching)

	e.PUT("/subscriptions", p.PutSubscription)
	e.DELETE("/subscriptions", p.DeleteSubscription)

	e.GET("/ktitors", p.GetKtitors)
	e.POST("/ktitors", p.PostKtitor)
	if p.notificationEmail != "" {
		e.POST("/contact", p.PostContact)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func mapErrors(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err == nil {
			return nil
		}
		var respErr *apiclient.ResponseError
		switch {
		case errors.Is(err, gwerrors.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, remoteapi.ErrMissingCheckoutSession):
			return c.JSON(http.StatusBadGateway, errorResponse{Error: "the payment could not be started"})
		case errors.As(err, &respErr):
			message := respErr.Message()
			if message == "" {
				message = http.StatusText(respErr.StatusCode)
			}
			return c.JSON(respErr.StatusCode, errorResponse{Error: message})
		default:
			return err
		}
	}
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: the id %q is not valid", gwerrors.ErrInvalidInput, c.Param("id"))
	}
	return id, nil
}

func (p *PublicServer) GetNewsList(c echo.Context) error {
	query, err := admin.NewsQueryFromRequest(c)
	if err != nil {
		return err
	}
	list, err := p.api.ListNews(utils.RequestContext(c), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (p *PublicServer) GetNews(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	news, err := p.api.GetNews(utils.RequestContext(c), id, c.QueryParam("locale"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, news)
}

func (p *PublicServer) GetAlbums(c echo.Context) error {
	albums, err := p.api.ListAlbums(utils.RequestContext(c), c.QueryParam("locale"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, albums)
}

func (p *PublicServer) GetAlbum(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	album, err := p.api.GetAlbum(utils.RequestContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, album)
}

func (p *PublicServer) GetSchedule(c echo.Context) error {
	entries, err := p.api.ListSchedule(utils.RequestContext(c), c.QueryParam("locale"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (p *PublicServer) PostDonation(c echo.Context) error {
	var body models.Donation
	if err := c.Bind(&body); err != nil {
		return err
	}
	if err := p.api.CreateDonation(utils.RequestContext(c), body); err != nil {
		return err
	}
	return c.NoContent(http.StatusCreated)
}

func (p *PublicServer) PostDonationCheckout(c echo.Context) error {
	var body models.Donation
	if err := c.Bind(&body); err != nil {
		return err
	}
	session, err := p.api.CreateDonationCheckout(utils.RequestContext(c), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

func (p *PublicServer) PostNote(c echo.Context) error {
	var body models.PrayerNote
	if err := c.Bind(&body); err != nil {
		return err
	}
	if err := p.api.CreateNote(utils.RequestContext(c), body); err != nil {
		return err
	}
	return c.NoContent(http.StatusCreated)
}

func (p *PublicServer) PostNoteCheckout(c echo.Context) error {
	var body models.PrayerNote
	if err := c.Bind(&body); err != nil {
		return err
	}
	session, err := p.api.CreateNoteCheckout(utils.RequestContext(c), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

func (p *PublicServer) PutSubscription(c echo.Context) error {
	var body models.Subscription
	if err := c.Bind(&body); err != nil {
		return err
	}
	if err := p.api.UpdateSubscription(utils.RequestContext(c), body); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (p *PublicServer) DeleteSubscription(c echo.Context) error {
	if err := p.api.Unsubscribe(utils.RequestContext(c), c.QueryParam("email")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (p *PublicServer) GetKtitors(c echo.Context) error {
	ktitors, err := p.api.ListKtitors(utils.RequestContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ktitors)
}

// PostKtitor records an application to become a ktitor and notifies the parish. A failed
// notification does not fail the application.
func (p *PublicServer) PostKtitor(c echo.Context) error {
	var body models.Ktitor
	if err := c.Bind(&body); err != nil {
		return err
	}
	ctx := utils.RequestContext(c)
	ktitor, err := p.api.CreateKtitor(ctx, body)
	if err != nil {
		return err
	}
	if p.notificationEmail != "" {
		err = p.api.SendEmail(ctx, models.Email{
			To:      p.notificationEmail,
			Subject: "New ktitor application: " + ktitor.Name,
			Text:    fmt.Sprintf("Name: %s\nContribution: %s", ktitor.Name, ktitor.Contribution),
		})
		if err != nil {
			slog.Error("PUBLIC", "message", "could not send the ktitor notification", "error", err, "requestID", utils.GetRequestID(c))
		}
	}
	return c.JSON(http.StatusCreated, ktitor)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// PostContact forwards a contact form message to the parish address.
func (p *PublicServer) PostContact(c echo.Context) error {
	var body contactRequest
	if err := c.Bind(&body); err != nil {
		return err
	}
	if body.Message == "" {
		return fmt.Errorf("%w: the message is empty", gwerrors.ErrInvalidInput)
	}
	err := p.api.SendEmail(utils.RequestContext(c), models.Email{
		To:      p.notificationEmail,
		Subject: "Message from " + body.Name,
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s", body.Name, body.Email, body.Message),
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

type PublicServerOption func(*PublicServer) error

// WithAPIClient sets the client used for all public routes, it has to carry the static public token.
func WithAPIClient(api *remoteapi.Client) PublicServerOption {
	return func(p *PublicServer) error {
		p.api = api
		return nil
	}
}

func WithNotificationEmail(address string) PublicServerOption {
	return func(p *PublicServer) error {
		p.notificationEmail = address
		return nil
	}
}

func NewPublicServer(options ...PublicServerOption) (*PublicServer, error) {
	server := PublicServer{}
	for _, opt := range options {
		err := opt(&server)
		if err != nil {
			return nil, err
		}
	}
	if server.api == nil {
		return nil, fmt.Errorf("the public API client is not initialized")
	}
	return &server, nil
}
