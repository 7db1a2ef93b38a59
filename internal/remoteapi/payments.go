package remoteapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/parishweb/portal-gateway/internal/models"
)

const (
	donationsPath        string = "/api/donations"
	donationCheckoutPath string = "/api/donations/create-checkout-session"
	notesPath            string = "/api/notes"
	noteCheckoutPath     string = "/api/notes/create-checkout-session"
	paymentMethodStripe  string = "stripe"
)

var ErrMissingCheckoutSession = errors.New("the checkout response has no session id")

// CreateDonation records a pending donation before the payment is started.
func (c *Client) CreateDonation(ctx context.Context, donation models.Donation) error {
	if err := validateDonation(donation); err != nil {
		return err
	}
	donation.Status = models.PaymentPending
	if donation.PaymentMethod == "" {
		donation.PaymentMethod = paymentMethodStripe
	}
	return c.send(ctx, http.MethodPost, donationsPath, donation, nil)
}

func (c *Client) CreateDonationCheckout(ctx context.Context, donation models.Donation) (models.CheckoutSession, error) {
	var output models.CheckoutSession
	if err := validateDonation(donation); err != nil {
		return output, err
	}
	checkout := models.DonationCheckout{
		Amount:     models.MinorUnits(donation.Amount),
		DonorName:  donation.DonorName,
		DonorEmail: donation.DonorEmail,
	}
	err := c.send(ctx, http.MethodPost, donationCheckoutPath, checkout, &output)
	if err == nil && output.SessionID == "" {
		return output, ErrMissingCheckoutSession
	}
	return output, err
}

// CreateNote records a prayer note, paid notes are stored as pending until the checkout completes.
func (c *Client) CreateNote(ctx context.Context, note models.PrayerNote) error {
	if err := validateNote(note); err != nil {
		return err
	}
	if note.IsPaid {
		note.Status = models.PaymentPending
	}
	return c.send(ctx, http.MethodPost, notesPath, note, nil)
}

func (c *Client) CreateNoteCheckout(ctx context.Context, note models.PrayerNote) (models.CheckoutSession, error) {
	var output models.CheckoutSession
	if err := validateNote(note); err != nil {
		return output, err
	}
	if !note.IsPaid {
		return output, invalid("only paid notes need a checkout")
	}
	checkout := models.NoteCheckout{
		Amount: models.MinorUnits(note.Amount),
		Type:   note.Type,
		Names:  note.Names,
	}
	err := c.send(ctx, http.MethodPost, noteCheckoutPath, checkout, &output)
	if err == nil && output.SessionID == "" {
		return output, ErrMissingCheckoutSession
	}
	return output, err
}
