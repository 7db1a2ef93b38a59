package remoteapi

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/parishweb/portal-gateway/internal/models"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", gwerrors.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func required(field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid("%s is required", field)
	}
	return nil
}

func validEmail(field string, value string) error {
	if err := required(field, value); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return invalid("%s is not a valid e-mail address", field)
	}
	return nil
}

func validID(id int) error {
	if id <= 0 {
		return invalid("the id %d is not valid", id)
	}
	return nil
}

func validLocale(locale string) error {
	if locale != "" && !models.ValidLocale(locale) {
		return invalid("unknown locale %q", locale)
	}
	return nil
}

func validateNews(news models.NewsInput) error {
	if len(news.Translations) == 0 {
		return invalid("news need at least one translation")
	}
	for _, tr := range news.Translations {
		if !models.ValidLocale(tr.Locale) {
			return invalid("unknown locale %q", tr.Locale)
		}
		if err := required("title", tr.Title); err != nil {
			return err
		}
	}
	return nil
}

func validateAlbum(album models.AlbumInput) error {
	if err := required("name", album.Name); err != nil {
		return err
	}
	for _, tr := range album.Translations {
		if !models.ValidLocale(tr.Locale) {
			return invalid("unknown locale %q", tr.Locale)
		}
	}
	return nil
}

func validateImage(image models.ImageInput) error {
	if err := validID(image.AlbumID); err != nil {
		return err
	}
	if err := required("url", image.URL); err != nil {
		return err
	}
	switch image.Type {
	case models.PhotoMedia, models.VideoMedia:
		return nil
	default:
		return invalid("unknown media type %q", image.Type)
	}
}

func validateSchedule(entry models.ScheduleInput) error {
	if err := required("date", entry.Date); err != nil {
		return err
	}
	if err := required("time", entry.Time); err != nil {
		return err
	}
	return required("event", entry.Event)
}

func validateDonation(donation models.Donation) error {
	if donation.Amount <= 0 {
		return invalid("the donation amount has to be positive")
	}
	if err := required("donorName", donation.DonorName); err != nil {
		return err
	}
	return validEmail("donorEmail", donation.DonorEmail)
}

func validateNote(note models.PrayerNote) error {
	if err := required("type", note.Type); err != nil {
		return err
	}
	if err := required("names", note.Names); err != nil {
		return err
	}
	if note.IsPaid && note.Amount <= 0 {
		return invalid("a paid note needs a positive amount")
	}
	return nil
}
