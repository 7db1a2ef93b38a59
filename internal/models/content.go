package models

import "time"

// Supported site locales, the first one is the default.
var Locales = []string{"ru", "ro"}

const DefaultLocale = "ru"

func ValidLocale(locale string) bool {
	for _, l := range Locales {
		if l == locale {
			return true
		}
	}
	return false
}

type NewsTranslation struct {
	Locale      string   `json:"locale"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	FullText    string   `json:"fullText"`
	Category    string   `json:"category,omitempty"`
	Schedule    []string `json:"schedule,omitempty"`
	Date        string   `json:"date,omitempty"`
}

type News struct {
	ID           int               `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	FullText     string            `json:"fullText"`
	Image        string            `json:"image"`
	Category     string            `json:"category,omitempty"`
	Schedule     []string          `json:"schedule,omitempty"`
	IsMain       bool              `json:"isMain"`
	IsActive     bool              `json:"isActive"`
	Translations []NewsTranslation `json:"translations,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

type NewsList struct {
	News  []News `json:"news"`
	Total int    `json:"total"`
}

// NewsInput is the payload for creating and updating news.
type NewsInput struct {
	Image        string            `json:"image"`
	IsMain       bool              `json:"isMain"`
	IsActive     bool              `json:"isActive"`
	Translations []NewsTranslation `json:"translations"`
	CreatedAt    *time.Time        `json:"createdAt,omitempty"`
}

type AlbumTranslation struct {
	Locale string `json:"locale"`
	Title  string `json:"title"`
}

type ImageTranslation struct {
	Locale  string `json:"locale"`
	Caption string `json:"caption"`
}

type MediaType string

const (
	PhotoMedia MediaType = "photo"
	VideoMedia MediaType = "video"
)

type Image struct {
	ID           int                `json:"id"`
	AlbumID      int                `json:"albumId,omitempty"`
	URL          string             `json:"url"`
	Caption      string             `json:"caption"`
	Type         MediaType          `json:"type"`
	Translations []ImageTranslation `json:"translations,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

type Album struct {
	ID           int                `json:"id"`
	Name         string             `json:"name"`
	Images       []Image            `json:"images"`
	Translations []AlbumTranslation `json:"translations,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

type AlbumInput struct {
	Name         string             `json:"name"`
	Translations []AlbumTranslation `json:"translations"`
}

type ImageInput struct {
	AlbumID      int                `json:"albumId"`
	URL          string             `json:"url"`
	Caption      string             `json:"caption"`
	Type         MediaType          `json:"type"`
	Translations []ImageTranslation `json:"translations"`
}

// UploadedFile is what the remote API returns for every stored upload.
type UploadedFile struct {
	URL  string    `json:"url"`
	Type MediaType `json:"type,omitempty"`
}

type ScheduleTranslation struct {
	Locale string `json:"locale"`
	Event  string `json:"event"`
}

type ScheduleEntry struct {
	ID           int                   `json:"id"`
	Date         string                `json:"date"`
	Time         string                `json:"time"`
	Event        string                `json:"event"`
	Translations []ScheduleTranslation `json:"translations,omitempty"`
}

type ScheduleInput struct {
	Date         string                `json:"date"`
	Time         string                `json:"time"`
	Event        string                `json:"event"`
	Translations []ScheduleTranslation `json:"translations"`
}
