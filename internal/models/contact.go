package models

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

type SubscriptionPreferences struct {
	News     bool `json:"news"`
	Schedule bool `json:"schedule"`
	Gallery  bool `json:"gallery"`
}

type Subscription struct {
	Email       string                  `json:"email"`
	Preferences SubscriptionPreferences `json:"preferences"`
}

// Ktitor is a benefactor of the church construction.
type Ktitor struct {
	ID           int    `json:"id,omitempty"`
	Name         string `json:"name"`
	Contribution string `json:"contribution"`
}
