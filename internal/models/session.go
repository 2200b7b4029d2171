package models

// Session is the authenticated user as issued by the sign-in provider.
// A zero Session means the visitor is not signed in.
type Session struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Image  string `json:"image,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.UserID != ""
}
