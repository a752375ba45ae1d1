package mailer

import "embed"

const (
	FromName                 = "MeetHub"
	maxRetries               = 3
	SellerInvitationTemplate = "seller_invitation.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
