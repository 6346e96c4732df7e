package models

// EmailType selects one of the fixed transactional templates.
type EmailType string

const (
	EmailWelcome        EmailType = "welcome"
	EmailPaymentSuccess EmailType = "payment_success"
	EmailPasswordReset  EmailType = "password_reset"
)

// EmailTemplate is a transactional email template. Built-in defaults ship with
// the binary; a row in the email_templates collection overrides them.
type EmailTemplate struct {
	Type    EmailType `bson:"type" json:"type"`
	Subject string    `bson:"subject" json:"subject"`
	Body    string    `bson:"body" json:"body"`
}
