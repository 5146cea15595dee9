package domain

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// BookingScheduledEmailData holds data for the attendee-facing confirmation email.
type BookingScheduledEmailData struct {
	AttendeeName  string
	OrganizerName string
	Title         string
	StartTime     string
	EndTime       string
	Location      string
	ConferenceURL string
}

// BookingCancelledEmailData holds data for the removal email sent to the
// previous organizer.
type BookingCancelledEmailData struct {
	OrganizerName string
	Title         string
	StartTime     string
	Reason        string
}
