package learnedgeek

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/learnedgeek/learnedgeek/recaptcha"
)

const maxContactMessage = 5000

func (a *App) contactPage() ContactPage {
	return ContactPage{
		Meta: PageMeta{
			Title:       "Contact | " + a.Config.Name,
			Description: "Get in touch.",
			URL:         BuildURL(a.Config.URL, "contact"),
			OGType:      "website",
		},
		SiteKey:  a.verifier.SiteKey(),
		Disabled: !a.verifier.Enabled(),
	}
}

func (a *App) handleContactForm(c echo.Context) error {
	page := a.contactPage()
	code := http.StatusOK
	if page.Disabled {
		code = http.StatusServiceUnavailable
	}
	return RenderStatus(c, code, a.Views.Contact(page))
}

// handleContactSubmit rate-limits by IP, validates the form, then checks the
// reCAPTCHA token. Accepted messages are written to the log; nothing is
// stored.
func (a *App) handleContactSubmit(c echo.Context) error {
	page := a.contactPage()
	if page.Disabled {
		return RenderStatus(c, http.StatusServiceUnavailable, a.Views.Contact(page))
	}

	ip := c.RealIP()
	if !a.contactLimiter.Allow(ip) {
		page.Error = "Too many messages. Try again later."
		return RenderStatus(c, http.StatusTooManyRequests, a.Views.Contact(page))
	}

	page.Name = strings.TrimSpace(c.FormValue("name"))
	page.Email = strings.TrimSpace(c.FormValue("email"))
	page.Message = strings.TrimSpace(c.FormValue("message"))
	if msg := validateContact(page.Name, page.Email, page.Message); msg != "" {
		page.Error = msg
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.Contact(page))
	}

	res, err := a.verifier.Verify(c.Request().Context(), c.FormValue("g-recaptcha-response"), ip)
	if err != nil {
		if errors.Is(err, recaptcha.ErrRejected) {
			a.Logger.Warn().Err(err).Str("ip", ip).Float64("score", res.Score).Msg("contact form rejected")
			page.Error = "We could not verify you are human. Please try again."
			return RenderStatus(c, http.StatusBadRequest, a.Views.Contact(page))
		}
		return err
	}

	a.Logger.Info().
		Str("name", page.Name).
		Str("email", page.Email).
		Str("message", page.Message).
		Float64("score", res.Score).
		Msg("contact message")

	return RenderStatus(c, http.StatusOK, a.Views.Contact(ContactPage{
		Meta:    page.Meta,
		SiteKey: page.SiteKey,
		Sent:    true,
	}))
}

func validateContact(name, email, message string) string {
	switch {
	case name == "":
		return "Please tell me your name."
	case email == "":
		return "Please include an email address."
	case message == "":
		return "The message is empty."
	case utf8.RuneCountInString(message) > maxContactMessage:
		return "The message is too long."
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "That email address does not look right."
	}
	return ""
}
