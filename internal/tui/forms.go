package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/sadopc/timebill/internal/store"
	"github.com/sadopc/timebill/internal/timer"
	"github.com/shopspring/decimal"
)

var currencies = []string{"EUR", "USD", "GBP", "CHF"}

// ProjectForm asks for the fields of a new project. Values already set
// in p are used as defaults.
func ProjectForm(p *store.NewProject) error {
	rate := ""
	if p.Rate != nil {
		rate = decimal.NewFromFloat(*p.Rate).String()
	}
	if p.Currency == "" {
		p.Currency = store.DefaultCurrency
	}

	if err := projectForm(p, &rate).Run(); err != nil {
		return err
	}

	r, err := parseRate(rate)
	if err != nil {
		return err
	}
	p.Rate = r
	return nil
}

func projectForm(p *store.NewProject, rate *string) *huh.Form {
	currencyOptions := make([]huh.Option[string], len(currencies))
	for i, c := range currencies {
		currencyOptions[i] = huh.NewOption(c, c)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(&p.Name).Validate(validateName),
			huh.NewInput().Title("Description").Value(&p.Description),
			huh.NewInput().
				Title("Default Email").
				Placeholder("billing@client.com").
				Value(&p.DefaultEmail).
				Validate(validateOptionalEmail),
			huh.NewInput().
				Title("Hourly Rate").
				Placeholder("blank for no rate").
				Value(rate).
				Validate(validateRate),
			huh.NewSelect[string]().Title("Currency").Options(currencyOptions...).Value(&p.Currency),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(false)
}

// PasswordPrompt reads a secret without echoing it.
func PasswordPrompt(title string) (string, error) {
	var value string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				EchoMode(huh.EchoModePassword).
				Value(&value),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(false).Run()
	return value, err
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return timer.ErrEmptyName
	}
	return nil
}

func validateOptionalEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || timer.ValidEmail(s) {
		return nil
	}
	return timer.ErrInvalidEmail
}

func validateRate(s string) error {
	_, err := parseRate(s)
	return err
}

// parseRate turns the rate field into a rate pointer; blank means none.
func parseRate(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.New("rate must be a number")
	}
	if d.IsNegative() {
		return nil, timer.ErrInvalidRate
	}
	f := d.InexactFloat64()
	return &f, nil
}
