package config

import "strings"

// Provider is a known SMTP service.
type Provider struct {
	Key    string
	Name   string
	Server string
	Port   int
}

var Providers = []Provider{
	{Key: "gmail", Name: "Gmail", Server: "smtp.gmail.com", Port: 587},
	{Key: "outlook", Name: "Outlook/Hotmail", Server: "smtp-mail.outlook.com", Port: 587},
	{Key: "yahoo", Name: "Yahoo", Server: "smtp.mail.yahoo.com", Port: 587},
	{Key: "icloud", Name: "iCloud", Server: "smtp.mail.me.com", Port: 587},
}

// LookupProvider finds a provider by key, case-insensitively.
func LookupProvider(key string) (Provider, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, p := range Providers {
		if p.Key == key {
			return p, true
		}
	}
	return Provider{}, false
}
