/*
Package protocol implements the newline-delimited JSON wire protocol.

This file defines the Message envelope: a single JSON object whose fields are
all optional and presence-tested. Decoders accept any subset of the known
fields and ignore unknown ones. Helper constructors build the small set of
server responses the session machine emits.
*/
package protocol

import (
	"fmt"

	"weatherline/internal/app/weather"
)

// Role values accepted in the opening message.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Menu request types accepted while a user session is in the menu state.
const (
	TypeGetWeather     = "getWeather"
	TypeUpdateLocation = "updateLocation"
	TypeDisconnect     = "disconnect"
)

// Canonical server message texts.
const (
	TextExiting        = "Exiting..."
	TextUploadSuccess  = "JSON data uploaded successfully."
	TextUploadReprompt = "Please provide a valid file path or type 'exit' to quit."

	HeaderSetLocation = "Please set your current location:"
	HeaderOptions     = "Options:"

	OptionGetWeather     = "1. Get weather for current location"
	OptionChangeLocation = "2. Change current location"

	// TextNoForecast is sent in place of the forecast array when a stored
	// record has no forecast.
	TextNoForecast = "No forecast available."
)

// Message is the wire envelope. Every field is optional; nil means absent.
// Forecast is either a []weather.ForecastEntry or the placeholder string.
type Message struct {
	Role            *string `json:"role,omitempty"`
	FilePath        *string `json:"filePath,omitempty"`
	Username        *string `json:"username,omitempty"`
	CurrentLocation *string `json:"currentLocation,omitempty"`
	Type            *string `json:"type,omitempty"`

	Header  *string `json:"header,omitempty"`
	Text    *string `json:"message,omitempty"`
	Error   *string `json:"error,omitempty"`
	Option1 *string `json:"option1,omitempty"`
	Option2 *string `json:"option2,omitempty"`

	Location           *string  `json:"location,omitempty"`
	CurrentWeather     *string  `json:"current_weather,omitempty"`
	CurrentTemperature *float64 `json:"current_temperature,omitempty"`
	Forecast           any      `json:"forecast,omitempty"`
}

func strPtr(s string) *string { return &s }

// NewText builds a plain informational message.
func NewText(text string) *Message {
	return &Message{Text: strPtr(text)}
}

// NewError builds an error response carrying the given description.
func NewError(description string) *Message {
	return &Message{Error: strPtr(description)}
}

// NewGreeting builds the welcome message sent after user registration.
func NewGreeting(username string) *Message {
	return NewText(fmt.Sprintf("Welcome, %s!", username))
}

// NewLocationPrompt builds the header prompt asking the user to set a location.
func NewLocationPrompt() *Message {
	return &Message{Header: strPtr(HeaderSetLocation)}
}

// NewMenu builds the options menu sent while a user session awaits a type request.
func NewMenu() *Message {
	return &Message{
		Header:  strPtr(HeaderOptions),
		Option1: strPtr(OptionGetWeather),
		Option2: strPtr(OptionChangeLocation),
	}
}

// NewWeatherReport builds the getWeather response for a stored record.
// A record without forecast entries carries the placeholder string instead.
func NewWeatherReport(rec weather.Record) *Message {
	msg := &Message{
		Location:           strPtr(rec.Location),
		CurrentWeather:     strPtr(rec.CurrentWeather),
		CurrentTemperature: &rec.CurrentTemperature,
	}
	if len(rec.Forecast) > 0 {
		msg.Forecast = rec.Forecast
	} else {
		msg.Forecast = TextNoForecast
	}
	return msg
}
