package models

import (
	"fmt"
	"time"
)

// ReservationField names one editable input of the reservation form
type ReservationField string

const (
	FieldDate         ReservationField = "date"
	FieldTime         ReservationField = "time"
	FieldPartySize    ReservationField = "partySize"
	FieldContactName  ReservationField = "contactName"
	FieldContactPhone ReservationField = "contactPhone"
)

// ReservationFields lists the form inputs in display order
var ReservationFields = []ReservationField{
	FieldDate,
	FieldTime,
	FieldPartySize,
	FieldContactName,
	FieldContactPhone,
}

// ReservationForm holds the raw text the user has typed so far
type ReservationForm struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	PartySize    string `json:"partySize"`
	ContactName  string `json:"contactName"`
	ContactPhone string `json:"contactPhone"`
}

// Get returns the value of a form field
func (f ReservationForm) Get(field ReservationField) (string, error) {
	switch field {
	case FieldDate:
		return f.Date, nil
	case FieldTime:
		return f.Time, nil
	case FieldPartySize:
		return f.PartySize, nil
	case FieldContactName:
		return f.ContactName, nil
	case FieldContactPhone:
		return f.ContactPhone, nil
	}
	return "", fmt.Errorf("unknown reservation field %q", field)
}

// Set returns a copy of the form with field replaced by value
func (f ReservationForm) Set(field ReservationField, value string) (ReservationForm, error) {
	switch field {
	case FieldDate:
		f.Date = value
	case FieldTime:
		f.Time = value
	case FieldPartySize:
		f.PartySize = value
	case FieldContactName:
		f.ContactName = value
	case FieldContactPhone:
		f.ContactPhone = value
	default:
		return f, fmt.Errorf("unknown reservation field %q", field)
	}
	return f, nil
}

// ReservationRequest is the immutable snapshot handed to the reservation service
type ReservationRequest struct {
	ID           string    `json:"id"`
	TableID      string    `json:"tableId"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	PartySize    int       `json:"partySize"`
	ContactName  string    `json:"contactName"`
	ContactPhone string    `json:"contactPhone"`
	CreatedAt    time.Time `json:"createdAt"`
}
