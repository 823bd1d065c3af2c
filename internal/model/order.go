package model

import (
	"fmt"
	"strconv"
)

type Customer struct {
	FirstName string `json:"first_name" validate:"required,alphaunicode"`
	LastName  string `json:"last_name" validate:"required,alphaunicode"`
	Email     string `json:"email" validate:"required,orderemail"`
}

func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Order is one row of the orders worksheet.
type Order struct {
	Customer
	ShoeSize        float64     `json:"shoe_size" validate:"gte=19,lte=50,halfsize"`
	Arch            ArchHeight  `json:"arch_height" validate:"oneof=Low Medium High"`
	Width           InsoleWidth `json:"insole_width" validate:"oneof=Narrow Standard Wide"`
	Number          int64       `json:"order_no"`
	OrderedAt       string      `json:"order_date"`
	Status          Status      `json:"status"`
	StatusUpdatedAt string      `json:"status_update_time"`
	Row             int         `json:"row"`
}

// NumberString renders the order number the way it is stored in column G.
func (o Order) NumberString() string {
	return strconv.FormatInt(o.Number, 10)
}

// SizeString renders the shoe size with one decimal, e.g. "25.0".
func (o Order) SizeString() string {
	return strconv.FormatFloat(o.ShoeSize, 'f', 1, 64)
}

type ArchHeight string

const (
	ArchLow    ArchHeight = "Low"
	ArchMedium ArchHeight = "Medium"
	ArchHigh   ArchHeight = "High"
)

type InsoleWidth string

const (
	WidthNarrow   InsoleWidth = "Narrow"
	WidthStandard InsoleWidth = "Standard"
	WidthWide     InsoleWidth = "Wide"
)

type Status string

const (
	StatusNew              Status = "NEW ORDER"
	StatusPending          Status = "PENDING"
	StatusUpdated          Status = "UPDATED ORDER"
	StatusCreated          Status = "CREATED"
	StatusAccepted         Status = "ACCEPTED"
	StatusDesigned         Status = "DESIGNED"
	StatusSubmittedToPrint Status = "SUBMITTED TO PRINT"
	StatusCanceled         Status = "CANCELED"
)

var statuses = []Status{
	StatusNew,
	StatusPending,
	StatusUpdated,
	StatusCreated,
	StatusAccepted,
	StatusDesigned,
	StatusSubmittedToPrint,
	StatusCanceled,
}

func ParseStatus(s string) (Status, error) {
	for _, st := range statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Modifiable reports whether an order in this status may still be edited or
// cancelled by the customer.
func (s Status) Modifiable() bool {
	switch s {
	case StatusNew, StatusPending, StatusUpdated, StatusCreated, StatusAccepted, StatusDesigned:
		return true
	}
	return false
}

// CanTransition reports whether staff may move an order from s to next.
// Canceled orders are frozen; printed orders may only be canceled.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusCanceled:
		return false
	case StatusSubmittedToPrint:
		return next == StatusCanceled
	}
	return true
}
