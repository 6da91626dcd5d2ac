package domain

import (
	"time"
)

// SellerStatus represents the seller account state
type SellerStatus string

const (
	SellerStatusActive    SellerStatus = "active"
	SellerStatusSuspended SellerStatus = "suspended"
)

// Seller is an onboarded partner entitled to commissions on referred orders.
type Seller struct {
	CreatedAt time.Time    `json:"created_at"`
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Status    SellerStatus `json:"status"`
	// Timezone is the IANA name of the seller's reporting timezone.
	// Calendar-month and withdrawal-window boundaries are computed here,
	// never in the server's ambient zone.
	Timezone string `json:"timezone"`
}

// IsActive returns true if the seller account is active
func (s *Seller) IsActive() bool {
	return s.Status == SellerStatusActive
}

// Location resolves the seller's reporting timezone, falling back to UTC
// when the stored name is empty or unknown.
func (s *Seller) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
