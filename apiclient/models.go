package apiclient

import (
	"time"

	"github.com/far7tna/portal/credentials"
)

type Category struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type Product struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	VendorID    string  `json:"vendorId,omitempty"`
}

type Service struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	CategoryID  string  `json:"categoryId,omitempty"`
	VendorID    string  `json:"vendorId,omitempty"`
	IsActive    bool    `json:"isActive"`
}

type Vendor struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	IsApproved bool   `json:"isApproved"`
}

// Account is a user as seen by the admin user list.
type Account struct {
	ID       string           `json:"id,omitempty"`
	FullName string           `json:"fullName"`
	Email    string           `json:"email"`
	Role     credentials.Role `json:"role"`
	IsActive bool             `json:"isActive"`
}

type Review struct {
	ID         string    `json:"id,omitempty"`
	ServiceID  string    `json:"serviceId"`
	CustomerID string    `json:"customerId,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

type Booking struct {
	ID          string    `json:"id,omitempty"`
	ServiceID   string    `json:"serviceId"`
	CustomerID  string    `json:"customerId,omitempty"`
	VendorID    string    `json:"vendorId,omitempty"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduledAt,omitempty"`
}

type Notification struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Broadcast is an admin announcement sent to an audience role, or everyone when empty.
type Broadcast struct {
	ID       string           `json:"id,omitempty"`
	Title    string           `json:"title"`
	Message  string           `json:"message"`
	Audience credentials.Role `json:"audience,omitempty"`
}
