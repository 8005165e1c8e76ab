package model

import "time"

// Service is a treatment offered by the salon, as stored in the `services`
// table.  Services are read-only to customers; admins create or deactivate
// them.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – display name, e.g. 抗衰老面部护理.
//  Description     – short marketing description.
//  Price           – price in whole yuan (positive).
//  DurationMinutes – length of the treatment in minutes (positive).
//  Category        – grouping used by the catalog filter (面部护理, 美甲服务...).
//  ImageURL        – optional illustration.
//  IsActive        – inactive services are hidden from the catalog.
//  CreatedAt       – creation timestamp; the catalog is ordered by it.
type Service struct {
	ID              uint64    `json:"id"`                  // services.id
	Name            string    `json:"name"`                // services.name
	Description     string    `json:"description"`         // services.description
	Price           uint32    `json:"price"`               // services.price
	DurationMinutes uint32    `json:"duration_minutes"`    // services.duration_minutes
	Category        string    `json:"category"`            // services.category
	ImageURL        string    `json:"image_url,omitempty"` // services.image_url
	IsActive        bool      `json:"is_active"`           // services.is_active
	CreatedAt       time.Time `json:"created_at"`          // services.created_at
}

// ServiceSummary is the subset of a service joined onto booking listings.
type ServiceSummary struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	DurationMinutes uint32 `json:"duration_minutes"`
	Price           uint32 `json:"price"`
	Category        string `json:"category"`
	ImageURL        string `json:"image_url,omitempty"`
}
