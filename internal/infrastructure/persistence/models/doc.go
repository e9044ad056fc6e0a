// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by every table with an ID and timestamps
// - rate.go: line items, rate overrides and the rate views of users and roles
// - uuid_list.go: JSON-encoded UUID list column type
package models
