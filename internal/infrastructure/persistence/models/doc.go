// Package models holds the GORM row types the repositories read and write.
// Domain aggregates stay free of ORM tags; each model here carries the
// column mappings and converts to and from its domain counterpart.
//
// base.go defines the shared id/timestamp/version columns, identity.go maps
// users, partner.go maps customers, ledger.go maps transactions and
// auth.go maps token revocations.
package models
