// Package models contains the GORM persistence models of the collections
// store. Domain entities carry no ORM tags; repositories convert between the
// two with ToDomain / FromDomain.
//
//   - base.go: identity and audit columns
//   - collection.go: customers, loans and customer_interactions
package models
