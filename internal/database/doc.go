// Package database owns the canonical relational store: the GORM connection,
// schema migration, and the failure classification shared by every
// repository.
//
// Domain repositories live in sub-packages (books, annotations, lists,
// users). Each takes a *gorm.DB and implements a store interface declared by
// its consumer, verified in internal/interfaces.
package database
