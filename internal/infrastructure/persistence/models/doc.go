// Package models contains GORM persistence models. Domain types stay free of
// ORM tags; mapping happens through ToDomain and FromDomain.
package models
