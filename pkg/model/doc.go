// Package model defines the database models for the package index:
// projects, releases, files, users, API tokens, observations, and the
// supporting journal and prohibition tables.
package model
