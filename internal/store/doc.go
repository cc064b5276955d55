// Package store implements the auth engine's UserStore and TokenStore
// contracts on a relational database. Two backends are supported: postgres
// (pgx) for deployments and sqlite for embedded use. Queries are built with
// squirrel so the placeholder format follows the driver.
package store
