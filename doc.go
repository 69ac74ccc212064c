// Package lister exposes generic entity services whose Page method turns a
// list request into a paginated {meta, data} envelope over a bun database.
package lister
