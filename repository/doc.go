// Package repository provides a generic repository built on Bun: CRUD
// helpers plus the FindMany/Count pair used by list endpoints, which
// translates typed criteria into SQL and joins to-one relations on demand.
package repository
