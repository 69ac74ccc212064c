// Package httpapi adapts lister services to net/http handlers.
package httpapi
