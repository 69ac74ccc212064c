// Package paginate turns a list request into criteria and store options,
// runs the page fetch and the total count together and wraps the result in
// a {meta, data} envelope.
package paginate
