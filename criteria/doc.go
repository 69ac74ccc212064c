// Package criteria models list filters as a small typed expression tree:
// field comparisons, nested relation conditions and AND/OR groups. It also
// folds dotted field paths into nested relations and merges ad-hoc filters
// with caller-forced ones in a fixed precedence order.
package criteria
