// Package viewmodel merges stored records with resolved asset URLs into
// render-ready values. Nothing here performs I/O and source records are never
// modified.
package viewmodel
