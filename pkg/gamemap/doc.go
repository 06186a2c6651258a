// Package gamemap holds map metadata: markers, chest markers and their file format.
package gamemap
