// Package memory provides an in-memory StatStore, used by default and in tests.
package memory
