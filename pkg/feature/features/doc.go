// Package features contains the builtin features shipped with the framework.
package features
