// Package feature holds the feature registry and the helpers feature authors
// embed. Builtin features live in the features subpackage.
//
// Configurable fields carry an `expose` tag:
//
//	type HealFeature struct {
//		feature.Base
//		Heal bool `expose:"heal"`
//	}
package feature
