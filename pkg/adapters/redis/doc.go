// Package redis provides a Redis backed StatStore and DistributedLocker.
package redis
