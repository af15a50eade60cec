// Package provider implements a generic provider framework using Go generics
// for swappable backends with runtime switching capabilities.
//
// It provides a registry for managing multiple provider implementations with
// factory-based instantiation, availability checking, and runtime selection.
//
// # Usage
//
//	reg := provider.NewRegistry[MyProvider]()
//	reg.RegisterFactory("default", myFactory)
//	p, err := reg.Create("default", nil)
//
// This package backs every swappable infrastructure dependency the engine
// sits on top of: database.DB, redis.Client, storage.Component, and
// kafka/producer.Producer all implement Provider so the pipeline store, suspend
// cache, snapshot archive, and event publisher can be resolved, health
// checked, and swapped the same way regardless of backend.
package provider
