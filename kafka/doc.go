// Package kafka provides Kafka producer lifecycle management as a component.
//
// It wraps segmentio/kafka-go with this tree's conventions: health checking,
// graceful shutdown, metrics collection, and structured logging. The
// constellation facade uses it to publish execution lifecycle events
// (suspended/resumed/completed/failed) through kafka/producer.Publisher.
//
// # Architecture
//
//   - Component: runs injected consumers and closes the injected producer (Start/Stop/Health)
//   - kafka/producer: message publishing with delivery guarantees
//
// # Configuration
//
// All settings are provided via Config with ApplyDefaults()/Validate():
//
//	kafka:
//	  brokers: ["localhost:9092"]
//	  group_id: "my-group"
//	  topics: ["events"]
package kafka
