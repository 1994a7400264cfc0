// Package messaging publishes domain events to a broker.
//
// Business code depends on Publisher only; the broker (NATS, Kafka, NSQ,
// Google Pub/Sub) is chosen by configuration through NewFromDriver.
package messaging
