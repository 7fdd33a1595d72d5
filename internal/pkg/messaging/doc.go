// Package messaging is a broker-agnostic publish/consume client.
//
// Two drivers are provided: Kafka (segmentio/kafka-go, consumer groups with
// explicit offset commits) and NATS (queue subscriptions). Handlers receive a
// Message; with auto-ack the wrapper acks on success and nacks on error or
// panic.
package messaging
