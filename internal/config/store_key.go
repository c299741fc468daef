package config

// StoreKeyStruct centralizes every key the host side uses in the
// durable snapshot store and the Redis fast lane.
type StoreKeyStruct struct {
	// Snapshot is the single durable key holding the full working set
	// (batches, exam history, user metrics) as JSON.
	Snapshot string
	// LatestReport is the Redis cache key for the most recent analysis
	// report.
	LatestReport string
	// EventsChannel is the Redis pub/sub channel engine messages are
	// fanned out on for WebSocket delivery.
	EventsChannel string
}

var StoreKey = &StoreKeyStruct{
	Snapshot:      "engine:snapshot",
	LatestReport:  "engine:report:latest",
	EventsChannel: "engine:events",
}
