// Copyright (c) 2026 Herdcount. All rights reserved.

package schema

// FieldCountEventTable represents the 'field.countevent' table
type FieldCountEventTable struct {
	Table      string
	ID         string
	DeviceID   string
	Count      string
	AnimalType string
	RecordedAt string
}

// FieldCountEvent is the schema definition for field.countevent
var FieldCountEvent = FieldCountEventTable{
	Table:      "field.countevent",
	ID:         "id",
	DeviceID:   "deviceid",
	Count:      "count",
	AnimalType: "animaltype",
	RecordedAt: "recordedat",
}
