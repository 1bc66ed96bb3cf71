// Copyright (c) 2026 Herdcount. All rights reserved.

package schema

// FieldDeviceTable represents the 'field.device' table
type FieldDeviceTable struct {
	Table        string
	ID           string
	Name         string
	Location     string
	Status       string
	RegisteredAt string
	LastSeenAt   string
}

// FieldDevice is the schema definition for field.device
var FieldDevice = FieldDeviceTable{
	Table:        "field.device",
	ID:           "id",
	Name:         "name",
	Location:     "location",
	Status:       "status",
	RegisteredAt: "registeredat",
	LastSeenAt:   "lastseenat",
}
