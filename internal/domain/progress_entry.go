package domain

import (
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxNotesLength          = 1000
	maxMeasurementKeyLength = 64
)

// Measurements holds free-form body measurements (e.g. "waist" -> 81.5).
// Keys are caller-defined; values are centimetres/kilograms as the client
// chooses. Wire encoding is left to the serialization layer.
type Measurements map[string]float64

// Validate rejects empty or oversized keys and non-finite or negative values.
func (m Measurements) Validate() error {
	for key, value := range m {
		if key == "" || len(key) > maxMeasurementKeyLength {
			return errors.New("measurement keys must be 1-64 characters")
		}
		if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			return errors.New("measurement values must be finite and non-negative")
		}
	}
	return nil
}

// ProgressEntry is a self-reported progress snapshot owned by a Client.
type ProgressEntry struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID          primitive.ObjectID `bson:"clientId" json:"clientId"`
	EntryDate         time.Time          `bson:"entryDate" json:"entryDate"`
	WeightKg          *float64           `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	BodyFatPercentage *float64           `bson:"bodyFatPercentage,omitempty" json:"bodyFatPercentage,omitempty"`
	Measurements      Measurements       `bson:"measurements,omitempty" json:"measurements,omitempty"`
	// Object-storage keys of progress photos. Presigned URLs are
	// materialized at read time, never persisted.
	PhotoKeys []string  `bson:"photoKeys,omitempty" json:"photoKeys,omitempty"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"` // Immutable after creation
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks caller-supplied fields before persistence.
func (e *ProgressEntry) Validate() error {
	if e.EntryDate.IsZero() {
		return errors.New("entry date is required")
	}
	if len(e.Notes) > maxNotesLength {
		return errors.New("notes must not exceed 1000 characters")
	}
	if e.WeightKg != nil && (*e.WeightKg <= 0 || *e.WeightKg > 500) {
		return errors.New("weight must be between 0 and 500 kg")
	}
	if e.BodyFatPercentage != nil && (*e.BodyFatPercentage < 0 || *e.BodyFatPercentage > 100) {
		return errors.New("body fat percentage must be between 0 and 100")
	}
	return e.Measurements.Validate()
}
