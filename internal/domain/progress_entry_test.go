package domain

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validEntry() ProgressEntry {
	weight := 80.0
	return ProgressEntry{
		EntryDate:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		WeightKg:     &weight,
		Measurements: Measurements{"waist": 84.0},
		Notes:        "steady progress",
	}
}

func TestProgressEntryValidate(t *testing.T) {
	entry := validEntry()
	assert.NoError(t, entry.Validate())

	entry = validEntry()
	entry.EntryDate = time.Time{}
	assert.Error(t, entry.Validate())

	entry = validEntry()
	entry.Notes = strings.Repeat("a", 1001)
	assert.Error(t, entry.Validate())

	entry = validEntry()
	weight := -1.0
	entry.WeightKg = &weight
	assert.Error(t, entry.Validate())

	entry = validEntry()
	bodyFat := 101.0
	entry.BodyFatPercentage = &bodyFat
	assert.Error(t, entry.Validate())
}

func TestMeasurementsValidate(t *testing.T) {
	assert.NoError(t, Measurements(nil).Validate())
	assert.NoError(t, Measurements{"waist": 84.0, "chest": 102.5}.Validate())

	assert.Error(t, Measurements{"": 10}.Validate())
	assert.Error(t, Measurements{strings.Repeat("k", 65): 10}.Validate())
	assert.Error(t, Measurements{"waist": -1}.Validate())
	assert.Error(t, Measurements{"waist": math.NaN()}.Validate())
	assert.Error(t, Measurements{"waist": math.Inf(1)}.Validate())
}
