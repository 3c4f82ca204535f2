package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAvailableDays(t *testing.T) {
	s := Schedule{StartDay: 1, EndDay: 5}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, s.AvailableDays())

	single := Schedule{StartDay: 3, EndDay: 3}
	assert.Equal(t, []int{3}, single.AvailableDays())
}

func TestCoversSlot(t *testing.T) {
	s := Schedule{StartDay: 1, EndDay: 5, StartTime: "09:00", EndTime: "17:00"}

	parse := func(value string) time.Time {
		ts, err := time.Parse(TimeLayout, value)
		assert.NoError(t, err)
		return ts
	}

	assert.True(t, s.CoversSlot(parse("2024/01/02 09:00")), "opening slot on a Tuesday")
	assert.True(t, s.CoversSlot(parse("2024/01/02 16:30")))
	assert.False(t, s.CoversSlot(parse("2024/01/02 17:00")), "end time is exclusive")
	assert.False(t, s.CoversSlot(parse("2024/01/02 08:30")))
	assert.False(t, s.CoversSlot(parse("2024/01/07 10:00")), "Sunday is outside days 1-5")
}

func TestCreateScheduleValidate(t *testing.T) {
	valid := CreateSchedule{
		Wallet:    "w1",
		Name:      "Office",
		StartDay:  1,
		EndDay:    5,
		StartTime: "09:00",
		EndTime:   "17:00",
		Amount:    1000,
	}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*CreateSchedule)
	}{
		{"day range inverted", func(c *CreateSchedule) { c.StartDay = 5; c.EndDay = 1 }},
		{"bad start time", func(c *CreateSchedule) { c.StartTime = "9 am" }},
		{"bad end time", func(c *CreateSchedule) { c.EndTime = "25:00" }},
		{"time range inverted", func(c *CreateSchedule) { c.StartTime = "17:00"; c.EndTime = "09:00" }},
		{"zero length window", func(c *CreateSchedule) { c.StartTime = "09:00"; c.EndTime = "09:00" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bad := valid
			tc.mutate(&bad)
			assert.Error(t, bad.Validate())
		})
	}
}

func TestUnavailableTimeBlocks(t *testing.T) {
	block := UnavailableTime{StartTime: "2024/01/02 09:00", EndTime: "2024/01/02 12:00"}
	assert.True(t, block.Blocks("2024/01/02 09:00"))
	assert.True(t, block.Blocks("2024/01/02 12:00"))
	assert.False(t, block.Blocks("2024/01/02 12:30"))
	assert.False(t, block.Blocks("2024/01/01 10:00"))
}
