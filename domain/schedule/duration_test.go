package schedule_test

import (
	"errors"
	"taskflow/bizerror"
	"taskflow/domain/schedule"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Duration", func() {
	kolkata, _ := time.LoadLocation("Asia/Kolkata")

	Describe("MinutesPerDay", func() {
		It("should use eight hours for the default schedule", func() {
			Expect(schedule.MinutesPerDay(nil)).To(Equal(480.0))
		})

		It("should average over working days only, short fridays included", func() {
			slots := []schedule.Slot{
				{Day: time.Monday, Start: "09:00", End: "17:00"},
				{Day: time.Tuesday, Start: "09:00", End: "17:00"},
				{Day: time.Wednesday, Start: "09:00", End: "17:00"},
				{Day: time.Thursday, Start: "09:00", End: "17:00"},
				{Day: time.Friday, Start: "09:00", End: "13:00"},
			}
			Expect(schedule.MinutesPerDay(slots)).To(Equal(432.0))
		})

		It("should sum split windows of a day", func() {
			slots := []schedule.Slot{
				{Day: time.Monday, Start: "09:00", End: "12:00"},
				{Day: time.Monday, Start: "13:00", End: "18:00"},
				{Day: time.Tuesday, Start: "10:00", End: "13:00"},
			}
			Expect(schedule.MinutesPerDay(slots)).To(Equal(330.0))
		})

		It("should never go below one hour", func() {
			slots := []schedule.Slot{{Day: time.Monday, Start: "09:00", End: "09:30"}}
			Expect(schedule.MinutesPerDay(slots)).To(Equal(60.0))
		})
	})

	Describe("Advance", func() {
		tuesdayMorning := time.Date(2025, 5, 27, 9, 0, 0, 0, kolkata)

		It("should match the regression fixture of 16 hours from tuesday morning", func() {
			start, err := schedule.ParseInstant("2025-05-27T09:00:00", kolkata)
			Expect(err).To(BeNil())
			end, err := schedule.Advance(start, 16, schedule.UnitHours, kolkata, nil, nil, nil)
			Expect(err).To(BeNil())
			Expect(end.Format("2006-01-02T15:04:05.000Z07:00")).To(Equal("2025-05-28T11:30:00.000Z"))
			Expect(end.Location()).To(Equal(time.UTC))
		})

		It("should convert days with the average day length", func() {
			end, err := schedule.Advance(tuesdayMorning, 2, schedule.UnitDays, kolkata, nil, nil, nil)
			Expect(err).To(BeNil())
			Expect(end.Equal(time.Date(2025, 5, 28, 17, 0, 0, 0, kolkata))).To(BeTrue())

			shortFriday := []schedule.Slot{
				{Day: time.Monday, Start: "09:00", End: "17:00"},
				{Day: time.Tuesday, Start: "09:00", End: "17:00"},
				{Day: time.Wednesday, Start: "09:00", End: "17:00"},
				{Day: time.Thursday, Start: "09:00", End: "17:00"},
				{Day: time.Friday, Start: "09:00", End: "13:00"},
			}
			// one day is 432 minutes: 7h12m
			end, err = schedule.Advance(time.Date(2025, 5, 26, 9, 0, 0, 0, time.UTC), 1, schedule.UnitDays, time.UTC, shortFriday, nil, nil)
			Expect(err).To(BeNil())
			Expect(end).To(Equal(time.Date(2025, 5, 26, 16, 12, 0, 0, time.UTC)))
		})

		It("should stop exactly at the end of a slot when the slot width is consumed", func() {
			end, err := schedule.Advance(tuesdayMorning, 8, schedule.UnitHours, kolkata, nil, nil, nil)
			Expect(err).To(BeNil())
			Expect(end.Equal(time.Date(2025, 5, 27, 17, 0, 0, 0, kolkata))).To(BeTrue())
		})

		It("should consume almost nothing for a tiny quantity", func() {
			end, err := schedule.Advance(tuesdayMorning, 1e-9, schedule.UnitHours, kolkata, nil, nil, nil)
			Expect(err).To(BeNil())
			Expect(end.Sub(tuesdayMorning)).To(BeNumerically("<", time.Second))
		})

		It("should be monotonic in quantity", func() {
			previous := tuesdayMorning
			for _, q := range []float64{0.5, 1, 7.99, 8, 8.01, 16, 40, 41.5} {
				end, err := schedule.Advance(tuesdayMorning, q, schedule.UnitHours, kolkata, nil, nil, nil)
				Expect(err).To(BeNil())
				Expect(end.Before(previous)).To(BeFalse())
				previous = end
			}
		})

		It("should start at the next window when the start is outside working time", func() {
			saturday := time.Date(2025, 5, 31, 20, 0, 0, 0, time.UTC)
			end, err := schedule.Advance(saturday, 1, schedule.UnitHours, time.UTC, nil, nil, nil)
			Expect(err).To(BeNil())
			Expect(end).To(Equal(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)))

			lateTuesday := time.Date(2025, 5, 27, 16, 30, 0, 0, time.UTC)
			end, err = schedule.Advance(lateTuesday, 1, schedule.UnitHours, time.UTC, nil, nil, nil)
			Expect(err).To(BeNil())
			Expect(end).To(Equal(time.Date(2025, 5, 28, 9, 30, 0, 0, time.UTC)))
		})

		It("should skip holidays and leave dates", func() {
			start := time.Date(2025, 5, 27, 9, 0, 0, 0, time.UTC)
			holidays := schedule.NewDateSet("2025-05-28")
			leaves := schedule.NewDateSet("2025-05-29")
			end, err := schedule.Advance(start, 16, schedule.UnitHours, time.UTC, nil, holidays, leaves)
			Expect(err).To(BeNil())
			Expect(end).To(Equal(time.Date(2025, 5, 30, 17, 0, 0, 0, time.UTC)))
		})

		It("should walk split windows in start order", func() {
			slots := []schedule.Slot{
				{Day: time.Tuesday, Start: "13:00", End: "17:00"},
				{Day: time.Tuesday, Start: "09:00", End: "12:00"},
			}
			start := time.Date(2025, 5, 27, 10, 0, 0, 0, time.UTC)
			end, err := schedule.Advance(start, 3, schedule.UnitHours, time.UTC, slots, nil, nil)
			Expect(err).To(BeNil())
			Expect(end).To(Equal(time.Date(2025, 5, 27, 14, 0, 0, 0, time.UTC)))
		})

		It("should reject non positive quantities and unknown units", func() {
			_, err := schedule.Advance(tuesdayMorning, 0, schedule.UnitHours, kolkata, nil, nil, nil)
			Expect(errors.Is(err, bizerror.ErrInvalidQuantity)).To(BeTrue())
			_, err = schedule.Advance(tuesdayMorning, -1, schedule.UnitDays, kolkata, nil, nil, nil)
			Expect(errors.Is(err, bizerror.ErrInvalidQuantity)).To(BeTrue())
			_, err = schedule.Advance(tuesdayMorning, 1, schedule.Unit("WEEKS"), kolkata, nil, nil, nil)
			Expect(errors.Is(err, bizerror.ErrInvalidUnit)).To(BeTrue())
			_, err = schedule.Advance(time.Time{}, 1, schedule.UnitHours, kolkata, nil, nil, nil)
			Expect(errors.Is(err, bizerror.ErrInvalidInstant)).To(BeTrue())
		})

		It("should give up on schedules without any working time", func() {
			slots := []schedule.Slot{{Day: time.Monday, Start: "09:00", End: "09:00"}}
			_, err := schedule.Advance(tuesdayMorning, 1, schedule.UnitHours, kolkata, slots, nil, nil)
			Expect(errors.Is(err, bizerror.ErrScheduleExhausted)).To(BeTrue())
		})

		It("should reject malformed slots", func() {
			slots := []schedule.Slot{{Day: time.Monday, Start: "9am", End: "17:00"}}
			_, err := schedule.Advance(tuesdayMorning, 1, schedule.UnitHours, kolkata, slots, nil, nil)
			Expect(errors.Is(err, bizerror.ErrInvalidSchedule)).To(BeTrue())
		})
	})
})
