package schedule_test

import (
	"errors"
	"taskflow/bizerror"
	"taskflow/domain/schedule"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Slots", func() {
	Describe("ResolveSlots", func() {
		It("should supply monday to friday 09:00-17:00 when nothing is configured", func() {
			slots := schedule.ResolveSlots(nil)
			Expect(len(slots)).To(Equal(5))
			for idx, slot := range slots {
				Expect(slot).To(Equal(schedule.Slot{Day: time.Monday + time.Weekday(idx), Start: "09:00", End: "17:00"}))
			}
			Expect(schedule.ResolveSlots([]schedule.Slot{})).To(Equal(slots))
		})

		It("should order slots by day and start without touching the input", func() {
			raw := []schedule.Slot{
				{Day: time.Wednesday, Start: "13:00", End: "17:00"},
				{Day: time.Monday, Start: "09:00", End: "12:00"},
				{Day: time.Wednesday, Start: "08:30", End: "12:00"},
			}
			slots := schedule.ResolveSlots(raw)
			Expect(slots).To(Equal([]schedule.Slot{
				{Day: time.Monday, Start: "09:00", End: "12:00"},
				{Day: time.Wednesday, Start: "08:30", End: "12:00"},
				{Day: time.Wednesday, Start: "13:00", End: "17:00"},
			}))
			Expect(raw[0].Day).To(Equal(time.Wednesday))
		})
	})

	Describe("ParseClock", func() {
		It("should convert clocks into minutes of day", func() {
			Expect(schedule.ParseClock("00:00")).To(Equal(0))
			Expect(schedule.ParseClock("09:30")).To(Equal(570))
			Expect(schedule.ParseClock("24:00")).To(Equal(1440))
		})
		It("should reject malformed clocks", func() {
			for _, v := range []string{"", "9", "aa:bb", "24:01", "12:60", "-1:00"} {
				_, err := schedule.ParseClock(v)
				Expect(err).ToNot(BeNil(), v)
			}
		})
	})

	Describe("ValidateSlots", func() {
		It("should accept the default schedule", func() {
			Expect(schedule.ValidateSlots(schedule.ResolveSlots(nil))).To(BeNil())
		})
		It("should reject inverted windows and unknown days", func() {
			err := schedule.ValidateSlots([]schedule.Slot{{Day: time.Monday, Start: "17:00", End: "09:00"}})
			Expect(errors.Is(err, bizerror.ErrInvalidSchedule)).To(BeTrue())

			err = schedule.ValidateSlots([]schedule.Slot{{Day: time.Weekday(7), Start: "09:00", End: "17:00"}})
			Expect(errors.Is(err, bizerror.ErrInvalidSchedule)).To(BeTrue())
		})
	})

	Describe("IsInstantWithinSchedule", func() {
		kolkata, _ := time.LoadLocation("Asia/Kolkata")
		slots := schedule.ResolveSlots(nil)

		It("should include both bounds of a slot", func() {
			Expect(schedule.IsInstantWithinSchedule(time.Date(2025, 5, 27, 9, 0, 0, 0, kolkata), slots, kolkata)).To(BeTrue())
			Expect(schedule.IsInstantWithinSchedule(time.Date(2025, 5, 27, 17, 0, 59, 0, kolkata), slots, kolkata)).To(BeTrue())
			Expect(schedule.IsInstantWithinSchedule(time.Date(2025, 5, 27, 8, 59, 0, 0, kolkata), slots, kolkata)).To(BeFalse())
			Expect(schedule.IsInstantWithinSchedule(time.Date(2025, 5, 27, 17, 1, 0, 0, kolkata), slots, kolkata)).To(BeFalse())
		})

		It("should convert the instant into the given zone first", func() {
			// 03:30Z is 09:00 in Kolkata
			instant := time.Date(2025, 5, 27, 3, 30, 0, 0, time.UTC)
			Expect(schedule.IsInstantWithinSchedule(instant, slots, kolkata)).To(BeTrue())
			Expect(schedule.IsInstantWithinSchedule(instant, slots, time.UTC)).To(BeFalse())
		})

		It("should be false on days without slots", func() {
			Expect(schedule.IsInstantWithinSchedule(time.Date(2025, 5, 31, 10, 0, 0, 0, time.UTC), slots, time.UTC)).To(BeFalse())
		})
	})

	Describe("ParseInstant", func() {
		kolkata, _ := time.LoadLocation("Asia/Kolkata")

		It("should keep explicit offsets", func() {
			t, err := schedule.ParseInstant("2025-05-27T09:00:00Z", kolkata)
			Expect(err).To(BeNil())
			Expect(t.Equal(time.Date(2025, 5, 27, 9, 0, 0, 0, time.UTC))).To(BeTrue())
		})
		It("should read wall clock values in the given zone", func() {
			t, err := schedule.ParseInstant("2025-05-27T09:00:00", kolkata)
			Expect(err).To(BeNil())
			Expect(t.Equal(time.Date(2025, 5, 27, 3, 30, 0, 0, time.UTC))).To(BeTrue())

			t, err = schedule.ParseInstant("2025-05-27", kolkata)
			Expect(err).To(BeNil())
			Expect(t.Equal(time.Date(2025, 5, 26, 18, 30, 0, 0, time.UTC))).To(BeTrue())
		})
		It("should reject garbage", func() {
			_, err := schedule.ParseInstant("tomorrow", kolkata)
			Expect(errors.Is(err, bizerror.ErrInvalidInstant)).To(BeTrue())
		})
	})

	Describe("LoadZone", func() {
		It("should default to UTC and reject unknown zones", func() {
			Expect(schedule.LoadZone("")).To(Equal(time.UTC))
			_, err := schedule.LoadZone("Mars/Olympus")
			Expect(errors.Is(err, bizerror.ErrInvalidTimeZone)).To(BeTrue())
		})
	})

	Describe("DateSet", func() {
		It("should expand ranges and match dates in their own location", func() {
			set := schedule.NewDateSet("2025-05-01")
			Expect(set.AddRange("2025-05-28", "2025-05-30")).To(BeNil())
			Expect(len(set)).To(Equal(4))
			Expect(set.Contains(time.Date(2025, 5, 29, 23, 59, 0, 0, time.UTC))).To(BeTrue())
			Expect(set.Contains(time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC))).To(BeFalse())

			var empty schedule.DateSet
			Expect(empty.Contains(time.Now())).To(BeFalse())
		})
	})
})
