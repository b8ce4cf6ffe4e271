package reminder

import (
	"testing"
	"time"

	c "reminderengine/internal/core/domain/common"

	"github.com/stretchr/testify/assert"
)

var Now = time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)

func TestIsDueAt(t *testing.T) {
	window := 10 * time.Second
	cases := []struct {
		id        string
		triggerAt time.Time
		active    bool
		expected  bool
	}{
		{id: "exactly now", triggerAt: Now, active: true, expected: true},
		{id: "5 seconds ago", triggerAt: Now.Add(-5 * time.Second), active: true, expected: true},
		{id: "window boundary", triggerAt: Now.Add(-window), active: true, expected: true},
		{id: "15 seconds ago is missed", triggerAt: Now.Add(-15 * time.Second), active: true, expected: false},
		{id: "hours ago is missed", triggerAt: Now.Add(-3 * time.Hour), active: true, expected: false},
		{id: "in the future", triggerAt: Now.Add(time.Second), active: true, expected: false},
		{id: "inactive", triggerAt: Now, active: false, expected: false},
	}

	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			r := Reminder{ID: 1, TriggerAt: testcase.triggerAt, Active: testcase.active}
			assert.Equal(t, testcase.expected, r.IsDueAt(Now, window))
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Reminder{ID: 1, TriggerAt: Now, Every: c.NewOptional(EveryDay, true)}
	assert.Nil(t, valid.Validate())
	assert.True(t, valid.IsRecurring())

	invalidEvery := Reminder{ID: 1, TriggerAt: Now, Every: c.NewOptional(NewEvery(0, PeriodDay), true)}
	assert.NotNil(t, invalidEvery.Validate())

	noTrigger := Reminder{ID: 1}
	assert.NotNil(t, noTrigger.Validate())
	assert.False(t, noTrigger.IsRecurring())
}
