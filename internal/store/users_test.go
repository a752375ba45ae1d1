package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordSetAndCompare(t *testing.T) {
	var p password
	require.NoError(t, p.Set("hunter2"))

	require.NoError(t, p.Compare("hunter2"))
	require.Error(t, p.Compare("wrong"))
}

func TestPasswordNeverMarshalled(t *testing.T) {
	u := User{Username: "alice", Role: RoleSeller}
	require.NoError(t, u.Password.Set("secret"))

	data, err := json.Marshal(u)
	require.NoError(t, err)
	require.NotContains(t, string(data), "secret")
	require.NotContains(t, string(data), "password")
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("seller")
	require.NoError(t, err)
	require.Equal(t, RoleSeller, role)

	role, err = ParseRole("manager")
	require.NoError(t, err)
	require.Equal(t, RoleManager, role)

	_, err = ParseRole("admin")
	require.Error(t, err)
}

func TestMeetingStatusValid(t *testing.T) {
	for _, s := range []MeetingStatus{StatusScheduled, StatusCompleted, StatusCancelled, StatusRescheduled} {
		require.True(t, s.Valid())
	}
	require.False(t, MeetingStatus("archived").Valid())
}

func TestPriorityValid(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		require.True(t, p.Valid())
	}
	require.False(t, Priority("urgent").Valid())
}
