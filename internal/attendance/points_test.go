package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryStudyHours, ParseCategory("study_hours"))
	assert.Equal(t, CategoryVolunteer, ParseCategory("volunteer_event"))
	assert.Equal(t, CategoryMeeting, ParseCategory("general_meeting"))
	assert.Equal(t, CategoryUnconfigured, ParseCategory(""))
	assert.Equal(t, CategoryUnconfigured, ParseCategory("studyhours"))

	// String は Parse の逆（Unconfigured は空文字）
	for _, c := range []Category{CategoryStudyHours, CategoryVolunteer, CategoryMeeting, CategorySocial, CategoryWorkshop} {
		assert.Equal(t, c, ParseCategory(c.String()))
	}
	assert.Equal(t, "", CategoryUnconfigured.String())
}

func TestSignInDelta(t *testing.T) {
	p := PointParams{SignIn: 3, SignOut: 1, PerHour: 2}

	for _, c := range []Category{CategoryStudyHours, CategoryVolunteer, CategoryMeeting, CategorySocial, CategoryWorkshop} {
		got, err := SignInDelta(c, p)
		require.NoError(t, err)
		assert.Equal(t, 3.0, got)
	}

	_, err := SignInDelta(CategoryUnconfigured, p)
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeInternal, api.Code)
}

func TestSignOutDelta(t *testing.T) {
	in := mustTime(t, "2024-06-01T10:00:00Z")
	out := mustTime(t, "2024-06-01T12:30:00Z") // 2.5h
	p := PointParams{SignOut: 1, PerHour: 2}

	t.Run("study hours uses fractional hours", func(t *testing.T) {
		got, err := SignOutDelta(CategoryStudyHours, &in, out, p)
		require.NoError(t, err)
		assert.InDelta(t, 1+2.5*2, got, 1e-9) // = 6
	})

	t.Run("volunteer floors to whole hours", func(t *testing.T) {
		got, err := SignOutDelta(CategoryVolunteer, &in, out, p)
		require.NoError(t, err)
		assert.InDelta(t, 1+2*2, got, 1e-9) // = 5
	})

	t.Run("other categories have no accrual", func(t *testing.T) {
		for _, c := range []Category{CategoryMeeting, CategorySocial, CategoryWorkshop} {
			got, err := SignOutDelta(c, &in, out, p)
			require.NoError(t, err)
			assert.Equal(t, 1.0, got)
		}
	})

	t.Run("no sign-in means no accrual", func(t *testing.T) {
		got, err := SignOutDelta(CategoryStudyHours, nil, out, p)
		require.NoError(t, err)
		assert.Equal(t, 1.0, got)
	})

	t.Run("sign-in not strictly before sign-out means no accrual", func(t *testing.T) {
		same := out
		got, err := SignOutDelta(CategoryStudyHours, &same, out, p)
		require.NoError(t, err)
		assert.Equal(t, 1.0, got)

		later := out.Add(time.Hour)
		got, err = SignOutDelta(CategoryStudyHours, &later, out, p)
		require.NoError(t, err)
		assert.Equal(t, 1.0, got)
	})

	t.Run("unconfigured is internal", func(t *testing.T) {
		_, err := SignOutDelta(CategoryUnconfigured, &in, out, p)
		var api *APIError
		require.ErrorAs(t, err, &api)
		assert.Equal(t, CodeInternal, api.Code)
	})

	t.Run("volunteer never exceeds study hours for the same stay", func(t *testing.T) {
		for _, d := range []time.Duration{10 * time.Minute, time.Hour, 90 * time.Minute, 7*time.Hour + 59*time.Minute} {
			o := in.Add(d)
			study, err := SignOutDelta(CategoryStudyHours, &in, o, p)
			require.NoError(t, err)
			vol, err := SignOutDelta(CategoryVolunteer, &in, o, p)
			require.NoError(t, err)
			assert.LessOrEqual(t, vol, study, "duration %s", d)
		}
	})
}
