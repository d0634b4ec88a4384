package coursekey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		courseID string
		want     Key
		wantErr  bool
	}{
		{
			name:     "locator format",
			courseID: "course-v1:edX+DemoX+Demo_Course",
			want:     Key{Org: "edX", Course: "DemoX", Run: "Demo_Course"},
		},
		{
			name:     "legacy slash format",
			courseID: "edX/DemoX/Demo_Course",
			want:     Key{Org: "edX", Course: "DemoX", Run: "Demo_Course"},
		},
		{
			name:     "empty",
			courseID: "",
			wantErr:  true,
		},
		{
			name:     "no separators",
			courseID: "edX",
			wantErr:  true,
		},
		{
			name:     "missing run segment",
			courseID: "course-v1:edX+DemoX",
			wantErr:  true,
		},
		{
			name:     "too many segments",
			courseID: "edX/DemoX/Demo/Extra",
			wantErr:  true,
		},
		{
			name:     "empty org segment",
			courseID: "course-v1:+DemoX+Demo_Course",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := Parse(tt.courseID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *key)
		})
	}
}

func TestOrg(t *testing.T) {
	org, err := Org("course-v1:HarvardX+CS50+2024")
	require.NoError(t, err)
	assert.Equal(t, "HarvardX", org)

	_, err = Org("not-a-course-id")
	assert.Error(t, err)
}
