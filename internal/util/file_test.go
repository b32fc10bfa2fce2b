package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatasetExt(t *testing.T) {
	cases := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"data.csv", ".csv", false},
		{"data.CSV", ".csv", false},
		{"data.json", ".json", false},
		{"data.Json", ".json", false},
		{"data.txt", ".txt", true},
		{"data", "", true},
		{"archive.csv.zip", ".zip", true},
	}
	for _, tc := range cases {
		ext, err := DatasetExt(tc.name)
		if tc.wantErr {
			assert.True(t, errors.Is(err, ErrInvalidFileType), tc.name)
		} else {
			assert.NoError(t, err, tc.name)
			assert.Equal(t, tc.want, ext, tc.name)
		}
	}
}

func TestSafeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"data.csv", "data.csv"},
		{"dir/data.csv", "data.csv"},
		{"../../etc/passwd", "passwd"},
		{`c:\upload\data.csv`, "data.csv"},
		{"a\\b\\data.csv", "data.csv"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SafeFilename(tc.in), tc.in)
	}
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("7", 1))
	assert.Equal(t, 1, ParseIntDefault("abc", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))
	assert.Equal(t, 1, ParseIntDefault("0", 1))
	assert.Equal(t, 1, ParseIntDefault("-3", 1))
}
