package validate

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	e := Errors{}
	require.NoError(t, e.Err())

	e.Add("phone", "Phone required")
	e.Add("phone", "Invalid phone format")
	e.Add("name", "Name required")
	err := e.Err()
	require.Error(t, err)
	assert.Equal(t, "validation failed: name: Name required, phone: Phone required", err.Error())

	var verr Errors
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Phone required", verr["phone"])
}

func TestPhoto(t *testing.T) {
	small := base64.StdEncoding.EncodeToString([]byte("fake image bytes"))
	big := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", MaxPhotoSize+1)))

	tests := []struct {
		name    string
		photo   string
		allowed []string
		wantErr string
	}{
		{name: "empty", photo: ""},
		{name: "png", photo: "data:image/png;base64," + small},
		{name: "any image type", photo: "data:image/webp;base64," + small},
		{name: "restricted type ok", photo: "data:image/gif;base64," + small, allowed: []string{"image/jpeg", "image/png", "image/gif"}},
		{name: "restricted type rejected", photo: "data:image/webp;base64," + small,
			allowed: []string{"image/jpeg", "image/png", "image/gif"}, wantErr: "only image/jpeg, image/png, image/gif images are allowed"},
		{name: "not an image", photo: "data:application/pdf;base64," + small, wantErr: "please select an image file"},
		{name: "not a data url", photo: "http://example.com/a.png", wantErr: "photo must be a base64 data URL"},
		{name: "too big", photo: "data:image/png;base64," + big, wantErr: "image must be less than 2MB"},
		{name: "bad base64", photo: "data:image/png;base64,###", wantErr: "photo is not valid base64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Photo(tt.photo, tt.allowed...)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
