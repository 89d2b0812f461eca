// Package validate collects per-field input errors and checks uploaded photos
package validate

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// MaxPhotoSize is the largest accepted decoded image
const MaxPhotoSize = 2 * 1024 * 1024

// Errors maps field name to a human-readable problem. It implements error and is returned by
// services when input is rejected, nothing is persisted in that case.
type Errors map[string]string

// Add records the first problem for the field
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Err returns nil if no problems were recorded
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

var dataURLRe = regexp.MustCompile(`^data:([a-zA-Z0-9.+-]+/[a-zA-Z0-9.+-]+);base64,(.*)$`)

// Photo checks a base64 data URL. Empty photo is accepted. If allowed is empty any image/* type
// passes, otherwise the media type must be one of allowed.
func Photo(dataURL string, allowed ...string) error {
	if dataURL == "" {
		return nil
	}
	m := dataURLRe.FindStringSubmatch(dataURL)
	if m == nil {
		return fmt.Errorf("photo must be a base64 data URL")
	}
	mediaType := strings.ToLower(m[1])
	if !strings.HasPrefix(mediaType, "image/") {
		return fmt.Errorf("please select an image file")
	}
	if len(allowed) > 0 && !slices.Contains(allowed, mediaType) {
		return fmt.Errorf("only %s images are allowed", strings.Join(allowed, ", "))
	}
	if base64.StdEncoding.DecodedLen(len(m[2])) > MaxPhotoSize+2 {
		return fmt.Errorf("image must be less than %dMB", MaxPhotoSize/1024/1024)
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return fmt.Errorf("photo is not valid base64: %w", err)
	}
	if len(data) > MaxPhotoSize {
		return fmt.Errorf("image must be less than %dMB", MaxPhotoSize/1024/1024)
	}
	return nil
}
