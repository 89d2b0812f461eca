// Package config loads shop settings from a YAML file. Settings cover shop identity, timezone,
// retention windows, job numbering, notice templates and report terms. Missing values get defaults.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // shop timezone has to resolve on hosts without zoneinfo

	log "github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var embeddedSchemaData []byte

// Shop is the root of the settings file
type Shop struct {
	Name      string    `yaml:"name" json:"name" jsonschema:"description=shop name used in notices and reports,default=Nova Tech"`
	Address   string    `yaml:"address,omitempty" json:"address,omitempty" jsonschema:"description=shop address printed on reports"`
	Phone     string    `yaml:"phone,omitempty" json:"phone,omitempty" jsonschema:"description=shop phone printed on reports"`
	Timezone  string    `yaml:"timezone" json:"timezone" jsonschema:"description=IANA zone for dates and day boundaries,default=Asia/Kuala_Lumpur"`
	JobIDBase int       `yaml:"job_id_base" json:"job_id_base" jsonschema:"description=counter value before the first job id,minimum=0,default=999"`
	PageSize  int       `yaml:"page_size" json:"page_size" jsonschema:"description=jobs per page,minimum=1,maximum=500,default=12"`
	Retention Retention `yaml:"retention" json:"retention" jsonschema:"description=windows counted from the moment a job is done"`
	Templates Templates `yaml:"templates,omitempty" json:"templates,omitempty" jsonschema:"description=text/template sources for customer notices"`
	Terms     []string  `yaml:"terms" json:"terms" jsonschema:"description=terms and conditions printed on service reports"`

	loc *time.Location
}

// Retention in days
type Retention struct {
	PickupDays       int `yaml:"pickup_days" json:"pickup_days" jsonschema:"minimum=1,default=7"`
	ConfiscationDays int `yaml:"confiscation_days" json:"confiscation_days" jsonschema:"minimum=1,default=60"`
	FinalWarningDays int `yaml:"final_warning_days" json:"final_warning_days" jsonschema:"minimum=0,default=3"`
}

// Templates for notices, empty means built-in message
type Templates struct {
	Initial string `yaml:"initial,omitempty" json:"initial,omitempty" jsonschema:"description=ready for pickup notice"`
	Final   string `yaml:"final,omitempty" json:"final,omitempty" jsonschema:"description=final warning before confiscation"`
	Update  string `yaml:"update,omitempty" json:"update,omitempty" jsonschema:"description=manual status update message"`
}

// Default returns settings used when no file given
func Default() *Shop {
	res := &Shop{
		Name:      "Nova Tech",
		Timezone:  "Asia/Kuala_Lumpur",
		JobIDBase: 999,
		PageSize:  12,
		Retention: Retention{PickupDays: 7, ConfiscationDays: 60, FinalWarningDays: 3},
		Terms: []string{
			"1. 30-day warranty on repair workmanship.",
			"2. Customer responsible for data backup.",
			"3. Full payment required before device release.",
			"4. Not responsible for pre-existing conditions.",
		},
	}
	if err := res.Validate(); err != nil {
		panic(err) // defaults are always valid
	}
	return res
}

// Load reads settings from yaml file on top of defaults, empty path returns defaults
func Load(path string) (*Shop, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from cli flag
	if err != nil {
		return nil, fmt.Errorf("can't read config %s: %w", path, err)
	}

	if err := verifyKeys(data); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	res := Default()
	if err := yaml.Unmarshal(data, res); err != nil {
		return nil, fmt.Errorf("can't parse config %s: %w", path, err)
	}
	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	log.Printf("[INFO] shop config loaded from %s, %q in %s", path, res.Name, res.Timezone)
	return res, nil
}

// Validate checks values and resolves timezone
func (s *Shop) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("name is required")
	}
	if s.Timezone == "" {
		s.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", s.Timezone, err)
	}
	s.loc = loc

	if s.JobIDBase < 0 || s.JobIDBase > 999998 {
		return fmt.Errorf("job_id_base must be between 0 and 999998, got %d", s.JobIDBase)
	}
	if s.PageSize < 1 || s.PageSize > 500 {
		return fmt.Errorf("page_size must be between 1 and 500, got %d", s.PageSize)
	}

	r := s.Retention
	if r.PickupDays < 1 || r.ConfiscationDays < 1 {
		return fmt.Errorf("retention days must be positive, pickup %d, confiscation %d", r.PickupDays, r.ConfiscationDays)
	}
	if r.PickupDays > r.ConfiscationDays {
		return fmt.Errorf("pickup window %dd exceeds confiscation window %dd", r.PickupDays, r.ConfiscationDays)
	}
	if r.FinalWarningDays < 0 || r.FinalWarningDays >= r.ConfiscationDays {
		return fmt.Errorf("final warning %dd must be less than confiscation window %dd", r.FinalWarningDays, r.ConfiscationDays)
	}
	return nil
}

// Location returns shop timezone, UTC if settings were not validated
func (s *Shop) Location() *time.Location {
	if s.loc == nil {
		return time.UTC
	}
	return s.loc
}

// Pickup returns pickup window
func (r Retention) Pickup() time.Duration { return days(r.PickupDays) }

// Confiscation returns confiscation window
func (r Retention) Confiscation() time.Duration { return days(r.ConfiscationDays) }

// FinalWarning returns how long before confiscation the final warning goes out
func (r Retention) FinalWarning() time.Duration { return days(r.FinalWarningDays) }

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

// verifyKeys rejects top-level and retention keys not known to the embedded schema
func verifyKeys(data []byte) error {
	var schema struct {
		Defs map[string]struct {
			Properties map[string]json.RawMessage `json:"properties"`
		} `json:"$defs"`
	}
	if err := json.Unmarshal(embeddedSchemaData, &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("can't parse yaml: %w", err)
	}
	if err := unknownKey(raw, schema.Defs["Shop"].Properties, ""); err != nil {
		return err
	}
	if sub, ok := raw["retention"].(map[string]any); ok {
		if err := unknownKey(sub, schema.Defs["Retention"].Properties, "retention."); err != nil {
			return err
		}
	}
	if sub, ok := raw["templates"].(map[string]any); ok {
		return unknownKey(sub, schema.Defs["Templates"].Properties, "templates.")
	}
	return nil
}

func unknownKey(values map[string]any, known map[string]json.RawMessage, prefix string) error {
	for k := range values {
		if _, ok := known[k]; !ok {
			return fmt.Errorf("unknown field %q", prefix+k)
		}
	}
	return nil
}
