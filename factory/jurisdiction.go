/*
Package factory provides JSON to Go rule-set conversion.

PURPOSE:
  Converts JSON jurisdiction definitions into the calendar, work-time,
  leave, and compliance configurations the engines consume. This enables
  rule configuration without code changes - HR can adjust holiday tables,
  break thresholds, and accrual bands in JSON.

WHY JSON?
  - Non-developers can modify rules
  - Easy integration with admin UI
  - Version control for jurisdiction definitions
  - Database storage of rule configs

JSON SCHEMA:
  {
    "name": "jp-default",
    "calendar": {
      "rest_day": "sunday",
      "fixed_holidays": [{"month": 1, "day": 1, "name": "New Year's Day"}],
      "nth_weekday_holidays": [{"month": 7, "weekday": "monday", "n": 3, "name": "Marine Day"}],
      "equinox_holidays": [...]
    },
    "worktime": {
      "standard_daily_hours": "8",
      "break_rules": [{"work_exceeds_minutes": 480, "min_break_minutes": 60}],
      "night_start_hour": 22,
      "night_end_hour": 5
    },
    "leave": {
      "accruing_type": "annual",
      "bands": [{"min_years": "0.5", "days": "10"}],
      "default_grants": {"sick": "5", "special": "5"}
    },
    "compliance": {
      "overtime_soft": "45", "overtime_critical": "80", "total_max": "100"
    }
  }

  Decimal fields are JSON strings so rule values survive parsing exactly.
  Omitted sections fall back to the built-in defaults.

USAGE:
  rs, err := factory.Parse(jsonString)
  cal := calendar.New(rs.Calendar)
  calc := worktime.New(rs.WorkTime, cal)

SEE ALSO:
  - calendar/config.go, worktime/calculator.go, leave/engine.go,
    compliance/checker.go: the consuming configurations
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kosei-hr/labor-engine/calendar"
	"github.com/kosei-hr/labor-engine/compliance"
	"github.com/kosei-hr/labor-engine/leave"
	"github.com/kosei-hr/labor-engine/worktime"
)

// =============================================================================
// RULE SET
// =============================================================================

// RuleSet bundles the four engine configurations for one jurisdiction.
type RuleSet struct {
	Name       string
	Calendar   calendar.Config
	WorkTime   worktime.Config
	Leave      leave.Config
	Compliance compliance.Limits
}

// Default returns the built-in jurisdiction rule set.
func Default() *RuleSet {
	return &RuleSet{
		Name:       "jp-default",
		Calendar:   calendar.DefaultConfig(),
		WorkTime:   worktime.DefaultConfig(),
		Leave:      leave.DefaultConfig(),
		Compliance: compliance.DefaultLimits(),
	}
}

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleSetJSON is the JSON representation of a jurisdiction.
type RuleSetJSON struct {
	Name       string          `json:"name"`
	Calendar   *CalendarJSON   `json:"calendar,omitempty"`
	WorkTime   *WorkTimeJSON   `json:"worktime,omitempty"`
	Leave      *LeaveJSON      `json:"leave,omitempty"`
	Compliance *ComplianceJSON `json:"compliance,omitempty"`
}

type CalendarJSON struct {
	RestDay           string             `json:"rest_day"`
	FixedHolidays     []FixedHolidayJSON `json:"fixed_holidays"`
	NthWeekdays       []NthWeekdayJSON   `json:"nth_weekday_holidays"`
	Equinoxes         []EquinoxJSON      `json:"equinox_holidays"`
	EquinoxAnchorYear int                `json:"equinox_anchor_year"`
	EquinoxDrift      float64            `json:"equinox_drift"`
}

type FixedHolidayJSON struct {
	Month int    `json:"month"`
	Day   int    `json:"day"`
	Name  string `json:"name"`
}

type NthWeekdayJSON struct {
	Month   int    `json:"month"`
	Weekday string `json:"weekday"`
	N       int    `json:"n"`
	Name    string `json:"name"`
}

type EquinoxJSON struct {
	Month      int              `json:"month"`
	Name       string           `json:"name"`
	DefaultDay int              `json:"default_day"`
	Eras       []EquinoxEraJSON `json:"eras"`
}

type EquinoxEraJSON struct {
	FromYear int     `json:"from_year"`
	ToYear   int     `json:"to_year"`
	Base     float64 `json:"base"`
}

type WorkTimeJSON struct {
	StandardDailyHours string          `json:"standard_daily_hours"`
	BreakRules         []BreakRuleJSON `json:"break_rules"`
	NightStartHour     int             `json:"night_start_hour"`
	NightEndHour       int             `json:"night_end_hour"`
}

type BreakRuleJSON struct {
	WorkExceedsMinutes int `json:"work_exceeds_minutes"`
	MinBreakMinutes    int `json:"min_break_minutes"`
}

type LeaveJSON struct {
	AccruingType  string            `json:"accruing_type"`
	Bands         []BandJSON        `json:"bands"`
	DefaultGrants map[string]string `json:"default_grants"`
}

type BandJSON struct {
	MinYears string `json:"min_years"`
	Days     string `json:"days"`
}

type ComplianceJSON struct {
	OvertimeSoft     string `json:"overtime_soft"`
	OvertimeCritical string `json:"overtime_critical"`
	TotalMax         string `json:"total_max"`
}

// =============================================================================
// PARSING
// =============================================================================

// Parse converts a JSON jurisdiction definition into a RuleSet. Omitted
// sections keep their built-in defaults.
func Parse(jsonStr string) (*RuleSet, error) {
	var raw RuleSetJSON
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("invalid rule set JSON: %w", err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("rule set name is required")
	}

	rs := Default()
	rs.Name = raw.Name

	if raw.Calendar != nil {
		cfg, err := parseCalendar(raw.Calendar)
		if err != nil {
			return nil, fmt.Errorf("calendar: %w", err)
		}
		rs.Calendar = cfg
	}
	if raw.WorkTime != nil {
		cfg, err := parseWorkTime(raw.WorkTime)
		if err != nil {
			return nil, fmt.Errorf("worktime: %w", err)
		}
		rs.WorkTime = cfg
	}
	if raw.Leave != nil {
		cfg, err := parseLeave(raw.Leave)
		if err != nil {
			return nil, fmt.Errorf("leave: %w", err)
		}
		rs.Leave = cfg
	}
	if raw.Compliance != nil {
		limits, err := parseCompliance(raw.Compliance)
		if err != nil {
			return nil, fmt.Errorf("compliance: %w", err)
		}
		rs.Compliance = limits
	}

	return rs, nil
}

func parseCalendar(raw *CalendarJSON) (calendar.Config, error) {
	restDay, err := parseWeekday(raw.RestDay)
	if err != nil {
		return calendar.Config{}, err
	}

	cfg := calendar.Config{
		RestDay:           restDay,
		EquinoxAnchorYear: raw.EquinoxAnchorYear,
		EquinoxDrift:      raw.EquinoxDrift,
	}
	for _, f := range raw.FixedHolidays {
		if err := validMonthDay(f.Month, f.Day); err != nil {
			return calendar.Config{}, fmt.Errorf("fixed holiday %q: %w", f.Name, err)
		}
		cfg.Fixed = append(cfg.Fixed, calendar.FixedHoliday{
			Month: time.Month(f.Month), Day: f.Day, Name: f.Name,
		})
	}
	for _, n := range raw.NthWeekdays {
		weekday, err := parseWeekday(n.Weekday)
		if err != nil {
			return calendar.Config{}, fmt.Errorf("nth weekday holiday %q: %w", n.Name, err)
		}
		if n.Month < 1 || n.Month > 12 || n.N < 1 || n.N > 5 {
			return calendar.Config{}, fmt.Errorf("nth weekday holiday %q: month %d n %d out of range", n.Name, n.Month, n.N)
		}
		cfg.NthWeekdays = append(cfg.NthWeekdays, calendar.NthWeekdayHoliday{
			Month: time.Month(n.Month), Weekday: weekday, N: n.N, Name: n.Name,
		})
	}
	for _, e := range raw.Equinoxes {
		eq := calendar.EquinoxHoliday{
			Month:      time.Month(e.Month),
			Name:       e.Name,
			DefaultDay: e.DefaultDay,
		}
		for _, era := range e.Eras {
			eq.Eras = append(eq.Eras, calendar.EquinoxEra{
				FromYear: era.FromYear, ToYear: era.ToYear, Base: era.Base,
			})
		}
		cfg.Equinoxes = append(cfg.Equinoxes, eq)
	}
	return cfg, nil
}

func parseWorkTime(raw *WorkTimeJSON) (worktime.Config, error) {
	standard, err := decimal.NewFromString(raw.StandardDailyHours)
	if err != nil {
		return worktime.Config{}, fmt.Errorf("standard_daily_hours %q: %w", raw.StandardDailyHours, err)
	}
	if raw.NightStartHour < 0 || raw.NightStartHour > 23 || raw.NightEndHour < 0 || raw.NightEndHour > 23 {
		return worktime.Config{}, fmt.Errorf("night window %d-%d out of range", raw.NightStartHour, raw.NightEndHour)
	}

	cfg := worktime.Config{
		StandardDailyHours: standard,
		NightStartHour:     raw.NightStartHour,
		NightEndHour:       raw.NightEndHour,
	}
	for _, r := range raw.BreakRules {
		cfg.BreakRules = append(cfg.BreakRules, worktime.BreakRule{
			WorkExceeds: time.Duration(r.WorkExceedsMinutes) * time.Minute,
			MinBreak:    time.Duration(r.MinBreakMinutes) * time.Minute,
		})
	}
	return cfg, nil
}

func parseLeave(raw *LeaveJSON) (leave.Config, error) {
	accruing := leave.Type(raw.AccruingType)
	if !accruing.Valid() {
		return leave.Config{}, fmt.Errorf("accruing_type %q unknown", raw.AccruingType)
	}

	cfg := leave.Config{
		AccruingType:  accruing,
		DefaultGrants: make(map[leave.Type]decimal.Decimal),
	}
	for _, b := range raw.Bands {
		minYears, err := decimal.NewFromString(b.MinYears)
		if err != nil {
			return leave.Config{}, fmt.Errorf("band min_years %q: %w", b.MinYears, err)
		}
		days, err := decimal.NewFromString(b.Days)
		if err != nil {
			return leave.Config{}, fmt.Errorf("band days %q: %w", b.Days, err)
		}
		cfg.Bands = append(cfg.Bands, leave.TenureBand{MinYears: minYears, Days: days})
	}
	for typ, grant := range raw.DefaultGrants {
		t := leave.Type(typ)
		if !t.Valid() {
			return leave.Config{}, fmt.Errorf("default grant type %q unknown", typ)
		}
		d, err := decimal.NewFromString(grant)
		if err != nil {
			return leave.Config{}, fmt.Errorf("default grant %q: %w", grant, err)
		}
		cfg.DefaultGrants[t] = d
	}
	return cfg, nil
}

func parseCompliance(raw *ComplianceJSON) (compliance.Limits, error) {
	soft, err := decimal.NewFromString(raw.OvertimeSoft)
	if err != nil {
		return compliance.Limits{}, fmt.Errorf("overtime_soft %q: %w", raw.OvertimeSoft, err)
	}
	critical, err := decimal.NewFromString(raw.OvertimeCritical)
	if err != nil {
		return compliance.Limits{}, fmt.Errorf("overtime_critical %q: %w", raw.OvertimeCritical, err)
	}
	total, err := decimal.NewFromString(raw.TotalMax)
	if err != nil {
		return compliance.Limits{}, fmt.Errorf("total_max %q: %w", raw.TotalMax, err)
	}
	return compliance.Limits{OvertimeSoft: soft, OvertimeCritical: critical, TotalMax: total}, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

func validMonthDay(month, day int) error {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return fmt.Errorf("month %d day %d out of range", month, day)
	}
	return nil
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// DefaultRuleSetJSON renders the built-in rule set as indented JSON, a
// starting point for jurisdiction overrides.
func DefaultRuleSetJSON() string {
	raw := toJSON(Default())
	out, _ := json.MarshalIndent(raw, "", "  ")
	return string(out)
}

func toJSON(rs *RuleSet) RuleSetJSON {
	cal := &CalendarJSON{
		RestDay:           strings.ToLower(rs.Calendar.RestDay.String()),
		EquinoxAnchorYear: rs.Calendar.EquinoxAnchorYear,
		EquinoxDrift:      rs.Calendar.EquinoxDrift,
	}
	for _, f := range rs.Calendar.Fixed {
		cal.FixedHolidays = append(cal.FixedHolidays, FixedHolidayJSON{
			Month: int(f.Month), Day: f.Day, Name: f.Name,
		})
	}
	for _, n := range rs.Calendar.NthWeekdays {
		cal.NthWeekdays = append(cal.NthWeekdays, NthWeekdayJSON{
			Month: int(n.Month), Weekday: strings.ToLower(n.Weekday.String()), N: n.N, Name: n.Name,
		})
	}
	for _, e := range rs.Calendar.Equinoxes {
		eq := EquinoxJSON{Month: int(e.Month), Name: e.Name, DefaultDay: e.DefaultDay}
		for _, era := range e.Eras {
			eq.Eras = append(eq.Eras, EquinoxEraJSON{FromYear: era.FromYear, ToYear: era.ToYear, Base: era.Base})
		}
		cal.Equinoxes = append(cal.Equinoxes, eq)
	}

	wt := &WorkTimeJSON{
		StandardDailyHours: rs.WorkTime.StandardDailyHours.String(),
		NightStartHour:     rs.WorkTime.NightStartHour,
		NightEndHour:       rs.WorkTime.NightEndHour,
	}
	for _, r := range rs.WorkTime.BreakRules {
		wt.BreakRules = append(wt.BreakRules, BreakRuleJSON{
			WorkExceedsMinutes: int(r.WorkExceeds / time.Minute),
			MinBreakMinutes:    int(r.MinBreak / time.Minute),
		})
	}

	lv := &LeaveJSON{
		AccruingType:  string(rs.Leave.AccruingType),
		DefaultGrants: make(map[string]string),
	}
	for _, b := range rs.Leave.Bands {
		lv.Bands = append(lv.Bands, BandJSON{MinYears: b.MinYears.String(), Days: b.Days.String()})
	}
	for typ, grant := range rs.Leave.DefaultGrants {
		lv.DefaultGrants[string(typ)] = grant.String()
	}

	return RuleSetJSON{
		Name:     rs.Name,
		Calendar: cal,
		WorkTime: wt,
		Leave:    lv,
		Compliance: &ComplianceJSON{
			OvertimeSoft:     rs.Compliance.OvertimeSoft.String(),
			OvertimeCritical: rs.Compliance.OvertimeCritical.String(),
			TotalMax:         rs.Compliance.TotalMax.String(),
		},
	}
}
