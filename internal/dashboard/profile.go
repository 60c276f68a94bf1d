package dashboard

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile holds every layout and connection constant of a dashboard build.
// Lengths are pixels unless named otherwise; field sizes are metres.
type Profile struct {
	Name      string  `yaml:"-"`
	Caption   string  `yaml:"caption"`
	Address   string  `yaml:"address"`
	FrameRate float64 `yaml:"frame_rate"`

	FieldWidth   float64 `yaml:"field_width"`
	FieldHeight  float64 `yaml:"field_height"`
	WindowWidth  int     `yaml:"window_width"`
	WindowHeight int     `yaml:"window_height"`

	// ScaleFactor is pixels per metre. It is only used as-is when
	// KeepScaleOnResize is set; otherwise the scale follows the window.
	ScaleFactor       float64 `yaml:"scale_factor"`
	KeepScaleOnResize bool    `yaml:"keep_scale_on_resize"`

	UseBackgroundImage bool    `yaml:"use_background_image"`
	HeaderHeight       float64 `yaml:"header_height"`
	Margin             float64 `yaml:"margin"`
	StatusFontSize     float64 `yaml:"status_font_size"`

	BallRadius    float64 `yaml:"ball_radius"`
	BallSpacing   float64 `yaml:"ball_spacing"`
	BallRowOffset float64 `yaml:"ball_row_offset"`
	BallMargin    float64 `yaml:"ball_margin"`

	RobotSize    float64 `yaml:"robot_size"`
	FacingLength float64 `yaml:"facing_length"`
	FacingWidth  float64 `yaml:"facing_width"`
	GoalRadius   float64 `yaml:"goal_radius"`
}

const (
	DefaultCaption = "TheDropBears Driver Station"
	DefaultAddress = "10.47.74.2"
)

var builtinProfiles = map[string]Profile{
	"classic": {
		Caption:        DefaultCaption,
		Address:        DefaultAddress,
		FrameRate:      24,
		FieldWidth:     16.46,
		FieldHeight:    8.23,
		WindowWidth:    1646,
		WindowHeight:   823,
		ScaleFactor:    100,
		StatusFontSize: 48,
		BallRadius:     30,
		BallSpacing:    70,
		BallRowOffset:  120,
		BallMargin:     30,
		RobotSize:      40,
		FacingLength:   20,
		FacingWidth:    10,
		GoalRadius:     60,
	},
	"compact": {
		Caption:        DefaultCaption,
		Address:        DefaultAddress,
		FrameRate:      24,
		FieldWidth:     16.46,
		FieldHeight:    8.23,
		WindowWidth:    823,
		WindowHeight:   412,
		ScaleFactor:    50,
		StatusFontSize: 24,
		BallRadius:     15,
		BallSpacing:    35,
		BallRowOffset:  60,
		BallMargin:     15,
		RobotSize:      20,
		FacingLength:   10,
		FacingWidth:    5,
		GoalRadius:     30,
	},
	"field": {
		Caption:            DefaultCaption,
		Address:            DefaultAddress,
		FrameRate:          24,
		FieldWidth:         16.46,
		FieldHeight:        8.23,
		WindowWidth:        1280,
		WindowHeight:       800,
		UseBackgroundImage: true,
		HeaderHeight:       160,
		Margin:             16,
		StatusFontSize:     36,
		BallRadius:         24,
		BallSpacing:        60,
		BallRowOffset:      110,
		BallMargin:         40,
		RobotSize:          30,
		FacingLength:       15,
		FacingWidth:        8,
		GoalRadius:         45,
	},
}

// DefaultProfile is used when no profile is named.
const DefaultProfile = "classic"

// ProfileNames lists the built-in profiles in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupProfile returns a copy of a built-in profile.
func LookupProfile(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	p, ok := builtinProfiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (known: %v)", name, ProfileNames())
	}
	p.Name = name
	return p, nil
}

// Validate reports the first constant that would make the scene unusable.
func (p Profile) Validate() error {
	switch {
	case p.Address == "":
		return errors.New("profile: address is empty")
	case p.FrameRate <= 0 || p.FrameRate > MaxFrameRate:
		return fmt.Errorf("profile: frame_rate must be in (0, %v], got %v", MaxFrameRate, p.FrameRate)
	case p.FieldWidth <= 0 || p.FieldHeight <= 0:
		return fmt.Errorf("profile: field size must be positive, got %vx%v", p.FieldWidth, p.FieldHeight)
	case p.WindowWidth <= 0 || p.WindowHeight <= 0:
		return fmt.Errorf("profile: window size must be positive, got %dx%d", p.WindowWidth, p.WindowHeight)
	case p.KeepScaleOnResize && p.ScaleFactor <= 0:
		return fmt.Errorf("profile: keep_scale_on_resize needs a positive scale_factor, got %v", p.ScaleFactor)
	case p.HeaderHeight < 0 || p.Margin < 0:
		return errors.New("profile: header_height and margin must not be negative")
	case p.BallRadius <= 0 || p.RobotSize <= 0:
		return errors.New("profile: ball_radius and robot_size must be positive")
	}
	return nil
}

// MaxFrameRate bounds frame_rate so FrameInterval never rounds to zero.
const MaxFrameRate = 1000

// FrameInterval is the update period implied by FrameRate, never shorter
// than a millisecond.
func (p Profile) FrameInterval() time.Duration {
	if p.FrameRate <= 0 {
		return time.Second / 24
	}
	return max(time.Duration(float64(time.Second)/p.FrameRate), time.Millisecond)
}

// LoadProfile overlays the YAML file at path on base. A missing file yields
// base unchanged.
func LoadProfile(path string, base Profile) (Profile, error) {
	if path == "" {
		return base, base.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return base, base.Validate()
		}
		return Profile{}, fmt.Errorf("read profile %s: %w", path, err)
	}
	p := base
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}
