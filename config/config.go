// Package config loads the tuning profiles of both games from TOML.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed defaults.toml
var defaultsTOML string

// DefaultProfile is the entry every lookup falls back to.
const DefaultProfile = "default"

var (
	// ErrUnknownKeys is returned by Load when the file holds keys no field decodes.
	ErrUnknownKeys = errors.New("unknown config keys")
	// ErrInvalid is returned by Validate.
	ErrInvalid = errors.New("invalid tuning")
)

// Tuning holds the profiles of both game modes.
type Tuning struct {
	Swamp Game `toml:"swamp"`
	Arena Game `toml:"arena"`
}

// Game is the tuning of one game mode.
type Game struct {
	Bounds      Bounds                `toml:"bounds"`
	Player      Player                `toml:"player"`
	Spawn       Spawn                 `toml:"spawn"`
	Score       Score                 `toml:"score"`
	Enemies     map[string]Enemy      `toml:"enemies"`
	Projectiles map[string]Projectile `toml:"projectiles"`
	Particles   map[string]Particle   `toml:"particles"`
	PowerUps    map[string]PowerUp    `toml:"powerups"`
	Weapons     []Weapon              `toml:"weapons"`
}

// Bounds is the playfield. Entities further than Margin outside it are retired.
type Bounds struct {
	MinX   float64 `toml:"min-x"`
	MaxX   float64 `toml:"max-x"`
	MinY   float64 `toml:"min-y"`
	MaxY   float64 `toml:"max-y"`
	Margin float64 `toml:"margin"`
}

type Player struct {
	X               float64  `toml:"x"`
	Y               float64  `toml:"y"`
	Radius          float64  `toml:"radius"`
	Speed           float64  `toml:"speed"`
	Sprint          float64  `toml:"sprint"`
	Health          int      `toml:"health"`
	MaxHealth       int      `toml:"max-health"`
	Invincibility   Duration `toml:"invincibility"`
	FireCooldown    Duration `toml:"fire-cooldown"`
	RapidCooldown   Duration `toml:"rapid-cooldown"`
	Projectile      string   `toml:"projectile"`
	MuzzleOffset    float64  `toml:"muzzle-offset"`
	MultiShotSpread float64  `toml:"multi-shot-spread"`
	MultiShotDrift  float64  `toml:"multi-shot-drift"`
}

type Spawn struct {
	EnemyInterval    Duration     `toml:"enemy-interval"`
	PowerUpInterval  Duration     `toml:"powerup-interval"`
	DifficultyStep   Duration     `toml:"difficulty-step"`
	IntervalDecrease Duration     `toml:"interval-decrease"`
	MinInterval      Duration     `toml:"min-interval"`
	Initial          int          `toml:"initial"`
	MaxAlive         int          `toml:"max-alive"`
	XMin             float64      `toml:"x-min"`
	XMax             float64      `toml:"x-max"`
	Y                float64      `toml:"y"`
	ShootBandTop     float64      `toml:"shoot-band-top"`
	ShootBandBottom  float64      `toml:"shoot-band-bottom"`
	Points           [][2]float64 `toml:"points"`
}

// Score configures points and win conditions. Zero Target or KillQuota disables that condition.
type Score struct {
	Kill      int `toml:"kill"`
	Target    int `toml:"target"`
	KillQuota int `toml:"kill-quota"`
}

type Enemy struct {
	Health         int      `toml:"health"`
	Damage         int      `toml:"damage"`
	Radius         float64  `toml:"radius"`
	SpeedMin       float64  `toml:"speed-min"`
	SpeedMax       float64  `toml:"speed-max"`
	ShootMin       Duration `toml:"shoot-min"`
	ShootMax       Duration `toml:"shoot-max"`
	Projectile     string   `toml:"projectile"`
	Patterns       []string `toml:"patterns"`
	AmplitudeMin   float64  `toml:"amplitude-min"`
	AmplitudeMax   float64  `toml:"amplitude-max"`
	AttackRange    float64  `toml:"attack-range"`
	DetectionRange float64  `toml:"detection-range"`
	AttackCooldown Duration `toml:"attack-cooldown"`
	Hover          float64  `toml:"hover"`
	Weight         float64  `toml:"weight"`
	Color          Color    `toml:"color"`
}

type Projectile struct {
	Damage int      `toml:"damage"`
	Radius float64  `toml:"radius"`
	Speed  float64  `toml:"speed"`
	Life   Duration `toml:"life"`
	Sway   float64  `toml:"sway"`
	Spread float64  `toml:"spread"`
	Color  Color    `toml:"color"`
}

type Particle struct {
	LifeMin  Duration `toml:"life-min"`
	LifeMax  Duration `toml:"life-max"`
	SizeMin  float64  `toml:"size-min"`
	SizeMax  float64  `toml:"size-max"`
	Gravity  float64  `toml:"gravity"`
	Friction float64  `toml:"friction"` // velocity kept per 1/60s
	Growth   float64  `toml:"growth"`
	Jitter   float64  `toml:"jitter"`
	BurstX   float64  `toml:"burst-x"`
	BurstMin float64  `toml:"burst-y-min"`
	BurstMax float64  `toml:"burst-y-max"`
	Color    Color    `toml:"color"`
}

type PowerUp struct {
	Effect   string   `toml:"effect"`
	Duration Duration `toml:"duration"`
	Value    float64  `toml:"value"`
	Radius   float64  `toml:"radius"`
	Speed    float64  `toml:"speed"`
	Life     Duration `toml:"life"`
	Weight   float64  `toml:"weight"`
	Color    Color    `toml:"color"`
}

type Weapon struct {
	Name       string   `toml:"name"`
	Projectile string   `toml:"projectile"`
	Damage     int      `toml:"damage"`
	Magazine   int      `toml:"magazine"`
	Reserve    int      `toml:"reserve"`
	FireRate   float64  `toml:"fire-rate"` // rounds per minute
	Reload     Duration `toml:"reload"`
	Range      float64  `toml:"range"`
	Spread     float64  `toml:"spread"`
	Pellets    int      `toml:"pellets"`
	Splash     float64  `toml:"splash"`
	Color      Color    `toml:"color"`
}

// FireInterval is the minimum time between two shots.
func (w Weapon) FireInterval() time.Duration {
	if w.FireRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Minute) / w.FireRate)
}

// Default returns the built-in tuning.
func Default() *Tuning {
	var t Tuning
	if _, err := toml.Decode(defaultsTOML, &t); err != nil {
		panic(fmt.Sprintf("config: built-in defaults: %v", err))
	}
	return &t
}

// Load decodes the file at path over the built-in tuning. An empty path
// returns the defaults.
func Load(path string) (*Tuning, error) {
	t := Default()
	if path == "" {
		return t, nil
	}

	meta, err := toml.DecodeFile(path, t)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("%w: [%s]", ErrUnknownKeys, strings.Join(keys, ", "))
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that every profile table carries a default entry and that
// the player can take at least one hit.
func (t *Tuning) Validate() error {
	var errs []error
	check := func(mode string, g *Game) {
		if _, ok := g.Enemies[DefaultProfile]; !ok {
			errs = append(errs, fmt.Errorf("%s.enemies has no %q entry", mode, DefaultProfile))
		}
		if _, ok := g.Projectiles[DefaultProfile]; !ok {
			errs = append(errs, fmt.Errorf("%s.projectiles has no %q entry", mode, DefaultProfile))
		}
		if _, ok := g.Particles[DefaultProfile]; !ok {
			errs = append(errs, fmt.Errorf("%s.particles has no %q entry", mode, DefaultProfile))
		}
		if g.Player.MaxHealth <= 0 || g.Player.Health <= 0 || g.Player.Health > g.Player.MaxHealth {
			errs = append(errs, fmt.Errorf("%s.player health %d/%d", mode, g.Player.Health, g.Player.MaxHealth))
		}
	}
	check("swamp", &t.Swamp)
	check("arena", &t.Arena)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func lookup[T any](m map[string]T, name string) (T, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	return m[DefaultProfile], false
}

// Enemy returns the named profile, or the default one with ok=false.
func (g *Game) Enemy(name string) (Enemy, bool) { return lookup(g.Enemies, name) }

// Projectile returns the named profile, or the default one with ok=false.
func (g *Game) Projectile(name string) (Projectile, bool) { return lookup(g.Projectiles, name) }

// Particle returns the named profile, or the default one with ok=false.
func (g *Game) Particle(name string) (Particle, bool) { return lookup(g.Particles, name) }

// PowerUp returns the named profile, or the default one with ok=false.
func (g *Game) PowerUp(name string) (PowerUp, bool) { return lookup(g.PowerUps, name) }

func names[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for name := range m {
		if name != DefaultProfile {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// EnemyNames lists the spawnable enemy types in a stable order.
func (g *Game) EnemyNames() []string { return names(g.Enemies) }

// PowerUpNames lists the spawnable power-up types in a stable order.
func (g *Game) PowerUpNames() []string { return names(g.PowerUps) }

// Duration decodes strings such as "1500ms" or "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Color decodes "#rrggbb" or "#rrggbbaa".
type Color color.RGBA

func (c *Color) UnmarshalText(text []byte) error {
	s := string(text)
	var r, g, b, a uint8 = 0, 0, 0, 0xff
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
	case 9:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x%02x", &r, &g, &b, &a)
	default:
		err = errors.New("want #rrggbb or #rrggbbaa")
	}
	if err != nil {
		return fmt.Errorf("color %q: %w", s, err)
	}
	*c = Color{R: r, G: g, B: b, A: a}
	return nil
}

func (c Color) MarshalText() ([]byte, error) {
	if c.A == 0xff {
		return []byte(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)), nil
	}
	return []byte(fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)), nil
}

// RGBA returns the colour for image/color consumers.
func (c Color) RGBA() color.RGBA { return color.RGBA(c) }
