package layout

// Builder assembles a Config from documented defaults plus partial
// overrides. Validation is deferred to Config so calls can be chained.
type Builder struct {
	cfg Config
}

// NewBuilder returns a builder seeded with DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// BuilderFrom returns a builder seeded with cfg.
func BuilderFrom(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

func (b *Builder) DeltaTime(v float64) *Builder { b.cfg.DeltaTime = v; return b }
func (b *Builder) FreezeThreshold(v float64) *Builder { b.cfg.FreezeThreshold = v; return b }
func (b *Builder) Theta(v float64) *Builder { b.cfg.Theta = v; return b }
func (b *Builder) RepulsionConstant(v float64) *Builder { b.cfg.RepulsionConstant = v; return b }
func (b *Builder) SpringStiffness(v float64) *Builder { b.cfg.SpringStiffness = v; return b }
func (b *Builder) SpringLength(v float64) *Builder { b.cfg.SpringLength = v; return b }
func (b *Builder) Gravity(v float64) *Builder { b.cfg.Gravity = v; return b }
func (b *Builder) Damping(v float64) *Builder { b.cfg.Damping = v; return b }
func (b *Builder) Workers(n int) *Builder { b.cfg.Workers = n; return b }
func (b *Builder) MinDistance(v float64) *Builder { b.cfg.MinDistance = v; return b }
func (b *Builder) Seed(v int64) *Builder { b.cfg.Seed = v; return b }
func (b *Builder) PlacementRadius(v float64) *Builder { b.cfg.PlacementRadius = v; return b }
func (b *Builder) MassFromDegree(on bool) *Builder { b.cfg.MassFromDegree = on; return b }

// Config validates and returns the assembled configuration. The returned
// value is a copy; later builder calls do not affect it.
func (b *Builder) Config() (Config, error) {
	if err := b.cfg.Validate(); err != nil {
		return Config{}, err
	}
	return b.cfg, nil
}
