package grid

import (
	"math/rand/v2"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

var seedSalt atomic.Uint64

// Option configures optional collaborators of stochastic components.
type Option func(*options)

type options struct {
	src rand.Source
}

// WithRand sets the random source. Tests use it to get reproducible draws.
func WithRand(src rand.Source) Option {
	return func(o *options) { o.src = src }
}

func newRand(opts []Option) *rand.Rand {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.src == nil {
		o.src = rand.NewPCG(uint64(time.Now().UnixNano()), seedSalt.Add(1))
	}
	return rand.New(o.src)
}

// normal draws one sample from N(mu, sigma).
func normal(r *rand.Rand, mu, sigma float64) float64 {
	if sigma <= 0 {
		return mu
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: r}.Rand()
}
