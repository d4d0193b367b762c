package scenario

import (
	"fmt"
	"math/rand/v2"

	"github.com/xraph/hull"
	"github.com/xraph/hull/internal/dispatch"
)

// RandomController serves /random/number. A new controller is built for each
// request.
type RandomController struct {
	logger Logger
	rng    *rand.Rand
}

func NewRandomController(logger Logger) *RandomController {
	return &RandomController{
		logger: logger,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Number returns a value in [0, 100).
func (c *RandomController) Number() int {
	return c.rng.IntN(100)
}

// PostNumber accepts a number and discards it.
func (c *RandomController) PostNumber(n int) error {
	c.logger.Log(fmt.Sprintf("received %d", n))
	return nil
}

// RegisterControllers binds the controllers served by Mount. Register must
// also have been called for their dependencies.
func RegisterControllers(c *hull.Container) error {
	return hull.AlwaysUnique[*RandomController](c, NewRandomController)
}

// Mount attaches the controllers to d.
func Mount(d *dispatch.Dispatcher) error {
	return dispatch.Mount(d, "random",
		dispatch.Get("number", (*RandomController).Number),
		dispatch.Post("number", (*RandomController).PostNumber),
	)
}
