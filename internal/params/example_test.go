package params_test

import (
	"fmt"

	"github.com/micaww/light-vst/internal/params"
	"github.com/micaww/light-vst/internal/tuya"
)

// printEnqueuer stands in for *bridge.Bridge.
type printEnqueuer struct{}

func (printEnqueuer) Enqueue(source string, cmd tuya.ColorCommand) bool {
	fmt.Printf("%s hue=%d sat=%d bri=%d\n", source, cmd.Hue, cmd.Saturation, cmd.Brightness)
	return true
}

// A plugin host embedding the pipeline maps its automation lanes onto
// the registry and calls Dispatch from its processing callback. The
// daemon entry point has no such callback, which is why the registry is
// wired by the embedder rather than by cmd/lightvst.
func Example() {
	reg := params.NewRegistry(printEnqueuer{})

	reg.Hue.Set(0.5)
	reg.Saturation.Set(1.0)
	reg.Brightness.Set(1.0)
	reg.Dispatch()

	// The same values again are suppressed.
	reg.Dispatch()

	// Output: param hue=180 sat=1000 bri=1000
}
