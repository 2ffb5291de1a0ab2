package tracer

import (
	"os"
	"strconv"
	"sync/atomic"

	"k8s.io/klog/v2"
)

// EnvDynamicShapes is the environment variable that sets the process-wide default of
// DynamicShapesEnabled. It accepts the values of strconv.ParseBool.
const EnvDynamicShapes = "DIMTRACE_ENABLE_DYNAMIC_SHAPES"

var dynamicShapes atomic.Bool

func init() {
	dynamicShapes.Store(envBool(EnvDynamicShapes, false))
}

// envBool returns the boolean value of the environment variable key, or defaultValue if it is not set
// or invalid.
func envBool(key string, defaultValue bool) bool {
	value, found := os.LookupEnv(key)
	if !found || value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		klog.Warningf("ignoring invalid value %q for $%s: %v", value, key, err)
		return defaultValue
	}
	return b
}

// DynamicShapesEnabled returns the process-wide default of whether sizes read from traced values
// are recorded as dimension nodes, instead of plain integers.
//
// It is initialized from $DIMTRACE_ENABLE_DYNAMIC_SHAPES, and can be changed with SetDynamicShapes.
func DynamicShapesEnabled() bool {
	return dynamicShapes.Load()
}

// SetDynamicShapes changes the process-wide default returned by DynamicShapesEnabled, and returns
// the previous value. Tracers already created are not affected.
func SetDynamicShapes(enabled bool) (previous bool) {
	return dynamicShapes.Swap(enabled)
}
