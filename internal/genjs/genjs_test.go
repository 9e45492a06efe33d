package genjs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robokit/msggen/internal/rosidl"
)

func parse(t *testing.T, pkg, name string, kind rosidl.Kind, src string) rosidl.Spec {
	t.Helper()
	spec, err := rosidl.Parse(pkg, name, kind, src)
	require.NoError(t, err)
	return spec
}

func TestGenerateMessage(t *testing.T) {
	spec := parse(t, "sensor_msgs", "Temperature", rosidl.KindMessage, `std_msgs/Header header
float64 temperature
float64 variance
`)

	src, err := Generate(spec)
	require.NoError(t, err)

	assert.Contains(t, src, "class Temperature {")
	assert.Contains(t, src, "this.temperature = 0;")
	assert.Contains(t, src, "this.header = new Header();")
	assert.Contains(t, src, "const Header = require('../../std_msgs/msg/Header.js');")
	assert.Contains(t, src, "Temperature.interfaceName = 'sensor_msgs/msg/Temperature';")
	assert.Contains(t, src, "module.exports = Temperature;")
}

func TestGenerateMessageDefaultsAndConstants(t *testing.T) {
	spec := parse(t, "diag_msgs", "Status", rosidl.KindMessage, `uint8 OK=0
uint8 WARN=1
uint8 level 1
string name "none"
bool active true
int32[] codes
time stamp
`)

	src, err := Generate(spec)
	require.NoError(t, err)

	assert.Contains(t, src, "Status.OK = 0;")
	assert.Contains(t, src, "Status.WARN = 1;")
	assert.Contains(t, src, "this.level = 1;")
	assert.Contains(t, src, "this.name = 'none';")
	assert.Contains(t, src, "this.active = true;")
	assert.Contains(t, src, "this.codes = [];")
	assert.Contains(t, src, "this.stamp = { sec: 0, nanosec: 0 };")
}

func TestGenerateService(t *testing.T) {
	spec := parse(t, "example_srvs", "AddTwoInts", rosidl.KindService, `int64 a
int64 b
---
int64 sum
`)

	src, err := Generate(spec)
	require.NoError(t, err)

	// Request and response classes live inline in the service binding;
	// nothing else generates them.
	assert.Contains(t, src, "class AddTwoInts_Request {")
	assert.Contains(t, src, "class AddTwoInts_Response {")
	assert.Contains(t, src, "this.a = 0;")
	assert.Contains(t, src, "this.sum = 0;")
	assert.Contains(t, src, "interfaceName: 'example_srvs/srv/AddTwoInts',")
	assert.Contains(t, src, "Request: AddTwoInts_Request,")
	assert.Contains(t, src, "Response: AddTwoInts_Response,")
	assert.NotContains(t, src, "require('../msg/AddTwoInts_Request.js')")
	assert.NotContains(t, src, "require('../msg/AddTwoInts_Response.js')")
}

func TestGenerateServiceReferencedTypes(t *testing.T) {
	spec := parse(t, "nav_srvs", "GetPlan", rosidl.KindService, `geometry_msgs/PoseStamped start
geometry_msgs/PoseStamped goal
---
Path plan
`)

	src, err := Generate(spec)
	require.NoError(t, err)

	// Requires resolve relative to the srv directory and are deduplicated.
	assert.Equal(t, 1, strings.Count(src, "require('../../geometry_msgs/msg/PoseStamped.js')"))
	assert.Contains(t, src, "const Path = require('../msg/Path.js');")
	assert.Contains(t, src, "this.plan = new Path();")
}

func TestGenerateAction(t *testing.T) {
	spec := parse(t, "example_actions", "Fibonacci", rosidl.KindAction, `int32 order
---
int32[] sequence
---
int32[] partial_sequence
`)

	src, err := Generate(spec)
	require.NoError(t, err)

	assert.Contains(t, src, "const Fibonacci_Goal = require('../msg/Fibonacci_Goal.js');")
	assert.Contains(t, src, "interfaceName: 'example_actions/action/Fibonacci',")
	assert.Contains(t, src, "Feedback: Fibonacci_Feedback,")
}

func TestGenerateDeterministic(t *testing.T) {
	spec := parse(t, "nav_msgs", "Odometry", rosidl.KindMessage, `std_msgs/Header header
geometry_msgs/Pose pose
geometry_msgs/Twist twist
`)

	first, err := Generate(spec)
	require.NoError(t, err)
	for range 10 {
		again, err := Generate(spec)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
