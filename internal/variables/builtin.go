package variables

import "fmt"

// Index addresses a slot in a Table. Values of this type come from Builtin.Index,
// Custom or Table.Resolve, never from raw counts.
type Index int

// Builtin enumerates the reserved slots at the front of every table.
type Builtin int

const (
	Time Builtin = iota
	WindowWidth
	WindowHeight
	ScreenWidth
	ScreenHeight

	CameraPosX
	CameraPosY
	CameraPosZ
	CameraTargetX
	CameraTargetY
	CameraTargetZ
	CameraUpX
	CameraUpY
	CameraUpZ
	CameraFov

	LightPosX
	LightPosY
	LightPosZ
	LightTargetX
	LightTargetY
	LightTargetZ
	LightColorR
	LightColorG
	LightColorB
	LightIntensity
	Ambient

	// BuiltinCount is the number of reserved slots; custom slots start here.
	BuiltinCount
)

var builtinNames = [BuiltinCount]string{
	Time:           "time",
	WindowWidth:    "window_width",
	WindowHeight:   "window_height",
	ScreenWidth:    "screen_width",
	ScreenHeight:   "screen_height",
	CameraPosX:     "camera_pos_x",
	CameraPosY:     "camera_pos_y",
	CameraPosZ:     "camera_pos_z",
	CameraTargetX:  "camera_target_x",
	CameraTargetY:  "camera_target_y",
	CameraTargetZ:  "camera_target_z",
	CameraUpX:      "camera_up_x",
	CameraUpY:      "camera_up_y",
	CameraUpZ:      "camera_up_z",
	CameraFov:      "camera_fov",
	LightPosX:      "light_pos_x",
	LightPosY:      "light_pos_y",
	LightPosZ:      "light_pos_z",
	LightTargetX:   "light_target_x",
	LightTargetY:   "light_target_y",
	LightTargetZ:   "light_target_z",
	LightColorR:    "light_color_r",
	LightColorG:    "light_color_g",
	LightColorB:    "light_color_b",
	LightIntensity: "light_intensity",
	Ambient:        "ambient",
}

// Index is the fixed slot of b. Builtins occupy slots in declaration order.
func (b Builtin) Index() Index { return Index(b) }

// Valid reports whether b is a declared builtin.
func (b Builtin) Valid() bool { return b >= 0 && b < BuiltinCount }

func (b Builtin) String() string {
	if b.Valid() {
		return builtinNames[b]
	}
	return fmt.Sprintf("builtin(%d)", int(b))
}

// Custom is the slot of the n-th custom variable.
func Custom(n int) Index { return Index(int(BuiltinCount) + n) }

// CustomName is the default name given to custom slot n.
func CustomName(n int) string { return fmt.Sprintf("custom_%d", n) }
