package components

import rl "github.com/gen2brain/raylib-go/raylib"

func vec3Data(v rl.Vector3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// dataVec3 reads a vector written by vec3Data, either freshly serialized or
// decoded from JSON.
func dataVec3(v any) (rl.Vector3, bool) {
	switch arr := v.(type) {
	case [3]float32:
		return rl.Vector3{X: arr[0], Y: arr[1], Z: arr[2]}, true
	case []any:
		if len(arr) != 3 {
			return rl.Vector3{}, false
		}
		var out [3]float32
		for i, e := range arr {
			f, ok := e.(float64)
			if !ok {
				return rl.Vector3{}, false
			}
			out[i] = float32(f)
		}
		return rl.Vector3{X: out[0], Y: out[1], Z: out[2]}, true
	}
	return rl.Vector3{}, false
}

func dataFloat(data map[string]any, key string) (float32, bool) {
	switch f := data[key].(type) {
	case float64:
		return float32(f), true
	case float32:
		return f, true
	}
	return 0, false
}
