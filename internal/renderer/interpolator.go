package renderer

import (
	"github.com/ivlev/knn2video/internal/director"
	"github.com/ivlev/knn2video/internal/scene"
)

// CameraState represents the camera orientation and zoom at a specific moment
type CameraState struct {
	Phi   float64 // Polar angle in degrees
	Theta float64 // Azimuth in degrees
	Zoom  float64 // Zoom level (1.0 = no zoom)
}

// FlatCamera looks straight down the z axis
var FlatCamera = CameraState{
	Phi:   scene.FlatOrientation.Phi,
	Theta: scene.FlatOrientation.Theta,
	Zoom:  1.0,
}

// InterpolateKeyframes calculates camera state at a given time by interpolating between keyframes
func InterpolateKeyframes(keyframes []director.Keyframe, currentTime float64) CameraState {
	if len(keyframes) == 0 {
		return FlatCamera
	}

	// If before first keyframe, use first keyframe
	if currentTime <= keyframes[0].Time {
		return stateOf(keyframes[0])
	}

	// If after last keyframe, use last keyframe
	if currentTime >= keyframes[len(keyframes)-1].Time {
		return stateOf(keyframes[len(keyframes)-1])
	}

	// Find surrounding keyframes
	var prevKf, nextKf director.Keyframe
	for i := 0; i < len(keyframes)-1; i++ {
		if currentTime >= keyframes[i].Time && currentTime < keyframes[i+1].Time {
			prevKf = keyframes[i]
			nextKf = keyframes[i+1]
			break
		}
	}

	if prevKf.Easing == director.EasingHold {
		return stateOf(prevKf)
	}

	// Calculate interpolation factor (0.0 to 1.0)
	timeDelta := nextKf.Time - prevKf.Time
	if timeDelta == 0 {
		timeDelta = 0.001 // Avoid division by zero
	}
	t := (currentTime - prevKf.Time) / timeDelta

	// Ambient rotation runs at constant speed, camera moves ease in and out
	if prevKf.Easing == director.EasingSmooth {
		t = easeInOutCubic(t)
	}

	prev, next := stateOf(prevKf), stateOf(nextKf)
	return CameraState{
		Phi:   lerp(prev.Phi, next.Phi, t),
		Theta: lerp(prev.Theta, next.Theta, t),
		Zoom:  lerp(prev.Zoom, next.Zoom, t),
	}
}

func stateOf(kf director.Keyframe) CameraState {
	zoom := kf.Zoom
	if zoom == 0 {
		zoom = 1.0
	}
	return CameraState{Phi: kf.Phi, Theta: kf.Theta, Zoom: zoom}
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeInOutCubic applies smooth easing function
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
