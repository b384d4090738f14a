package geometry

import (
	"github.com/ytget/mre-kiosk/internal/scene"
)

func vec(x, y, z float32) *scene.Vec3 {
	v := scene.V3(x, y, z)
	return &v
}

func uniform(s float32) *scene.Vec3 {
	v := scene.Uniform(s)
	return &v
}

// Library artifacts
const (
	cqtDisplayResource    = "artifact:2050034828610372018"
	cqtCameraResource     = "artifact:2050030982223888469"
	spectrumCamResource   = "artifact:2050030982089670740"
	circleResource        = "artifact:2050122974350017152"
	barResource           = "artifact:2050510030326727674"
	stereoDisplayResource = "artifact:2080579947004428516"
	stereoCameraResource  = "artifact:2080579947138646245"
)

// Defaults returns the built-in flat, cqt and stereo layouts
func Defaults() Set {
	return Set{
		{
			Name: Flat,
			Anchor: Anchors{
				Screen: PartialTransform{Position: vec(0, 0, 0)},
			},
			Screen: PartialTransform{
				Position: vec(0, PlayerOffset, 0.02),
				Scale:    uniform(4.8),
			},
		},
		{
			// audio visualizer: the camera films a spectrum rendered next to
			// the video and the display shows the composite
			Name: CQT,
			Anchor: Anchors{
				Screen: PartialTransform{Position: vec(0, 0, 0.4)},
			},
			Display: &Part{
				ResourceID: cqtDisplayResource,
				Transform: PartialTransform{
					Position: vec(0, PlayerOffset, 0.02),
					Scale:    uniform(4.8),
				},
			},
			Screen: PartialTransform{
				Position: vec(0.28125/1000, 0, 0),
				Scale:    vec((1+9.0/16)/1000, 1.0/1000, 1.0/1000),
			},
			Camera: &Part{
				ResourceID: cqtCameraResource,
				Transform:  PartialTransform{Position: vec(-0.01/1000, 0, 0)},
			},
			Accessories: []Accessory{
				{
					Name:       "spectrum cam",
					ResourceID: spectrumCamResource,
					Transform:  PartialTransform{Position: vec(0.78125/1000, 0, 0)},
					Screen:     true,
				},
				{
					Name:       "circle",
					ResourceID: circleResource,
					Transform:  PartialTransform{Position: vec(3.5, PlayerOffset, 0), Scale: uniform(2)},
				},
				{
					Name:       "circle",
					ResourceID: circleResource,
					Transform:  PartialTransform{Position: vec(-3.5, PlayerOffset, 0), Scale: uniform(2)},
				},
				{
					Name:       "bar",
					ResourceID: barResource,
					Transform:  PartialTransform{Position: vec(0, -3, 0), Scale: vec(5, 2, 2)},
				},
			},
		},
		{
			Name: Stereo,
			Anchor: Anchors{
				Screen: PartialTransform{Position: vec(0, 0, 0.4)},
			},
			Display: &Part{
				ResourceID: stereoDisplayResource,
				Transform: PartialTransform{
					Position: vec(0, PlayerOffset, 0.02),
					Scale:    uniform(4.8),
				},
			},
			Screen: PartialTransform{
				Position: vec(0, 0, 0),
				Scale:    uniform(0.001),
			},
			Camera: &Part{
				ResourceID: stereoCameraResource,
				Transform:  PartialTransform{Position: vec(0, 0, 0)},
			},
		},
	}
}
