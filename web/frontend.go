package web

import "github.com/bronya/splatview"

// FrontendData is the scene registry served to the viewer frontend.
type FrontendData struct {
	Scenes []SceneData `json:"scenes"`
}

type SceneData struct {
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	CameraOffset [3]float64 `json:"cameraOffset"`
	Preview      string     `json:"preview,omitempty"`
}

// FromConfig flattens the scene registry into its frontend form.
func FromConfig(cfg *splatview.Config) FrontendData {
	data := FrontendData{Scenes: []SceneData{}}
	for _, scene := range cfg.Scenes {
		preset := scene.Preset()
		data.Scenes = append(data.Scenes, SceneData{
			ID:  scene.ID,
			URL: scene.URL,
			CameraOffset: [3]float64{
				float64(preset.X),
				float64(preset.Y),
				float64(preset.Z),
			},
			Preview: scene.Preview,
		})
	}
	return data
}
