package scale

// Preset is a named target resolution handed to the export layer.
type Preset string

const (
	PresetLowQuality     Preset = "low"
	PresetMediumQuality  Preset = "medium"
	PresetHighQuality    Preset = "high"
	PresetHighestQuality Preset = "highest"

	Preset640x480   Preset = "640x480"
	Preset960x540   Preset = "960x540"
	Preset1280x720  Preset = "1280x720"
	Preset1920x1080 Preset = "1920x1080"
	Preset3840x2160 Preset = "3840x2160"
)

var presetSizes = map[Preset]Size{
	PresetLowQuality:     {Width: 320, Height: 240},
	PresetMediumQuality:  {Width: 640, Height: 360},
	PresetHighQuality:    {Width: 1280, Height: 720},
	PresetHighestQuality: {Width: 1920, Height: 1080},
	Preset640x480:        {Width: 640, Height: 480},
	Preset960x540:        {Width: 960, Height: 540},
	Preset1280x720:       {Width: 1280, Height: 720},
	Preset1920x1080:      {Width: 1920, Height: 1080},
	Preset3840x2160:      {Width: 3840, Height: 2160},
}

// Size returns the nominal landscape size of p and whether p is known.
func (p Preset) Size() (Size, bool) {
	s, ok := presetSizes[p]
	return s, ok
}

// FitPreset picks the output size for source under a nominal preset size.
// Sources smaller than the preset are kept as is, larger portrait sources get the
// preset rotated so the orientation is preserved.
func FitPreset(source, preset Size) Size {
	sourceArea := source.Width * source.Height
	presetArea := preset.Width * preset.Height

	switch {
	case sourceArea < presetArea:
		return source
	case source.Portrait() && sourceArea > presetArea:
		return preset.Swapped()
	default:
		return preset
	}
}
