package models

import "fmt"

type ModelType string

const (
	ModelVeo2     ModelType = "veo-2.0-generate-001"
	ModelVeo3     ModelType = "veo-3.0-generate-001"
	ModelSora2    ModelType = "sora-2"
	ModelSora2Pro ModelType = "sora-2-pro"
)

type ModelFamily string

const (
	FamilyVeo  ModelFamily = "veo"
	FamilySora ModelFamily = "sora"
)

func (m ModelType) Family() ModelFamily {
	switch m {
	case ModelVeo2, ModelVeo3:
		return FamilyVeo
	case ModelSora2, ModelSora2Pro:
		return FamilySora
	}
	return ""
}

func (m ModelType) Valid() bool {
	return m.Family() != ""
}

type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
)

func (a AspectRatio) Valid() bool {
	return a == AspectLandscape || a == AspectPortrait
}

// Size returns the pixel dimensions submitted to providers that take an
// explicit resolution instead of an aspect ratio.
func (a AspectRatio) Size() (width, height int) {
	if a == AspectPortrait {
		return 720, 1280
	}
	return 1280, 720
}

func (a AspectRatio) SizeString() string {
	w, h := a.Size()
	return fmt.Sprintf("%dx%d", w, h)
}

type VideoDuration string

const (
	DurationShort  VideoDuration = "short"
	DurationMedium VideoDuration = "medium"
	DurationLong   VideoDuration = "long"
)

func (d VideoDuration) Valid() bool {
	return d == DurationShort || d == DurationMedium || d == DurationLong
}

// Seconds maps the coarse duration choice to a clip length. Medium and long
// both resolve to 8s, the ceiling of the current generation models.
func (d VideoDuration) Seconds() int {
	switch d {
	case DurationMedium, DurationLong:
		return 8
	default:
		return 5
	}
}
