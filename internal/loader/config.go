package loader

// TextConfig is the text-model projection of the loading-relevant descriptor
// fields. Imatrix, CalibrationFile and the matformer fields exist only so the
// shape matches the loader API; text projection always leaves them nil.
type TextConfig struct {
	Topology            *string
	Organization        Organization
	WriteUQFF           *string
	FromUQFF            *string
	Imatrix             *string
	CalibrationFile     *string
	HubCachePath        *string
	MatformerConfigPath *string
	MatformerSliceName  *string
}

// VisionConfig is the vision-model projection of the loading-relevant
// descriptor fields. Unlike text, imatrix/calibration/matformer come straight
// from the descriptor, and there is no organization.
type VisionConfig struct {
	Topology            *string
	WriteUQFF           *string
	FromUQFF            *string
	MaxEdge             *int
	CalibrationFile     *string
	Imatrix             *string
	HubCachePath        *string
	MatformerConfigPath *string
	MatformerSliceName  *string
}
