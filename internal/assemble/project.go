package assemble

import "assembld/internal/loader"

// projectText maps a text descriptor onto its load config. Pure and total:
// every field traces to a descriptor field, except the vision-only concepts
// (imatrix, calibration, matformer) which the text shape pins to nil.
func projectText(d *TextDescriptor) loader.TextConfig {
	return loader.TextConfig{
		Topology:            d.Topology,
		Organization:        d.Organization,
		WriteUQFF:           d.WriteUQFF,
		FromUQFF:            d.FromUQFF,
		Imatrix:             nil,
		CalibrationFile:     nil,
		HubCachePath:        d.HubCachePath,
		MatformerConfigPath: nil,
		MatformerSliceName:  nil,
	}
}

// projectVision maps a vision descriptor onto its load config, copying the
// vision-only inputs verbatim.
func projectVision(d *VisionDescriptor) loader.VisionConfig {
	return loader.VisionConfig{
		Topology:            d.Topology,
		WriteUQFF:           d.WriteUQFF,
		FromUQFF:            d.FromUQFF,
		MaxEdge:             d.MaxEdge,
		CalibrationFile:     d.CalibrationFile,
		Imatrix:             d.Imatrix,
		HubCachePath:        d.HubCachePath,
		MatformerConfigPath: d.MatformerConfigPath,
		MatformerSliceName:  d.MatformerSliceName,
	}
}
