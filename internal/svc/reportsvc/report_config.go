package reportsvc

// ReportConfig holds configuration parameters for report generation.
type ReportConfig struct {
	// Dir is the directory report files are written to
	Dir string `env:"DIR" default:"."`

	// YAML additionally writes a machine-readable overview.yaml
	YAML bool `env:"YAML" default:"false"`

	// ImageFormat additionally renders each report as an image ("png", "jpeg", "tiff"); empty disables
	ImageFormat string `env:"IMAGE_FORMAT" default:""`

	// ImageScale is the integer upscaling factor applied to report images
	ImageScale int `env:"IMAGE_SCALE" default:"2"`

	// Interpolator specifies the image scaling algorithm to use.
	// Valid values are: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear"
	Interpolator string `env:"INTERPOLATOR" default:"nearestneighbor"`
}
