package reward

// ============================================================================
// Wheel Geometry
// ============================================================================

const (
	// FullRotation is one turn of the wheel in degrees
	FullRotation = 360.0

	// DefaultPointerDegrees places the pointer at the top of the wheel
	DefaultPointerDegrees = 0.0

	// DefaultMinSpins is the number of whole turns added before the landing angle
	DefaultMinSpins = 5

	// maxLandingJitter keeps the landing angle away from segment borders,
	// as a fraction of the segment width either side of its centre
	maxLandingJitter = 0.45

	// weightEpsilon treats totals below it as zero
	weightEpsilon = 1e-9

	// TotalWeightPercent is what normalized weights add up to
	TotalWeightPercent = 100.0
)

// ============================================================================
// Configuration
// ============================================================================

// WheelsSchemaName is the schema the wheel catalogue is validated against
const WheelsSchemaName = "wheels.schema.json"

// DefaultWheelsPath is the catalogue path relative to the working directory
const DefaultWheelsPath = "configs/wheels.json"

// ============================================================================
// Error Messages
// ============================================================================

const (
	ErrMsgReadWheels        = "failed to read wheel catalogue %s: %w"
	ErrMsgParseWheels       = "failed to parse wheel catalogue: %w"
	ErrMsgInvalidWheels     = "invalid wheel catalogue: %w"
	ErrMsgRegisterSchema    = "failed to register wheel schema: %w"
	ErrMsgDuplicateWheel    = "duplicate wheel id %q"
	ErrMsgNoSegments        = "%w: wheel %q has no segments"
	ErrMsgSegmentOutOfRange = "%w: segment index %d of %d"
	ErrMsgUnroutableKind    = "%w: no route for %s"
)

// ============================================================================
// Log Messages
// ============================================================================

const (
	LogMsgSpinResolved = "Spin resolved"
	LogMsgWheelLoaded  = "Wheel catalogue loaded"
)
